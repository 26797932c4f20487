package notification

import (
	"sync"

	ngv1 "github.com/nodeguardian/nodeguardian/pkg/apis/nodeguardian/v1"
)

// TemplateRegistry is a TemplateLookup backed by a mutable set of
// cluster-sourced templates layered over a fixed set of built-in defaults:
// a cluster AlertTemplate with the same name as a built-in always wins.
type TemplateRegistry struct {
	mu       sync.RWMutex
	builtins map[string]ngv1.AlertTemplateSpec
	cluster  map[string]ngv1.AlertTemplateSpec
}

// NewTemplateRegistry seeds a registry with builtins (typically
// rulestore.DefaultTemplates, passed by the caller to avoid an import cycle
// between notification and rulestore).
func NewTemplateRegistry(builtins []ngv1.AlertTemplate) *TemplateRegistry {
	r := &TemplateRegistry{
		builtins: make(map[string]ngv1.AlertTemplateSpec, len(builtins)),
		cluster:  make(map[string]ngv1.AlertTemplateSpec),
	}
	for _, t := range builtins {
		r.builtins[t.Name] = t.Spec
	}
	return r
}

// Upsert records or replaces a cluster-sourced template.
func (r *TemplateRegistry) Upsert(name string, spec ngv1.AlertTemplateSpec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cluster[name] = spec
}

// Remove deletes a cluster-sourced template, falling back to any built-in of
// the same name.
func (r *TemplateRegistry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cluster, name)
}

// Lookup implements TemplateLookup.
func (r *TemplateRegistry) Lookup(name string) (ngv1.AlertTemplateSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if spec, ok := r.cluster[name]; ok {
		return spec, true
	}
	spec, ok := r.builtins[name]
	return spec, ok
}
