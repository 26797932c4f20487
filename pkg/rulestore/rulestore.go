// Package rulestore is the NodeGuardian Rule Store: an in-memory catalog of
// NodeGuardianRule objects kept current by watch events, mirrored to disk as
// canonical JSON, and validated at ingest so an invalid rule never reaches
// the Condition Evaluator.
package rulestore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-logr/logr"

	"github.com/nodeguardian/nodeguardian/internal/ngerrors"
	ngv1 "github.com/nodeguardian/nodeguardian/pkg/apis/nodeguardian/v1"
	"github.com/nodeguardian/nodeguardian/pkg/platform"
)

// Store is the serialized-writer, copy-on-read rule index.
type Store struct {
	dir string
	log logr.Logger

	mu    sync.Mutex
	rules map[string]*ngv1.NodeGuardianRule
}

// New builds an empty Store rooted at <state>/rules.
func New(stateDir string, log logr.Logger) *Store {
	return &Store{
		dir:   filepath.Join(stateDir, "rules"),
		log:   log.WithName("rule-store"),
		rules: make(map[string]*ngv1.NodeGuardianRule),
	}
}

// Snapshot returns a copy of the currently enabled, valid rule list, safe
// for a caller to iterate without holding the store's lock.
func (s *Store) Snapshot() []*ngv1.NodeGuardianRule {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*ngv1.NodeGuardianRule, 0, len(s.rules))
	for _, r := range s.rules {
		out = append(out, r.DeepCopy())
	}
	return out
}

// Apply processes one watch event per the semantics of the rule store's
// upsert/remove/reconcile contract:
//   - Added/Modified with enabled=true: validate, upsert, mirror to disk.
//   - Added/Modified with enabled=false, or Deleted: remove from the index,
//     remove the mirror, and clear every cooldown entry for the rule (the
//     ledger clear is the caller's responsibility via the returned name).
//   - Synchronization: handled by the caller driving a full ReconcileSync
//     pass instead, since it needs the complete event batch.
func (s *Store) Apply(ev platform.RuleEvent) (removedRule string, err error) {
	switch ev.Type {
	case platform.EventDeleted:
		return s.remove(ev.Rule.Name)
	case platform.EventAdded, platform.EventModified:
		if !ev.Rule.Spec.Metadata.Enabled {
			return s.remove(ev.Rule.Name)
		}
		if err := s.upsert(ev.Rule); err != nil {
			return "", err
		}
		return "", nil
	default:
		return "", nil
	}
}

// ReconcileSync replaces the index with the contents of a full
// Synchronization snapshot: rules not present in snapshot are removed,
// rules present are upserted (skipping invalid or disabled ones).
func (s *Store) ReconcileSync(snapshot []*ngv1.NodeGuardianRule) []string {
	seen := make(map[string]bool, len(snapshot))
	var removed []string

	for _, r := range snapshot {
		seen[r.Name] = true
		if !r.Spec.Metadata.Enabled {
			if _, err := s.remove(r.Name); err == nil {
				removed = append(removed, r.Name)
			}
			continue
		}
		if err := s.upsert(r); err != nil {
			s.log.Error(err, "skipping invalid rule during sync", "rule", r.Name)
			removed = append(removed, r.Name)
		}
	}

	s.mu.Lock()
	var stale []string
	for name := range s.rules {
		if !seen[name] {
			stale = append(stale, name)
		}
	}
	s.mu.Unlock()

	for _, name := range stale {
		if _, err := s.remove(name); err == nil {
			removed = append(removed, name)
		}
	}

	return removed
}

func (s *Store) upsert(rule *ngv1.NodeGuardianRule) error {
	if err := Validate(rule); err != nil {
		return &ngerrors.ConfigError{Subject: rule.Name, Err: err}
	}

	s.mu.Lock()
	s.rules[rule.Name] = rule.DeepCopy()
	s.mu.Unlock()

	return s.mirror(rule)
}

func (s *Store) remove(name string) (string, error) {
	s.mu.Lock()
	_, existed := s.rules[name]
	delete(s.rules, name)
	s.mu.Unlock()

	if !existed {
		return "", nil
	}
	path := filepath.Join(s.dir, name+".json")
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return "", err
	}
	return name, nil
}

func (s *Store) mirror(rule *ngv1.NodeGuardianRule) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(rule, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(s.dir, rule.Name+".json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
