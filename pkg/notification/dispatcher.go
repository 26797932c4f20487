package notification

import (
	"context"
	"sync"

	"github.com/go-logr/logr"

	"github.com/nodeguardian/nodeguardian/internal/ngerrors"
	ngv1 "github.com/nodeguardian/nodeguardian/pkg/apis/nodeguardian/v1"
)

// Phase distinguishes a trigger alert from a recovery alert, which picks the
// log channel's level (warn vs info).
type Phase string

const (
	PhaseTrigger  Phase = "trigger"
	PhaseRecovery Phase = "recovery"
)

// Channel is one alert delivery mechanism. Each channel isolates its own
// failures: a Channel returning an error never prevents delivery to the
// others for the same alert.
type Channel interface {
	Name() string
	Send(ctx context.Context, subject, body string, phase Phase, alertCtx AlertContext) error
}

// TemplateLookup resolves a named AlertTemplate, falling back to the
// built-in defaults when the cluster has none by that name.
type TemplateLookup interface {
	Lookup(name string) (ngv1.AlertTemplateSpec, bool)
}

// Dispatcher is the Alert Dispatcher: it renders a template against an
// AlertContext and fans the result out to every requested channel. It
// implements the AlertSink capability the Action Executor depends on,
// breaking what would otherwise be a circular executor<->dispatcher import.
type Dispatcher struct {
	templates       TemplateLookup
	defaultChannels []string
	log             logr.Logger

	mu       sync.RWMutex
	channels map[string]Channel
}

// New builds a Dispatcher over the given channel set, keyed by channel name
// ("log", "email", "webhook", "chat").
func New(templates TemplateLookup, channels []Channel, defaultChannels []string, log logr.Logger) *Dispatcher {
	d := &Dispatcher{
		templates:       templates,
		defaultChannels: defaultChannels,
		log:             log.WithName("alert-dispatcher"),
	}
	d.SetChannels(channels)
	return d
}

// SetChannels atomically replaces the dispatcher's channel set, keyed by
// channel name. A config reload that rebuilds, say, the email channel with
// new SMTP credentials calls this rather than constructing a new Dispatcher,
// so in-flight Dispatch calls never observe a half-built channel map.
func (d *Dispatcher) SetChannels(channels []Channel) {
	byName := make(map[string]Channel, len(channels))
	for _, c := range channels {
		byName[c.Name()] = c
	}
	d.mu.Lock()
	d.channels = byName
	d.mu.Unlock()
}

// Dispatch renders templateName against alertCtx and sends it to every
// channel in requestedChannels (or the template's/dispatcher's default list
// if empty), collecting per-channel ChannelErrors without aborting on the
// first failure.
func (d *Dispatcher) Dispatch(ctx context.Context, templateName string, requestedChannels []string, phase Phase, alertCtx AlertContext) []error {
	spec, ok := d.templates.Lookup(templateName)
	if !ok {
		d.log.Info("alert template not found, nothing to send", "template", templateName)
		return nil
	}

	channels := requestedChannels
	if len(channels) == 0 {
		channels = stringRefs(spec.Channels)
	}
	if len(channels) == 0 {
		channels = d.defaultChannels
	}
	if len(channels) == 0 {
		channels = []string{"log"}
	}

	ctxMap := alertCtx.ToMap()
	subject := Render(spec.Subject, ctxMap)
	body := Render(spec.Body, ctxMap)

	d.mu.RLock()
	byName := d.channels
	d.mu.RUnlock()

	var errs []error
	for _, name := range channels {
		ch, ok := byName[name]
		if !ok {
			d.log.Info("unknown alert channel, skipping", "channel", name)
			continue
		}
		if err := ch.Send(ctx, subject, body, phase, alertCtx); err != nil {
			errs = append(errs, &ngerrors.ChannelError{Channel: name, Err: err})
		}
	}
	return errs
}

func stringRefs(refs []ngv1.ChannelRef) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = string(r)
	}
	return out
}
