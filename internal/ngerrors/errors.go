// Package ngerrors defines the error taxonomy shared across NodeGuardian's
// components: configuration/ingest failures, platform call failures (split
// into transient and fatal), metric resolution gaps, and notification
// channel failures. Callers type-switch or errors.As against these to decide
// retry vs. surface-and-skip behavior.
package ngerrors

import "fmt"

// ConfigError indicates a rule, template, or configuration document failed
// validation or could not be parsed. It is never retried.
type ConfigError struct {
	Subject string
	Err     error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for %s: %v", e.Subject, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// PlatformTransient indicates a platform (Kubernetes API) call failed in a
// way that is expected to succeed on retry: rate limiting, connection
// resets, conflict on optimistic update. Callers retry up to 3 times with
// 100ms/500ms/2s backoff before giving up.
type PlatformTransient struct {
	Op  string
	Err error
}

func (e *PlatformTransient) Error() string {
	return fmt.Sprintf("transient platform error during %s: %v", e.Op, e.Err)
}

func (e *PlatformTransient) Unwrap() error { return e.Err }

// PlatformFatal indicates a platform call failed in a way retrying will not
// fix: not found, forbidden, invalid request.
type PlatformFatal struct {
	Op  string
	Err error
}

func (e *PlatformFatal) Error() string {
	return fmt.Sprintf("fatal platform error during %s: %v", e.Op, e.Err)
}

func (e *PlatformFatal) Unwrap() error { return e.Err }

// MetricUnavailable indicates every resolution tier for a metric on a node
// was exhausted without producing a value.
type MetricUnavailable struct {
	Node   string
	Metric string
	Err    error
}

func (e *MetricUnavailable) Error() string {
	return fmt.Sprintf("metric %s unavailable for node %s: %v", e.Metric, e.Node, e.Err)
}

func (e *MetricUnavailable) Unwrap() error { return e.Err }

// ChannelError indicates an alert dispatch to a single channel failed. It is
// isolated per channel; one channel's ChannelError never aborts delivery to
// the others.
type ChannelError struct {
	Channel string
	Err     error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("channel %s delivery failed: %v", e.Channel, e.Err)
}

func (e *ChannelError) Unwrap() error { return e.Err }
