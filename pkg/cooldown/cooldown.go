// Package cooldown implements the Cooldown Ledger: the sole authority for
// whether a rule is currently cooling down on a node. It is backed by an
// on-disk mirror so cooldown state survives a restart. cooldownPeriod is
// always passed explicitly into MayFire rather than read from an enclosing
// closure, so a rule's cooldown can never drift to a stale value.
package cooldown

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/nodeguardian/nodeguardian/internal/clock"
)

// Phase distinguishes the trigger cooldown from the recovery cooldown for
// the same (rule, node) pair; they are tracked independently.
type Phase string

const (
	PhaseTrigger  Phase = "trigger"
	PhaseRecovery Phase = "recovery"
)

// Ledger is the disk-backed cooldown authority. Reads and writes for a given
// (rule, node, phase) key are serialized through a per-key mutex so
// concurrent node evaluations never race on the same cooldown file.
type Ledger struct {
	dir   string
	clock clock.Clock
	log   logr.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New builds a Ledger rooted at <state>/cooldown.
func New(stateDir string, clk clock.Clock, log logr.Logger) *Ledger {
	return &Ledger{
		dir:   filepath.Join(stateDir, "cooldown"),
		clock: clk,
		log:   log.WithName("cooldown-ledger"),
		locks: make(map[string]*sync.Mutex),
	}
}

// MayFire reports whether rule may fire on node for phase: true iff no entry
// exists, or now-entry >= period. cooldownPeriod is always an explicit
// parameter here, never captured from an enclosing scope.
func (l *Ledger) MayFire(ctx context.Context, rule, node string, phase Phase, cooldownPeriod time.Duration) (bool, error) {
	key := ledgerKey(rule, node, phase)
	unlock := l.lockFor(key)
	defer unlock()

	entry, ok, err := l.read(key)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	return l.clock.Now().Sub(entry) >= cooldownPeriod, nil
}

// Mark records now as the last-fired time for (rule, node, phase).
func (l *Ledger) Mark(ctx context.Context, rule, node string, phase Phase) error {
	key := ledgerKey(rule, node, phase)
	unlock := l.lockFor(key)
	defer unlock()

	return l.write(key, l.clock.Now())
}

// ClearRule removes every cooldown entry for rule, across both phases and
// every node, matching the Rule Store's "remove mirror file; clear every
// cooldown entry matching <name>_*" behavior on disable/delete.
func (l *Ledger) ClearRule(rule string) error {
	entries, err := os.ReadDir(l.dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	prefix := rule + "_"
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasPrefix(e.Name(), prefix) {
			if err := os.Remove(filepath.Join(l.dir, e.Name())); err != nil && !os.IsNotExist(err) {
				return err
			}
		}
	}
	return nil
}

func ledgerKey(rule, node string, phase Phase) string {
	if phase == PhaseRecovery {
		return fmt.Sprintf("%s_recovery_%s", rule, node)
	}
	return fmt.Sprintf("%s_%s", rule, node)
}

func (l *Ledger) lockFor(key string) func() {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

func (l *Ledger) read(key string) (time.Time, bool, error) {
	path := filepath.Join(l.dir, key)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("cooldown: corrupt entry %s: %w", key, err)
	}
	return time.Unix(0, int64(seconds*float64(time.Second))), true, nil
}

func (l *Ledger) write(key string, at time.Time) error {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(l.dir, key)
	tmp := path + ".tmp"
	seconds := float64(at.UnixNano()) / float64(time.Second)
	if err := os.WriteFile(tmp, []byte(strconv.FormatFloat(seconds, 'f', 6, 64)), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
