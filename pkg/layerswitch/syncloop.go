package layerswitch

import (
	"codeberg.org/miketth/kanatafocus/pkg/allowlist"
	"context"
	"fmt"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"time"
)

const (
	DefaultActiveInterval = 100 * time.Millisecond
	DefaultIdleInterval   = 1500 * time.Millisecond
)

// Syncer keeps kanata's layer in line with the focused application. The
// current layer is owned by the goroutine calling Run (or Step) and is never
// shared; the only thing other goroutines touch is the Events queue.
type Syncer struct {
	current     string
	transitions int
	idle        bool

	events   *Events
	remapper Remapper
	focus    FocusObserver
	allow    allowlist.Provider
	layers   allowlist.Provider
	clock    clockwork.Clock
	log      *zap.SugaredLogger

	ActiveInterval time.Duration
	IdleInterval   time.Duration

	// Trace logs the inputs and outcome of every cycle at debug level.
	Trace bool

	// OnTransition is called from the sync goroutine whenever the current
	// layer changes.
	OnTransition func(from, to string)
}

// NewSyncer creates a Syncer starting on the default layer. layers is the
// set of applications that have a layer of their own; when nil the
// allow-list is used for that as well.
func NewSyncer(
	events *Events,
	remapper Remapper,
	focus FocusObserver,
	allow allowlist.Provider,
	layers allowlist.Provider,
	clock clockwork.Clock,
	log *zap.SugaredLogger,
) *Syncer {
	if allow == nil {
		allow = allowlist.Unrestricted{}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Syncer{
		current:        DefaultLayer,
		events:         events,
		remapper:       remapper,
		focus:          focus,
		allow:          allow,
		layers:         layers,
		clock:          clock,
		log:            log,
		ActiveInterval: DefaultActiveInterval,
		IdleInterval:   DefaultIdleInterval,
	}
}

func (s *Syncer) Current() string {
	return s.current
}

// Transitions counts how many times the current layer changed.
func (s *Syncer) Transitions() int {
	return s.transitions
}

func (s *Syncer) Idle() bool {
	return s.idle
}

// Run cycles until the context is cancelled or kanata can no longer be
// written to.
func (s *Syncer) Run(ctx context.Context) error {
	for {
		interval, err := s.Step()
		if err != nil {
			return err
		}

		if err := s.wait(ctx, interval); err != nil {
			return err
		}
	}
}

func (s *Syncer) wait(ctx context.Context, interval time.Duration) error {
	timer := s.clock.NewTimer(interval)
	defer timer.Stop()

	// only an idle wait is cut short by kanata; an active one is short anyway
	var ready <-chan struct{}
	if s.idle {
		ready = s.events.Ready()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.Chan():
	case <-ready:
		s.log.Debug("woken by layer event")
	}

	return nil
}

// Step runs a single cycle and returns how long to sleep before the next.
func (s *Syncer) Step() (time.Duration, error) {
	select {
	case <-s.events.Ready():
	default:
	}

	if layer, ok := s.events.Drain(); ok {
		s.setCurrent(layer)
	}

	app := s.focus.CurrentApplication()
	if app == "" {
		return s.goIdle("nothing focused"), nil
	}

	allow, layers, err := s.resolve()
	if err != nil {
		s.log.Warnf("resolve allow-list: %v", err)
		return s.goIdle("allow-list unavailable"), nil
	}

	layer, ok := Decide(s.current, app, allow, layers)
	if s.Trace {
		s.log.Debugw("cycle", "current", s.current, "focused", app, "decided", layer, "ok", ok)
	}
	if !ok {
		return s.goIdle(fmt.Sprintf("layer %q is not in the allow-list", s.current)), nil
	}

	s.goActive(app)

	if layer != s.current {
		if err := s.remapper.Send(layer); err != nil {
			return 0, fmt.Errorf("send layer %q: %w", layer, err)
		}
		s.setCurrent(layer)
	}

	return s.ActiveInterval, nil
}

func (s *Syncer) resolve() (allowlist.Set, allowlist.Set, error) {
	allow, err := s.allow.Resolve()
	if err != nil {
		return nil, nil, err
	}

	if s.layers == nil {
		return allow, allow, nil
	}

	layers, err := s.layers.Resolve()
	if err != nil {
		return nil, nil, fmt.Errorf("layer set: %w", err)
	}

	return allow, layers, nil
}

func (s *Syncer) setCurrent(layer string) {
	if layer == s.current {
		return
	}

	from := s.current
	s.current = layer
	s.transitions++
	s.log.Infof("layer %q -> %q", from, layer)

	if s.OnTransition != nil {
		s.OnTransition(from, layer)
	}
}

func (s *Syncer) goIdle(reason string) time.Duration {
	if !s.idle {
		s.log.Debugf("going idle: %s", reason)
		s.idle = true
	}
	return s.IdleInterval
}

func (s *Syncer) goActive(app string) {
	if s.idle {
		s.log.Debugf("active again, %q has focus", app)
		s.idle = false
	}
}
