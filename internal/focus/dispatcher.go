// Package focus coordinates focus events with per-application overrides and
// the Browse/Focus mode.
//
// A Dispatcher owns all mutable state through a single goroutine (Run). Focus
// events resolve their element attributes on the caller's goroutine and then
// hand over to the owner, which applies them in sequence order: an event whose
// attribute reads finish after a newer event has already been applied is
// discarded as stale.
package focus

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/mj1618/desktop-focus/internal/model"
	"github.com/mj1618/desktop-focus/internal/platform"
	"github.com/rs/zerolog"
)

var (
	// ErrDispatcherStopped is returned for work submitted after Run exited.
	ErrDispatcherStopped = errors.New("dispatcher stopped")

	// ErrAlreadyRunning is returned by a second concurrent call to Run.
	ErrAlreadyRunning = errors.New("dispatcher already running")
)

// Outcome reports what happened to one focus event.
type Outcome struct {
	Seq       uint64      `yaml:"seq"                 json:"seq"`
	Entity    string      `yaml:"entity"              json:"entity"`
	App       model.AppID `yaml:"app,omitempty"       json:"app,omitempty"`
	Override  string      `yaml:"override,omitempty"  json:"override,omitempty"`
	Role      model.Role  `yaml:"role"                json:"role"`
	Consumed  bool        `yaml:"consumed,omitempty"  json:"consumed,omitempty"`
	Announced string      `yaml:"announced,omitempty" json:"announced,omitempty"`
	Stale     bool        `yaml:"stale,omitempty"     json:"stale,omitempty"`
}

// Stats counts dispatcher activity.
type Stats struct {
	Applied     uint64 `yaml:"applied"     json:"applied"`
	Stale       uint64 `yaml:"stale"       json:"stale"`
	Consumed    uint64 `yaml:"consumed"    json:"consumed"`
	Defaulted   uint64 `yaml:"defaulted"   json:"defaulted"`
	Activations uint64 `yaml:"activations" json:"activations"`
}

// Dispatcher runs the focus pipeline.
type Dispatcher struct {
	registry  *Registry
	modes     *ModeCoordinator
	announcer platform.Announcer
	log       zerolog.Logger

	jobs    chan func(context.Context)
	stopped chan struct{}
	running atomic.Bool
	seq     atomic.Uint64

	// owned by the Run goroutine
	applied uint64

	statsMu sync.Mutex
	stats   Stats
}

// NewDispatcher wires a dispatcher. Call Run before submitting events.
func NewDispatcher(registry *Registry, modes *ModeCoordinator, announcer platform.Announcer, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		registry:  registry,
		modes:     modes,
		announcer: announcer,
		log:       log.With().Str("component", "dispatcher").Logger(),
		jobs:      make(chan func(context.Context)),
		stopped:   make(chan struct{}),
	}
}

// Run processes submitted work until ctx is done. On exit every registered
// override holding focus-bound resources is deactivated.
func (d *Dispatcher) Run(ctx context.Context) error {
	if !d.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(d.stopped)
	d.log.Debug().Msg("dispatcher started")
	for {
		select {
		case <-ctx.Done():
			d.shutdown()
			return nil
		case fn := <-d.jobs:
			fn(ctx)
		}
	}
}

func (d *Dispatcher) shutdown() {
	ctx := context.Background()
	for _, o := range d.registry.All() {
		if dz, ok := o.(Deactivator); ok {
			dz.Deactivate(ctx)
		}
	}
	d.log.Debug().Msg("dispatcher stopped")
}

// Done is closed once Run has returned.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.stopped
}

// do runs fn on the owner goroutine and waits for it to finish.
func (d *Dispatcher) do(ctx context.Context, fn func(context.Context)) error {
	finished := make(chan struct{})
	job := func(runCtx context.Context) {
		defer close(finished)
		fn(runCtx)
	}
	select {
	case d.jobs <- job:
	case <-ctx.Done():
		return ctx.Err()
	case <-d.stopped:
		return ErrDispatcherStopped
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-d.stopped:
		// Run may have been running our job when it stopped.
		select {
		case <-finished:
			return nil
		default:
			return ErrDispatcherStopped
		}
	}
}

// Dispatch runs one focus event through the pipeline. Attribute reads happen
// on the calling goroutine; the mutation step happens on the owner.
func (d *Dispatcher) Dispatch(ctx context.Context, ev *FocusEvent) (Outcome, error) {
	seq := d.seq.Add(1)
	ev.Resolve(ctx)
	if err := ev.RoleErr(); err != nil && !errors.Is(err, context.Canceled) {
		d.log.Debug().Err(err).Str("entity", ev.Entity).Msg("role unknown")
	}

	result := make(chan Outcome, 1)
	if err := d.do(ctx, func(runCtx context.Context) {
		result <- d.apply(runCtx, seq, ev)
	}); err != nil {
		return Outcome{Seq: seq, Entity: ev.Entity}, err
	}
	return <-result, nil
}

func (d *Dispatcher) apply(ctx context.Context, seq uint64, ev *FocusEvent) Outcome {
	out := Outcome{Seq: seq, Entity: ev.Entity, Role: ev.Role(ctx)}
	if seq <= d.applied {
		out.Stale = true
		d.count(func(s *Stats) { s.Stale++ })
		d.log.Debug().Uint64("seq", seq).Uint64("applied", d.applied).Str("entity", ev.Entity).Msg("discarding stale focus event")
		return out
	}
	d.applied = seq
	d.count(func(s *Stats) { s.Applied++ })

	o, app, ok := d.registry.Active()
	out.App = app
	if ok {
		out.Override = o.Name()
		if d.handle(ctx, o, ev) {
			out.Consumed = true
			d.count(func(s *Stats) { s.Consumed++ })
			return out
		}
	}

	out.Announced = DefaultAnnouncement(out.Role, ev.Description(ctx))
	if out.Announced != "" {
		d.announcer.Announce(out.Announced)
	}
	d.count(func(s *Stats) { s.Defaulted++ })
	return out
}

func (d *Dispatcher) handle(ctx context.Context, o Override, ev *FocusEvent) (consumed bool) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().
				Str("override", o.Name()).
				Str("panic", fmt.Sprint(r)).
				Bytes("stack", debug.Stack()).
				Msg("override panicked; using default feedback")
			consumed = false
		}
	}()
	return o.Handle(ctx, ev)
}

// Activate makes app the frontmost application. The previously active
// override is deactivated when it changes. Returns the new override, nil if
// the application has none.
func (d *Dispatcher) Activate(ctx context.Context, app model.AppID) (Override, error) {
	result := make(chan Override, 1)
	err := d.do(ctx, func(runCtx context.Context) {
		prev, _, hadPrev := d.registry.Active()
		o, ok := d.registry.Activate(app)
		if hadPrev && (!ok || prev != o) {
			if dz, isDz := prev.(Deactivator); isDz {
				dz.Deactivate(runCtx)
			}
		}
		d.count(func(s *Stats) { s.Activations++ })
		if ok {
			d.log.Debug().Str("app", string(app)).Str("override", o.Name()).Msg("application activated")
		} else {
			d.log.Debug().Str("app", string(app)).Msg("application activated without override")
		}
		result <- o
	})
	if err != nil {
		return nil, err
	}
	return <-result, nil
}

// FocusChanged implements platform.EventSink.
func (d *Dispatcher) FocusChanged(ctx context.Context, entity string, el platform.Element) {
	if _, err := d.Dispatch(ctx, NewFocusEvent(entity, el)); err != nil {
		d.log.Debug().Err(err).Str("entity", entity).Msg("focus event not dispatched")
	}
}

// AppActivated implements platform.EventSink.
func (d *Dispatcher) AppActivated(ctx context.Context, app model.AppID) {
	if _, err := d.Activate(ctx, app); err != nil {
		d.log.Debug().Err(err).Str("app", string(app)).Msg("activation not applied")
	}
}

// SetMode changes the Browse/Focus mode on the owner goroutine, ordered with
// focus events and activations. Reports whether the mode changed.
func (d *Dispatcher) SetMode(ctx context.Context, m model.Mode) (bool, error) {
	var changed bool
	if err := d.do(ctx, func(context.Context) {
		changed = d.modes.SetMode(m)
	}); err != nil {
		return false, err
	}
	return changed, nil
}

// Mode returns the current Browse/Focus mode.
func (d *Dispatcher) Mode() model.Mode {
	return d.modes.Mode()
}

// Registry returns the override registry.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

func (d *Dispatcher) Stats() Stats {
	d.statsMu.Lock()
	defer d.statsMu.Unlock()
	return d.stats
}

func (d *Dispatcher) count(fn func(*Stats)) {
	d.statsMu.Lock()
	fn(&d.stats)
	d.statsMu.Unlock()
}

// DefaultAnnouncement builds the standard spoken description of a focused
// element: "<description>, <role>". Either part is dropped when empty.
func DefaultAnnouncement(role model.Role, description string) string {
	parts := make([]string, 0, 2)
	if d := strings.TrimSpace(description); d != "" {
		parts = append(parts, d)
	}
	if s := role.Spoken(); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}
