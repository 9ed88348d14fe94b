// Package session wires a running coordinator (registry, overrides, mode,
// dispatcher, speech sinks) to a scripted accessibility tree, and records
// what each played step did.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mj1618/desktop-focus/internal/config"
	"github.com/mj1618/desktop-focus/internal/focus"
	"github.com/mj1618/desktop-focus/internal/model"
	"github.com/mj1618/desktop-focus/internal/observer"
	"github.com/mj1618/desktop-focus/internal/overrides"
	"github.com/mj1618/desktop-focus/internal/platform"
	"github.com/mj1618/desktop-focus/internal/platform/scripted"
	"github.com/mj1618/desktop-focus/internal/speech"
	"github.com/rs/zerolog"
)

// ErrNotStarted is returned when steps are played before Start.
var ErrNotStarted = errors.New("session not started")

// StepResult reports one played step.
type StepResult struct {
	Index     int            `yaml:"index"               json:"index"`
	Action    string         `yaml:"action"              json:"action"`
	Target    string         `yaml:"target"              json:"target"`
	OK        bool           `yaml:"ok"                  json:"ok"`
	Error     string         `yaml:"error,omitempty"     json:"error,omitempty"`
	Override  string         `yaml:"override,omitempty"  json:"override,omitempty"`
	Outcome   *focus.Outcome `yaml:"outcome,omitempty"   json:"outcome,omitempty"`
	Announced []string       `yaml:"announced,omitempty" json:"announced,omitempty"`
	Mode      model.Mode     `yaml:"mode"                json:"mode"`
	Live      []string       `yaml:"live,omitempty"      json:"live,omitempty"`
}

// ObserverStatus describes the output observer of one override.
type ObserverStatus struct {
	App      model.AppID    `yaml:"app"               json:"app"`
	Override string         `yaml:"override"          json:"override"`
	Element  string         `yaml:"element,omitempty" json:"element,omitempty"`
	Tracked  string         `yaml:"tracked,omitempty" json:"tracked,omitempty"`
	Stats    observer.Stats `yaml:"stats"             json:"stats"`
}

// Snapshot is the coordinator state at one point in time.
type Snapshot struct {
	Mode          model.Mode                 `yaml:"mode"          json:"mode"`
	ActiveApp     model.AppID                `yaml:"active_app"    json:"active_app"`
	Spoken        uint64                     `yaml:"spoken"        json:"spoken"`
	Dispatcher    focus.Stats                `yaml:"dispatcher"    json:"dispatcher"`
	Subscriptions scripted.SubscriptionStats `yaml:"subscriptions" json:"subscriptions"`
	LiveElements  []string                   `yaml:"live_elements" json:"live_elements"`
	Observers     []ObserverStatus           `yaml:"observers"     json:"observers"`
}

type observed interface {
	Observers() *observer.Manager
}

// Session owns one dispatcher and the scripted tree it is driven by.
type Session struct {
	log        zerolog.Logger
	tree       *scripted.Tree
	history    *speech.History
	modes      *focus.ModeCoordinator
	registry   *focus.Registry
	dispatcher *focus.Dispatcher

	playMu sync.Mutex
	index  int

	mu      sync.Mutex
	pending *StepResult
	cancel  context.CancelFunc
	runErr  chan error
}

// New builds a session from cfg. Announcements go to the session's history,
// the log, and any extra sinks. Nothing runs until Start.
func New(cfg config.Config, tree *scripted.Tree, log zerolog.Logger, sinks ...platform.Announcer) (*Session, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	s := &Session{
		log:     log.With().Str("component", "session").Logger(),
		tree:    tree,
		history: speech.NewHistory(cfg.SpeechHistory),
	}
	announcer := append(speech.Multi{s.history, speech.NewLog(log), stepSink{s}}, sinks...)
	modes := focus.NewModeCoordinator(cfg.InitialMode, announcer, focus.ModePhrases{
		Browse: cfg.Announcements.BrowseMode,
		Focus:  cfg.Announcements.FocusMode,
	}, log)
	registry := focus.NewRegistry()
	err := overrides.RegisterAll(registry, cfg.Bindings(), overrides.Deps{
		Modes:           modes,
		Announcer:       announcer,
		TerminalSummary: cfg.Announcements.Terminal,
		Log:             log,
	})
	if err != nil {
		return nil, err
	}
	s.modes = modes
	s.registry = registry
	s.dispatcher = focus.NewDispatcher(registry, modes, announcer, log)
	return s, nil
}

// Start runs the dispatcher in the background. A session cannot be restarted
// after Stop.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.runErr = make(chan error, 1)
	go func() {
		s.runErr <- s.dispatcher.Run(runCtx)
	}()
}

// Stop shuts the dispatcher down and waits for it. Override observers are
// released before Stop returns.
func (s *Session) Stop() error {
	s.mu.Lock()
	cancel, runErr := s.cancel, s.runErr
	s.cancel, s.runErr = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	return <-runErr
}

func (s *Session) started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Play delivers one step through the scripted host and reports its effect.
func (s *Session) Play(ctx context.Context, step scripted.Step) StepResult {
	s.playMu.Lock()
	defer s.playMu.Unlock()
	return s.play(ctx, step)
}

// play runs one step. Caller holds s.playMu.
func (s *Session) play(ctx context.Context, step scripted.Step) StepResult {
	s.index++
	res := &StepResult{Index: s.index}
	switch {
	case step.Activate != "":
		res.Action, res.Target = "activate", string(step.Activate)
	case step.Focus != "":
		res.Action, res.Target = "focus", step.Focus
	case step.Value != nil:
		res.Action, res.Target = "value", step.Value.Element
	}
	if !s.started() {
		res.Error = ErrNotStarted.Error()
		return *res
	}

	s.mu.Lock()
	s.pending = res
	s.mu.Unlock()

	err := s.tree.Play(ctx, step, s)

	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()

	if err != nil && res.Error == "" {
		res.Error = err.Error()
	}
	res.OK = res.Error == ""
	res.Mode = s.modes.Mode()
	res.Live = s.tree.LiveElements()
	return *res
}

// Replay plays every step of the scripted tree in order. No other step runs
// in between. It stops early only when ctx is done.
func (s *Session) Replay(ctx context.Context) ([]StepResult, error) {
	s.playMu.Lock()
	defer s.playMu.Unlock()

	steps := s.tree.Steps()
	results := make([]StepResult, 0, len(steps))
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res := s.play(ctx, step)
		s.log.Debug().Int("step", res.Index).Str("action", res.Action).Str("target", res.Target).Bool("ok", res.OK).Msg("step played")
		results = append(results, res)
	}
	return results, nil
}

// FocusChanged implements platform.EventSink.
func (s *Session) FocusChanged(ctx context.Context, entity string, el platform.Element) {
	out, err := s.dispatcher.Dispatch(ctx, focus.NewFocusEvent(entity, el))
	s.record(func(r *StepResult) {
		if err != nil {
			r.Error = err.Error()
			return
		}
		r.Outcome = &out
		r.Override = out.Override
	})
}

// AppActivated implements platform.EventSink.
func (s *Session) AppActivated(ctx context.Context, app model.AppID) {
	o, err := s.dispatcher.Activate(ctx, app)
	s.record(func(r *StepResult) {
		if err != nil {
			r.Error = err.Error()
			return
		}
		if o != nil {
			r.Override = o.Name()
		}
	})
}

// stepSink adds every announcement made while a step plays to that step's
// result.
type stepSink struct {
	s *Session
}

func (k stepSink) Announce(text string) {
	k.s.record(func(r *StepResult) {
		r.Announced = append(r.Announced, text)
	})
}

func (s *Session) record(fn func(*StepResult)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		fn(s.pending)
	}
}

// SetMode changes the Browse/Focus mode as a user toggle would. The change is
// applied by the dispatcher, in order with focus events.
func (s *Session) SetMode(ctx context.Context, m model.Mode) (bool, error) {
	if !s.started() {
		return false, ErrNotStarted
	}
	return s.dispatcher.SetMode(ctx, m)
}

// Speech returns the most recent n announcements.
func (s *Session) Speech(n int) []speech.Entry {
	return s.history.Last(n)
}

// Tree returns the scripted host.
func (s *Session) Tree() *scripted.Tree {
	return s.tree
}

// Registry returns the override registry.
func (s *Session) Registry() *focus.Registry {
	return s.registry
}

// Snapshot reports the current coordinator state.
func (s *Session) Snapshot() Snapshot {
	_, app, _ := s.registry.Active()
	snap := Snapshot{
		Mode:          s.modes.Mode(),
		ActiveApp:     app,
		Spoken:        s.history.Total(),
		Dispatcher:    s.dispatcher.Stats(),
		Subscriptions: s.tree.Stats(),
		LiveElements:  s.tree.LiveElements(),
		Observers:     []ObserverStatus{},
	}
	if snap.LiveElements == nil {
		snap.LiveElements = []string{}
	}
	for _, o := range s.registry.All() {
		ob, ok := o.(observed)
		if !ok {
			continue
		}
		m := ob.Observers()
		st := ObserverStatus{App: o.AppID(), Override: o.Name(), Stats: m.Stats()}
		if cur, ok := m.Current(); ok {
			st.Element = cur.ElementID
			st.Tracked = cur.ID
		}
		snap.Observers = append(snap.Observers, st)
	}
	return snap
}

// StepFromArgs builds a step from tool or flag arguments.
func StepFromArgs(action, target, text string) (scripted.Step, error) {
	if target == "" {
		return scripted.Step{}, fmt.Errorf("%s: target is required", action)
	}
	switch action {
	case "activate":
		return scripted.Step{Activate: model.AppID(target)}, nil
	case "focus":
		return scripted.Step{Focus: target}, nil
	case "value":
		return scripted.Step{Value: &scripted.ValueStep{Element: target, Text: text}}, nil
	default:
		return scripted.Step{}, fmt.Errorf("unknown action: %s (use activate, focus, or value)", action)
	}
}
