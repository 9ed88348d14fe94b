package overrides

import (
	"context"
	"strings"
	"sync"

	"github.com/mj1618/desktop-focus/internal/focus"
	"github.com/mj1618/desktop-focus/internal/model"
	"github.com/mj1618/desktop-focus/internal/observer"
	"github.com/mj1618/desktop-focus/internal/platform"
	"github.com/rs/zerolog"
)

// Terminal silences the scroll containers around a terminal's output and
// keeps a value subscription on the output text area so new output is read
// as it arrives. The override owns its observer for as long as it is
// registered.
type Terminal struct {
	app       model.AppID
	announcer platform.Announcer
	summary   string
	log       zerolog.Logger
	observers *observer.Manager

	// output already read from the current observer
	mu       sync.Mutex
	lastID   string
	lastText string
}

func NewTerminal(app model.AppID, announcer platform.Announcer, summary string, log zerolog.Logger) *Terminal {
	t := &Terminal{
		app:       app,
		announcer: announcer,
		summary:   summary,
		log:       log.With().Str("override", KindTerminal).Str("app", string(app)).Logger(),
	}
	t.observers = observer.New(platform.ValueUpdated, t.onValue, t.log)
	return t
}

func (t *Terminal) AppID() model.AppID { return t.app }
func (t *Terminal) Name() string       { return KindTerminal }

func (t *Terminal) Handle(ctx context.Context, ev *focus.FocusEvent) bool {
	switch ev.Role(ctx) {
	case model.RoleScrollArea:
		return true
	case model.RoleTextArea:
		t.announcer.Announce(t.summary)
		if _, err := t.observers.Track(ctx, ev.Element); err != nil {
			t.log.Warn().Err(err).Str("entity", ev.Entity).Msg("output will not be followed")
		}
		return true
	default:
		return false
	}
}

// Deactivate drops the output subscription when the terminal loses focus.
func (t *Terminal) Deactivate(context.Context) {
	t.observers.Untrack()
}

// Observers exposes the observer manager for inspection.
func (t *Terminal) Observers() *observer.Manager {
	return t.observers
}

func (t *Terminal) onValue(tr observer.Tracked, n platform.Notification) {
	t.mu.Lock()
	prev, seen := t.lastText, t.lastID == tr.ID
	t.lastID, t.lastText = tr.ID, n.Value
	t.mu.Unlock()

	text := NewOutput(prev, n.Value, seen)
	if strings.TrimSpace(text) == "" {
		return
	}
	t.announcer.Announce(text)
}

// NewOutput returns the part of next worth reading given the previously
// seen value: the appended suffix when next extends prev, otherwise all of
// next.
func NewOutput(prev, next string, seen bool) string {
	if seen && strings.HasPrefix(next, prev) {
		return strings.TrimSpace(next[len(prev):])
	}
	return strings.TrimSpace(next)
}
