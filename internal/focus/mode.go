package focus

import (
	"sync"

	"github.com/mj1618/desktop-focus/internal/model"
	"github.com/mj1618/desktop-focus/internal/platform"
	"github.com/rs/zerolog"
)

// ModePhrases are the announcements made on entering each mode.
type ModePhrases struct {
	Browse string
	Focus  string
}

// DefaultModePhrases returns the stock announcements.
func DefaultModePhrases() ModePhrases {
	return ModePhrases{Browse: "Browse Mode", Focus: "Focus Mode"}
}

func (p ModePhrases) phrase(m model.Mode) string {
	if m == model.ModeFocus {
		return p.Focus
	}
	return p.Browse
}

// ModeCoordinator holds the Browse/Focus mode. Every transition is paired
// with exactly one announcement; setting the current mode does nothing.
type ModeCoordinator struct {
	announcer platform.Announcer
	phrases   ModePhrases
	log       zerolog.Logger

	mu          sync.RWMutex
	mode        model.Mode
	transitions int
}

func NewModeCoordinator(initial model.Mode, announcer platform.Announcer, phrases ModePhrases, log zerolog.Logger) *ModeCoordinator {
	return &ModeCoordinator{
		announcer: announcer,
		phrases:   phrases,
		log:       log.With().Str("component", "mode").Logger(),
		mode:      initial,
	}
}

// Mode returns the current mode.
func (c *ModeCoordinator) Mode() model.Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

// SetMode switches to m and announces it. Returns false when m is already
// the current mode.
func (c *ModeCoordinator) SetMode(m model.Mode) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == m {
		return false
	}
	c.log.Debug().Stringer("from", c.mode).Stringer("to", m).Msg("mode change")
	c.mode = m
	c.transitions++
	c.announcer.Announce(c.phrases.phrase(m))
	return true
}

// Transitions returns how many mode changes have happened.
func (c *ModeCoordinator) Transitions() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.transitions
}
