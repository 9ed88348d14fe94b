// Package observer owns live change subscriptions on focused elements.
//
// A Manager holds at most one subscription at a time. Tracking a new element
// invalidates the previous subscription before the new one is created, under
// the same lock, so callers never see two live subscriptions. Each
// subscription is stamped with a generation; notifications from a superseded
// generation are dropped, and a subscription that completes after a newer
// Track or Untrack was requested is invalidated instead of installed.
package observer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/mj1618/desktop-focus/internal/platform"
	"github.com/rs/zerolog"
)

// ErrSuperseded is returned by Track when a newer Track or Untrack was
// requested before this one could install its subscription.
var ErrSuperseded = errors.New("superseded by a newer tracking request")

// Tracked describes the live subscription.
type Tracked struct {
	ID         string                      `yaml:"id"         json:"id"`
	ElementID  string                      `yaml:"element"    json:"element"`
	Handle     platform.SubscriptionHandle `yaml:"handle"     json:"handle"`
	Kind       platform.EventKind          `yaml:"kind"       json:"kind"`
	Generation uint64                      `yaml:"generation" json:"generation"`
}

type entry struct {
	el   platform.Element
	info Tracked
}

// Stats counts subscriptions over the manager's lifetime.
type Stats struct {
	Created     int `yaml:"created"     json:"created"`
	Invalidated int `yaml:"invalidated" json:"invalidated"`
	Live        int `yaml:"live"        json:"live"`
	Dropped     int `yaml:"dropped"     json:"dropped"`
}

// Manager owns the single live subscription for one logical tracked target.
type Manager struct {
	kind    platform.EventKind
	handler func(Tracked, platform.Notification)
	log     zerolog.Logger

	requested atomic.Uint64
	live      atomic.Uint64
	dropped   atomic.Int64

	mu          sync.Mutex
	current     *entry
	created     int
	invalidated int
}

// New returns a Manager subscribing to kind and passing notifications from
// the current subscription to handler.
func New(kind platform.EventKind, handler func(Tracked, platform.Notification), log zerolog.Logger) *Manager {
	return &Manager{
		kind:    kind,
		handler: handler,
		log:     log.With().Str("component", "observer").Logger(),
	}
}

// Track makes el the tracked target. Tracking the element that is already
// tracked keeps the existing subscription. On subscription failure the
// manager is left Empty.
func (m *Manager) Track(ctx context.Context, el platform.Element) (Tracked, error) {
	gen := m.requested.Add(1)

	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.requested.Load() {
		return Tracked{}, ErrSuperseded
	}
	if m.current != nil && m.current.el.ID() == el.ID() {
		return m.current.info, nil
	}

	m.releaseLocked()

	handle, err := el.Subscribe(ctx, m.kind, m.deliver(gen))
	if err != nil {
		m.log.Warn().Err(err).Str("element", el.ID()).Uint64("generation", gen).Msg("subscription failed")
		return Tracked{}, fmt.Errorf("track %s: %w", el.ID(), err)
	}
	m.created++

	if gen != m.requested.Load() {
		el.Invalidate(handle)
		m.invalidated++
		m.log.Debug().Str("element", el.ID()).Uint64("generation", gen).Msg("subscription superseded before install")
		return Tracked{}, ErrSuperseded
	}

	info := Tracked{
		ID:         uuid.NewString(),
		ElementID:  el.ID(),
		Handle:     handle,
		Kind:       m.kind,
		Generation: gen,
	}
	m.current = &entry{el: el, info: info}
	m.live.Store(gen)
	m.log.Debug().Str("observer", info.ID).Str("element", info.ElementID).Uint64("generation", gen).Msg("tracking element")
	return info, nil
}

// Untrack invalidates the current subscription, if any.
func (m *Manager) Untrack() {
	m.requested.Add(1)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.releaseLocked()
}

// releaseLocked invalidates the current subscription. Caller holds m.mu.
func (m *Manager) releaseLocked() {
	if m.current == nil {
		return
	}
	m.live.Store(0)
	m.current.el.Invalidate(m.current.info.Handle)
	m.invalidated++
	m.log.Debug().Str("observer", m.current.info.ID).Str("element", m.current.info.ElementID).Msg("subscription invalidated")
	m.current = nil
}

func (m *Manager) deliver(gen uint64) func(platform.Notification) {
	return func(n platform.Notification) {
		if m.live.Load() != gen {
			m.dropped.Add(1)
			return
		}
		m.mu.Lock()
		cur := m.current
		m.mu.Unlock()
		if cur == nil || cur.info.Generation != gen {
			m.dropped.Add(1)
			return
		}
		if m.handler != nil {
			m.handler(cur.info, n)
		}
	}
}

// Current returns the live subscription.
func (m *Manager) Current() (Tracked, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return Tracked{}, false
	}
	return m.current.info, true
}

// Live returns the number of live subscriptions: 0 or 1.
func (m *Manager) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return 0
	}
	return 1
}

// Generation returns the most recently requested generation.
func (m *Manager) Generation() uint64 {
	return m.requested.Load()
}

func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := Stats{
		Created:     m.created,
		Invalidated: m.invalidated,
		Dropped:     int(m.dropped.Load()),
	}
	if m.current != nil {
		s.Live = 1
	}
	return s
}
