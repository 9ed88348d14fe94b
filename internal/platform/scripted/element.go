package scripted

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/mj1618/desktop-focus/internal/model"
	"github.com/mj1618/desktop-focus/internal/platform"
)

type subscription struct {
	kind    platform.EventKind
	handler func(platform.Notification)
}

// Element is an in-memory accessibility node. It counts every subscription
// it hands out and every invalidation it receives.
type Element struct {
	id  string
	app model.AppID

	mu            sync.Mutex
	role          model.Role
	description   string
	value         string
	roleFails     bool
	subscribeFail bool
	gate          chan struct{}
	blocked       int
	subs          map[platform.SubscriptionHandle]subscription
	created       int
	invalidated   int
}

// NewElement creates a standalone element, mostly for tests.
func NewElement(id string, role model.Role, description string) *Element {
	return &Element{
		id:          id,
		role:        role,
		description: description,
		subs:        make(map[platform.SubscriptionHandle]subscription),
	}
}

func (e *Element) ID() string { return e.id }

// App returns the application the element belongs to.
func (e *Element) App() model.AppID { return e.app }

func (e *Element) Role(ctx context.Context) (model.Role, error) {
	if err := e.wait(ctx); err != nil {
		return model.RoleUnknown, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.roleFails {
		return model.RoleUnknown, fmt.Errorf("read role of %s: %w", e.id, platform.ErrAttributeUnavailable)
	}
	return e.role, nil
}

func (e *Element) Description(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.description, nil
}

// Value returns the current value.
func (e *Element) Value() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.value
}

func (e *Element) Subscribe(ctx context.Context, kind platform.EventKind, handler func(platform.Notification)) (platform.SubscriptionHandle, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.subscribeFail {
		return "", fmt.Errorf("subscribe %s on %s: %w", kind, e.id, platform.ErrSubscriptionFailed)
	}
	h := platform.SubscriptionHandle(uuid.NewString())
	e.subs[h] = subscription{kind: kind, handler: handler}
	e.created++
	return h, nil
}

func (e *Element) Invalidate(handle platform.SubscriptionHandle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.subs[handle]; !ok {
		return
	}
	delete(e.subs, handle)
	e.invalidated++
}

// SetValue changes the value and notifies value subscribers synchronously.
func (e *Element) SetValue(v string) {
	e.mu.Lock()
	e.value = v
	var handlers []func(platform.Notification)
	for _, s := range e.subs {
		if s.kind == platform.ValueUpdated {
			handlers = append(handlers, s.handler)
		}
	}
	e.mu.Unlock()

	n := platform.Notification{Kind: platform.ValueUpdated, ElementID: e.id, Value: v}
	for _, h := range handlers {
		h(n)
	}
}

// SetRoleUnavailable makes subsequent role reads fail.
func (e *Element) SetRoleUnavailable(fail bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.roleFails = fail
}

// SetSubscribeFails makes subsequent subscriptions fail.
func (e *Element) SetSubscribeFails(fail bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subscribeFail = fail
}

// Hold blocks role reads until the returned release func is called.
func (e *Element) Hold() (release func()) {
	gate := make(chan struct{})
	e.mu.Lock()
	e.gate = gate
	e.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			if e.gate == gate {
				e.gate = nil
			}
			e.mu.Unlock()
			close(gate)
		})
	}
}

func (e *Element) wait(ctx context.Context) error {
	e.mu.Lock()
	gate := e.gate
	if gate == nil {
		e.mu.Unlock()
		return ctx.Err()
	}
	e.blocked++
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.blocked--
		e.mu.Unlock()
	}()
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Blocked returns how many role reads are waiting on Hold.
func (e *Element) Blocked() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.blocked
}

// SubscriptionStats counts subscriptions handed out by an element.
type SubscriptionStats struct {
	Created     int `yaml:"created"     json:"created"`
	Invalidated int `yaml:"invalidated" json:"invalidated"`
	Live        int `yaml:"live"        json:"live"`
}

// Stats returns the element's subscription counters.
func (e *Element) Stats() SubscriptionStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return SubscriptionStats{Created: e.created, Invalidated: e.invalidated, Live: len(e.subs)}
}
