package focus

import (
	"context"

	"github.com/mj1618/desktop-focus/internal/model"
	"github.com/mj1618/desktop-focus/internal/platform"
)

// FocusEvent is the snapshot of one focus transition. Attributes are read
// from the element at most once and memoized; a failed read leaves the role
// unknown.
type FocusEvent struct {
	Entity  string
	Element platform.Element

	resolved    bool
	role        model.Role
	roleErr     error
	description string
}

// NewFocusEvent creates an event for el. entity defaults to the element ID.
func NewFocusEvent(entity string, el platform.Element) *FocusEvent {
	if entity == "" && el != nil {
		entity = el.ID()
	}
	return &FocusEvent{Entity: entity, Element: el}
}

// Resolve reads the element's role and description. It may block.
func (e *FocusEvent) Resolve(ctx context.Context) {
	if e.resolved {
		return
	}
	e.resolved = true
	if e.Element == nil {
		e.roleErr = platform.ErrAttributeUnavailable
		return
	}
	e.role, e.roleErr = e.Element.Role(ctx)
	if e.roleErr != nil {
		e.role = model.RoleUnknown
	}
	if desc, err := e.Element.Description(ctx); err == nil {
		e.description = desc
	}
}

// Role returns the focused element's role, RoleUnknown if it could not be read.
func (e *FocusEvent) Role(ctx context.Context) model.Role {
	e.Resolve(ctx)
	return e.role
}

// RoleErr returns the error from reading the role, if any.
func (e *FocusEvent) RoleErr() error {
	return e.roleErr
}

// Description returns the accessible description, empty if unavailable.
func (e *FocusEvent) Description(ctx context.Context) string {
	e.Resolve(ctx)
	return e.description
}
