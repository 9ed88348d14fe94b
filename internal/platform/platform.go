package platform

import (
	"context"
	"errors"

	"github.com/mj1618/desktop-focus/internal/model"
)

var (
	// ErrAttributeUnavailable is returned when an element attribute cannot be read.
	ErrAttributeUnavailable = errors.New("attribute unavailable")

	// ErrSubscriptionFailed is returned when a change subscription cannot be created.
	ErrSubscriptionFailed = errors.New("subscription failed")
)

// EventKind is the kind of change a subscription listens for.
type EventKind string

const (
	ValueUpdated EventKind = "value-updated"
	TitleChanged EventKind = "title-changed"
)

// SubscriptionHandle identifies one live change subscription on an element.
type SubscriptionHandle string

// Notification is delivered to a subscription handler when the element changes.
type Notification struct {
	Kind      EventKind
	ElementID string
	Value     string
}

// Element is the view the coordinator has of one focusable accessibility node.
// Implementations may block on IPC with the target application.
type Element interface {
	// ID is stable for the lifetime of the node.
	ID() string

	// Role reads the semantic role. Fails with ErrAttributeUnavailable.
	Role(ctx context.Context) (model.Role, error)

	// Description reads the accessible label. Fails with ErrAttributeUnavailable.
	Description(ctx context.Context) (string, error)

	// Subscribe registers handler for changes of the given kind.
	// Fails with ErrSubscriptionFailed.
	Subscribe(ctx context.Context, kind EventKind, handler func(Notification)) (SubscriptionHandle, error)

	// Invalidate removes a subscription. Unknown handles are ignored.
	Invalidate(handle SubscriptionHandle)
}

// Announcer speaks text to the user. It must not block.
type Announcer interface {
	Announce(text string)
}

// AnnouncerFunc adapts a function to Announcer.
type AnnouncerFunc func(text string)

func (f AnnouncerFunc) Announce(text string) { f(text) }

// EventSink receives host events. The focus dispatcher implements it.
type EventSink interface {
	FocusChanged(ctx context.Context, entity string, el Element)
	AppActivated(ctx context.Context, app model.AppID)
}

// EventSource feeds focus and application-activation events into a sink
// until ctx is done or the source is exhausted.
type EventSource interface {
	Watch(ctx context.Context, sink EventSink) error
}
