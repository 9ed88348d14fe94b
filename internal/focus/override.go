package focus

import (
	"context"

	"github.com/mj1618/desktop-focus/internal/model"
)

// Override is a per-application policy that sees every focus event while its
// application is frontmost. Handle returns true when it has fully handled
// feedback for the event, which suppresses the default announcement.
type Override interface {
	AppID() model.AppID
	Name() string
	Handle(ctx context.Context, ev *FocusEvent) bool
}

// Deactivator is implemented by overrides holding resources tied to their
// application having focus. Deactivate is called when another application
// becomes active and on dispatcher shutdown; it must be idempotent.
type Deactivator interface {
	Deactivate(ctx context.Context)
}
