package overrides

import (
	"context"

	"github.com/mj1618/desktop-focus/internal/focus"
	"github.com/mj1618/desktop-focus/internal/model"
)

// Finder is registered so file-manager focus is attributed, but it leaves
// all feedback to the default path.
type Finder struct {
	app model.AppID
}

func NewFinder(app model.AppID) *Finder {
	return &Finder{app: app}
}

func (f *Finder) AppID() model.AppID { return f.app }
func (f *Finder) Name() string       { return KindFinder }

func (f *Finder) Handle(context.Context, *focus.FocusEvent) bool {
	return false
}
