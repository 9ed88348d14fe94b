package overrides

import (
	"context"

	"github.com/mj1618/desktop-focus/internal/focus"
	"github.com/mj1618/desktop-focus/internal/model"
	"github.com/rs/zerolog"
)

// Mail recognizes message-list rows and cells but does not yet change how
// they are read.
type Mail struct {
	app model.AppID
	log zerolog.Logger
}

func NewMail(app model.AppID, log zerolog.Logger) *Mail {
	return &Mail{app: app, log: log.With().Str("override", KindMail).Str("app", string(app)).Logger()}
}

func (m *Mail) AppID() model.AppID { return m.app }
func (m *Mail) Name() string       { return KindMail }

func (m *Mail) Handle(ctx context.Context, ev *focus.FocusEvent) bool {
	switch ev.Role(ctx) {
	case model.RoleRow, model.RoleCell:
		m.log.Trace().Str("entity", ev.Entity).Msg("message list item focused")
	}
	return false
}
