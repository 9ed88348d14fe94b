package overrides

import (
	"context"

	"github.com/mj1618/desktop-focus/internal/focus"
	"github.com/mj1618/desktop-focus/internal/model"
	"github.com/rs/zerolog"
)

// Browser switches to Browse mode on web content and to Focus mode on text
// inputs. It never consumes the event: the focused element is still
// announced after any mode announcement.
type Browser struct {
	app   model.AppID
	modes *focus.ModeCoordinator
	log   zerolog.Logger
}

func NewBrowser(app model.AppID, modes *focus.ModeCoordinator, log zerolog.Logger) *Browser {
	return &Browser{app: app, modes: modes, log: log.With().Str("override", KindBrowser).Str("app", string(app)).Logger()}
}

func (b *Browser) AppID() model.AppID { return b.app }
func (b *Browser) Name() string       { return KindBrowser }

func (b *Browser) Handle(ctx context.Context, ev *focus.FocusEvent) bool {
	role := ev.Role(ctx)
	switch {
	case role.IsWebContainer():
		b.modes.SetMode(model.ModeBrowse)
	case role.IsEditable():
		b.modes.SetMode(model.ModeFocus)
	default:
		if err := ev.RoleErr(); err != nil {
			b.log.Debug().Err(err).Str("entity", ev.Entity).Msg("role unknown, mode unchanged")
		}
	}
	return false
}
