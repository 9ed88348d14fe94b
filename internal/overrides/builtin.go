// Package overrides contains the built-in per-application behaviors.
package overrides

import (
	"errors"
	"fmt"

	"github.com/mj1618/desktop-focus/internal/focus"
	"github.com/mj1618/desktop-focus/internal/model"
	"github.com/mj1618/desktop-focus/internal/platform"
	"github.com/rs/zerolog"
)

const (
	KindBrowser  = "browser"
	KindTerminal = "terminal"
	KindMail     = "mail"
	KindFinder   = "finder"
)

// ErrUnknownKind is returned for an override kind with no implementation.
var ErrUnknownKind = errors.New("unknown override kind")

// Kinds lists the built-in override kinds.
func Kinds() []string {
	return []string{KindBrowser, KindTerminal, KindMail, KindFinder}
}

// Binding assigns an override kind to an application.
type Binding struct {
	App  model.AppID
	Kind string
}

// Deps are the shared collaborators overrides are built with.
type Deps struct {
	Modes           *focus.ModeCoordinator
	Announcer       platform.Announcer
	TerminalSummary string
	Log             zerolog.Logger
}

// Build creates the override for one binding.
func Build(b Binding, deps Deps) (focus.Override, error) {
	switch b.Kind {
	case KindBrowser:
		return NewBrowser(b.App, deps.Modes, deps.Log), nil
	case KindTerminal:
		summary := deps.TerminalSummary
		if summary == "" {
			summary = "Terminal"
		}
		return NewTerminal(b.App, deps.Announcer, summary, deps.Log), nil
	case KindMail:
		return NewMail(b.App, deps.Log), nil
	case KindFinder:
		return NewFinder(b.App), nil
	default:
		return nil, fmt.Errorf("%w: %q for %s", ErrUnknownKind, b.Kind, b.App)
	}
}

// RegisterAll builds every binding and registers it.
func RegisterAll(r *focus.Registry, bindings []Binding, deps Deps) error {
	for _, b := range bindings {
		o, err := Build(b, deps)
		if err != nil {
			return err
		}
		r.Register(o)
	}
	return nil
}
