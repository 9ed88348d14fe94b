package model

import (
	"fmt"
	"strings"
)

// Mode is how keystrokes are interpreted: Browse moves a virtual cursor,
// Focus passes input straight to the focused control.
type Mode int

const (
	ModeBrowse Mode = iota
	ModeFocus
)

func (m Mode) String() string {
	switch m {
	case ModeBrowse:
		return "browse"
	case ModeFocus:
		return "focus"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode converts a flag or config value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "browse":
		return ModeBrowse, nil
	case "focus":
		return ModeFocus, nil
	default:
		return ModeBrowse, fmt.Errorf("unknown mode: %q (expected browse or focus)", s)
	}
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
