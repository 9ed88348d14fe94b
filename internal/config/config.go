// Package config loads the YAML configuration: which override runs for which
// application, the spoken strings, and logging.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mj1618/desktop-focus/internal/model"
	"github.com/mj1618/desktop-focus/internal/overrides"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	LogLevel      string         `yaml:"log_level"      json:"log_level"`
	LogNoColor    bool           `yaml:"log_no_color"   json:"log_no_color"`
	SpeechHistory int            `yaml:"speech_history" json:"speech_history"`
	InitialMode   model.Mode     `yaml:"initial_mode"   json:"initial_mode"`
	Announcements Announcements  `yaml:"announcements"  json:"announcements"`
	Overrides     []OverrideSpec `yaml:"overrides"      json:"overrides"`
}

// Announcements are the fixed strings spoken by the coordinator.
type Announcements struct {
	BrowseMode string `yaml:"browse_mode" json:"browse_mode"`
	FocusMode  string `yaml:"focus_mode"  json:"focus_mode"`
	Terminal   string `yaml:"terminal"    json:"terminal"`
}

// OverrideSpec binds an application identity to an override kind.
type OverrideSpec struct {
	App  string `yaml:"app"  json:"app"`
	Kind string `yaml:"kind" json:"kind"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel:      "info",
		SpeechHistory: 256,
		InitialMode:   model.ModeFocus,
		Announcements: Announcements{
			BrowseMode: "Browse Mode",
			FocusMode:  "Focus Mode",
			Terminal:   "Terminal",
		},
		Overrides: []OverrideSpec{
			{App: "com.apple.Safari", Kind: overrides.KindBrowser},
			{App: "com.google.Chrome", Kind: overrides.KindBrowser},
			{App: "org.mozilla.firefox", Kind: overrides.KindBrowser},
			{App: "company.thebrowser.Browser", Kind: overrides.KindBrowser},
			{App: "com.apple.Terminal", Kind: overrides.KindTerminal},
			{App: "com.googlecode.iterm2", Kind: overrides.KindTerminal},
			{App: "com.apple.mail", Kind: overrides.KindMail},
			{App: "com.apple.finder", Kind: overrides.KindFinder},
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults. A
// file that sets overrides replaces the default bindings entirely.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := Parse(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data onto cfg, then fills blank strings from the defaults
// and validates the result.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}
	def := Default()
	if cfg.Announcements.BrowseMode == "" {
		cfg.Announcements.BrowseMode = def.Announcements.BrowseMode
	}
	if cfg.Announcements.FocusMode == "" {
		cfg.Announcements.FocusMode = def.Announcements.FocusMode
	}
	if cfg.Announcements.Terminal == "" {
		cfg.Announcements.Terminal = def.Announcements.Terminal
	}
	if cfg.SpeechHistory == 0 {
		cfg.SpeechHistory = def.SpeechHistory
	}
	return Validate(*cfg)
}

func Validate(cfg Config) error {
	if cfg.SpeechHistory < 0 {
		return fmt.Errorf("%w: speech_history must not be negative", ErrInvalid)
	}
	known := make(map[string]bool)
	for _, k := range overrides.Kinds() {
		known[k] = true
	}
	seen := make(map[string]bool)
	for i, o := range cfg.Overrides {
		app := strings.TrimSpace(o.App)
		if app == "" {
			return fmt.Errorf("%w: overrides[%d]: app is required", ErrInvalid, i)
		}
		if !known[o.Kind] {
			return fmt.Errorf("%w: overrides[%d]: unknown kind %q (use %s)", ErrInvalid, i, o.Kind, strings.Join(overrides.Kinds(), ", "))
		}
		if seen[app] {
			return fmt.Errorf("%w: overrides[%d]: %s bound twice", ErrInvalid, i, app)
		}
		seen[app] = true
	}
	return nil
}

// Bindings converts the override list for overrides.RegisterAll.
func (c Config) Bindings() []overrides.Binding {
	out := make([]overrides.Binding, len(c.Overrides))
	for i, o := range c.Overrides {
		out[i] = overrides.Binding{App: model.AppID(strings.TrimSpace(o.App)), Kind: o.Kind}
	}
	return out
}
