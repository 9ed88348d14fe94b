package cmd

import (
	"github.com/mj1618/desktop-focus/internal/config"
	"github.com/mj1618/desktop-focus/internal/model"
	"github.com/mj1618/desktop-focus/internal/output"
	"github.com/mj1618/desktop-focus/internal/overrides"
	"github.com/mj1618/desktop-focus/internal/platform"
	"github.com/mj1618/desktop-focus/internal/version"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the effective configuration and host support",
	Long:  "Print the application bindings, spoken strings, and initial mode the coordinator would run with, and whether a native accessibility host is available.",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// Status is the output of the status command.
type Status struct {
	Version       string                `yaml:"version"        json:"version"`
	Host          bool                  `yaml:"host"           json:"host"`
	InitialMode   model.Mode            `yaml:"initial_mode"   json:"initial_mode"`
	LogLevel      string                `yaml:"log_level"      json:"log_level"`
	SpeechHistory int                   `yaml:"speech_history" json:"speech_history"`
	Announcements config.Announcements  `yaml:"announcements"  json:"announcements"`
	Kinds         []string              `yaml:"kinds"          json:"kinds"`
	Overrides     []config.OverrideSpec `yaml:"overrides"      json:"overrides"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return output.Fprint(cmd.OutOrStdout(), Status{
		Version:       version.Version,
		Host:          platform.HostSupported(),
		InitialMode:   cfg.InitialMode,
		LogLevel:      cfg.LogLevel,
		SpeechHistory: cfg.SpeechHistory,
		Announcements: cfg.Announcements,
		Kinds:         overrides.Kinds(),
		Overrides:     cfg.Overrides,
	})
}
