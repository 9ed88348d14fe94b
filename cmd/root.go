package cmd

import (
	"fmt"
	"os"

	"github.com/mj1618/desktop-focus/internal/config"
	"github.com/mj1618/desktop-focus/internal/logging"
	"github.com/mj1618/desktop-focus/internal/output"
	"github.com/mj1618/desktop-focus/internal/version"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "desktop-focus",
	Short: "Coordinate screen-reader focus feedback per application",
	Long: `Route accessibility focus events through per-application overrides, keep the
Browse/Focus mode in step with the focused element, and follow terminal output.

Without a native accessibility backend the coordinator is driven by a scripted
tree (YAML): a set of application element trees plus the steps to play.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("format", "yaml", "Output format: yaml, json")
	rootCmd.PersistentFlags().Bool("pretty", false, "Pretty-print JSON output")
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (default: built-in bindings)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn, error (overrides config)")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		format, _ := rootCmd.PersistentFlags().GetString("format")
		f, err := output.ParseFormat(format)
		if err != nil {
			return err
		}
		output.OutputFormat = f
		output.PrettyOutput, _ = rootCmd.PersistentFlags().GetBool("pretty")
		return nil
	}
}

// loadConfig reads --config and builds the logger it describes.
func loadConfig(cmd *cobra.Command) (config.Config, zerolog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		if _, ok := logging.ParseLevel(lvl); !ok {
			return config.Config{}, zerolog.Nop(), fmt.Errorf("unknown log level: %s", lvl)
		}
		cfg.LogLevel = lvl
	}
	log := logging.New("desktop-focus", logging.Config{
		Level:   cfg.LogLevel,
		NoColor: cfg.LogNoColor,
		Out:     cmd.ErrOrStderr(),
	})
	return cfg, log, nil
}
