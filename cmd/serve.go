package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/mj1618/desktop-focus/internal/platform"
	"github.com/mj1618/desktop-focus/internal/platform/scripted"
	"github.com/mj1618/desktop-focus/internal/server"
	"github.com/mj1618/desktop-focus/internal/session"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server driving a live coordinator",
	Long: `Start a Model Context Protocol (MCP) server around a running coordinator.
Agents move focus, activate applications, and change element values through
tools, and read back announcements, the current mode, and live observers.

The coordinator is driven by the scripted tree given with --script. Its steps
are not played on start; call the replay tool to play them.

Supported transports:
  stdio             Standard I/O (default, for MCP clients)
  streamable-http   Streamable HTTP transport (for remote agents)

Examples:
  desktop-focus serve --script session.yaml
  desktop-focus serve --script session.yaml --transport streamable-http --port 8080
  desktop-focus serve --script session.yaml --cache-ttl 0`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("script", "", "Scripted tree to drive the coordinator with")
	serveCmd.Flags().String("transport", "stdio", "Transport: stdio, streamable-http")
	serveCmd.Flags().Int("port", 8080, "HTTP port for streamable-http transport")
	serveCmd.Flags().Int("cache-ttl", 500, "Status cache TTL in milliseconds (0 to disable)")
}

func runServe(cmd *cobra.Command, args []string) error {
	script, _ := cmd.Flags().GetString("script")
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")
	cacheTTLMs, _ := cmd.Flags().GetInt("cache-ttl")

	if script == "" {
		// no native host is linked yet, so this reports why a script is needed
		if _, err := platform.NewProvider(); err != nil {
			return fmt.Errorf("--script is required: %w", err)
		}
		return fmt.Errorf("--script is required")
	}

	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	tree, err := scripted.Load(script)
	if err != nil {
		return err
	}
	sess, err := session.New(cfg, tree, log)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	sess.Start(ctx)
	defer sess.Stop()

	srvCfg := server.Config{
		Transport: transport,
		Port:      port,
		CacheTTL:  time.Duration(cacheTTLMs) * time.Millisecond,
	}
	srv := server.New(sess, srvCfg, log)
	if err := srv.Serve(srvCfg); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
