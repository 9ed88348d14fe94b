// Package server exposes a running coordinator session as MCP tools.
package server

import (
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/mj1618/desktop-focus/internal/session"
	"github.com/mj1618/desktop-focus/internal/version"
	"github.com/rs/zerolog"
)

// Config holds MCP server configuration.
type Config struct {
	Transport string
	Port      int
	CacheTTL  time.Duration
}

// Server wraps the MCP server with the session and status cache.
type Server struct {
	session *session.Session
	cache   *SnapshotCache
	log     zerolog.Logger
	mcp     *mcpserver.MCPServer
}

// New creates an MCP server with every coordinator tool registered. The
// session must already be started.
func New(sess *session.Session, cfg Config, log zerolog.Logger) *Server {
	s := &Server{
		session: sess,
		cache:   NewSnapshotCache(cfg.CacheTTL, sess.Snapshot),
		log:     log.With().Str("component", "mcp").Logger(),
	}
	s.mcp = mcpserver.NewMCPServer(
		"desktop-focus",
		version.Version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithRecovery(),
	)
	s.registerTools()
	return s
}

// Serve starts the MCP server with the configured transport.
func (s *Server) Serve(cfg Config) error {
	s.log.Info().Str("transport", cfg.Transport).Int("port", cfg.Port).Msg("serving")
	switch cfg.Transport {
	case "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		return httpServer.Start(fmt.Sprintf(":%d", cfg.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcpserver.MCPServer {
	return s.mcp
}

func (s *Server) registerTools() {
	// activate
	s.mcp.AddTool(
		mcp.NewTool("activate",
			mcp.WithDescription("Bring an application to the front. Its override, if any, becomes active and the previous one loses focus."),
			mcp.WithString("app", mcp.Description("Application bundle identifier (e.g. 'com.apple.Terminal')"), mcp.Required()),
		),
		s.handleActivate,
	)

	// focus
	s.mcp.AddTool(
		mcp.NewTool("focus",
			mcp.WithDescription("Move focus to a scripted element and report what the coordinator announced"),
			mcp.WithString("element", mcp.Description("Element ID in the scripted tree"), mcp.Required()),
		),
		s.handleFocus,
	)

	// set_value
	s.mcp.AddTool(
		mcp.NewTool("set_value",
			mcp.WithDescription("Change an element's value, as new terminal output would"),
			mcp.WithString("element", mcp.Description("Element ID in the scripted tree"), mcp.Required()),
			mcp.WithString("value", mcp.Description("New value")),
		),
		s.handleSetValue,
	)

	// mode
	s.mcp.AddTool(
		mcp.NewTool("mode",
			mcp.WithDescription("Get the Browse/Focus mode, or set it when 'set' is given"),
			mcp.WithString("set", mcp.Description("browse or focus")),
		),
		s.handleMode,
	)

	// speech_log
	s.mcp.AddTool(
		mcp.NewTool("speech_log",
			mcp.WithDescription("Return the most recent announcements, oldest first"),
			mcp.WithNumber("limit", mcp.Description("Max entries (0 = all retained)")),
		),
		s.handleSpeechLog,
	)

	// status
	s.mcp.AddTool(
		mcp.NewTool("status",
			mcp.WithDescription("Report mode, active application, dispatcher counters, and live observers"),
		),
		s.handleStatus,
	)

	// replay
	s.mcp.AddTool(
		mcp.NewTool("replay",
			mcp.WithDescription("Play every step of the loaded script in order"),
		),
		s.handleReplay,
	)
}

// Parameter extraction helpers for tool arguments

func stringParam(params map[string]interface{}, key, defaultVal string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprintf("%v", v)
	}
	return defaultVal
}

func intParam(params map[string]interface{}, key string, defaultVal int) int {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		case int64:
			return int(n)
		}
	}
	return defaultVal
}
