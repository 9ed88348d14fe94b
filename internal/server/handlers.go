package server

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mj1618/desktop-focus/internal/model"
	"github.com/mj1618/desktop-focus/internal/session"
	"gopkg.in/yaml.v3"
)

// toText serializes a tool result to YAML for the MCP response.
func toText(v interface{}) string {
	b, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(b)
}

// playHandler plays one step built from the request and invalidates the
// status cache.
func (s *Server) playHandler(ctx context.Context, action, target, text string) (*mcp.CallToolResult, error) {
	step, err := session.StepFromArgs(action, target, text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res := s.session.Play(ctx, step)
	s.cache.Invalidate()

	if !res.OK {
		return mcp.NewToolResultError(toText(res)), nil
	}
	return mcp.NewToolResultText(toText(res)), nil
}

func (s *Server) handleActivate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	return s.playHandler(ctx, "activate", stringParam(params, "app", ""), "")
}

func (s *Server) handleFocus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	return s.playHandler(ctx, "focus", stringParam(params, "element", ""), "")
}

func (s *Server) handleSetValue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	return s.playHandler(ctx, "value", stringParam(params, "element", ""), stringParam(params, "value", ""))
}

type modeResult struct {
	Mode    model.Mode `yaml:"mode"`
	Changed bool       `yaml:"changed"`
}

func (s *Server) handleMode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	set := stringParam(params, "set", "")
	if set == "" {
		return mcp.NewToolResultText(toText(modeResult{Mode: s.session.Snapshot().Mode})), nil
	}
	m, err := model.ParseMode(set)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	changed, err := s.session.SetMode(ctx, m)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.cache.Invalidate()
	return mcp.NewToolResultText(toText(modeResult{Mode: m, Changed: changed})), nil
}

func (s *Server) handleSpeechLog(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	limit := intParam(params, "limit", 20)
	if limit < 0 {
		return mcp.NewToolResultError("limit must be >= 0"), nil
	}
	return mcp.NewToolResultText(toText(s.session.Speech(limit))), nil
}

func (s *Server) handleStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(toText(s.cache.Get())), nil
}

type replayResult struct {
	OK        bool                 `yaml:"ok"`
	Steps     int                  `yaml:"steps"`
	Completed int                  `yaml:"completed"`
	Results   []session.StepResult `yaml:"results"`
}

func (s *Server) handleReplay(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	results, err := s.session.Replay(ctx)
	s.cache.Invalidate()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out := replayResult{OK: true, Steps: len(results), Results: results}
	for _, r := range results {
		if r.OK {
			out.Completed++
		} else {
			out.OK = false
		}
	}
	return mcp.NewToolResultText(toText(out)), nil
}
