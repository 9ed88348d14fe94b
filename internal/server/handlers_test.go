package server

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mj1618/desktop-focus/internal/config"
	"github.com/mj1618/desktop-focus/internal/model"
	"github.com/mj1618/desktop-focus/internal/platform/scripted"
	"github.com/mj1618/desktop-focus/internal/session"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const tree = `
apps:
  - id: com.apple.Terminal
    elements:
      - id: scroll
        role: AXScrollArea
        children:
          - id: out
            role: AXTextArea
  - id: com.apple.Safari
    elements:
      - id: page
        role: AXWebArea
        description: Docs
steps:
  - activate: com.apple.Safari
  - focus: page
`

func newServer(t *testing.T, ttl time.Duration) *Server {
	t.Helper()
	tr, err := scripted.Parse([]byte(tree))
	if err != nil {
		t.Fatal(err)
	}
	sess, err := session.New(config.Default(), tr, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	sess.Start(context.Background())
	t.Cleanup(func() { sess.Stop() })
	return New(sess, Config{Transport: "stdio", CacheTTL: ttl}, zerolog.Nop())
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]interface{}) (string, bool) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if len(res.Content) != 1 {
		t.Fatalf("content: got %d items", len(res.Content))
	}
	switch c := res.Content[0].(type) {
	case mcp.TextContent:
		return c.Text, res.IsError
	case *mcp.TextContent:
		return c.Text, res.IsError
	}
	t.Fatalf("unexpected content type %T", res.Content[0])
	return "", false
}

func TestHandleFocus_TerminalFlow(t *testing.T) {
	s := newServer(t, 0)

	if _, isErr := call(t, s.handleActivate, map[string]interface{}{"app": "com.apple.Terminal"}); isErr {
		t.Fatal("activate failed")
	}
	text, isErr := call(t, s.handleFocus, map[string]interface{}{"element": "out"})
	if isErr {
		t.Fatalf("focus failed: %s", text)
	}
	var res session.StepResult
	if err := yaml.Unmarshal([]byte(text), &res); err != nil {
		t.Fatalf("result is not valid YAML: %v", err)
	}
	if res.Override != "terminal" || len(res.Announced) != 1 || res.Announced[0] != "Terminal" {
		t.Errorf("focus result: %+v", res)
	}

	text, _ = call(t, s.handleSetValue, map[string]interface{}{"element": "out", "value": "build ok"})
	if !strings.Contains(text, "build ok") {
		t.Errorf("set_value should report the new output: %s", text)
	}

	text, _ = call(t, s.handleSpeechLog, map[string]interface{}{"limit": float64(1)})
	if !strings.Contains(text, "build ok") || strings.Contains(text, "text: Terminal") {
		t.Errorf("speech_log limit 1: %s", text)
	}
}

func TestHandleFocus_Errors(t *testing.T) {
	s := newServer(t, 0)
	if text, isErr := call(t, s.handleFocus, map[string]interface{}{"element": "missing"}); !isErr {
		t.Errorf("unknown element should be a tool error: %s", text)
	}
	if _, isErr := call(t, s.handleFocus, map[string]interface{}{}); !isErr {
		t.Error("missing element should be a tool error")
	}
	if _, isErr := call(t, s.handleSpeechLog, map[string]interface{}{"limit": float64(-1)}); !isErr {
		t.Error("negative limit should be a tool error")
	}
}

func TestHandleMode(t *testing.T) {
	s := newServer(t, 0)

	text, _ := call(t, s.handleMode, nil)
	if !strings.Contains(text, "mode: focus") {
		t.Errorf("initial mode: %s", text)
	}
	text, _ = call(t, s.handleMode, map[string]interface{}{"set": "browse"})
	if !strings.Contains(text, "changed: true") {
		t.Errorf("set browse: %s", text)
	}
	text, _ = call(t, s.handleMode, map[string]interface{}{"set": "browse"})
	if !strings.Contains(text, "changed: false") {
		t.Errorf("repeat set browse: %s", text)
	}
	if _, isErr := call(t, s.handleMode, map[string]interface{}{"set": "insert"}); !isErr {
		t.Error("unknown mode should be a tool error")
	}
}

func TestHandleReplay(t *testing.T) {
	s := newServer(t, 0)
	text, isErr := call(t, s.handleReplay, nil)
	if isErr {
		t.Fatalf("replay failed: %s", text)
	}
	var out struct {
		OK        bool `yaml:"ok"`
		Steps     int  `yaml:"steps"`
		Completed int  `yaml:"completed"`
	}
	if err := yaml.Unmarshal([]byte(text), &out); err != nil {
		t.Fatal(err)
	}
	if !out.OK || out.Steps != 2 || out.Completed != 2 {
		t.Errorf("replay result: %+v", out)
	}
	if !strings.Contains(text, "Browse Mode") {
		t.Errorf("replay should report the mode switch: %s", text)
	}
}

func TestHandleStatus_CachedUntilWrite(t *testing.T) {
	s := newServer(t, time.Hour)

	first, _ := call(t, s.handleStatus, nil)
	if !strings.Contains(first, "mode: focus") {
		t.Fatalf("status: %s", first)
	}
	// direct change behind the cache's back is not visible yet
	if _, err := s.session.SetMode(context.Background(), model.ModeBrowse); err != nil {
		t.Fatal(err)
	}
	if again, _ := call(t, s.handleStatus, nil); again != first {
		t.Errorf("status should be served from cache:\n%s\nvs\n%s", first, again)
	}

	call(t, s.handleActivate, map[string]interface{}{"app": "com.apple.Terminal"})
	after, _ := call(t, s.handleStatus, nil)
	if !strings.Contains(after, "active_app: com.apple.Terminal") || !strings.Contains(after, "mode: browse") {
		t.Errorf("status after write: %s", after)
	}
}

func TestSnapshotCache(t *testing.T) {
	reads := 0
	now := time.Unix(0, 0)
	c := NewSnapshotCache(time.Second, func() session.Snapshot {
		reads++
		return session.Snapshot{}
	})
	c.now = func() time.Time { return now }

	c.Get()
	c.Get()
	if reads != 1 {
		t.Errorf("reads within ttl: got %d, want 1", reads)
	}
	now = now.Add(2 * time.Second)
	c.Get()
	if reads != 2 {
		t.Errorf("reads after ttl: got %d, want 2", reads)
	}
	c.Invalidate()
	c.Get()
	if reads != 3 {
		t.Errorf("reads after invalidate: got %d, want 3", reads)
	}

	off := NewSnapshotCache(0, func() session.Snapshot {
		reads++
		return session.Snapshot{}
	})
	off.Get()
	off.Get()
	if reads != 5 {
		t.Errorf("disabled cache should always read: got %d, want 5", reads)
	}
}

func TestServe_UnsupportedTransport(t *testing.T) {
	s := newServer(t, 0)
	if err := s.Serve(Config{Transport: "carrier-pigeon"}); err == nil {
		t.Error("expected error for unsupported transport")
	}
}
