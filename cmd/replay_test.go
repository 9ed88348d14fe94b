package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

const replayScript = `
apps:
  - id: com.apple.Safari
    elements:
      - id: page
        role: web
        description: News
        children:
          - id: q
            role: input
            description: Search
  - id: com.apple.Terminal
    elements:
      - id: out
        role: textarea
faults:
  role_unavailable: [q]
steps:
  - activate: com.apple.Safari
  - focus: page
  - focus: q
  - activate: com.apple.Terminal
  - focus: out
  - value: {element: out, text: "make: done"}
`

func writeScript(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.yaml")
	if err := os.WriteFile(path, []byte(replayScript), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReplay_Transcript(t *testing.T) {
	out, err := run(t, "replay", writeScript(t))
	if err != nil {
		t.Fatal(err)
	}
	var tr Transcript
	if err := yaml.Unmarshal([]byte(out), &tr); err != nil {
		t.Fatalf("output is not valid YAML: %v\n%s", err, out)
	}
	if len(tr.Steps) != 6 {
		t.Fatalf("steps: got %d, want 6", len(tr.Steps))
	}

	var texts []string
	for _, e := range tr.Announcements {
		texts = append(texts, e.Text)
	}
	want := []string{"Browse Mode", "News, web content", "Search", "Terminal", "make: done"}
	if strings.Join(texts, "|") != strings.Join(want, "|") {
		t.Errorf("announcements: got %q, want %q", texts, want)
	}

	// unreadable role: mode stays Browse and only the description is spoken
	if got := tr.Steps[2]; got.Mode.String() != "browse" || len(got.Announced) != 1 || got.Announced[0] != "Search" {
		t.Errorf("role-unavailable step: %+v", got)
	}
	if tr.Final.Subscriptions.Live != 0 || tr.Final.Subscriptions.Created != 1 {
		t.Errorf("final subscriptions: %+v", tr.Final.Subscriptions)
	}
}

func TestReplay_Stream(t *testing.T) {
	out, err := run(t, "replay", writeScript(t), "--stream")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	var types []string
	for _, line := range lines {
		var ev struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("line is not valid JSON: %v\n%s", err, line)
		}
		types = append(types, ev.Type)
	}
	want := "announce,announce,announce,announce,announce,done"
	if strings.Join(types, ",") != want {
		t.Errorf("event types: got %s, want %s", strings.Join(types, ","), want)
	}
}

func TestReplay_MissingScript(t *testing.T) {
	if _, err := run(t, "replay", filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Error("expected error for missing script")
	}
}

func TestServe_RequiresScript(t *testing.T) {
	_, err := run(t, "serve")
	if err == nil || !strings.Contains(err.Error(), "--script is required") {
		t.Errorf("expected script error, got %v", err)
	}
}
