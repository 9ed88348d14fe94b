package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStatus_DefaultBindings(t *testing.T) {
	out, err := run(t, "status", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	var st Status
	if err := json.Unmarshal([]byte(out), &st); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out)
	}
	if st.Host {
		t.Error("no native host should be linked")
	}
	if st.InitialMode.String() != "focus" {
		t.Errorf("initial mode: got %v, want focus", st.InitialMode)
	}
	if len(st.Kinds) != 4 || len(st.Overrides) == 0 {
		t.Errorf("kinds=%v overrides=%v", st.Kinds, st.Overrides)
	}
}

func TestStatus_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "overrides:\n  - app: com.example.Shell\n    kind: terminal\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, "status", "--config", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "com.example.Shell") || strings.Contains(out, "com.apple.Safari") {
		t.Errorf("config overrides should replace defaults:\n%s", out)
	}
}
