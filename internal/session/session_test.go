package session

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/mj1618/desktop-focus/internal/config"
	"github.com/mj1618/desktop-focus/internal/model"
	"github.com/mj1618/desktop-focus/internal/platform/scripted"
	"github.com/rs/zerolog"
)

func newSession(t *testing.T) *Session {
	t.Helper()
	tree, err := scripted.Load("testdata/mixed.yaml")
	if err != nil {
		t.Fatalf("load tree: %v", err)
	}
	s, err := New(config.Default(), tree, zerolog.Nop())
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

func TestReplay_Transcript(t *testing.T) {
	s := newSession(t)
	s.Start(context.Background())

	results, err := s.Replay(context.Background())
	if err != nil {
		t.Fatalf("replay: %v", err)
	}

	want := []struct {
		action    string
		override  string
		announced []string
		mode      model.Mode
		live      []string
	}{
		{"activate", "browser", nil, model.ModeFocus, nil},
		{"focus", "browser", []string{"Browse Mode", "Example Domain, web content"}, model.ModeBrowse, nil},
		{"focus", "browser", []string{"Focus Mode", "Search, text field"}, model.ModeFocus, nil},
		{"activate", "terminal", nil, model.ModeFocus, nil},
		{"focus", "terminal", nil, model.ModeFocus, nil},
		{"focus", "terminal", []string{"Terminal"}, model.ModeFocus, []string{"out"}},
		{"value", "", []string{"$ ls"}, model.ModeFocus, []string{"out"}},
		{"value", "", []string{"README.md"}, model.ModeFocus, []string{"out"}},
		{"activate", "", nil, model.ModeFocus, nil},
		{"value", "", nil, model.ModeFocus, nil},
		{"focus", "", []string{"Save, button"}, model.ModeFocus, nil},
	}
	if len(results) != len(want) {
		t.Fatalf("results: got %d, want %d", len(results), len(want))
	}
	for i, w := range want {
		r := results[i]
		if !r.OK {
			t.Errorf("step %d failed: %s", r.Index, r.Error)
		}
		if r.Index != i+1 || r.Action != w.action {
			t.Errorf("step %d: got %d %s, want %s", i+1, r.Index, r.Action, w.action)
		}
		if r.Override != w.override {
			t.Errorf("step %d override: got %q, want %q", r.Index, r.Override, w.override)
		}
		if !reflect.DeepEqual(r.Announced, w.announced) {
			t.Errorf("step %d announced: got %q, want %q", r.Index, r.Announced, w.announced)
		}
		if r.Mode != w.mode {
			t.Errorf("step %d mode: got %v, want %v", r.Index, r.Mode, w.mode)
		}
		if !reflect.DeepEqual(r.Live, w.live) {
			t.Errorf("step %d live: got %v, want %v", r.Index, r.Live, w.live)
		}
	}
	if o := results[4].Outcome; o == nil || !o.Consumed {
		t.Errorf("scroll area focus should be consumed: %+v", o)
	}

	snap := s.Snapshot()
	if snap.ActiveApp != "com.example.Notes" {
		t.Errorf("active app: got %q", snap.ActiveApp)
	}
	d := snap.Dispatcher
	if d.Applied != 5 || d.Consumed != 2 || d.Defaulted != 3 || d.Activations != 3 || d.Stale != 0 {
		t.Errorf("dispatcher stats: %+v", d)
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	sub := s.Tree().Stats()
	if sub.Created != 1 || sub.Invalidated != 1 || sub.Live != 0 {
		t.Errorf("subscriptions after stop: %+v", sub)
	}
	if err := s.Stop(); err != nil {
		t.Errorf("second stop: %v", err)
	}
}

func TestSnapshot_ReportsTerminalObserver(t *testing.T) {
	s := newSession(t)
	ctx := context.Background()
	s.Start(ctx)
	defer s.Stop()

	s.Play(ctx, scripted.Step{Activate: "com.apple.Terminal"})
	s.Play(ctx, scripted.Step{Focus: "out"})

	snap := s.Snapshot()
	var found bool
	for _, o := range snap.Observers {
		if o.App != "com.apple.Terminal" {
			continue
		}
		found = true
		if o.Element != "out" || o.Tracked == "" || o.Stats.Live != 1 {
			t.Errorf("terminal observer: %+v", o)
		}
	}
	if !found {
		t.Error("terminal observer missing from snapshot")
	}
	if !reflect.DeepEqual(snap.LiveElements, []string{"out"}) {
		t.Errorf("live elements: %v", snap.LiveElements)
	}
}

func TestPlay_Errors(t *testing.T) {
	s := newSession(t)
	ctx := context.Background()

	res := s.Play(ctx, scripted.Step{Focus: "page"})
	if res.OK || res.Error != ErrNotStarted.Error() {
		t.Errorf("play before start: %+v", res)
	}

	s.Start(ctx)
	defer s.Stop()
	res = s.Play(ctx, scripted.Step{Focus: "nope"})
	if res.OK || res.Error == "" {
		t.Errorf("unknown element should fail: %+v", res)
	}
}

func TestSetModeAndSpeech(t *testing.T) {
	s := newSession(t)
	ctx := context.Background()
	if _, err := s.SetMode(ctx, model.ModeBrowse); !errors.Is(err, ErrNotStarted) {
		t.Errorf("SetMode before start: got %v, want ErrNotStarted", err)
	}

	s.Start(ctx)
	defer s.Stop()
	changed, err := s.SetMode(ctx, model.ModeBrowse)
	if err != nil || !changed {
		t.Fatalf("mode should change: changed=%v err=%v", changed, err)
	}
	if changed, _ := s.SetMode(ctx, model.ModeBrowse); changed {
		t.Error("same mode should be a no-op")
	}
	entries := s.Speech(10)
	if len(entries) != 1 || entries[0].Text != "Browse Mode" {
		t.Errorf("speech: %+v", entries)
	}
}

func TestPlay_AnnouncedNotLimitedByHistory(t *testing.T) {
	tree, err := scripted.Load("testdata/mixed.yaml")
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.SpeechHistory = 1
	s, err := New(cfg, tree, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	s.Start(ctx)
	defer s.Stop()

	s.Play(ctx, scripted.Step{Activate: "com.apple.Safari"})
	res := s.Play(ctx, scripted.Step{Focus: "page"})
	want := []string{"Browse Mode", "Example Domain, web content"}
	if !reflect.DeepEqual(res.Announced, want) {
		t.Errorf("announced: got %q, want %q", res.Announced, want)
	}
	if got := s.Speech(0); len(got) != 1 || got[0].Text != want[1] {
		t.Errorf("history should keep only the last entry: %+v", got)
	}
	if snap := s.Snapshot(); snap.Spoken != 2 {
		t.Errorf("spoken: got %d, want 2", snap.Spoken)
	}
}

func TestReplay_StepsNotInterleaved(t *testing.T) {
	s := newSession(t)
	ctx := context.Background()
	s.Start(ctx)
	defer s.Stop()

	var wg sync.WaitGroup
	var results []StepResult
	wg.Add(2)
	go func() {
		defer wg.Done()
		results, _ = s.Replay(ctx)
	}()
	go func() {
		defer wg.Done()
		s.Play(ctx, scripted.Step{Activate: "com.example.Notes"})
	}()
	wg.Wait()

	if len(results) != len(s.Tree().Steps()) {
		t.Fatalf("results: got %d", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Index != results[i-1].Index+1 {
			t.Errorf("replay steps interleaved: %d then %d", results[i-1].Index, results[i].Index)
		}
	}
}

func TestStepFromArgs(t *testing.T) {
	tests := []struct {
		action, target, text string
		want                 scripted.Step
		ok                   bool
	}{
		{"activate", "com.apple.Safari", "", scripted.Step{Activate: "com.apple.Safari"}, true},
		{"focus", "page", "", scripted.Step{Focus: "page"}, true},
		{"value", "out", "hi", scripted.Step{Value: &scripted.ValueStep{Element: "out", Text: "hi"}}, true},
		{"focus", "", "", scripted.Step{}, false},
		{"click", "x", "", scripted.Step{}, false},
	}
	for _, tt := range tests {
		got, err := StepFromArgs(tt.action, tt.target, tt.text)
		if tt.ok != (err == nil) {
			t.Errorf("StepFromArgs(%s, %s): err = %v", tt.action, tt.target, err)
			continue
		}
		if tt.ok && !reflect.DeepEqual(got, tt.want) {
			t.Errorf("StepFromArgs(%s, %s) = %+v, want %+v", tt.action, tt.target, got, tt.want)
		}
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	tree, err := scripted.New(scripted.File{})
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.Overrides = append(cfg.Overrides, config.OverrideSpec{App: "x", Kind: "spreadsheet"})
	if _, err := New(cfg, tree, zerolog.Nop()); err == nil {
		t.Error("expected validation error")
	}
}
