// Package scripted provides an in-memory accessibility host driven by a YAML
// file: a set of application trees plus a list of steps (activations, focus
// moves, value changes) to play against the coordinator.
package scripted

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/mj1618/desktop-focus/internal/model"
	"github.com/mj1618/desktop-focus/internal/platform"
	"gopkg.in/yaml.v3"
)

// ErrUnknownElement is returned when a step names an element not in any tree.
var ErrUnknownElement = errors.New("unknown element")

// Faults lists elements that misbehave on purpose.
type Faults struct {
	RoleUnavailable []string `yaml:"role_unavailable,omitempty"`
	SubscribeFails  []string `yaml:"subscribe_fails,omitempty"`
}

// ValueStep changes an element's value.
type ValueStep struct {
	Element string `yaml:"element"`
	Text    string `yaml:"text"`
}

// Step is one scripted host event. Exactly one field is set.
type Step struct {
	Activate model.AppID `yaml:"activate,omitempty"`
	Focus    string      `yaml:"focus,omitempty"`
	Value    *ValueStep  `yaml:"value,omitempty"`
}

func (s Step) validate() error {
	n := 0
	if s.Activate != "" {
		n++
	}
	if s.Focus != "" {
		n++
	}
	if s.Value != nil {
		n++
	}
	if n != 1 {
		return fmt.Errorf("step must set exactly one of activate, focus, value")
	}
	return nil
}

// File is the on-disk layout.
type File struct {
	Apps   []model.App `yaml:"apps"`
	Faults Faults      `yaml:"faults,omitempty"`
	Steps  []Step      `yaml:"steps,omitempty"`
}

// Tree holds the live elements of every scripted application.
type Tree struct {
	apps     []model.App
	elements map[string]*Element
	steps    []Step
}

// Load reads a scripted tree file.
func Load(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load scripted tree: %w", err)
	}
	return Parse(data)
}

// Parse decodes a scripted tree from YAML.
func Parse(data []byte) (*Tree, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse scripted tree: %w", err)
	}
	return New(f)
}

// New builds a tree from a decoded file.
func New(f File) (*Tree, error) {
	t := &Tree{
		apps:     f.Apps,
		elements: make(map[string]*Element),
	}
	for _, app := range f.Apps {
		if app.ID == "" {
			return nil, fmt.Errorf("app without id")
		}
		for _, flat := range model.FlattenElements(app.Elements) {
			if flat.ID == "" {
				return nil, fmt.Errorf("element without id in %s at %s", app.ID, flat.Path)
			}
			if _, dup := t.elements[flat.ID]; dup {
				return nil, fmt.Errorf("duplicate element id %q", flat.ID)
			}
			el := NewElement(flat.ID, flat.Role, flat.Description)
			el.app = app.ID
			el.value = flat.Value
			t.elements[flat.ID] = el
		}
	}
	for _, id := range f.Faults.RoleUnavailable {
		el, err := t.Element(id)
		if err != nil {
			return nil, fmt.Errorf("faults.role_unavailable: %w", err)
		}
		el.SetRoleUnavailable(true)
	}
	for _, id := range f.Faults.SubscribeFails {
		el, err := t.Element(id)
		if err != nil {
			return nil, fmt.Errorf("faults.subscribe_fails: %w", err)
		}
		el.SetSubscribeFails(true)
	}
	for i, s := range f.Steps {
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		if s.Focus != "" {
			if _, err := t.Element(s.Focus); err != nil {
				return nil, fmt.Errorf("step %d: %w", i+1, err)
			}
		}
		if s.Value != nil {
			if _, err := t.Element(s.Value.Element); err != nil {
				return nil, fmt.Errorf("step %d: %w", i+1, err)
			}
		}
	}
	t.steps = f.Steps
	return t, nil
}

// Element looks up an element by ID.
func (t *Tree) Element(id string) (*Element, error) {
	el, ok := t.elements[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownElement, id)
	}
	return el, nil
}

// Apps returns the scripted applications.
func (t *Tree) Apps() []model.App {
	return t.apps
}

// Steps returns the scripted steps.
func (t *Tree) Steps() []Step {
	return t.steps
}

// Stats sums subscription counters over every element.
func (t *Tree) Stats() SubscriptionStats {
	var total SubscriptionStats
	for _, el := range t.elements {
		s := el.Stats()
		total.Created += s.Created
		total.Invalidated += s.Invalidated
		total.Live += s.Live
	}
	return total
}

// LiveElements returns the IDs of elements holding at least one subscription.
func (t *Tree) LiveElements() []string {
	var ids []string
	for id, el := range t.elements {
		if el.Stats().Live > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Play delivers one step to sink.
func (t *Tree) Play(ctx context.Context, s Step, sink platform.EventSink) error {
	switch {
	case s.Activate != "":
		sink.AppActivated(ctx, s.Activate)
	case s.Focus != "":
		el, err := t.Element(s.Focus)
		if err != nil {
			return err
		}
		sink.FocusChanged(ctx, el.ID(), el)
	case s.Value != nil:
		el, err := t.Element(s.Value.Element)
		if err != nil {
			return err
		}
		el.SetValue(s.Value.Text)
	default:
		return fmt.Errorf("empty step")
	}
	return nil
}

// Watch plays every scripted step in order. It implements platform.EventSource.
func (t *Tree) Watch(ctx context.Context, sink platform.EventSink) error {
	for i, s := range t.steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := t.Play(ctx, s, sink); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

// NewProvider wraps the tree as a platform provider.
func NewProvider(t *Tree, announcer platform.Announcer) *platform.Provider {
	return &platform.Provider{Events: t, Announcer: announcer}
}
