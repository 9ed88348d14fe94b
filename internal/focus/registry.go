package focus

import (
	"sort"
	"sync"

	"github.com/mj1618/desktop-focus/internal/model"
)

// Registry maps application identities to their override and tracks the
// override of the frontmost application.
type Registry struct {
	mu        sync.RWMutex
	overrides map[model.AppID]Override
	active    Override
	activeApp model.AppID
}

func NewRegistry() *Registry {
	return &Registry{overrides: make(map[model.AppID]Override)}
}

// Register inserts o under o.AppID(), replacing any previous override for
// that application. If the replaced override was active, o becomes active.
// Register overrides before the dispatcher runs; once it runs, the active
// pointer belongs to its goroutine.
func (r *Registry) Register(o Override) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app := o.AppID()
	r.overrides[app] = o
	if r.activeApp == app {
		r.active = o
	}
}

// Activate records app as frontmost and returns its override. Unknown
// applications clear the active override and report false.
func (r *Registry) Activate(app model.AppID) (Override, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activeApp = app
	o, ok := r.overrides[app]
	if !ok {
		r.active = nil
		return nil, false
	}
	r.active = o
	return o, true
}

// Active returns the frontmost application and its override, if any.
func (r *Registry) Active() (Override, model.AppID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active, r.activeApp, r.active != nil
}

// Lookup returns the override registered for app.
func (r *Registry) Lookup(app model.AppID) (Override, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.overrides[app]
	return o, ok
}

// All returns every registered override ordered by application.
func (r *Registry) All() []Override {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Override, 0, len(r.overrides))
	for _, o := range r.overrides {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppID() < out[j].AppID() })
	return out
}

// Apps returns the registered application identities, sorted.
func (r *Registry) Apps() []model.AppID {
	all := r.All()
	apps := make([]model.AppID, len(all))
	for i, o := range all {
		apps[i] = o.AppID()
	}
	return apps
}
