package replay

import (
	"sort"
	"sync"

	"github.com/samber/lo"
)

// Registry tracks every driver code discovered so far plus the subset
// that is currently rendered. Codes are added but never removed within
// a session. The visible set is always a subset of the known set;
// standings are computed from the full known set regardless of
// visibility.
type Registry struct {
	mu      sync.RWMutex
	known   map[string]struct{}
	visible map[string]struct{}
	// set once the consumer narrowed the selection; from then on new
	// drivers no longer default to visible
	narrowed bool
}

func NewRegistry() *Registry {
	return &Registry{
		known:   make(map[string]struct{}),
		visible: make(map[string]struct{}),
	}
}

// Register adds a driver code. Idempotent. A driver appearing mid
// stream is shown by default unless the selection was narrowed before.
func (r *Registry) Register(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.known[code]; ok {
		return
	}
	r.known[code] = struct{}{}
	if !r.narrowed {
		r.visible[code] = struct{}{}
	}
}

// Toggle flips a driver's visibility. Unknown codes are ignored.
func (r *Registry) Toggle(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.known[code]; !ok {
		return
	}
	if _, ok := r.visible[code]; ok {
		delete(r.visible, code)
		r.narrowed = true
	} else {
		r.visible[code] = struct{}{}
	}
}

func (r *Registry) SelectAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for code := range r.known {
		r.visible[code] = struct{}{}
	}
	r.narrowed = false
}

func (r *Registry) DeselectAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visible = make(map[string]struct{})
	r.narrowed = true
}

func (r *Registry) IsVisible(code string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.visible[code]
	return ok
}

// Known returns all discovered driver codes, sorted.
func (r *Registry) Known() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ret := lo.Keys(r.known)
	sort.Strings(ret)
	return ret
}

// Visible returns the rendered driver codes, sorted.
func (r *Registry) Visible() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ret := lo.Keys(r.visible)
	sort.Strings(ret)
	return ret
}
