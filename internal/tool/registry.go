package tool

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Tool is an external capability: one structured input string in, free text
// out. The dispatcher imposes no schema on the output beyond "text or
// failure"; parsing it is the caller's risk.
type Tool interface {
	Name() string
	Description() string
	Invoke(ctx context.Context, input string) (string, error)
}

type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{tools: map[string]Tool{}}
}

func (r *Registry) Register(t Tool) {
	if t == nil {
		return
	}
	key := strings.ToLower(strings.TrimSpace(t.Name()))
	if key == "" {
		return
	}
	r.mu.Lock()
	r.tools[key] = t
	r.mu.Unlock()
}

func (r *Registry) Find(name string) (Tool, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	r.mu.RLock()
	t, ok := r.tools[key]
	r.mu.RUnlock()
	return t, ok
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}
