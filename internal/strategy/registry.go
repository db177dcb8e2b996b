// Package strategy defines the signal-generation contract and a registry of strategy factories.
package strategy

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/newthinker/tradesim/internal/core"
)

// Factory creates a fresh, uninitialized strategy
type Factory func() Strategy

// Info describes a registered strategy
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Registry maps strategy names to factories
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	logger    *zap.Logger
}

// NewRegistry creates an empty strategy registry
func NewRegistry(logger ...*zap.Logger) *Registry {
	var l *zap.Logger
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	} else {
		l = zap.NewNop()
	}
	return &Registry{
		factories: make(map[string]Factory),
		logger:    l,
	}
}

// Register adds a factory under the name of the strategy it builds
func (r *Registry) Register(f Factory) {
	name := f().Name()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		r.logger.Warn("strategy replaced", zap.String("strategy", name))
	}
	r.factories[name] = f
}

// Create returns a fresh instance of the named strategy
func (r *Registry) Create(name string) (Strategy, error) {
	f, err := r.Factory(name)
	if err != nil {
		return nil, err
	}
	return f(), nil
}

// Factory returns the factory registered under name
func (r *Registry) Factory(name string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	if !ok {
		return nil, core.WrapError(core.ErrUnknownStrategy, fmt.Errorf("%q", name))
	}
	return f, nil
}

// Build creates the named strategy and initializes it with params
func (r *Registry) Build(name string, params map[string]any) (Strategy, error) {
	s, err := r.Create(name)
	if err != nil {
		return nil, err
	}
	if err := s.Init(Config{Params: params}); err != nil {
		return nil, err
	}
	return s, nil
}

// Names returns the registered strategy names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List describes every registered strategy with its default parameters
func (r *Registry) List() []Info {
	names := r.Names()
	infos := make([]Info, 0, len(names))
	for _, name := range names {
		s, err := r.Create(name)
		if err != nil {
			continue
		}
		infos = append(infos, Info{Name: name, Description: s.Description()})
	}
	return infos
}
