package input

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

var ErrUnknownProvider = errors.New("input: unknown provider")

// Constructor builds a provider instance. key is the configured instance
// name and args the provider specific argument string.
type Constructor func(key, args string, logger *slog.Logger) (Provider, error)

// Factory maps provider ids to constructors.
type Factory struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
}

func NewFactory() *Factory {
	return &Factory{ctors: map[string]Constructor{}}
}

func (f *Factory) Register(id string, ctor Constructor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ctors[id] = ctor
}

func (f *Factory) Has(id string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.ctors[id]
	return ok
}

func (f *Factory) IDs() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	ids := make([]string, 0, len(f.ctors))
	for id := range f.ctors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (f *Factory) New(id, key, args string, logger *slog.Logger) (Provider, error) {
	f.mu.RLock()
	ctor, ok := f.ctors[id]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%q: %w", id, ErrUnknownProvider)
	}
	if logger == nil {
		logger = slog.Default()
	}
	p, err := ctor(key, args, logger.With("provider", id, "key", key))
	if err != nil {
		return nil, fmt.Errorf("create provider %q (%s): %w", key, id, err)
	}
	return p, nil
}
