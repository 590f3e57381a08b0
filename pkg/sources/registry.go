package sources

import (
	"fmt"
	"sync"
)

var (
	registry = make(map[string]Factory)
	mu       sync.RWMutex
)

// Register adds a source factory to the registry under "kind.name".
func Register(kind Kind, name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	registry[fmt.Sprintf("%s.%s", kind, name)] = factory
}

// Create creates a new source instance by kind and name.
func Create(kind Kind, name string, config map[string]interface{}) (Source, error) {
	mu.RLock()
	defer mu.RUnlock()

	key := fmt.Sprintf("%s.%s", kind, name)
	factory, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("%w: unknown source %s", ErrInvalidConfig, key)
	}

	return factory(config)
}

// List returns all registered source keys.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
