package backend

import (
	"fmt"
	"sync"
)

// UnknownBackendError is returned when a backend name is looked up that was
// never registered. It is fatal to configuration construction.
type UnknownBackendError struct {
	Name string
}

func (e *UnknownBackendError) Error() string {
	return fmt.Sprintf("unknown metadata backend: %s", e.Name)
}

// registry is the process-wide backend registry. It is populated by the
// init function below and optionally by applications registering custom
// backends during startup. Mutating it concurrently with lookups is
// unsupported; the mutex only guards against accidental init-order races.
type registryState struct {
	mu     sync.RWMutex
	order  []string
	byName map[string]Backend
}

var registry = &registryState{byName: make(map[string]Backend)}

// Register inserts a backend by name. A name collision silently overwrites
// the previous registration while keeping its position in iteration order;
// the last registration wins.
func Register(b Backend) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	if _, exists := registry.byName[b.Name()]; !exists {
		registry.order = append(registry.order, b.Name())
	}
	registry.byName[b.Name()] = b
}

// Lookup returns the backend registered under name.
func Lookup(name string) (Backend, error) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	b, ok := registry.byName[name]
	if !ok {
		return nil, &UnknownBackendError{Name: name}
	}
	return b, nil
}

// Names returns the registered backend names in registration order.
func Names() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	out := make([]string, len(registry.order))
	copy(out, registry.order)
	return out
}

func init() {
	Register(&PathBackend{base: base{
		name:           "path",
		verboseName:    "Path",
		uniqueTogether: [][]string{{"_path"}},
	}})
	Register(&ViewBackend{base: base{
		name:           "view",
		verboseName:    "View",
		uniqueTogether: [][]string{{"_view"}},
	}})
	Register(&ModelInstanceBackend{base: base{
		name:           "modelinstance",
		verboseName:    "Model Instance",
		uniqueTogether: [][]string{{"_path"}, {"_content_type", "_object_id"}},
	}})
	Register(&ModelBackend{base: base{
		name:           "model",
		verboseName:    "Model",
		uniqueTogether: [][]string{{"_content_type"}},
	}})
}
