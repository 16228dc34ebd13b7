package core

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry   = make(map[string]Schema)
	registryMu sync.RWMutex
)

// Register adds a spreadsheet schema to the registry.
// Panics if a schema with the same name is already registered.
func Register(s Schema) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[s.Name]; exists {
		panic(fmt.Sprintf("schema already registered: %s", s.Name))
	}

	registry[s.Name] = s
}

// Lookup returns the callback for a whitespace-stripped header.
// Headers are matched case-sensitively across all registered schemas;
// when two schemas define the same header, the one whose name sorts last wins.
func Lookup(header string) (FieldFunc, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	var (
		fn    FieldFunc
		found bool
		owner string
	)
	for name, s := range registry {
		if f, ok := s.Fields[header]; ok && (!found || name > owner) {
			fn, found, owner = f, true, name
		}
	}
	return fn, found
}

// Schemas returns all registered schemas sorted by name.
func Schemas() []Schema {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Schema, 0, len(registry))
	for _, s := range registry {
		result = append(result, s)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result
}

// SchemaCount returns the number of registered schemas.
func SchemaCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered schemas.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]Schema)
}
