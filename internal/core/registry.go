package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// KindInfo describes an import kind for listings.
type KindInfo struct {
	Key         string   `json:"key"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Fields      []string `json:"fields"` // Accepted row keys, bookkeeping included
}

// ImportKind is a registered import target (partners, products).
type ImportKind struct {
	Info KindInfo

	// Prepare validates one row. See Importer.PreparePartner.
	Prepare func(ctx context.Context, im *Importer, row Row) (Outcome, error)

	// Create persists prepared values and runs post-creation steps.
	Create func(ctx context.Context, im *Importer, row, vals Row) (Created, error)
}

var (
	registry   = make(map[string]ImportKind)
	registryMu sync.RWMutex
)

// Register adds an import kind to the registry.
// Panics if a kind with the same key is already registered.
func Register(kind ImportKind) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[kind.Info.Key]; exists {
		panic(fmt.Sprintf("import kind already registered: %s", kind.Info.Key))
	}
	registry[kind.Info.Key] = kind
}

// Get returns an import kind by key.
func Get(key string) (ImportKind, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	kind, ok := registry[key]
	return kind, ok
}

// All returns all registered kinds sorted by key.
func All() []ImportKind {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]ImportKind, 0, len(registry))
	for _, kind := range registry {
		result = append(result, kind)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Info.Key < result[j].Info.Key
	})
	return result
}

// Clear removes all registered kinds.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]ImportKind)
}
