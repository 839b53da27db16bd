package filestore

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"fundscope/internal/config"
	"fundscope/internal/port"
)

// ProviderFactory constructs a FileStore from configuration.
type ProviderFactory func(cfg *config.Config) (port.FileStore, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]ProviderFactory)
)

// RegisterProvider makes a file store implementation available by name.
// Implementations call this from their init function.
func RegisterProvider(name string, factory ProviderFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(name)] = factory
}

// NewFileStore builds the file store selected by cfg.FileStore.Provider.
func NewFileStore(cfg *config.Config) (port.FileStore, error) {
	registryMu.RLock()
	factory, ok := registry[strings.ToLower(cfg.FileStore.Provider)]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown file store provider %q (available: %s)",
			cfg.FileStore.Provider, strings.Join(providerNames(), ", "))
	}
	return factory(cfg)
}

func providerNames() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
