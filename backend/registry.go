package backend

import (
	"fmt"
	"slices"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/texpos"
)

// Factory creates a new backend instance.
type Factory func() texpos.Backend

var backends = gpucontext.NewRegistry[texpos.Backend](
	gpucontext.WithPriority(NameGoGPU, NameEbiten, NameSoftware),
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it is replaced.
func Register(name string, factory Factory) {
	backends.Register(name, factory)
}

// Unregister removes a backend from the registry.
func Unregister(name string) {
	backends.Unregister(name)
}

// Available returns the registered backend names, sorted.
func Available() []string {
	names := backends.Available()
	slices.Sort(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	return backends.Has(name)
}

// Get returns a new backend instance by name, or nil if the backend is
// not registered.
func Get(name string) texpos.Backend {
	return backends.Get(name)
}

// Default returns a new instance of the highest-priority registered
// backend (gogpu > ebiten > software), or nil if none is registered.
func Default() texpos.Backend {
	return backends.Best()
}

// DefaultName returns the name Default would pick.
func DefaultName() string {
	return backends.BestName()
}

// Open returns a backend by name, or the default backend for an empty name.
func Open(name string) (texpos.Backend, error) {
	if name == "" {
		if b := Default(); b != nil {
			return b, nil
		}
		return nil, ErrBackendNotAvailable
	}
	if b := Get(name); b != nil {
		return b, nil
	}
	return nil, fmt.Errorf("%w: %q (registered: %v)", ErrBackendNotAvailable, name, Available())
}
