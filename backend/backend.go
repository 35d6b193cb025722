package backend

import "errors"

// Backend names.
const (
	// NameGoGPU is the gpucontext-backed GPU backend.
	NameGoGPU = "gogpu"

	// NameEbiten is the ebiten image backend.
	NameEbiten = "ebiten"

	// NameSoftware is the CPU atlas backend.
	NameSoftware = "software"
)

// ErrBackendNotAvailable is returned when a requested backend is not registered.
var ErrBackendNotAvailable = errors.New("backend: not available")
