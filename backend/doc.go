// Package backend selects a texture backend by name.
//
// Backends register a factory on import and are chosen at runtime:
//
//	import _ "github.com/gogpu/texpos/backend/software"
//
//	b := backend.Default()
//	m := texpos.New(b)
//
// # Available Backends
//
//   - gogpu: textures created through a gpucontext.TextureCreator
//     (registered explicitly with gogpu.Register, it needs a creator)
//   - ebiten: one *ebiten.Image per position
//   - software: shelf-packed CPU atlas, used by tests and tools
//
// Default prefers them in that order.
package backend
