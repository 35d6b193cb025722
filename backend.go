package texpos

// Backend is the narrow view of the rendering backend texpos depends on.
//
// Upload copies a surface into the backend's texture storage and returns
// its current atlas position. OnReset registers a callback the backend
// invokes after it has invalidated every previously uploaded texture.
//
// Backends must not hold internal locks while invoking reset callbacks:
// the callback re-enters Upload for every retained surface.
type Backend interface {
	Upload(s *Surface) (Texpos, error)
	OnReset(fn func())
}

// Updater is implemented by backends that can overwrite the pixels of
// an uploaded texture in place. Update must keep pos valid and unchanged;
// it fails when pos is unknown or s does not match the texture's size.
type Updater interface {
	Update(pos Texpos, s *Surface) error
}

// Decoder turns an image path into a surface.
type Decoder interface {
	Decode(path string) (*Surface, error)
}
