package texpos

import "errors"

// Failure kinds reported to the diagnostic logger. Callers of the
// hot-path API never receive them directly; they observe sentinels.
var (
	// ErrDecode is reported when an image file is missing or malformed.
	ErrDecode = errors.New("texpos: decode failed")

	// ErrUpload is reported when the backend rejects pixel data.
	ErrUpload = errors.New("texpos: upload failed")

	// ErrInvalidHandle is returned for NoHandle or a handle that was never allocated.
	ErrInvalidHandle = errors.New("texpos: invalid handle")

	// ErrUnknownAsset is returned when no built-in asset has the requested name.
	ErrUnknownAsset = errors.New("texpos: unknown asset")

	// ErrIndexOutOfRange is returned when a tile index exceeds the asset's tile count.
	ErrIndexOutOfRange = errors.New("texpos: asset index out of range")

	// ErrNotInitialized is reported when the manager is used outside its active period.
	ErrNotInitialized = errors.New("texpos: not initialized")

	// ErrNilSurface is reported when a nil surface is passed for upload.
	ErrNilSurface = errors.New("texpos: surface is nil")

	// ErrTableClosed is reported when a closed handle table is asked to allocate.
	ErrTableClosed = errors.New("texpos: handle table is closed")
)
