package texpos

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// ResetCoordinator restores every handle's position after the backend
// invalidates its textures. It is the only component that calls
// HandleTable.ReuploadAll.
type ResetCoordinator struct {
	table    *HandleTable
	log      logSource
	once     sync.Once
	attached atomic.Bool
	resets   atomic.Uint64
	failures atomic.Uint64
}

// NewResetCoordinator creates a coordinator for table.
// A nil logger selects the package logger.
func NewResetCoordinator(table *HandleTable, logger *slog.Logger) *ResetCoordinator {
	return &ResetCoordinator{
		table: table,
		log:   logSource{l: logger},
	}
}

// Attach registers the coordinator's reset callback on b. Only the first
// call registers; later calls merely re-enable a detached coordinator.
func (c *ResetCoordinator) Attach(b Backend) {
	c.once.Do(func() {
		b.OnReset(c.HandleReset)
	})
	c.attached.Store(true)
}

// Detach makes the coordinator ignore further resets. Backends offer no
// way to unregister, so the callback stays installed but inert.
func (c *ResetCoordinator) Detach() {
	c.attached.Store(false)
}

// Attached reports whether resets are currently being handled.
func (c *ResetCoordinator) Attached() bool {
	return c.attached.Load()
}

// HandleReset is the callback installed on the backend. It re-uploads
// every retained surface; handles keep their values and partial failures
// are reported without stopping the recovery.
func (c *ResetCoordinator) HandleReset() {
	if !c.attached.Load() {
		return
	}
	n := c.resets.Add(1)
	failed := c.table.ReuploadAll()
	c.failures.Add(uint64(failed))

	l := c.log.logger()
	if failed > 0 {
		l.Warn("texpos: textures restored with failures",
			"reset", n, "textures", c.table.Len(), "failed", failed)
		return
	}
	l.Info("texpos: textures restored",
		"reset", n, "textures", c.table.Len())
}

// Resets returns the number of resets handled so far.
func (c *ResetCoordinator) Resets() uint64 {
	return c.resets.Load()
}

// Failures returns the total number of entries that failed to re-upload.
func (c *ResetCoordinator) Failures() uint64 {
	return c.failures.Load()
}
