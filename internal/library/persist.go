package library

import (
	"context"
	"sync"
)

// SnapshotSaver stores a library snapshot.
type SnapshotSaver interface {
	Save(ctx context.Context, snap Snapshot) error
}

// Persister writes a library through a SnapshotSaver one save at a time. The
// snapshot is taken under the same lock as the save, so a save never commits
// state older than the one before it.
type Persister struct {
	lib   *Library
	saver SnapshotSaver

	mu sync.Mutex
}

// NewPersister returns a Persister for lib. A nil saver makes Persist a no-op.
func NewPersister(lib *Library, saver SnapshotSaver) *Persister {
	return &Persister{lib: lib, saver: saver}
}

// Persist saves the current state of the library.
func (p *Persister) Persist(ctx context.Context) error {
	if p == nil || p.saver == nil || p.lib == nil {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saver.Save(ctx, p.lib.Snapshot())
}
