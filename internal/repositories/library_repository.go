package repositories

import (
	"context"
	"sort"
	"sync"

	"github.com/PaulRosu01/PrivatePixel/internal/albums"
	"github.com/PaulRosu01/PrivatePixel/internal/library"
	"github.com/PaulRosu01/PrivatePixel/internal/models"
)

// LibraryRepository persists the collection, manual albums and the album
// counter. Load returns ErrNotFound when nothing has been saved.
type LibraryRepository interface {
	Load(ctx context.Context) (library.Snapshot, error)
	Save(ctx context.Context, snap library.Snapshot) error
}

// MemoryLibraryRepository keeps the last saved snapshot in memory.
type MemoryLibraryRepository struct {
	mu    sync.Mutex
	snap  library.Snapshot
	saved bool
}

// NewMemoryLibraryRepository returns an empty in-memory repository.
func NewMemoryLibraryRepository() *MemoryLibraryRepository {
	return &MemoryLibraryRepository{}
}

func (r *MemoryLibraryRepository) Load(context.Context) (library.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.saved {
		return library.Snapshot{}, ErrNotFound
	}
	return cloneSnapshot(r.snap), nil
}

func (r *MemoryLibraryRepository) Save(_ context.Context, snap library.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap = cloneSnapshot(snap)
	r.saved = true
	return nil
}

func cloneSnapshot(snap library.Snapshot) library.Snapshot {
	out := library.Snapshot{
		Records: append([]models.MediaRecord(nil), snap.Records...),
		Albums:  albums.Snapshot{Created: snap.Albums.Created},
	}
	for _, a := range snap.Albums.Albums {
		out.Albums.Albums = append(out.Albums.Albums, a.Clone())
	}
	return out
}

// sortedMembers lists album members in a stable order for storage.
func sortedMembers(a models.ManualAlbum) []string {
	ids := make([]string, 0, len(a.MediaIDs))
	for id := range a.MediaIDs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
