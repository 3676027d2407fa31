package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/PaulRosu01/PrivatePixel/internal/albums"
	"github.com/PaulRosu01/PrivatePixel/internal/library"
	"github.com/PaulRosu01/PrivatePixel/internal/models"
)

func sampleSnapshot() library.Snapshot {
	taken := time.Date(2024, 3, 10, 7, 0, 0, 0, time.UTC)
	return library.Snapshot{
		Records: []models.MediaRecord{
			{ID: "server-1", URI: "https://x/1.jpg", CreatedAt: taken, Kind: models.KindPhoto, Origin: models.OriginServer, Width: 4032, Height: 3024, RemoteID: "1"},
			{ID: "device-a", URI: "file:///a.mp4", CreatedAt: taken.Add(-time.Hour), Kind: models.KindVideo, Origin: models.OriginDevice, Favorite: true},
			{ID: "mock-1", URI: "https://picsum.photos/1", Kind: models.KindPhoto, Origin: models.OriginMock},
		},
		Albums: albums.Snapshot{
			Created: 3,
			Albums: []models.ManualAlbum{
				{ID: "a1", Title: "Album 1", CreatedSeq: 1, CoverMediaID: "device-a", MediaIDs: map[string]struct{}{"device-a": {}, "server-1": {}}},
				{ID: "a3", Title: "Trip", CreatedSeq: 3, MediaIDs: map[string]struct{}{}},
			},
		},
	}
}

func assertSnapshotEqual(t *testing.T, got, want library.Snapshot) {
	t.Helper()

	if len(got.Records) != len(want.Records) {
		t.Fatalf("expected %d records, got %d", len(want.Records), len(got.Records))
	}
	for i := range want.Records {
		g, w := got.Records[i], want.Records[i]
		if g.ID != w.ID || g.URI != w.URI || g.Kind != w.Kind || g.Origin != w.Origin ||
			g.Width != w.Width || g.Height != w.Height || g.Favorite != w.Favorite || g.RemoteID != w.RemoteID {
			t.Fatalf("record %d mismatch: got %+v want %+v", i, g, w)
		}
		if !g.CreatedAt.Equal(w.CreatedAt) || g.HasTimestamp() != w.HasTimestamp() {
			t.Fatalf("record %d time mismatch: got %v want %v", i, g.CreatedAt, w.CreatedAt)
		}
	}

	if got.Albums.Created != want.Albums.Created {
		t.Fatalf("expected album counter %d, got %d", want.Albums.Created, got.Albums.Created)
	}
	if len(got.Albums.Albums) != len(want.Albums.Albums) {
		t.Fatalf("expected %d albums, got %d", len(want.Albums.Albums), len(got.Albums.Albums))
	}
	for i := range want.Albums.Albums {
		g, w := got.Albums.Albums[i], want.Albums.Albums[i]
		if g.ID != w.ID || g.Title != w.Title || g.CoverMediaID != w.CoverMediaID || g.CreatedSeq != w.CreatedSeq {
			t.Fatalf("album %d mismatch: got %+v want %+v", i, g, w)
		}
		if len(g.MediaIDs) != len(w.MediaIDs) {
			t.Fatalf("album %d members mismatch: got %v want %v", i, g.MediaIDs, w.MediaIDs)
		}
		for id := range w.MediaIDs {
			if !g.Has(id) {
				t.Fatalf("album %d missing member %s", i, id)
			}
		}
	}
}

func TestMemoryLibraryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryLibraryRepository()

	if _, err := repo.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before the first save, got %v", err)
	}

	snap := sampleSnapshot()
	if err := repo.Save(ctx, snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	snap.Albums.Albums[0].MediaIDs["mock-1"] = struct{}{}

	loaded, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	assertSnapshotEqual(t, loaded, sampleSnapshot())
}

func TestBadgerLibraryRepository(t *testing.T) {
	ctx := context.Background()
	db, err := OpenBadger("")
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := NewBadgerLibraryRepository(db)

	if _, err := repo.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before the first save, got %v", err)
	}

	if err := repo.Save(ctx, sampleSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	assertSnapshotEqual(t, loaded, sampleSnapshot())

	smaller := sampleSnapshot()
	smaller.Records = smaller.Records[:1]
	smaller.Albums.Albums = smaller.Albums.Albums[1:]
	if err := repo.Save(ctx, smaller); err != nil {
		t.Fatalf("second save: %v", err)
	}
	loaded, err = repo.Load(ctx)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	assertSnapshotEqual(t, loaded, smaller)
}

func TestBadgerLibraryRepositoryOnDisk(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	db, err := OpenBadger(dir)
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	if err := NewBadgerLibraryRepository(db).Save(ctx, sampleSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db, err = OpenBadger(dir)
	if err != nil {
		t.Fatalf("reopen badger: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	loaded, err := NewBadgerLibraryRepository(db).Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	assertSnapshotEqual(t, loaded, sampleSnapshot())
}

func TestSnapshotRestoresIntoLibrary(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryLibraryRepository()

	lib := library.New()
	lib.MergeMock([]models.MediaRecord{{ID: "mock-1"}, {ID: "mock-2"}})
	first := lib.CreateAlbum("")
	lib.ToggleMembership(first.ID, "mock-1")
	lib.DeleteAlbum(first.ID)

	if err := repo.Save(ctx, lib.Snapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	restored := library.New()
	restored.Restore(loaded)
	if got := restored.CreateAlbum(""); got.Title != "Album 2" {
		t.Fatalf("expected the album counter to survive persistence, got %q", got.Title)
	}
	if len(restored.Records()) != 2 {
		t.Fatalf("expected 2 records, got %d", len(restored.Records()))
	}
}
