package albums

import (
	"testing"

	"github.com/PaulRosu01/PrivatePixel/internal/models"
)

func TestDeriveSmartAlbumsOmitsEmpty(t *testing.T) {
	records := []models.MediaRecord{
		{ID: "mock-1", Origin: models.OriginMock, Kind: models.KindPhoto},
		{ID: "device-1", Origin: models.OriginDevice, Kind: models.KindPhoto, Favorite: true},
	}

	got := DeriveSmartAlbums(records)
	want := []models.SmartAlbum{
		{ID: models.SmartAll, Title: "All", Count: 2},
		{ID: models.SmartFavorites, Title: "Favorites", Count: 1},
		{ID: models.SmartDevice, Title: "From device", Count: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("unexpected smart albums: %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("album %d: got %+v want %+v", i, got[i], want[i])
		}
	}

	if got := DeriveSmartAlbums(nil); len(got) != 0 {
		t.Fatalf("expected no smart albums for empty collection, got %+v", got)
	}
}

func TestSmartPredicate(t *testing.T) {
	match, ok := SmartPredicate(models.SmartVideos)
	if !ok {
		t.Fatal("expected videos predicate")
	}
	if !match(models.MediaRecord{Kind: models.KindVideo}) || match(models.MediaRecord{Kind: models.KindPhoto}) {
		t.Fatal("videos predicate mismatch")
	}
	if _, ok := SmartPredicate("nope"); ok {
		t.Fatal("expected unknown id to be rejected")
	}
}

func TestResolveCover(t *testing.T) {
	records := []models.MediaRecord{{ID: "m1"}, {ID: "m2"}, {ID: "m3"}}
	album := models.ManualAlbum{ID: "a", MediaIDs: map[string]struct{}{"m3": {}, "m2": {}}}

	cover, ok := ResolveCover(album, records)
	if !ok || cover.ID != "m2" {
		t.Fatalf("expected first member in collection order, got %+v %v", cover, ok)
	}

	album.CoverMediaID = "m3"
	if cover, _ := ResolveCover(album, records); cover.ID != "m3" {
		t.Fatalf("expected explicit cover, got %s", cover.ID)
	}

	album.CoverMediaID = "gone"
	album.MediaIDs["gone"] = struct{}{}
	if cover, _ := ResolveCover(album, records); cover.ID != "m2" {
		t.Fatalf("expected fallback when cover missing, got %s", cover.ID)
	}

	empty := models.ManualAlbum{ID: "e", MediaIDs: map[string]struct{}{}}
	if _, ok := ResolveCover(empty, records); ok {
		t.Fatal("expected no cover for empty album")
	}
}
