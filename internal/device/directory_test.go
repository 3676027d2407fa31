package device

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PaulRosu01/PrivatePixel/internal/models"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func TestDirectorySourceListAndInfo(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 4, 3)
	writePNG(t, filepath.Join(dir, "nested", "b.dat"), 2, 2)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not media"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	taken := time.Date(2023, time.June, 1, 12, 0, 0, 0, time.UTC)
	if err := os.Chtimes(filepath.Join(dir, "a.png"), taken, taken); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	src := NewDirectorySource(dir)
	assets, err := src.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(assets) != 2 {
		t.Fatalf("expected 2 media assets got %d", len(assets))
	}
	if assets[0].MediaType != MediaTypePhoto || !assets[0].CreationTime.Equal(taken) {
		t.Fatalf("unexpected first asset: %+v", assets[0])
	}

	info, err := src.Info(context.Background(), assets[0].ID)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if info.Width != 4 || info.Height != 3 {
		t.Fatalf("unexpected dimensions: %+v", info)
	}
	if !strings.HasPrefix(info.URI, "file://") || !strings.HasSuffix(info.URI, "/a.png") {
		t.Fatalf("unexpected uri: %q", info.URI)
	}

	again, err := NewDirectorySource(dir).List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if again[0].ID != assets[0].ID {
		t.Fatal("asset ids must be stable across scans")
	}

	if _, err := src.Info(context.Background(), "unknown"); !errors.Is(err, ErrAssetNotFound) {
		t.Fatalf("expected ErrAssetNotFound got %v", err)
	}
}

func TestDirectorySourceMissingRoot(t *testing.T) {
	src := NewDirectorySource(filepath.Join(t.TempDir(), "missing"))
	if _, err := src.List(context.Background()); !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable got %v", err)
	}
	if _, err := NewDirectorySource("").List(context.Background()); !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable got %v", err)
	}
}

type stubLister struct {
	assets []Asset
	err    error
}

func (s stubLister) List(context.Context) ([]Asset, error) {
	return s.assets, s.err
}

type mapInfo map[string]AssetInfo

func (m mapInfo) Info(_ context.Context, id string) (AssetInfo, error) {
	info, ok := m[id]
	if !ok {
		return AssetInfo{}, ErrAssetNotFound
	}
	return info, nil
}

func TestScanConvertsAssets(t *testing.T) {
	created := time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC)
	lister := stubLister{assets: []Asset{
		{ID: "1", MediaType: MediaTypePhoto, CreationTime: created},
		{ID: "2", MediaType: MediaTypeVideo, CreationTime: created},
		{ID: "gone", MediaType: MediaTypePhoto},
	}}
	info := mapInfo{
		"1": {URI: "file:///1.jpg", Width: 100, Height: 100},
		"2": {URI: "file:///2.mp4"},
	}

	records, err := Scan(context.Background(), lister, info)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected unresolvable asset to be skipped, got %d records", len(records))
	}
	want := models.MediaRecord{ID: "device-1", URI: "file:///1.jpg", CreatedAt: created, Kind: models.KindPhoto, Origin: models.OriginDevice, Width: 100, Height: 100}
	if records[0] != want {
		t.Fatalf("unexpected record: %+v", records[0])
	}
	if records[1].Kind != models.KindVideo {
		t.Fatalf("expected video kind, got %q", records[1].Kind)
	}
}

func TestScanPermissionDenied(t *testing.T) {
	lister := stubLister{err: ErrPermissionDenied}
	if _, err := Scan(context.Background(), lister, mapInfo{}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied got %v", err)
	}
	if _, err := Scan(context.Background(), nil, nil); !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable got %v", err)
	}
}
