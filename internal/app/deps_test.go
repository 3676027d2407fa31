package app

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/PaulRosu01/PrivatePixel/internal/config"
	"github.com/PaulRosu01/PrivatePixel/internal/library"
	"github.com/PaulRosu01/PrivatePixel/internal/models"
	"github.com/PaulRosu01/PrivatePixel/internal/repositories"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
}

func closeComponents(t *testing.T, cleanup cleanupFunc) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := cleanup(ctx); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
}

func TestBuildDependenciesMemory(t *testing.T) {
	cfg := config.Config{
		StateBackend: config.BackendMemory,
		UploadTarget: config.UploadTargetServer,
		DeviceDir:    t.TempDir(),
		ServerURL:    "http://127.0.0.1:1/api",
		ServerRPS:    5,
		MockSeed:     true,
	}

	comps, cleanup, err := buildDependencies(context.Background(), cfg, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cleanup == nil {
		t.Fatal("expected cleanup function")
	}
	defer closeComponents(t, cleanup)

	if comps.Library == nil || comps.Repo == nil || comps.Persister == nil || comps.Sync == nil {
		t.Fatalf("expected every component to be configured: %+v", comps)
	}
	if got := len(comps.Library.Records()); got != len(library.SeedRecords(time.Now())) {
		t.Fatalf("expected placeholder media on a fresh install, got %d records", got)
	}
	if _, err := comps.Repo.Load(context.Background()); err != nil {
		t.Fatalf("expected the seeded library to be persisted: %v", err)
	}

	added, err := comps.Sync.ScanDevice(context.Background())
	if err != nil || added != 0 {
		t.Fatalf("expected empty device scan, got %d %v", added, err)
	}
}

func TestBuildDependenciesS3Target(t *testing.T) {
	cfg := config.Config{
		StateBackend: config.BackendMemory,
		UploadTarget: config.UploadTargetS3,
		ObjectStore:  config.ObjectStoreConfig{Bucket: "test-bucket", Endpoint: "http://localhost:9000", Region: "us-east-1"},
	}

	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	comps, cleanup, err := buildDependencies(context.Background(), cfg, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closeComponents(t, cleanup)

	if len(comps.Library.Records()) != 0 {
		t.Fatal("expected an empty library without the mock seed")
	}
}

func TestBuildDependenciesRejectsMissingBucket(t *testing.T) {
	cfg := config.Config{StateBackend: config.BackendMemory, UploadTarget: config.UploadTargetS3}

	if _, _, err := buildDependencies(context.Background(), cfg, testLogger()); err == nil {
		t.Fatal("expected error for s3 target without a bucket")
	}
}

func TestRestoreLibraryPrefersSavedState(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMemoryLibraryRepository()

	saved := library.New()
	saved.MergeDeviceScan([]models.MediaRecord{{ID: "device-1", Origin: models.OriginDevice, Kind: models.KindPhoto}})
	if err := repo.Save(ctx, saved.Snapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}

	lib := library.New()
	if err := restoreLibrary(ctx, config.Config{MockSeed: true}, repo, lib, testLogger()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	records := lib.Records()
	if len(records) != 1 || records[0].ID != "device-1" {
		t.Fatalf("expected saved state without placeholders, got %+v", records)
	}
}

func TestOpenRepositoryBadger(t *testing.T) {
	cfg := config.Config{StateBackend: config.BackendBadger, BadgerDir: t.TempDir()}

	repo, closeRepo, err := openRepository(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer closeRepo()

	if _, ok := repo.(*repositories.BadgerLibraryRepository); !ok {
		t.Fatalf("expected badger repository, got %T", repo)
	}
}
