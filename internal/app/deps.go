package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/PaulRosu01/PrivatePixel/internal/config"
	"github.com/PaulRosu01/PrivatePixel/internal/db"
	"github.com/PaulRosu01/PrivatePixel/internal/device"
	"github.com/PaulRosu01/PrivatePixel/internal/library"
	"github.com/PaulRosu01/PrivatePixel/internal/remote"
	"github.com/PaulRosu01/PrivatePixel/internal/repositories"
	"github.com/PaulRosu01/PrivatePixel/internal/storage"
	"github.com/PaulRosu01/PrivatePixel/internal/syncer"
)

// components are the long-lived collaborators every command works against.
type components struct {
	Library   *library.Library
	Repo      repositories.LibraryRepository
	Persister *library.Persister
	Sync      *syncer.Orchestrator
}

type cleanupFunc func(ctx context.Context) error

// buildDependencies wires together concrete implementations from cfg and
// restores the persisted library. The cleanup function releases the state
// store and stops background work.
func buildDependencies(ctx context.Context, cfg config.Config, logger *slog.Logger) (*components, cleanupFunc, error) {
	repo, closeRepo, err := openRepository(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	lib := library.New()
	if err := restoreLibrary(ctx, cfg, repo, lib, logger); err != nil {
		closeRepo()
		return nil, nil, err
	}

	persister := library.NewPersister(lib, repo)
	deps := syncer.Dependencies{Persister: persister}

	if cfg.DeviceDir != "" {
		source := device.NewDirectorySource(cfg.DeviceDir)
		if cfg.FFProbePath != "" {
			source.Prober = device.NewFFProbe(cfg.FFProbePath, cfg.FFProbeTimeout)
		}
		deps.DeviceLister = source
		deps.DeviceInfo = device.NewCachingInfoProvider(source, cfg.DeviceInfoTTL)
	}

	if cfg.RemoteEnabled() {
		client, err := remote.NewClient(cfg.ServerURL, cfg.ServerToken, cfg.ServerTimeout,
			remote.WithRateLimit(cfg.ServerRPS, 1))
		if err != nil {
			closeRepo()
			return nil, nil, err
		}
		deps.Server = client
		deps.ToRecord = client.ToRecord
		deps.ServerID = remote.ServerID
		deps.Uploader = client
		deps.Deleter = client
	}

	if cfg.UploadTarget == config.UploadTargetS3 {
		archive, err := storage.NewS3Uploader(ctx, cfg.ObjectStore)
		if err != nil {
			closeRepo()
			return nil, nil, err
		}
		deps.Uploader = archive
		deps.Deleter = archive
		deps.ServerID = remote.ServerID
	}

	orchestrator := syncer.New(lib, deps)

	cleanup := func(ctx context.Context) error {
		err := orchestrator.Shutdown(ctx)
		closeRepo()
		return err
	}

	return &components{Library: lib, Repo: repo, Persister: persister, Sync: orchestrator}, cleanup, nil
}

// openRepository selects the state store named by cfg.StateBackend.
func openRepository(ctx context.Context, cfg config.Config) (repositories.LibraryRepository, func(), error) {
	switch cfg.StateBackend {
	case config.BackendPostgres:
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return repositories.NewPostgresLibraryRepository(pool), pool.Close, nil
	case config.BackendBadger:
		bdb, err := repositories.OpenBadger(cfg.BadgerDir)
		if err != nil {
			return nil, nil, err
		}
		return repositories.NewBadgerLibraryRepository(bdb), func() { _ = bdb.Close() }, nil
	case config.BackendMemory:
		return repositories.NewMemoryLibraryRepository(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown state backend %q", cfg.StateBackend)
	}
}

// restoreLibrary loads the saved snapshot. A fresh install starts empty, or
// with placeholder media when the mock seed is enabled.
func restoreLibrary(ctx context.Context, cfg config.Config, repo repositories.LibraryRepository, lib *library.Library, logger *slog.Logger) error {
	snap, err := repo.Load(ctx)
	switch {
	case err == nil:
		lib.Restore(snap)
		logger.Info("library restored", "records", len(snap.Records), "albums", len(snap.Albums.Albums))
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		if !cfg.MockSeed {
			logger.Info("starting with an empty library")
			return nil
		}
		added := lib.MergeMock(library.SeedRecords(time.Now()))
		logger.Info("seeded placeholder media", "records", added)
		if err := repo.Save(ctx, lib.Snapshot()); err != nil {
			return fmt.Errorf("save seeded library: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("load library: %w", err)
	}
}
