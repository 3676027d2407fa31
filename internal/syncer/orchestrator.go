// Package syncer runs device scans, server syncs, uploads and deletes and
// applies their results to a library through its merge contract.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/PaulRosu01/PrivatePixel/internal/device"
	"github.com/PaulRosu01/PrivatePixel/internal/library"
	"github.com/PaulRosu01/PrivatePixel/internal/logging"
	"github.com/PaulRosu01/PrivatePixel/internal/models"
)

var (
	// ErrServerUnavailable indicates no backend is configured for the operation.
	ErrServerUnavailable = errors.New("syncer: server not configured")
	// ErrUnknownMedia indicates an id that is not in the collection.
	ErrUnknownMedia = errors.New("syncer: unknown media id")
	errClosed       = errors.New("syncer: orchestrator closed")
)

// ServerLister fetches the server's asset descriptors.
type ServerLister interface {
	ListMedia(ctx context.Context) ([]models.ServerAsset, error)
}

// Uploader stores one original remotely.
type Uploader interface {
	Upload(ctx context.Context, rec models.MediaRecord, content io.Reader) (models.ServerAsset, error)
}

// Deleter removes a stored original by its server-side id.
type Deleter interface {
	Delete(ctx context.Context, assetID string) error
}

// Persister saves the library after it changes.
type Persister interface {
	Persist(ctx context.Context) error
}

// Dependencies are the collaborators an Orchestrator drives. Any of them may
// be nil; the operations needing a missing one report it.
type Dependencies struct {
	DeviceLister device.Lister
	DeviceInfo   device.InfoProvider
	Server       ServerLister
	ToRecord     func(models.ServerAsset) models.MediaRecord
	ServerID     func(models.MediaRecord) (string, error)
	Uploader     Uploader
	Deleter      Deleter
	Opener       Opener
	Persister    Persister
}

// Orchestrator applies I/O results to a library. I/O always runs outside the
// library lock.
type Orchestrator struct {
	lib  *library.Library
	deps Dependencies

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// New builds an orchestrator for lib.
func New(lib *library.Library, deps Dependencies) *Orchestrator {
	if deps.Opener == nil {
		deps.Opener = NewOpener(nil)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{lib: lib, deps: deps, ctx: ctx, cancel: cancel}
}

// ScanDevice enumerates the device library and merges what it finds. On any
// failure, including a refused permission, the collection is left untouched.
func (o *Orchestrator) ScanDevice(ctx context.Context) (added int, err error) {
	ctx, span := logging.StartSpan(ctx, "device.scan")
	defer func() {
		span.Fail(err)
		span.End()
	}()

	if o.deps.DeviceLister == nil || o.deps.DeviceInfo == nil {
		return 0, device.ErrSourceUnavailable
	}

	records, err := device.Scan(ctx, o.deps.DeviceLister, o.deps.DeviceInfo)
	if err != nil {
		return 0, err
	}

	added = o.lib.MergeDeviceScan(records)
	logging.FromContext(ctx).Info("device scan merged", "seen", len(records), "added", added)
	o.persist(ctx, added > 0)
	return added, nil
}

// SyncServer pulls the server's asset list and merges it.
func (o *Orchestrator) SyncServer(ctx context.Context) (added int, err error) {
	ctx, span := logging.StartSpan(ctx, "server.sync")
	defer func() {
		span.Fail(err)
		span.End()
	}()

	if o.deps.Server == nil || o.deps.ToRecord == nil {
		return 0, ErrServerUnavailable
	}

	assets, err := o.deps.Server.ListMedia(ctx)
	if err != nil {
		return 0, err
	}

	records := make([]models.MediaRecord, 0, len(assets))
	for _, asset := range assets {
		if asset.ID == "" {
			continue
		}
		records = append(records, o.deps.ToRecord(asset))
	}

	added = o.lib.MergeServerSync(records)
	logging.FromContext(ctx).Info("server sync merged", "seen", len(records), "added", added)
	o.persist(ctx, added > 0)
	return added, nil
}

// AutoSync runs a background sync. Failures are logged and leave the
// collection as it was.
func (o *Orchestrator) AutoSync(ctx context.Context) {
	if o.deps.Server == nil {
		return
	}
	if _, err := o.SyncServer(ctx); err != nil {
		logging.FromContext(ctx).Warn("background sync failed", "error", err)
	}
}

// Start launches a background loop calling AutoSync every interval until
// Shutdown. A non-positive interval disables the loop.
func (o *Orchestrator) Start(logger *slog.Logger, interval time.Duration) error {
	if interval <= 0 {
		return nil
	}
	select {
	case <-o.ctx.Done():
		return errClosed
	default:
	}
	if logger == nil {
		logger = slog.Default()
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ctx := logging.WithLogger(o.ctx, logger.With("component", "autosync"))

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		o.AutoSync(ctx)
		for {
			select {
			case <-o.ctx.Done():
				return
			case <-ticker.C:
				o.AutoSync(ctx)
			}
		}
	}()
	return nil
}

// Shutdown stops the background loop and waits for it to exit.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.once.Do(o.cancel)

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// DeleteFromServer removes a record remotely, then locally.
func (o *Orchestrator) DeleteFromServer(ctx context.Context, mediaID string) (err error) {
	ctx, span := logging.StartSpan(ctx, "server.delete")
	defer func() {
		span.Fail(err)
		span.End()
	}()

	if o.deps.Deleter == nil || o.deps.ServerID == nil {
		return ErrServerUnavailable
	}

	rec, ok := o.lib.Get(mediaID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMedia, mediaID)
	}
	assetID, err := o.deps.ServerID(rec)
	if err != nil {
		return err
	}
	if err := o.deps.Deleter.Delete(ctx, assetID); err != nil {
		return err
	}

	o.lib.RecordDeleteFromServer(mediaID)
	logging.FromContext(ctx).Info("deleted from server", "mediaId", mediaID, "assetId", assetID)
	o.persist(ctx, true)
	return nil
}

func (o *Orchestrator) persist(ctx context.Context, changed bool) {
	if !changed || o.deps.Persister == nil {
		return
	}
	if err := o.deps.Persister.Persist(ctx); err != nil {
		logging.FromContext(ctx).Error("persist library", "error", err)
	}
}
