package device

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PaulRosu01/PrivatePixel/internal/logging"
	"github.com/PaulRosu01/PrivatePixel/internal/models"
)

// RecordIDPrefix prefixes device asset ids to form media record ids.
const RecordIDPrefix = "device-"

// Scan enumerates the device library and resolves each asset into a media
// record. Per-asset lookup failures skip that asset; a permission failure
// aborts the whole scan.
func Scan(ctx context.Context, lister Lister, info InfoProvider) ([]models.MediaRecord, error) {
	if lister == nil || info == nil {
		return nil, ErrSourceUnavailable
	}

	logger := logging.FromContext(ctx)

	assets, err := lister.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list device assets: %w", err)
	}
	if retainer, ok := info.(Retainer); ok {
		ids := make([]string, len(assets))
		for i, asset := range assets {
			ids[i] = asset.ID
		}
		if removed := retainer.Retain(ids); removed > 0 {
			logger.Debug("evicted stale device asset info", "count", removed)
		}
	}

	records := make([]models.MediaRecord, 0, len(assets))
	for _, asset := range assets {
		details, err := info.Info(ctx, asset.ID)
		if err != nil {
			if errors.Is(err, ErrPermissionDenied) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("device asset info %s: %w", asset.ID, err)
			}
			logger.Warn("skipping device asset", "assetId", asset.ID, "error", err)
			continue
		}
		records = append(records, ToRecord(asset, details))
	}
	return records, nil
}

// ToRecord converts a device asset and its details into a media record.
func ToRecord(asset Asset, info AssetInfo) models.MediaRecord {
	kind := models.KindPhoto
	if strings.EqualFold(asset.MediaType, MediaTypeVideo) {
		kind = models.KindVideo
	}
	return models.MediaRecord{
		ID:        RecordIDPrefix + asset.ID,
		URI:       info.URI,
		CreatedAt: asset.CreationTime,
		Kind:      kind,
		Origin:    models.OriginDevice,
		Width:     info.Width,
		Height:    info.Height,
	}
}
