// Package device adapts an on-device media library to media records.
package device

import (
	"context"
	"time"
)

// Media types reported by a device source.
const (
	MediaTypePhoto = "photo"
	MediaTypeVideo = "video"
)

// Asset is one entry of a device library enumeration.
type Asset struct {
	ID           string
	MediaType    string
	CreationTime time.Time
}

// AssetInfo holds the details only available through a per-asset lookup.
type AssetInfo struct {
	URI    string
	Width  int
	Height int
}

// Lister enumerates device assets.
type Lister interface {
	List(ctx context.Context) ([]Asset, error)
}

// InfoProvider resolves per-asset details.
type InfoProvider interface {
	Info(ctx context.Context, assetID string) (AssetInfo, error)
}

// Source is a complete device media library.
type Source interface {
	Lister
	InfoProvider
}
