package device

import "errors"

var (
	// ErrPermissionDenied indicates the user refused access to the media library.
	ErrPermissionDenied = errors.New("device media access denied")
	// ErrAssetNotFound indicates an info lookup for an asset the source does not know.
	ErrAssetNotFound = errors.New("device asset not found")
	// ErrSourceUnavailable indicates no device source is configured.
	ErrSourceUnavailable = errors.New("device media source unavailable")
)
