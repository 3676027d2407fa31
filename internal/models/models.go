package models

import "time"

// MediaKind distinguishes photos from videos.
type MediaKind string

const (
	KindPhoto MediaKind = "photo"
	KindVideo MediaKind = "video"
)

// Origin records which source observed a media record.
type Origin string

const (
	OriginMock   Origin = "mock"
	OriginDevice Origin = "device"
	OriginServer Origin = "server"
)

// Priority ranks origins by durability. Unknown origins rank lowest.
func (o Origin) Priority() int {
	switch o {
	case OriginServer:
		return 3
	case OriginDevice:
		return 2
	case OriginMock:
		return 1
	default:
		return 0
	}
}

// MediaRecord is a single observation of a photo or video by one source.
type MediaRecord struct {
	ID        string    `json:"id"`
	URI       string    `json:"uri"`
	CreatedAt time.Time `json:"createdAt"`
	Kind      MediaKind `json:"mediaKind"`
	Origin    Origin    `json:"sourceOrigin"`
	Width     int       `json:"width,omitempty"`
	Height    int       `json:"height,omitempty"`
	Favorite  bool      `json:"favorite"`
	RemoteID  string    `json:"remoteId,omitempty"`
}

// HasTimestamp reports whether the capture time is known.
func (r MediaRecord) HasTimestamp() bool {
	return !r.CreatedAt.IsZero()
}

// ManualAlbum is a user-curated set of media ids with an optional cover.
type ManualAlbum struct {
	ID           string              `json:"id"`
	Title        string              `json:"title"`
	MediaIDs     map[string]struct{} `json:"-"`
	CoverMediaID string              `json:"coverMediaId,omitempty"`
	CreatedSeq   int                 `json:"createdSeq"`
}

// Has reports whether mediaID is a member of the album.
func (a ManualAlbum) Has(mediaID string) bool {
	_, ok := a.MediaIDs[mediaID]
	return ok
}

// Clone returns a deep copy so callers cannot mutate store-owned membership.
func (a ManualAlbum) Clone() ManualAlbum {
	out := a
	out.MediaIDs = make(map[string]struct{}, len(a.MediaIDs))
	for id := range a.MediaIDs {
		out.MediaIDs[id] = struct{}{}
	}
	return out
}

// SmartAlbum ids. Smart albums are derived and never stored.
const (
	SmartAll       = "smart-all"
	SmartFavorites = "smart-favorites"
	SmartDevice    = "smart-device"
	SmartVideos    = "smart-videos"
)

// SmartAlbum is a predicate view over the media collection.
type SmartAlbum struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Count int    `json:"count"`
}

// SelectionKind tells which kind of album is active.
type SelectionKind string

const (
	SelectionNone   SelectionKind = ""
	SelectionSmart  SelectionKind = "smart"
	SelectionManual SelectionKind = "manual"
)

// Selection is the single active album. The zero value means "All".
type Selection struct {
	Kind    SelectionKind `json:"kind"`
	AlbumID string        `json:"albumId,omitempty"`
}

// IsAll reports whether no album restricts the view.
func (s Selection) IsAll() bool {
	return s.Kind == SelectionNone || (s.Kind == SelectionSmart && s.AlbumID == SmartAll)
}

// TypeFilter restricts the timeline by media kind.
type TypeFilter string

const (
	FilterAll    TypeFilter = "all"
	FilterPhotos TypeFilter = "photos"
	FilterVideos TypeFilter = "videos"
)

// Bucket is a relative time group.
type Bucket string

const (
	BucketToday    Bucket = "Today"
	BucketThisWeek Bucket = "This week"
	BucketEarlier  Bucket = "Earlier"
)

// Buckets lists every bucket in display order.
var Buckets = []Bucket{BucketToday, BucketThisWeek, BucketEarlier}

// TimelineItem is one deduplicated record as rendered by the UI.
type TimelineItem struct {
	MediaRecord
	DuplicateIDs []string `json:"duplicateIds,omitempty"`
}

// TimelineGroup is a non-empty bucket with its items.
type TimelineGroup struct {
	Bucket Bucket         `json:"bucket"`
	Items  []TimelineItem `json:"items"`
}

// AlbumView is a manual album with its resolved cover for display.
type AlbumView struct {
	ID      string       `json:"id"`
	Title   string       `json:"title"`
	Count   int          `json:"count"`
	Cover   *MediaRecord `json:"cover,omitempty"`
	Editing bool         `json:"editing"`
	Active  bool         `json:"active"`
}

// ServerAsset is the descriptor the remote backend returns for stored media.
type ServerAsset struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	MediaType string    `json:"mediaType,omitempty"`
}

// UploadReport summarises a multi-item upload.
type UploadReport struct {
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Errors    map[string]string `json:"errors,omitempty"`
}
