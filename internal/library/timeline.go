package library

import (
	"sort"
	"strings"
	"time"

	"github.com/PaulRosu01/PrivatePixel/internal/albums"
	"github.com/PaulRosu01/PrivatePixel/internal/media"
	"github.com/PaulRosu01/PrivatePixel/internal/models"
)

const (
	searchDateLayout = "Jan 2, 2006"
	searchTimeLayout = "3:04 PM"
)

// View is the filter state the timeline is built from.
type View struct {
	Selection      models.Selection
	EditingAlbumID string
	Filter         models.TypeFilter
	Query          string
}

// BuildTimeline filters records by album, kind and search text, orders them
// newest first, collapses duplicates and groups the result into time buckets.
// It never modifies its inputs.
func BuildTimeline(records []models.MediaRecord, manual []models.ManualAlbum, view View, now time.Time) []models.TimelineGroup {
	candidates := filterByAlbum(records, manual, view)
	candidates = filterByKind(candidates, view.Filter)
	candidates = filterByQuery(candidates, view.Query, now.Location())
	sortNewestFirst(candidates)

	resolved := media.Resolve(candidates)
	items := make([]models.TimelineItem, 0, len(resolved))
	for _, r := range resolved {
		item := models.TimelineItem{MediaRecord: r.Survivor, DuplicateIDs: r.DuplicateIDs()}
		item.Favorite = r.AnyFavorite()
		items = append(items, item)
	}

	groups := media.Bucketize(items, func(i models.TimelineItem) time.Time { return i.CreatedAt }, now)
	out := make([]models.TimelineGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, models.TimelineGroup{Bucket: g.Bucket, Items: g.Members})
	}
	return out
}

func filterByAlbum(records []models.MediaRecord, manual []models.ManualAlbum, view View) []models.MediaRecord {
	sel := view.Selection
	switch sel.Kind {
	case models.SelectionSmart:
		match, ok := albums.SmartPredicate(sel.AlbumID)
		if !ok {
			return clone(records)
		}
		return keep(records, match)
	case models.SelectionManual:
		if sel.AlbumID == view.EditingAlbumID {
			return clone(records)
		}
		for _, a := range manual {
			if a.ID == sel.AlbumID {
				return keep(records, func(r models.MediaRecord) bool { return a.Has(r.ID) })
			}
		}
		return clone(records)
	default:
		return clone(records)
	}
}

func filterByKind(records []models.MediaRecord, filter models.TypeFilter) []models.MediaRecord {
	switch filter {
	case models.FilterPhotos:
		return keep(records, func(r models.MediaRecord) bool { return r.Kind == models.KindPhoto })
	case models.FilterVideos:
		return keep(records, func(r models.MediaRecord) bool { return r.Kind == models.KindVideo })
	default:
		return records
	}
}

func filterByQuery(records []models.MediaRecord, query string, loc *time.Location) []models.MediaRecord {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return records
	}
	return keep(records, func(r models.MediaRecord) bool { return MatchesQuery(r, q, loc) })
}

// MatchesQuery reports whether any searchable field of r contains the
// lower-cased query q.
func MatchesQuery(r models.MediaRecord, q string, loc *time.Location) bool {
	for _, field := range searchFields(r, loc) {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func searchFields(r models.MediaRecord, loc *time.Location) []string {
	fields := make([]string, 0, 5)
	if r.HasTimestamp() {
		if loc == nil {
			loc = time.Local
		}
		local := r.CreatedAt.In(loc)
		fields = append(fields, local.Format(searchDateLayout), local.Format(searchTimeLayout))
	}
	fields = append(fields, string(r.Origin), string(r.Kind))
	if r.Favorite {
		fields = append(fields, "favorite")
	}
	return fields
}

// sortNewestFirst orders by capture time descending; records without a
// timestamp go last. Equal times keep collection order.
func sortNewestFirst(records []models.MediaRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		switch {
		case !a.HasTimestamp():
			return false
		case !b.HasTimestamp():
			return true
		default:
			return a.CreatedAt.After(b.CreatedAt)
		}
	})
}

func keep(records []models.MediaRecord, match func(models.MediaRecord) bool) []models.MediaRecord {
	out := make([]models.MediaRecord, 0, len(records))
	for _, r := range records {
		if match(r) {
			out = append(out, r)
		}
	}
	return out
}

func clone(records []models.MediaRecord) []models.MediaRecord {
	out := make([]models.MediaRecord, len(records))
	copy(out, records)
	return out
}
