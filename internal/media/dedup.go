// Package media holds the pure reconciliation logic shared by the library:
// dedup keys, duplicate resolution, time bucketing and the id-keyed
// media collection that sources merge into.
package media

import (
	"strconv"
	"time"

	"github.com/PaulRosu01/PrivatePixel/internal/models"
)

// DedupKey identifies records believed to show the same physical asset:
// capture time truncated to the second, then pixel area. Either part is empty
// when unknown.
func DedupKey(r models.MediaRecord) string {
	var ts string
	if r.HasTimestamp() {
		ts = r.CreatedAt.UTC().Truncate(time.Second).Format(time.RFC3339)
	}
	var area string
	if r.Width > 0 && r.Height > 0 {
		area = strconv.Itoa(r.Width * r.Height)
	}
	return ts + "|" + area
}

// Resolved is the survivor of a duplicate group plus the ids it replaced.
type Resolved struct {
	Survivor   models.MediaRecord
	Duplicates []models.MediaRecord
}

// AnyFavorite reports whether the survivor or a collapsed duplicate is marked
// favorite.
func (r Resolved) AnyFavorite() bool {
	if r.Survivor.Favorite {
		return true
	}
	for _, d := range r.Duplicates {
		if d.Favorite {
			return true
		}
	}
	return false
}

// DuplicateIDs lists the ids collapsed into the survivor, in input order.
func (r Resolved) DuplicateIDs() []string {
	if len(r.Duplicates) == 0 {
		return nil
	}
	ids := make([]string, 0, len(r.Duplicates))
	for _, d := range r.Duplicates {
		ids = append(ids, d.ID)
	}
	return ids
}

// Resolve groups records by DedupKey and picks one survivor per group: the
// highest origin priority, or the first seen on a tie. Groups are returned in
// the order their key first appears. The input is not modified.
func Resolve(records []models.MediaRecord) []Resolved {
	if len(records) == 0 {
		return nil
	}

	index := make(map[string]int, len(records))
	out := make([]Resolved, 0, len(records))
	for _, rec := range records {
		key := DedupKey(rec)
		pos, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, Resolved{Survivor: rec})
			continue
		}

		group := &out[pos]
		if rec.Origin.Priority() > group.Survivor.Origin.Priority() {
			group.Duplicates = append(group.Duplicates, group.Survivor)
			group.Survivor = rec
		} else {
			group.Duplicates = append(group.Duplicates, rec)
		}
	}
	return out
}

// Dedup returns at most one record per physical asset.
func Dedup(records []models.MediaRecord) []models.MediaRecord {
	resolved := Resolve(records)
	out := make([]models.MediaRecord, 0, len(resolved))
	for _, r := range resolved {
		out = append(out, r.Survivor)
	}
	return out
}
