package albums

import "github.com/PaulRosu01/PrivatePixel/internal/models"

type smartDef struct {
	id    string
	title string
	match func(models.MediaRecord) bool
}

var smartDefs = []smartDef{
	{models.SmartAll, "All", func(models.MediaRecord) bool { return true }},
	{models.SmartFavorites, "Favorites", func(r models.MediaRecord) bool { return r.Favorite }},
	{models.SmartDevice, "From device", func(r models.MediaRecord) bool { return r.Origin == models.OriginDevice }},
	{models.SmartVideos, "Videos", func(r models.MediaRecord) bool { return r.Kind == models.KindVideo }},
}

// SmartPredicate returns the membership test for a smart album id.
func SmartPredicate(id string) (func(models.MediaRecord) bool, bool) {
	for _, def := range smartDefs {
		if def.id == id {
			return def.match, true
		}
	}
	return nil, false
}

// IsSmart reports whether id names a smart album.
func IsSmart(id string) bool {
	_, ok := SmartPredicate(id)
	return ok
}

// DeriveSmartAlbums lists the smart albums that currently match at least one
// record, in fixed order.
func DeriveSmartAlbums(records []models.MediaRecord) []models.SmartAlbum {
	var out []models.SmartAlbum
	for _, def := range smartDefs {
		count := 0
		for _, r := range records {
			if def.match(r) {
				count++
			}
		}
		if count == 0 {
			continue
		}
		out = append(out, models.SmartAlbum{ID: def.id, Title: def.title, Count: count})
	}
	return out
}

// ResolveCover picks the record shown as the album thumbnail: the chosen
// cover when it is still in the collection, otherwise the first member in
// collection order.
func ResolveCover(album models.ManualAlbum, records []models.MediaRecord) (models.MediaRecord, bool) {
	if album.CoverMediaID != "" {
		for _, r := range records {
			if r.ID == album.CoverMediaID {
				return r, true
			}
		}
	}
	for _, r := range records {
		if album.Has(r.ID) {
			return r, true
		}
	}
	return models.MediaRecord{}, false
}

// MemberCount counts album members present in the collection.
func MemberCount(album models.ManualAlbum, records []models.MediaRecord) int {
	n := 0
	for _, r := range records {
		if album.Has(r.ID) {
			n++
		}
	}
	return n
}
