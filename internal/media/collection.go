package media

import "github.com/PaulRosu01/PrivatePixel/internal/models"

// Collection is the ordered, id-keyed set of every observed media record.
// Records are appended by merges and only changed in place by MarkUploaded and
// SetFavorite. The zero value is an empty collection.
type Collection struct {
	records []models.MediaRecord
	index   map[string]int
}

// NewCollection builds a collection from records, dropping repeated ids.
func NewCollection(records []models.MediaRecord) *Collection {
	c := &Collection{}
	c.Merge(records)
	return c
}

// Len returns the number of records.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.records)
}

// Records returns a copy of the records in collection order.
func (c *Collection) Records() []models.MediaRecord {
	if c == nil {
		return nil
	}
	out := make([]models.MediaRecord, len(c.records))
	copy(out, c.records)
	return out
}

// Get looks a record up by id.
func (c *Collection) Get(id string) (models.MediaRecord, bool) {
	if c == nil || c.index == nil {
		return models.MediaRecord{}, false
	}
	pos, ok := c.index[id]
	if !ok {
		return models.MediaRecord{}, false
	}
	return c.records[pos], true
}

// Has reports whether id is present.
func (c *Collection) Has(id string) bool {
	_, ok := c.Get(id)
	return ok
}

// Merge appends records whose id is not yet present and returns how many were
// added. Existing entries always win, so local-only state such as favorites
// survives a rescan.
func (c *Collection) Merge(records []models.MediaRecord) int {
	if c.index == nil {
		c.index = make(map[string]int, len(records))
	}
	added := 0
	for _, rec := range records {
		if rec.ID == "" {
			continue
		}
		if _, exists := c.index[rec.ID]; exists {
			continue
		}
		c.index[rec.ID] = len(c.records)
		c.records = append(c.records, rec)
		added++
	}
	return added
}

// MarkUploaded moves a device or mock record to server provenance without
// changing its id, remembering the server-side id when one is known. It
// reports whether the record exists.
func (c *Collection) MarkUploaded(id, remoteID string) bool {
	pos, ok := c.position(id)
	if !ok {
		return false
	}
	c.records[pos].Origin = models.OriginServer
	if remoteID != "" {
		c.records[pos].RemoteID = remoteID
	}
	return true
}

// SetFavorite updates the local-only favorite flag.
func (c *Collection) SetFavorite(id string, favorite bool) bool {
	pos, ok := c.position(id)
	if !ok {
		return false
	}
	c.records[pos].Favorite = favorite
	return true
}

// Remove deletes a record and reports whether it was present.
func (c *Collection) Remove(id string) bool {
	pos, ok := c.position(id)
	if !ok {
		return false
	}
	c.records = append(c.records[:pos], c.records[pos+1:]...)
	delete(c.index, id)
	for i := pos; i < len(c.records); i++ {
		c.index[c.records[i].ID] = i
	}
	return true
}

// Clone returns an independent copy.
func (c *Collection) Clone() *Collection {
	return NewCollection(c.Records())
}

func (c *Collection) position(id string) (int, bool) {
	if c == nil || c.index == nil {
		return 0, false
	}
	pos, ok := c.index[id]
	return pos, ok
}

// MergeScan is the pure form of a source merge: it returns a new collection
// holding c plus every record of batch whose id is new, tagged with origin.
// c is left untouched. Passing an empty origin keeps each record's own origin.
func MergeScan(c *Collection, batch []models.MediaRecord, origin models.Origin) *Collection {
	out := c.Clone()
	tagged := make([]models.MediaRecord, len(batch))
	for i, rec := range batch {
		if origin != "" {
			rec.Origin = origin
		}
		tagged[i] = rec
	}
	out.Merge(tagged)
	return out
}
