package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/PaulRosu01/PrivatePixel/internal/library"
	"github.com/PaulRosu01/PrivatePixel/internal/models"
)

// Key prefixes for BadgerDB storage
const (
	recordKeyPrefix = "record:"
	albumKeyPrefix  = "album:"
	metaCreatedKey  = "meta:albums_created"
)

type recordDTO struct {
	Position  int              `json:"position"`
	ID        string           `json:"id"`
	URI       string           `json:"uri"`
	CreatedAt *time.Time       `json:"createdAt,omitempty"`
	Kind      models.MediaKind `json:"mediaKind"`
	Origin    models.Origin    `json:"sourceOrigin"`
	Width     int              `json:"width,omitempty"`
	Height    int              `json:"height,omitempty"`
	Favorite  bool             `json:"favorite,omitempty"`
	RemoteID  string           `json:"remoteId,omitempty"`
}

type albumDTO struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	MediaIDs     []string `json:"mediaIds"`
	CoverMediaID string   `json:"coverMediaId,omitempty"`
	CreatedSeq   int      `json:"createdSeq"`
}

// BadgerLibraryRepository stores the library snapshot in an embedded BadgerDB.
type BadgerLibraryRepository struct {
	db *badger.DB
}

// NewBadgerLibraryRepository wraps an open BadgerDB.
func NewBadgerLibraryRepository(db *badger.DB) *BadgerLibraryRepository {
	return &BadgerLibraryRepository{db: db}
}

// OpenBadger opens (or creates) a BadgerDB in dir. An empty dir opens an
// in-memory database.
func OpenBadger(dir string) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return db, nil
}

// Load reads the persisted snapshot.
func (r *BadgerLibraryRepository) Load(ctx context.Context) (library.Snapshot, error) {
	var snap library.Snapshot

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(metaCreatedKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get album counter: %w", err)
		}
		if err := item.Value(func(val []byte) error {
			n, err := strconv.Atoi(string(val))
			if err != nil {
				return fmt.Errorf("parse album counter: %w", err)
			}
			snap.Albums.Created = n
			return nil
		}); err != nil {
			return err
		}

		var records []recordDTO
		if err := scanPrefix(txn, recordKeyPrefix, func(val []byte) error {
			var dto recordDTO
			if err := json.Unmarshal(val, &dto); err != nil {
				return fmt.Errorf("unmarshal record: %w", err)
			}
			records = append(records, dto)
			return nil
		}); err != nil {
			return err
		}
		sort.SliceStable(records, func(i, j int) bool { return records[i].Position < records[j].Position })
		for _, dto := range records {
			snap.Records = append(snap.Records, dto.record())
		}

		var albumDTOs []albumDTO
		if err := scanPrefix(txn, albumKeyPrefix, func(val []byte) error {
			var dto albumDTO
			if err := json.Unmarshal(val, &dto); err != nil {
				return fmt.Errorf("unmarshal album: %w", err)
			}
			albumDTOs = append(albumDTOs, dto)
			return nil
		}); err != nil {
			return err
		}
		sort.SliceStable(albumDTOs, func(i, j int) bool { return albumDTOs[i].CreatedSeq < albumDTOs[j].CreatedSeq })
		for _, dto := range albumDTOs {
			snap.Albums.Albums = append(snap.Albums.Albums, dto.album())
		}
		return nil
	})
	if err != nil {
		return library.Snapshot{}, err
	}
	return snap, nil
}

// Save replaces the persisted snapshot in one transaction.
func (r *BadgerLibraryRepository) Save(ctx context.Context, snap library.Snapshot) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		for _, prefix := range []string{recordKeyPrefix, albumKeyPrefix} {
			if err := deletePrefix(txn, prefix); err != nil {
				return err
			}
		}

		for i, rec := range snap.Records {
			data, err := json.Marshal(newRecordDTO(i, rec))
			if err != nil {
				return fmt.Errorf("marshal record: %w", err)
			}
			if err := txn.Set([]byte(recordKeyPrefix+rec.ID), data); err != nil {
				return fmt.Errorf("set record: %w", err)
			}
		}

		for _, album := range snap.Albums.Albums {
			data, err := json.Marshal(newAlbumDTO(album))
			if err != nil {
				return fmt.Errorf("marshal album: %w", err)
			}
			if err := txn.Set([]byte(albumKeyPrefix+album.ID), data); err != nil {
				return fmt.Errorf("set album: %w", err)
			}
		}

		return txn.Set([]byte(metaCreatedKey), []byte(strconv.Itoa(snap.Albums.Created)))
	})
	if errors.Is(err, badger.ErrConflict) {
		return fmt.Errorf("save library: %w", ErrConflict)
	}
	return err
}

func scanPrefix(txn *badger.Txn, prefix string, fn func(val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}

func deletePrefix(txn *badger.Txn, prefix string) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)

	var keys [][]byte
	for it.Rewind(); it.Valid(); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	it.Close()

	for _, key := range keys {
		if err := txn.Delete(key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return nil
}

func newRecordDTO(position int, rec models.MediaRecord) recordDTO {
	dto := recordDTO{
		Position: position,
		ID:       rec.ID,
		URI:      rec.URI,
		Kind:     rec.Kind,
		Origin:   rec.Origin,
		Width:    rec.Width,
		Height:   rec.Height,
		Favorite: rec.Favorite,
		RemoteID: rec.RemoteID,
	}
	if rec.HasTimestamp() {
		t := rec.CreatedAt.UTC()
		dto.CreatedAt = &t
	}
	return dto
}

func (d recordDTO) record() models.MediaRecord {
	rec := models.MediaRecord{
		ID:       d.ID,
		URI:      d.URI,
		Kind:     d.Kind,
		Origin:   d.Origin,
		Width:    d.Width,
		Height:   d.Height,
		Favorite: d.Favorite,
		RemoteID: d.RemoteID,
	}
	if d.CreatedAt != nil {
		rec.CreatedAt = *d.CreatedAt
	}
	return rec
}

func newAlbumDTO(a models.ManualAlbum) albumDTO {
	return albumDTO{
		ID:           a.ID,
		Title:        a.Title,
		MediaIDs:     sortedMembers(a),
		CoverMediaID: a.CoverMediaID,
		CreatedSeq:   a.CreatedSeq,
	}
}

func (d albumDTO) album() models.ManualAlbum {
	album := models.ManualAlbum{
		ID:           d.ID,
		Title:        d.Title,
		MediaIDs:     make(map[string]struct{}, len(d.MediaIDs)),
		CoverMediaID: d.CoverMediaID,
		CreatedSeq:   d.CreatedSeq,
	}
	for _, id := range d.MediaIDs {
		album.MediaIDs[id] = struct{}{}
	}
	return album
}
