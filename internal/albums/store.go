// Package albums owns manual album definitions and derives smart albums from
// the media collection.
package albums

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/PaulRosu01/PrivatePixel/internal/models"
)

// Store keeps manual albums in creation order. It is not safe for concurrent
// use; library.Library serializes every call.
type Store struct {
	albums  map[string]*models.ManualAlbum
	order   []string
	created int
	newID   func() string
}

// NewStore returns an empty album store.
func NewStore() *Store {
	return &Store{
		albums: make(map[string]*models.ManualAlbum),
		newID:  uuid.NewString,
	}
}

// Create adds an album with no members. A blank title becomes "Album N",
// where N counts every album ever created by this store.
func (s *Store) Create(title string) models.ManualAlbum {
	s.created++
	title = strings.TrimSpace(title)
	if title == "" {
		title = fmt.Sprintf("Album %d", s.created)
	}

	album := &models.ManualAlbum{
		ID:         s.newID(),
		Title:      title,
		MediaIDs:   make(map[string]struct{}),
		CreatedSeq: s.created,
	}
	s.albums[album.ID] = album
	s.order = append(s.order, album.ID)
	return album.Clone()
}

// Get returns a copy of the album.
func (s *Store) Get(albumID string) (models.ManualAlbum, bool) {
	album, ok := s.albums[albumID]
	if !ok {
		return models.ManualAlbum{}, false
	}
	return album.Clone(), true
}

// List returns copies of every album in creation order.
func (s *Store) List() []models.ManualAlbum {
	out := make([]models.ManualAlbum, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.albums[id].Clone())
	}
	return out
}

// ToggleMembership flips mediaID in the album. Unknown albums are ignored.
// Removing the cover's media also clears the cover.
func (s *Store) ToggleMembership(albumID, mediaID string) bool {
	album, ok := s.albums[albumID]
	if !ok || mediaID == "" {
		return false
	}
	if album.Has(mediaID) {
		delete(album.MediaIDs, mediaID)
		if album.CoverMediaID == mediaID {
			album.CoverMediaID = ""
		}
		return true
	}
	album.MediaIDs[mediaID] = struct{}{}
	return true
}

// SetCover picks the album cover, adding it as a member when needed.
func (s *Store) SetCover(albumID, mediaID string) bool {
	album, ok := s.albums[albumID]
	if !ok || mediaID == "" {
		return false
	}
	album.MediaIDs[mediaID] = struct{}{}
	album.CoverMediaID = mediaID
	return true
}

// Rename replaces the title. Blank titles are ignored.
func (s *Store) Rename(albumID, title string) bool {
	album, ok := s.albums[albumID]
	title = strings.TrimSpace(title)
	if !ok || title == "" {
		return false
	}
	album.Title = title
	return true
}

// Delete removes the album. Member media are untouched.
func (s *Store) Delete(albumID string) bool {
	if _, ok := s.albums[albumID]; !ok {
		return false
	}
	delete(s.albums, albumID)
	for i, id := range s.order {
		if id == albumID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// ForgetMedia drops mediaID from every album, clearing covers that pointed at
// it. It returns the number of albums changed.
func (s *Store) ForgetMedia(mediaID string) int {
	changed := 0
	for _, id := range s.order {
		album := s.albums[id]
		if !album.Has(mediaID) {
			continue
		}
		delete(album.MediaIDs, mediaID)
		if album.CoverMediaID == mediaID {
			album.CoverMediaID = ""
		}
		changed++
	}
	return changed
}

// Snapshot is the persistable state of a Store.
type Snapshot struct {
	Albums  []models.ManualAlbum
	Created int
}

// Snapshot copies the store contents.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{Albums: s.List(), Created: s.created}
}

// Restore replaces the store contents. Albums keep the given order, and the
// creation counter never moves backwards past an existing album's sequence.
func (s *Store) Restore(snap Snapshot) {
	s.albums = make(map[string]*models.ManualAlbum, len(snap.Albums))
	s.order = s.order[:0]
	s.created = snap.Created
	for _, a := range snap.Albums {
		if a.ID == "" {
			continue
		}
		album := a.Clone()
		if album.CoverMediaID != "" {
			album.MediaIDs[album.CoverMediaID] = struct{}{}
		}
		if _, dup := s.albums[album.ID]; !dup {
			s.order = append(s.order, album.ID)
		}
		s.albums[album.ID] = &album
		if album.CreatedSeq > s.created {
			s.created = album.CreatedSeq
		}
	}
}
