// Package library ties the media collection, the album store and the UI
// filter state together behind a single lock, the way a UI thread would.
package library

import (
	"strings"
	"sync"
	"time"

	"github.com/PaulRosu01/PrivatePixel/internal/albums"
	"github.com/PaulRosu01/PrivatePixel/internal/media"
	"github.com/PaulRosu01/PrivatePixel/internal/models"
)

// State is the mutable UI state the timeline depends on.
type State struct {
	Selection      models.Selection
	EditingAlbumID string
	SelectMode     bool
	Selected       []string
	Filter         models.TypeFilter
	Query          string
	ViewerID       string
}

func (s State) clone() State {
	s.Selected = append([]string(nil), s.Selected...)
	return s
}

// Snapshot is the persistable part of a Library.
type Snapshot struct {
	Records []models.MediaRecord
	Albums  albums.Snapshot
}

// Library serializes every read and write of the collection, albums and UI
// state. I/O never happens while the lock is held.
type Library struct {
	mu         sync.Mutex
	collection *media.Collection
	albums     *albums.Store
	state      State
	now        func() time.Time
}

// Option customises a Library.
type Option func(*Library)

// WithClock overrides the time source used for bucketing.
func WithClock(now func() time.Time) Option {
	return func(l *Library) {
		if now != nil {
			l.now = now
		}
	}
}

// New returns an empty library.
func New(opts ...Option) *Library {
	l := &Library{
		collection: media.NewCollection(nil),
		albums:     albums.NewStore(),
		state:      State{Filter: models.FilterAll},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Timeline builds the current view from scratch.
func (l *Library) Timeline() []models.TimelineGroup {
	l.mu.Lock()
	records := l.collection.Records()
	manual := l.albums.List()
	view := l.viewLocked()
	now := l.now()
	l.mu.Unlock()

	return BuildTimeline(records, manual, view, now)
}

// TimelineFor builds a view with explicit filters without touching the
// stored UI state.
func (l *Library) TimelineFor(view View) []models.TimelineGroup {
	l.mu.Lock()
	records := l.collection.Records()
	manual := l.albums.List()
	now := l.now()
	l.mu.Unlock()

	return BuildTimeline(records, manual, view, now)
}

func (l *Library) viewLocked() View {
	return View{
		Selection:      l.state.Selection,
		EditingAlbumID: l.state.EditingAlbumID,
		Filter:         l.state.Filter,
		Query:          l.state.Query,
	}
}

// State returns a copy of the UI state.
func (l *Library) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.clone()
}

// Records returns the collection in order.
func (l *Library) Records() []models.MediaRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.collection.Records()
}

// Get looks up one record.
func (l *Library) Get(id string) (models.MediaRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.collection.Get(id)
}

// SmartAlbums lists the non-empty smart albums.
func (l *Library) SmartAlbums() []models.SmartAlbum {
	l.mu.Lock()
	records := l.collection.Records()
	l.mu.Unlock()
	return albums.DeriveSmartAlbums(records)
}

// ManualAlbums lists manual albums with their resolved covers.
func (l *Library) ManualAlbums() []models.AlbumView {
	l.mu.Lock()
	records := l.collection.Records()
	manual := l.albums.List()
	state := l.state.clone()
	l.mu.Unlock()

	out := make([]models.AlbumView, 0, len(manual))
	for _, a := range manual {
		view := models.AlbumView{
			ID:      a.ID,
			Title:   a.Title,
			Count:   albums.MemberCount(a, records),
			Editing: state.EditingAlbumID == a.ID,
			Active:  state.Selection.Kind == models.SelectionManual && state.Selection.AlbumID == a.ID,
		}
		if cover, ok := albums.ResolveCover(a, records); ok {
			c := cover
			view.Cover = &c
		}
		out = append(out, view)
	}
	return out
}

// Album returns one manual album.
func (l *Library) Album(albumID string) (models.ManualAlbum, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.albums.Get(albumID)
}

// CreateAlbum adds a manual album, makes it active and opens it for editing.
// Select-for-upload mode is left.
func (l *Library) CreateAlbum(title string) models.ManualAlbum {
	l.mu.Lock()
	defer l.mu.Unlock()

	album := l.albums.Create(title)
	l.state.Selection = models.Selection{Kind: models.SelectionManual, AlbumID: album.ID}
	l.enterEditLocked(album.ID)
	return album
}

// ToggleMembership flips a record in or out of an album.
func (l *Library) ToggleMembership(albumID, mediaID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.albums.ToggleMembership(albumID, mediaID)
}

// SetCover sets an album cover, adding membership as needed.
func (l *Library) SetCover(albumID, mediaID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.albums.SetCover(albumID, mediaID)
}

// RenameAlbum renames an album; blank titles are ignored.
func (l *Library) RenameAlbum(albumID, title string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.albums.Rename(albumID, title)
}

// DeleteAlbum removes an album. If it was active the view falls back to All.
func (l *Library) DeleteAlbum(albumID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.albums.Delete(albumID) {
		return false
	}
	if l.state.Selection.Kind == models.SelectionManual && l.state.Selection.AlbumID == albumID {
		l.state.Selection = models.Selection{}
	}
	if l.state.EditingAlbumID == albumID {
		l.state.EditingAlbumID = ""
	}
	return true
}

// SelectAlbum activates a smart or manual album; an empty id selects All.
// Unknown ids are ignored. Switching albums leaves edit mode.
func (l *Library) SelectAlbum(albumID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	sel, ok := l.selectionLocked(albumID)
	if !ok {
		return false
	}
	if sel != l.state.Selection {
		l.state.EditingAlbumID = ""
	}
	l.state.Selection = sel
	return true
}

// SelectionFor resolves an album id the way SelectAlbum does without
// changing any state.
func (l *Library) SelectionFor(albumID string) (models.Selection, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.selectionLocked(albumID)
}

func (l *Library) selectionLocked(albumID string) (models.Selection, bool) {
	switch {
	case albumID == "":
		return models.Selection{}, true
	case albums.IsSmart(albumID):
		return models.Selection{Kind: models.SelectionSmart, AlbumID: albumID}, true
	default:
		if _, ok := l.albums.Get(albumID); !ok {
			return models.Selection{}, false
		}
		return models.Selection{Kind: models.SelectionManual, AlbumID: albumID}, true
	}
}

// EditAlbum activates a manual album and opens it for editing.
func (l *Library) EditAlbum(albumID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.albums.Get(albumID); !ok {
		return false
	}
	l.state.Selection = models.Selection{Kind: models.SelectionManual, AlbumID: albumID}
	l.enterEditLocked(albumID)
	return true
}

// StopEditing leaves edit mode.
func (l *Library) StopEditing() {
	l.mu.Lock()
	l.state.EditingAlbumID = ""
	l.mu.Unlock()
}

func (l *Library) enterEditLocked(albumID string) {
	l.state.EditingAlbumID = albumID
	l.state.SelectMode = false
	l.state.Selected = nil
}

// EnterSelectMode starts picking records for upload and leaves edit mode.
func (l *Library) EnterSelectMode() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.SelectMode = true
	l.state.EditingAlbumID = ""
	l.state.Selected = nil
}

// ExitSelectMode stops picking records and clears the selection.
func (l *Library) ExitSelectMode() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.SelectMode = false
	l.state.Selected = nil
}

// ToggleSelected flips a record in the upload selection, preserving pick
// order. It is ignored outside select mode or for unknown records.
func (l *Library) ToggleSelected(mediaID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.state.SelectMode || !l.collection.Has(mediaID) {
		return false
	}
	for i, id := range l.state.Selected {
		if id == mediaID {
			l.state.Selected = append(l.state.Selected[:i], l.state.Selected[i+1:]...)
			return true
		}
	}
	l.state.Selected = append(l.state.Selected, mediaID)
	return true
}

// SetFilter changes the media kind filter.
func (l *Library) SetFilter(filter models.TypeFilter) {
	switch filter {
	case models.FilterPhotos, models.FilterVideos:
	default:
		filter = models.FilterAll
	}
	l.mu.Lock()
	l.state.Filter = filter
	l.mu.Unlock()
}

// SetQuery changes the search text.
func (l *Library) SetQuery(query string) {
	l.mu.Lock()
	l.state.Query = strings.TrimSpace(query)
	l.mu.Unlock()
}

// OpenViewer shows a record fullscreen.
func (l *Library) OpenViewer(mediaID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.collection.Has(mediaID) {
		return false
	}
	l.state.ViewerID = mediaID
	return true
}

// CloseViewer closes the fullscreen viewer.
func (l *Library) CloseViewer() {
	l.mu.Lock()
	l.state.ViewerID = ""
	l.mu.Unlock()
}

// SetFavorite updates a record's local favorite flag.
func (l *Library) SetFavorite(mediaID string, favorite bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.collection.SetFavorite(mediaID, favorite)
}

// MergeDeviceScan appends newly seen device records.
func (l *Library) MergeDeviceScan(records []models.MediaRecord) int {
	return l.merge(records, models.OriginDevice)
}

// MergeServerSync appends newly seen server records.
func (l *Library) MergeServerSync(records []models.MediaRecord) int {
	return l.merge(records, models.OriginServer)
}

// MergeMock appends mock seed records.
func (l *Library) MergeMock(records []models.MediaRecord) int {
	return l.merge(records, models.OriginMock)
}

func (l *Library) merge(records []models.MediaRecord, origin models.Origin) int {
	tagged := make([]models.MediaRecord, len(records))
	for i, r := range records {
		r.Origin = origin
		tagged[i] = r
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.collection.Merge(tagged)
}

// RecordUploadSuccess moves a record to server provenance. remoteID is the
// id the server assigned, when known.
func (l *Library) RecordUploadSuccess(localID, remoteID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.collection.MarkUploaded(localID, remoteID)
}

// RecordDeleteFromServer removes a record, drops it from albums and the
// upload selection, and closes the viewer if it was showing it.
func (l *Library) RecordDeleteFromServer(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.collection.Remove(id) {
		return false
	}
	l.albums.ForgetMedia(id)
	if l.state.ViewerID == id {
		l.state.ViewerID = ""
	}
	for i, sel := range l.state.Selected {
		if sel == id {
			l.state.Selected = append(l.state.Selected[:i], l.state.Selected[i+1:]...)
			break
		}
	}
	return true
}

// Snapshot copies the persistable state.
func (l *Library) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Snapshot{Records: l.collection.Records(), Albums: l.albums.Snapshot()}
}

// Restore replaces the collection and albums and resets the UI state.
func (l *Library) Restore(snap Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.collection = media.NewCollection(snap.Records)
	l.albums.Restore(snap.Albums)
	l.state = State{Filter: models.FilterAll}
}
