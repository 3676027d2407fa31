package handlers

import (
	"net/http"
	"strings"

	"github.com/PaulRosu01/PrivatePixel/internal/library"
	"github.com/PaulRosu01/PrivatePixel/internal/logging"
	"github.com/PaulRosu01/PrivatePixel/internal/models"
)

// LibraryHandler serves the timeline and the local edits a UI makes: albums,
// the active selection, filters, favorites and select mode.
type LibraryHandler struct {
	Library   *library.Library
	Persister LibraryPersister
}

type stateResponse struct {
	Selection      models.Selection  `json:"selection"`
	EditingAlbumID string            `json:"editingAlbumId,omitempty"`
	SelectMode     bool              `json:"selectMode"`
	Selected       []string          `json:"selected"`
	Filter         models.TypeFilter `json:"filter"`
	Query          string            `json:"query,omitempty"`
	ViewerID       string            `json:"viewerId,omitempty"`
}

func newStateResponse(s library.State) stateResponse {
	selected := s.Selected
	if selected == nil {
		selected = []string{}
	}
	return stateResponse{
		Selection:      s.Selection,
		EditingAlbumID: s.EditingAlbumID,
		SelectMode:     s.SelectMode,
		Selected:       selected,
		Filter:         s.Filter,
		Query:          s.Query,
		ViewerID:       s.ViewerID,
	}
}

type timelineResponse struct {
	Groups []models.TimelineGroup `json:"groups"`
	State  stateResponse          `json:"state"`
}

type albumsResponse struct {
	Smart  []models.SmartAlbum `json:"smart"`
	Manual []models.AlbumView  `json:"manual"`
}

type createAlbumRequest struct {
	Title string `json:"title" validate:"max=200"`
}

type renameAlbumRequest struct {
	Title string `json:"title" validate:"max=200"`
}

type mediaRequest struct {
	MediaID string `json:"mediaId" validate:"required"`
}

type selectionRequest struct {
	AlbumID string `json:"albumId"`
	Edit    bool   `json:"edit"`
}

type filtersRequest struct {
	Type  *string `json:"type" validate:"omitempty,oneof=all photos videos"`
	Query *string `json:"query" validate:"omitempty,max=200"`
}

type favoriteRequest struct {
	Favorite bool `json:"favorite"`
}

type selectModeRequest struct {
	Enabled bool `json:"enabled"`
}

type viewerRequest struct {
	MediaID string `json:"mediaId"`
}

// Timeline handles GET /api/v1/timeline. Without query parameters it renders
// the stored UI state; album, type and q build a one-off view instead.
func (h LibraryHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	state := h.Library.State()
	if !q.Has("album") && !q.Has("type") && !q.Has("q") {
		respondJSON(ctx, w, http.StatusOK, timelineResponse{Groups: nonNilGroups(h.Library.Timeline()), State: newStateResponse(state)})
		return
	}

	view := library.View{
		Selection:      state.Selection,
		EditingAlbumID: state.EditingAlbumID,
		Filter:         state.Filter,
		Query:          state.Query,
	}
	if q.Has("album") {
		sel, ok := h.Library.SelectionFor(q.Get("album"))
		if !ok {
			respondError(ctx, w, http.StatusNotFound, "album not found")
			return
		}
		view.Selection = sel
		view.EditingAlbumID = ""
	}
	if q.Has("type") {
		filter, ok := parseFilter(q.Get("type"))
		if !ok {
			respondError(ctx, w, http.StatusBadRequest, "type must be all, photos or videos")
			return
		}
		view.Filter = filter
	}
	if q.Has("q") {
		view.Query = strings.TrimSpace(q.Get("q"))
	}

	respondJSON(ctx, w, http.StatusOK, timelineResponse{Groups: nonNilGroups(h.Library.TimelineFor(view)), State: newStateResponse(state)})
}

// Albums handles GET /api/v1/albums.
func (h LibraryHandler) Albums(w http.ResponseWriter, r *http.Request) {
	respondJSON(r.Context(), w, http.StatusOK, albumsResponse{
		Smart:  h.Library.SmartAlbums(),
		Manual: h.Library.ManualAlbums(),
	})
}

// CreateAlbum handles POST /api/v1/albums.
func (h LibraryHandler) CreateAlbum(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createAlbumRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	album := h.Library.CreateAlbum(req.Title)
	logging.FromContext(ctx).Info("album created", "albumId", album.ID, "title", album.Title)
	h.persist(r)
	respondJSON(ctx, w, http.StatusCreated, h.albumView(album.ID))
}

// RenameAlbum handles POST /api/v1/albums/{id}/rename. Blank titles and
// unknown albums leave the collection unchanged.
func (h LibraryHandler) RenameAlbum(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	albumID := r.PathValue("id")

	var req renameAlbumRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}
	if h.Library.RenameAlbum(albumID, req.Title) {
		h.persist(r)
	}
	respondJSON(ctx, w, http.StatusOK, h.albumView(albumID))
}

// ToggleMember handles POST /api/v1/albums/{id}/members.
func (h LibraryHandler) ToggleMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	albumID := r.PathValue("id")

	var req mediaRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}
	if h.Library.ToggleMembership(albumID, req.MediaID) {
		h.persist(r)
	}
	respondJSON(ctx, w, http.StatusOK, h.albumView(albumID))
}

// SetCover handles POST /api/v1/albums/{id}/cover.
func (h LibraryHandler) SetCover(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	albumID := r.PathValue("id")

	var req mediaRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}
	if h.Library.SetCover(albumID, req.MediaID) {
		h.persist(r)
	}
	respondJSON(ctx, w, http.StatusOK, h.albumView(albumID))
}

// DeleteAlbum handles DELETE /api/v1/albums/{id}. Member media are kept and
// deleting an album that does not exist is a no-op.
func (h LibraryHandler) DeleteAlbum(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	albumID := r.PathValue("id")

	if h.Library.DeleteAlbum(albumID) {
		logging.FromContext(ctx).Info("album deleted", "albumId", albumID)
		h.persist(r)
	}
	w.WriteHeader(http.StatusNoContent)
}

// Select handles POST /api/v1/selection. An empty album id selects All; edit
// opens a manual album for editing.
func (h LibraryHandler) Select(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req selectionRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	var ok bool
	if req.Edit {
		ok = h.Library.EditAlbum(req.AlbumID)
	} else {
		ok = h.Library.SelectAlbum(req.AlbumID)
		if ok {
			h.Library.StopEditing()
		}
	}
	if !ok {
		respondError(ctx, w, http.StatusNotFound, "album not found")
		return
	}
	respondJSON(ctx, w, http.StatusOK, newStateResponse(h.Library.State()))
}

// Filters handles POST /api/v1/filters. Omitted fields are left unchanged.
func (h LibraryHandler) Filters(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req filtersRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Type != nil {
		filter, _ := parseFilter(*req.Type)
		h.Library.SetFilter(filter)
	}
	if req.Query != nil {
		h.Library.SetQuery(*req.Query)
	}
	respondJSON(ctx, w, http.StatusOK, newStateResponse(h.Library.State()))
}

// SelectMode handles POST /api/v1/select-mode.
func (h LibraryHandler) SelectMode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req selectModeRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Enabled {
		h.Library.EnterSelectMode()
	} else {
		h.Library.ExitSelectMode()
	}
	respondJSON(ctx, w, http.StatusOK, newStateResponse(h.Library.State()))
}

// ToggleSelected handles POST /api/v1/media/{id}/select.
func (h LibraryHandler) ToggleSelected(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	mediaID := r.PathValue("id")

	if !h.Library.State().SelectMode {
		respondError(ctx, w, http.StatusConflict, "select mode is off")
		return
	}
	if !h.Library.ToggleSelected(mediaID) {
		respondError(ctx, w, http.StatusNotFound, "media not found")
		return
	}
	respondJSON(ctx, w, http.StatusOK, newStateResponse(h.Library.State()))
}

// Favorite handles POST /api/v1/media/{id}/favorite.
func (h LibraryHandler) Favorite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	mediaID := r.PathValue("id")

	var req favoriteRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	if !h.Library.SetFavorite(mediaID, req.Favorite) {
		respondError(ctx, w, http.StatusNotFound, "media not found")
		return
	}
	h.persist(r)

	rec, _ := h.Library.Get(mediaID)
	respondJSON(ctx, w, http.StatusOK, rec)
}

// Viewer handles POST /api/v1/viewer. An empty media id closes the viewer.
func (h LibraryHandler) Viewer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req viewerRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	if req.MediaID == "" {
		h.Library.CloseViewer()
	} else if !h.Library.OpenViewer(req.MediaID) {
		respondError(ctx, w, http.StatusNotFound, "media not found")
		return
	}
	respondJSON(ctx, w, http.StatusOK, newStateResponse(h.Library.State()))
}

func (h LibraryHandler) albumView(albumID string) models.AlbumView {
	for _, view := range h.Library.ManualAlbums() {
		if view.ID == albumID {
			return view
		}
	}
	return models.AlbumView{ID: albumID}
}

func (h LibraryHandler) persist(r *http.Request) {
	if h.Persister == nil {
		return
	}
	if err := h.Persister.Persist(r.Context()); err != nil {
		logging.FromContext(r.Context()).Error("persist library", "error", err)
	}
}

func parseFilter(value string) (models.TypeFilter, bool) {
	switch models.TypeFilter(strings.ToLower(strings.TrimSpace(value))) {
	case "", models.FilterAll:
		return models.FilterAll, true
	case models.FilterPhotos:
		return models.FilterPhotos, true
	case models.FilterVideos:
		return models.FilterVideos, true
	default:
		return "", false
	}
}

func nonNilGroups(groups []models.TimelineGroup) []models.TimelineGroup {
	if groups == nil {
		return []models.TimelineGroup{}
	}
	return groups
}
