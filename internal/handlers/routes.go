package handlers

import (
	"net/http"

	"github.com/PaulRosu01/PrivatePixel/internal/library"
	"github.com/PaulRosu01/PrivatePixel/internal/middleware"
)

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{Library: deps.Library}
	lib := LibraryHandler{Library: deps.Library, Persister: deps.Persister}
	sync := SyncHandler{Service: deps.Sync}
	limited := middleware.RateLimit(deps.Limiter, "sync")

	mux.HandleFunc("/healthz", health.Handle)

	mux.HandleFunc("GET /api/v1/timeline", lib.Timeline)
	mux.HandleFunc("GET /api/v1/albums", lib.Albums)
	mux.HandleFunc("POST /api/v1/albums", lib.CreateAlbum)
	mux.HandleFunc("POST /api/v1/albums/{id}/rename", lib.RenameAlbum)
	mux.HandleFunc("POST /api/v1/albums/{id}/members", lib.ToggleMember)
	mux.HandleFunc("POST /api/v1/albums/{id}/cover", lib.SetCover)
	mux.HandleFunc("DELETE /api/v1/albums/{id}", lib.DeleteAlbum)
	mux.HandleFunc("POST /api/v1/selection", lib.Select)
	mux.HandleFunc("POST /api/v1/filters", lib.Filters)
	mux.HandleFunc("POST /api/v1/select-mode", lib.SelectMode)
	mux.HandleFunc("POST /api/v1/viewer", lib.Viewer)
	mux.HandleFunc("POST /api/v1/media/{id}/select", lib.ToggleSelected)
	mux.HandleFunc("POST /api/v1/media/{id}/favorite", lib.Favorite)

	mux.Handle("POST /api/v1/scan", limited(http.HandlerFunc(sync.Scan)))
	mux.Handle("POST /api/v1/sync", limited(http.HandlerFunc(sync.Pull)))
	mux.Handle("POST /api/v1/upload", limited(http.HandlerFunc(sync.Upload)))
	mux.Handle("DELETE /api/v1/media/{id}", limited(http.HandlerFunc(sync.DeleteMedia)))
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Library   *library.Library
	Sync      SyncService
	Persister LibraryPersister
	Limiter   middleware.RateLimiter
}
