package handlers

import (
	"net/http"

	"github.com/PaulRosu01/PrivatePixel/internal/library"
)

// HealthHandler responds with service health information.
type HealthHandler struct {
	Library *library.Library
}

type healthResponse struct {
	Status  string `json:"status"`
	Records int    `json:"records"`
}

// Handle implements GET /healthz.
func (h HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	payload := healthResponse{Status: "ok"}
	if h.Library != nil {
		payload.Records = len(h.Library.Records())
	}

	respondJSON(r.Context(), w, http.StatusOK, payload)
}
