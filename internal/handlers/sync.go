package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/PaulRosu01/PrivatePixel/internal/device"
	"github.com/PaulRosu01/PrivatePixel/internal/logging"
	"github.com/PaulRosu01/PrivatePixel/internal/models"
	"github.com/PaulRosu01/PrivatePixel/internal/remote"
	"github.com/PaulRosu01/PrivatePixel/internal/syncer"
)

// SyncHandler exposes the device scan, server sync, upload and remote delete
// operations.
type SyncHandler struct {
	Service SyncService
}

type mergeResponse struct {
	Added int `json:"added"`
}

type uploadRequest struct {
	IDs []string `json:"ids" validate:"omitempty,dive,required"`
}

type progressEvent struct {
	MediaID   string `json:"mediaId"`
	Done      int    `json:"done"`
	Total     int    `json:"total"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Error     string `json:"error,omitempty"`
}

type uploadResponse struct {
	models.UploadReport
	Progress []progressEvent `json:"progress"`
}

// Scan handles POST /api/v1/scan.
func (h SyncHandler) Scan(w http.ResponseWriter, r *http.Request) {
	h.merge(w, r, "device scan", h.Service.ScanDevice)
}

// Pull handles POST /api/v1/sync.
func (h SyncHandler) Pull(w http.ResponseWriter, r *http.Request) {
	h.merge(w, r, "server sync", h.Service.SyncServer)
}

func (h SyncHandler) merge(w http.ResponseWriter, r *http.Request, op string, run func(context.Context) (int, error)) {
	ctx := r.Context()

	added, err := run(ctx)
	if err != nil {
		logging.FromContext(ctx).Error(op+" failed", "error", err)
		respondError(ctx, w, statusFor(err), err.Error())
		return
	}
	respondJSON(ctx, w, http.StatusOK, mergeResponse{Added: added})
}

// Upload handles POST /api/v1/upload. An empty id list uploads the current
// select-mode selection.
func (h SyncHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req uploadRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	events := []progressEvent{}
	progress := func(p syncer.Progress) {
		ev := progressEvent{MediaID: p.MediaID, Done: p.Done, Total: p.Total, Succeeded: p.Succeeded, Failed: p.Failed}
		if p.Err != nil {
			ev.Error = p.Err.Error()
		}
		events = append(events, ev)
	}

	var (
		report models.UploadReport
		err    error
	)
	if len(req.IDs) == 0 {
		report, err = h.Service.UploadSelection(ctx, progress)
	} else {
		report, err = h.Service.Upload(ctx, req.IDs, progress)
	}
	if err != nil {
		logging.FromContext(ctx).Error("upload failed", "error", err)
		respondError(ctx, w, statusFor(err), err.Error())
		return
	}

	respondJSON(ctx, w, http.StatusOK, uploadResponse{UploadReport: report, Progress: events})
}

// DeleteMedia handles DELETE /api/v1/media/{id}. It removes the record from
// the server; device copies stay in the library.
func (h SyncHandler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	mediaID := r.PathValue("id")

	if err := h.Service.DeleteFromServer(ctx, mediaID); err != nil {
		logging.FromContext(ctx).Warn("delete from server failed", "mediaId", mediaID, "error", err)
		respondError(ctx, w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, syncer.ErrUnknownMedia):
		return http.StatusNotFound
	case errors.Is(err, remote.ErrNotOnServer):
		return http.StatusConflict
	case errors.Is(err, device.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, syncer.ErrServerUnavailable), errors.Is(err, device.ErrSourceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, remote.ErrNetwork):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
