package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/patteyb/twitter-interface/internal/model/feed"
	"github.com/patteyb/twitter-interface/pkg/utils"
)

// SnapshotSource exposes the current view-model.
type SnapshotSource interface {
	Snapshot() feed.Snapshot
}

// Handler serves the JSON view of the assembled feed.
type Handler struct {
	feed SnapshotSource
}

// New creates the JSON API handler.
func New(source SnapshotSource) *Handler {
	return &Handler{feed: source}
}

// RegisterRoutes mounts the JSON routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/snapshot", h.handleSnapshot)
	r.Get("/health", h.handleHealth)
}

func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.feed.Snapshot())
}

// handleHealth reports "degraded" while the error flag is raised.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	snapshot := h.feed.Snapshot()
	status := "healthy"
	if snapshot.Failed {
		status = "degraded"
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"status":      status,
		"snapshot":    snapshot.ID,
		"lastUpdated": snapshot.UpdatedAt.UTC().Format(time.RFC3339),
	})
}
