package stream

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/patteyb/twitter-interface/internal/model/feed"
	"github.com/patteyb/twitter-interface/pkg/utils"
)

const heartbeatInterval = 15 * time.Second

// Publisher hands out snapshot notifications.
type Publisher interface {
	Snapshot() feed.Snapshot
	Subscribe() (<-chan feed.Snapshot, func())
}

// Handler streams snapshot changes as Server-Sent Events.
type Handler struct {
	feed      Publisher
	logger    zerolog.Logger
	heartbeat time.Duration
}

// New creates a stream handler.
func New(publisher Publisher, logger zerolog.Logger) *Handler {
	return &Handler{
		feed:      publisher,
		logger:    logger.With().Str("component", "stream").Logger(),
		heartbeat: heartbeatInterval,
	}
}

// SnapshotEvent is the payload of every "snapshot" event.
type SnapshotEvent struct {
	ID        string    `json:"id"`
	Failed    bool      `json:"failed"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RegisterRoutes mounts the event stream.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stream", h.handleStream)
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	updates, cancel := h.feed.Subscribe()
	defer cancel()

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	ctx := r.Context()
	h.logger.Debug().Msg("opening snapshot stream")

	if err := utils.SendSSEEvent(w, flusher, "snapshot", eventFor(h.feed.Snapshot())); err != nil {
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Debug().Msg("closing snapshot stream")
			return
		case snapshot, open := <-updates:
			if !open {
				return
			}
			if err := utils.SendSSEEvent(w, flusher, "snapshot", eventFor(snapshot)); err != nil {
				return
			}
		case <-ticker.C:
			if err := utils.SendSSEComment(w, flusher, "heartbeat"); err != nil {
				return
			}
		}
	}
}

func eventFor(snapshot feed.Snapshot) SnapshotEvent {
	return SnapshotEvent{ID: snapshot.ID, Failed: snapshot.Failed, UpdatedAt: snapshot.UpdatedAt}
}
