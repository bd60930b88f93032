package page

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/patteyb/twitter-interface/internal/model/feed"
	feedService "github.com/patteyb/twitter-interface/internal/service/feed"
	"github.com/patteyb/twitter-interface/internal/web"
)

const (
	messageRemoteFailure = "Couldn't connect with twitter.com"
	messageGeneric       = "Something went wrong."
)

// FeedService is the part of the assembler the pages need.
type FeedService interface {
	Snapshot() feed.Snapshot
	Refresh(ctx context.Context) error
	RefreshTimeline(ctx context.Context) (feed.Snapshot, error)
	PostStatus(ctx context.Context, text string) error
}

// Renderer executes named page templates.
type Renderer interface {
	Render(w io.Writer, name string, data any) error
}

// Handler serves the server-rendered pages.
type Handler struct {
	feed     FeedService
	renderer Renderer
	logger   zerolog.Logger
}

// New creates the page handler.
func New(feed FeedService, renderer Renderer, logger zerolog.Logger) *Handler {
	return &Handler{
		feed:     feed,
		renderer: renderer,
		logger:   logger.With().Str("component", "pages").Logger(),
	}
}

// RegisterRoutes mounts the page routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Post("/", h.handlePost)
	r.Get("/update", h.handleUpdate)
	r.Get("/refresh", h.handleRefresh)
	r.Get("/error", h.handleError)
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	snapshot := h.feed.Snapshot()
	if snapshot.Failed {
		http.Redirect(w, r, "/error", http.StatusFound)
		return
	}
	h.render(w, r, web.PageIndex, snapshot)
}

func (h *Handler) handlePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}

	err := h.feed.PostStatus(r.Context(), r.PostForm.Get("tweet"))
	switch {
	case errors.Is(err, feedService.ErrEmptyStatus):
		http.Redirect(w, r, "/", http.StatusSeeOther)
	case err != nil:
		http.Redirect(w, r, "/error", http.StatusSeeOther)
	default:
		http.Redirect(w, r, "/update", http.StatusSeeOther)
	}
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.feed.RefreshTimeline(r.Context())
	if err != nil {
		http.Redirect(w, r, "/error", http.StatusFound)
		return
	}
	h.render(w, r, web.PageIndex, snapshot)
}

// handleRefresh reruns the full cycle, which is what clears the error flag.
func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.feed.Refresh(r.Context()); err != nil {
		http.Redirect(w, r, "/error", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request) {
	message := messageGeneric
	if h.feed.Snapshot().Failed {
		message = messageRemoteFailure
	}
	h.render(w, r, web.PageError, struct{ Message string }{Message: message})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.renderer.Render(w, name, data); err != nil {
		h.logger.Error().Err(err).Str("page", name).Str("request_id", middleware.GetReqID(r.Context())).Msg("render failed")
		http.Error(w, messageGeneric, http.StatusInternalServerError)
	}
}
