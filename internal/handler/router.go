package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/patteyb/twitter-interface/internal/handler/api"
	"github.com/patteyb/twitter-interface/internal/handler/page"
	"github.com/patteyb/twitter-interface/internal/handler/stream"
	"github.com/patteyb/twitter-interface/internal/middleware"
	feedService "github.com/patteyb/twitter-interface/internal/service/feed"
	"github.com/patteyb/twitter-interface/internal/web"
)

// NewRouter wires HTTP routes to the feed service.
func NewRouter(logger zerolog.Logger, feedSvc *feedService.Service, renderer *web.Renderer) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Metrics)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger, "/metrics", "/api/stream"))
	r.Use(chimw.Recoverer)

	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", web.StaticHandler()))

	page.New(feedSvc, renderer, logger).RegisterRoutes(r)

	r.Route("/api", func(apiRouter chi.Router) {
		apiRouter.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "Last-Event-ID"},
			MaxAge:         300,
		}))

		api.New(feedSvc).RegisterRoutes(apiRouter)
		stream.New(feedSvc, logger).RegisterRoutes(apiRouter)
	})

	return r
}
