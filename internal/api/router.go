package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", app.HealthHandler)

	r.Post("/analyze", app.AnalyzeHandler)
	r.Post("/analyze/batch", app.AnalyzeBatchHandler)
	r.Get("/ws/analyze", app.AnalyzeStreamHandler)

	r.Get("/sessions/{sessionID}", app.SessionHandler)

	r.Post("/videos", app.UploadVideoHandler)
	r.Get("/videos", app.ListVideosHandler)
	r.Post("/videos/{id}/analyze", app.AnalyzeVideoHandler)

	return r
}
