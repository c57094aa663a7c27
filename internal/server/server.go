// Package server assembles the HTTP router: middleware, health check,
// swagger UI and the upload endpoints.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/fileupload/service/internal/config"
	"github.com/fileupload/service/internal/logging"
	appMiddleware "github.com/fileupload/service/internal/middleware"
	"github.com/fileupload/service/internal/response"
	"github.com/fileupload/service/internal/storage"
	"github.com/fileupload/service/internal/upload"

	_ "github.com/fileupload/service/docs/swagger"
)

// NewRouter wires storage → handler → router.
func NewRouter(cfg *config.Config, store storage.Storage, logger *logging.Logger) http.Handler {
	uploadHandler := upload.NewHandler(store, cfg.MaxUploadBytes(), logger)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Swagger UI — available at /swagger/index.html
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Group(func(r chi.Router) {
		r.Get("/", uploadHandler.ListFiles)
		r.Get("/files/{filename}", uploadHandler.ServeFile)
	})

	r.Group(func(r chi.Router) {
		if cfg.Upload.JWTSecret != "" {
			r.Use(appMiddleware.RequireAuth(cfg.Upload.JWTSecret))
		}
		r.Post("/", uploadHandler.Upload)
	})

	return r
}
