package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	appMiddleware "github.com/FACorreiaa/go-user-records/app/middleware"
	_ "github.com/FACorreiaa/go-user-records/docs"
	"github.com/FACorreiaa/go-user-records/internal/api"
	"github.com/FACorreiaa/go-user-records/internal/api/records"
	"github.com/FACorreiaa/go-user-records/internal/types"
)

// Config contains dependencies needed for the router setup
type Config struct {
	RecordsHandler records.Handler
	// UploadDir is served read-only under /uploads.
	UploadDir      string
	MaxUploadBytes int64
	AllowedOrigins []string
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (like logger, requestID, recoverer) are expected
// to be applied *before* mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		api.WriteJSONResponse(w, r, http.StatusOK, types.Response{Success: true, Message: "API running"})
	})

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	if cfg.UploadDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir)))
		r.Get("/uploads/*", fs.ServeHTTP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Mount("/users", RecordRoutes(cfg.RecordsHandler, cfg.MaxUploadBytes))
	})

	return r
}

// RecordRoutes mounts the record endpoints. Literal segments are registered
// ahead of /{id} so "search" and "export" are never parsed as ids.
func RecordRoutes(h records.Handler, maxUploadBytes int64) http.Handler {
	r := chi.NewRouter()
	if maxUploadBytes > 0 {
		r.Use(appMiddleware.LimitBody(maxUploadBytes))
	}

	r.Get("/export/csv", h.ExportCSV)
	r.Get("/search", h.SearchRecords)

	r.Get("/", h.ListRecords)
	r.Get("/{id}", h.GetRecord)

	r.Post("/", h.CreateRecord)
	r.Put("/{id}", h.UpdateRecord)

	r.Delete("/{id}", h.DeleteRecord)
	return r
}
