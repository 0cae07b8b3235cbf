package main

import (
	"log/slog"
	"net/http"

	"github.com/andriwij/planning-app/internal/handlers"
	"github.com/andriwij/planning-app/internal/httpx"
	"github.com/andriwij/planning-app/internal/middleware"
	"github.com/andriwij/planning-app/internal/services"
	"github.com/andriwij/planning-app/internal/sheets"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux *http.ServeMux
	db  *gorm.DB
	log *slog.Logger
}

// NewApp creates the application with all routes configured.
func NewApp(db *gorm.DB, sheetsClient sheets.Client, log *slog.Logger) *App {
	app := &App{
		mux: http.NewServeMux(),
		db:  db,
		log: log,
	}

	syncSvc := sheets.NewService(db, sheetsClient, log)
	planningSvc := services.NewPlanningService(db)

	ph := handlers.NewPlanningHandler(db, planningSvc, syncSvc, log)
	prh := handlers.NewProductHandler(db)

	// Health & metrics
	app.mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	app.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	app.mux.Handle("GET /metrics", promhttp.Handler())

	// Plannings
	app.mux.HandleFunc("GET /api/plannings", ph.List)
	app.mux.HandleFunc("POST /api/plannings", ph.Create)
	app.mux.HandleFunc("GET /api/plannings/export", ph.Export)
	app.mux.HandleFunc("GET /api/plannings/{id}", ph.Get)
	app.mux.HandleFunc("PUT /api/plannings/{id}", ph.Update)
	app.mux.HandleFunc("DELETE /api/plannings/{id}", ph.Delete)
	app.mux.HandleFunc("POST /api/plannings/{id}/copy", ph.Copy)

	// Product catalog
	app.mux.HandleFunc("GET /api/products", prh.List)
	app.mux.HandleFunc("POST /api/products", prh.Create)
	app.mux.HandleFunc("PUT /api/products/{id}", prh.Update)
	app.mux.HandleFunc("DELETE /api/products/{id}", prh.Delete)

	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	middleware.APIHeaders(a.mux).ServeHTTP(w, r)
}
