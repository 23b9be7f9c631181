package internal

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"fleet-inspection-api/internal/config"
	"fleet-inspection-api/internal/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

type Server struct {
	DB      *sql.DB
	Pool    *pgxpool.Pool
	Router  *chi.Mux
	Metrics *Metrics
	Logger  *zap.Logger
}

func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	// Also create a pgxpool for the bulk importer
	pool, err := pgxpool.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &Server{
		DB:      db,
		Pool:    pool,
		Router:  chi.NewRouter(),
		Metrics: NewMetrics(),
		Logger:  logger,
	}

	s.Router.Use(s.requestLogger)
	if cfg.EnableMetrics {
		s.Router.Use(s.Metrics.Middleware())
		s.Router.Get("/metrics", s.Metrics.Handler().ServeHTTP)
	}
	if cfg.EnableCORS {
		s.Router.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	s.Router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	s.Router.Get("/dbping", func(w http.ResponseWriter, r *http.Request) {
		if err := s.DB.PingContext(r.Context()); err != nil {
			http.Error(w, "db: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		if _, err := w.Write([]byte("db: ok")); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	s.mountRoutes(s.Router)
	return s, nil
}

// Close properly shuts down the server and cleans up resources
func (s *Server) Close(ctx context.Context) error {
	if s.Pool != nil {
		s.Pool.Close()
	}
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// mountRoutes mounts one route per operation.
func (s *Server) mountRoutes(r chi.Router) {
	// Vehicles
	r.Post("/vehicles", s.createVehicle)
	r.Get("/vehicles", s.getVehicles)
	r.Get("/vehicles/{id}", s.getVehicleByID)
	r.Patch("/vehicles/{id}", s.updateVehicle)
	r.Delete("/vehicles/{id}", s.deleteVehicle)
	r.Get("/vehicles/{id}/inspections", s.getVehicleInspections)

	// Inspectors
	r.Post("/inspectors", s.createInspector)
	r.Get("/inspectors", s.getInspectors)
	r.Get("/inspectors/{id}", s.getInspectorByID)
	r.Patch("/inspectors/{id}", s.updateInspector)
	r.Delete("/inspectors/{id}", s.deleteInspector)

	// Inspections and checklist items
	r.Post("/inspections", s.createInspection)
	r.Get("/inspections", s.getInspections)
	r.Patch("/inspections/{id}", s.updateInspection)
	r.Get("/inspections/{id}/details", s.getInspectionDetails)
	r.Post("/inspections/{id}/items", s.createInspectionItems)
	r.Patch("/inspection-items/{id}", s.updateInspectionItem)

	// Reporting
	r.Get("/reports/inspections", s.getInspectionReport)

	// Excel bulk vehicle import
	importsHandler := handlers.NewImportsHandler(s.Pool, s.Logger)
	r.Post("/imports/excel", importsHandler.UploadExcel)
}
