package server

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/joseph-ayodele/receipt-engine/internal/receipts"
)

// Server exposes the receipt engine over HTTP.
type Server struct {
	svc    *receipts.Service
	db     *sql.DB
	logger *slog.Logger
}

// NewServer creates the HTTP server around the receipt service. The database
// handle is used only by the health endpoint.
func NewServer(svc *receipts.Service, db *sql.DB, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{svc: svc, db: db, logger: logger}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(cors.Handler(cors.Options{
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	router.Get("/healthz", s.healthz)

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/receipts", func(r chi.Router) {
			r.Post("/", s.uploadReceipt)
			r.With(middleware.AllowContentType("application/json")).Post("/text", s.uploadText)
			r.Get("/", s.listReceipts)
			r.Get("/export", s.exportReceipts)
			r.Delete("/", s.clearReceipts)
			r.Get("/{id}/items", s.receiptItems)
			r.Delete("/{id}", s.deleteReceipt)
		})
	})

	return router
}
