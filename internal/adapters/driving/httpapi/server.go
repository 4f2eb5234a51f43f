package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/goforscrim/scrimsync/internal/core/domain"
	"github.com/goforscrim/scrimsync/internal/core/ports/driven"
	"github.com/goforscrim/scrimsync/internal/core/ports/driving"
)

// Server wires the HTTP handlers to the core services.
type Server struct {
	config   domain.Config
	records  driven.RecordStore
	syncer   driving.Syncer
	notifier driven.Notifier

	// now is a test hook.
	now func() time.Time
}

// NewServer creates a server. The notifier may be nil when no contact
// webhook is configured; the contact endpoint then responds 503.
func NewServer(config domain.Config, records driven.RecordStore, syncer driving.Syncer, notifier driven.Notifier) *Server {
	return &Server{
		config:   config,
		records:  records,
		syncer:   syncer,
		notifier: notifier,
		now:      time.Now,
	}
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(logRequests)

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/scrims", s.handleListScrims)
		r.Post("/sync", s.handleSync(domain.SyncIncremental))
		r.Post("/sync/full", s.handleSync(domain.SyncFullWindow))
		r.Post("/cleanup", s.handleCleanup)
		r.Post("/contact", s.handleContact)
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
