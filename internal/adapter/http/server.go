// Package adapthttp is the driving HTTP adapter: a thin presentation
// boundary that hands entry and cycle lists to the inference components and
// returns their structured outputs verbatim.
package adapthttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"cycletrack/internal/app"
	"cycletrack/internal/domain"
)

// Server routes requests to the application services.
type Server struct {
	journal *app.JournalService
	sync    *app.SyncService
	metrics http.Handler
	kick    chan<- struct{}
	today   func() string
}

// New creates a Server wired to the given application services.
// metricsHandler may be nil to disable the /metrics endpoint. A successful
// manual sync signals kick, which the background syncer reads as proof of
// connectivity; nil disables the signal.
func New(journal *app.JournalService, sync *app.SyncService, metricsHandler http.Handler, kick chan<- struct{}) *Server {
	return &Server{
		journal: journal,
		sync:    sync,
		metrics: metricsHandler,
		kick:    kick,
		today:   func() string { return domain.FormatDay(time.Now().In(time.Local)) },
	}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(s.userMiddleware)

		r.Get("/cycles", s.handleListCycles)
		r.Post("/cycles", s.handleStartCycle)
		r.Put("/cycles/{cycleID}", s.handleUpdateCycle)
		r.Delete("/cycles/{cycleID}", s.handleDeleteCycle)

		r.Put("/cycles/{cycleID}/entries/{date}", s.handleUpsertEntry)
		r.Delete("/cycles/{cycleID}/entries/{date}", s.handleDeleteEntry)
		r.Post("/cycles/{cycleID}/entries/{date}/toggle-ignore", s.handleToggleIgnore)

		r.Get("/cycles/{cycleID}/peak-status", s.handlePeakStatus)
		r.Get("/cycles/{cycleID}/contiguity", s.handleContiguity)
		r.Get("/integrity", s.handleIntegrity)
		r.Post("/cycles/{cycleID}/thermal-shift", s.handleThermalShift)
		r.Post("/indicators/cpm", s.handleCPM)
		r.Post("/indicators/t8", s.handleT8)

		r.Post("/sync", s.handleSync)
		r.Post("/operations/{opID}/discard", s.handleDiscard)
		r.Post("/cache/reset", s.handleCacheReset)
	})

	return r
}
