package adapthttp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	applied, err := s.sync.Drain(r.Context(), userID(r))
	if err != nil {
		// A partial drain is still progress; report both.
		writeJSON(w, http.StatusAccepted, map[string]any{"applied": applied, "error": err.Error()})
		return
	}
	// The remote answered, so other users' backed-off queues can retry now.
	s.signalConnectivity()
	writeJSON(w, http.StatusOK, map[string]any{"applied": applied})
}

func (s *Server) signalConnectivity() {
	if s.kick == nil {
		return
	}
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

func (s *Server) handleDiscard(w http.ResponseWriter, r *http.Request) {
	if err := s.sync.Discard(r.Context(), userID(r), chi.URLParam(r, "opID")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleCacheReset(w http.ResponseWriter, r *http.Request) {
	if err := s.journal.ResetCache(r.Context(), userID(r)); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
