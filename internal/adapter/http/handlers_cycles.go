package adapthttp

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"cycletrack/internal/domain"
)

func (s *Server) handleListCycles(w http.ResponseWriter, r *http.Request) {
	var rep *domain.LocalReplica
	var err error
	if r.URL.Query().Get("refresh") == "true" {
		rep, err = s.journal.Refresh(r.Context(), userID(r))
	} else {
		rep, err = s.journal.Replica(r.Context(), userID(r))
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"cycles":       rep.Cycles,
		"pendingCount": len(rep.Pending),
		"lastSyncedAt": rep.LastSyncedAt,
	})
}

func (s *Server) handleStartCycle(w http.ResponseWriter, r *http.Request) {
	var body struct {
		StartDate string `json:"startDate"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	cycle, err := s.journal.StartCycle(r.Context(), userID(r), body.StartDate)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"cycle": cycle})
}

func (s *Server) handleUpdateCycle(w http.ResponseWriter, r *http.Request) {
	var body struct {
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	err := s.journal.UpdateCycleDates(r.Context(), userID(r), chi.URLParam(r, "cycleID"), body.StartDate, body.EndDate)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleDeleteCycle(w http.ResponseWriter, r *http.Request) {
	if err := s.journal.DeleteCycle(r.Context(), userID(r), chi.URLParam(r, "cycleID")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
