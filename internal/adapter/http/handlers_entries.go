package adapthttp

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"cycletrack/internal/domain"
)

func (s *Server) handleUpsertEntry(w http.ResponseWriter, r *http.Request) {
	var entry domain.Entry
	if err := parseJSON(r, &entry); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	entry.IsoDate = chi.URLParam(r, "date")

	err := s.journal.UpsertEntry(r.Context(), userID(r), chi.URLParam(r, "cycleID"), entry)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "entry": entry})
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	err := s.journal.DeleteEntry(r.Context(), userID(r), chi.URLParam(r, "cycleID"), chi.URLParam(r, "date"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleToggleIgnore(w http.ResponseWriter, r *http.Request) {
	ignored, err := s.journal.ToggleIgnore(r.Context(), userID(r), chi.URLParam(r, "cycleID"), chi.URLParam(r, "date"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "ignored": ignored})
}
