package adapthttp

import (
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cycletrack/internal/app"
	"cycletrack/internal/inference"
)

func (s *Server) handlePeakStatus(w http.ResponseWriter, r *http.Request) {
	rep, err := s.journal.Replica(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	cycle := rep.CycleByID(chi.URLParam(r, "cycleID"))
	if cycle == nil {
		writeServiceError(w, app.ErrCycleNotFound)
		return
	}
	labels := inference.ResolvePeakStatuses(cycle.Entries, s.today())
	writeJSON(w, http.StatusOK, map[string]any{"labels": labels})
}

func (s *Server) handleIntegrity(w http.ResponseWriter, r *http.Request) {
	rep, err := s.journal.Replica(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"report": inference.IntegrityReport(rep.Cycles)})
}

func (s *Server) handleContiguity(w http.ResponseWriter, r *http.Request) {
	rep, err := s.journal.Replica(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	q := r.URL.Query()
	warning := inference.ContiguityWarning(rep.Cycles, chi.URLParam(r, "cycleID"),
		q.Get("draftStart"), q.Get("draftEnd"))
	writeJSON(w, http.StatusOK, map[string]any{"warning": warning})
}

func (s *Server) handleThermalShift(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Baseline       float64    `json:"baseline"`
		FirstHighIndex int        `json:"firstHighIndex"`
		Temperatures   []*float64 `json:"temperatures"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	points := make([]inference.TempPoint, len(body.Temperatures))
	for i, t := range body.Temperatures {
		if t == nil {
			points[i] = inference.TempPoint{Temperature: math.NaN()}
			continue
		}
		points[i] = inference.TempPoint{Temperature: *t}
	}
	result := inference.ConfirmThermalShift(body.Baseline, body.FirstHighIndex, points, nil)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCPM(w http.ResponseWriter, r *http.Request) {
	in, err := metricInput(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, inference.BuildCPM(in))
}

func (s *Server) handleT8(w http.ResponseWriter, r *http.Request) {
	in, err := metricInput(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, inference.BuildT8(in))
}

func metricInput(r *http.Request) (inference.MetricInput, error) {
	var body struct {
		Mode           string `json:"mode"`
		AutoBase       *int   `json:"autoBase"`
		AutoFinal      *int   `json:"autoFinal"`
		AutoDeduction  *int   `json:"autoDeduction"`
		AutoComputable bool   `json:"autoComputable"`
		ManualBase     *int   `json:"manualBase"`
		ManualFinal    *int   `json:"manualFinal"`
		CycleCount     int    `json:"cycleCount"`
	}
	if err := parseJSON(r, &body); err != nil {
		return inference.MetricInput{}, err
	}
	return inference.MetricInput{
		Mode:           inference.MetricMode(body.Mode),
		AutoBase:       body.AutoBase,
		AutoFinal:      body.AutoFinal,
		AutoDeduction:  body.AutoDeduction,
		AutoComputable: body.AutoComputable,
		ManualBase:     body.ManualBase,
		ManualFinal:    body.ManualFinal,
		CycleCount:     body.CycleCount,
	}, nil
}
