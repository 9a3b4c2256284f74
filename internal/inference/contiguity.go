package inference

import (
	"fmt"

	"cycletrack/internal/domain"
)

// BoundaryReport describes how one cycle meets its neighbors. Gaps are never
// negative: an overlap is a distinct condition reported elsewhere, so it
// clamps to a zero gap here.
type BoundaryReport struct {
	GapBeforeDays int    `json:"gapBeforeDays"`
	GapAfterDays  int    `json:"gapAfterDays"`
	HasGapBefore  bool   `json:"hasGapBefore"`
	HasGapAfter   bool   `json:"hasGapAfter"`
	PrevCycleID   string `json:"prevCycleId,omitempty"`
	NextCycleID   string `json:"nextCycleId,omitempty"`
}

// IntegrityReport computes boundary gaps for every cycle against its
// neighbors. The expected boundary is the day immediately after the previous
// cycle's end and the day immediately before the next cycle's start.
//
// cycles must already be sorted by start date with no duplicate starts; the
// journal service guarantees that before any list reaches this function.
func IntegrityReport(cycles []domain.Cycle) map[string]BoundaryReport {
	out := make(map[string]BoundaryReport, len(cycles))
	for i, c := range cycles {
		var rep BoundaryReport
		if i > 0 {
			prev := cycles[i-1]
			rep.PrevCycleID = prev.ID
			if expected := domain.AddDays(prev.EndDate, 1); expected != "" {
				rep.GapBeforeDays = clampGap(expected, c.StartDate)
				rep.HasGapBefore = rep.GapBeforeDays > 0
			}
		}
		if i < len(cycles)-1 {
			next := cycles[i+1]
			rep.NextCycleID = next.ID
			if expected := domain.AddDays(next.StartDate, -1); expected != "" && c.EndDate != "" {
				rep.GapAfterDays = clampGap(c.EndDate, expected)
				rep.HasGapAfter = rep.GapAfterDays > 0
			}
		}
		out[c.ID] = rep
	}
	return out
}

// Warning is the result of checking one cycle's draft dates against its
// neighbors before saving.
type Warning struct {
	ExpectedStart string `json:"expectedStart,omitempty"`
	ExpectedEnd   string `json:"expectedEnd,omitempty"`
	GapBeforeDays int    `json:"gapBeforeDays"`
	GapAfterDays  int    `json:"gapAfterDays"`
	HasGapBefore  bool   `json:"hasGapBefore"`
	HasGapAfter   bool   `json:"hasGapAfter"`

	AutoAdjustStartDate string `json:"autoAdjustStartDate,omitempty"`
	AutoAdjustEndDate   string `json:"autoAdjustEndDate,omitempty"`
	CanAutoAdjust       bool   `json:"canAutoAdjust"`
	AutoAdjustReason    string `json:"autoAdjustReason,omitempty"`
}

// ContiguityWarning evaluates draft start/end dates for the cycle with the
// given id while the user is still editing. Dates that fail to parse are
// treated as absent. The auto-adjust suggestion snaps the draft to the
// expected boundaries unless that would invert the cycle, in which case
// CanAutoAdjust is false and AutoAdjustReason says why.
func ContiguityWarning(cycles []domain.Cycle, cycleID, draftStart, draftEnd string) Warning {
	var w Warning

	idx := -1
	for i := range cycles {
		if cycles[i].ID == cycleID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return w
	}

	if idx > 0 {
		w.ExpectedStart = domain.AddDays(cycles[idx-1].EndDate, 1)
	}
	if idx < len(cycles)-1 {
		w.ExpectedEnd = domain.AddDays(cycles[idx+1].StartDate, -1)
	}

	if w.ExpectedStart != "" {
		w.GapBeforeDays = clampGap(w.ExpectedStart, draftStart)
		w.HasGapBefore = w.GapBeforeDays > 0
	}
	if w.ExpectedEnd != "" {
		w.GapAfterDays = clampGap(draftEnd, w.ExpectedEnd)
		w.HasGapAfter = w.GapAfterDays > 0
	}

	w.AutoAdjustStartDate = w.ExpectedStart
	w.AutoAdjustEndDate = w.ExpectedEnd
	w.CanAutoAdjust = true

	// Guard against the auto-adjust action silently producing a cycle with
	// negative length.
	start := w.AutoAdjustStartDate
	if start == "" {
		start = draftStart
	}
	end := w.AutoAdjustEndDate
	if end == "" {
		end = draftEnd
	}
	if d, ok := domain.DaysBetween(start, end); ok && d < 0 {
		w.CanAutoAdjust = false
		w.AutoAdjustReason = fmt.Sprintf("adjusted start %s would fall after adjusted end %s", start, end)
	}
	return w
}

// clampGap returns the number of days from a to b, floored at zero. A
// malformed date on either side counts as no gap.
func clampGap(a, b string) int {
	d, ok := domain.DaysBetween(a, b)
	if !ok || d < 0 {
		return 0
	}
	return d
}
