// Package inference holds the pure cycle-interpretation algorithms. Every
// function here is a synchronous computation over already-materialized
// entries and cycles; none of them perform I/O or return errors. Malformed
// input degrades to an empty or partial result.
package inference

import "cycletrack/internal/domain"

// Peak status labels emitted by ResolvePeakStatuses.
const (
	LabelPeak      = "P"
	LabelPostOne   = "1"
	LabelPostTwo   = "2"
	LabelPostThree = "3"
)

// ResolvePeakStatuses labels the ovulation peak day and the three days that
// follow it. Placeholders, ignored entries and entries dated after today are
// discarded; among the remaining peak-marked entries the earliest wins; a
// cycle has at most one meaningful peak, so an extra marker is tie-broken,
// not rejected. Labels for days not yet reached are withheld. Absent or
// malformed input yields an empty map.
func ResolvePeakStatuses(entries []domain.Entry, today string) map[string]string {
	out := make(map[string]string)
	todayT, ok := domain.ParseDay(today)
	if !ok {
		return out
	}

	peak := ""
	for _, e := range entries {
		if e.IsPlaceholder() || e.Ignored || e.PeakMarker != domain.PeakDay {
			continue
		}
		d, ok := domain.ParseDay(e.IsoDate)
		if !ok || d.After(todayT) {
			continue
		}
		if peak == "" || e.IsoDate < peak {
			peak = e.IsoDate
		}
	}
	if peak == "" {
		return out
	}

	for i, label := range []string{LabelPeak, LabelPostOne, LabelPostTwo, LabelPostThree} {
		day := domain.AddDays(peak, i)
		d, ok := domain.ParseDay(day)
		if !ok || d.After(todayT) {
			break
		}
		out[day] = label
	}
	return out
}
