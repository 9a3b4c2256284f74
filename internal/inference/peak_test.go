package inference_test

import (
	"testing"

	"cycletrack/internal/domain"
	"cycletrack/internal/inference"
)

func tempEntry(iso string, temp float64) domain.Entry {
	return domain.Entry{IsoDate: iso, TemperatureRaw: &temp}
}

func peakEntry(iso string, temp float64) domain.Entry {
	e := tempEntry(iso, temp)
	e.PeakMarker = domain.PeakDay
	return e
}

func TestResolvePeakStatuses_FullWindow(t *testing.T) {
	entries := []domain.Entry{
		tempEntry("2024-03-10", 36.4),
		peakEntry("2024-03-11", 36.5),
		tempEntry("2024-03-12", 36.7),
	}
	got := inference.ResolvePeakStatuses(entries, "2024-03-20")
	want := map[string]string{
		"2024-03-11": "P",
		"2024-03-12": "1",
		"2024-03-13": "2",
		"2024-03-14": "3",
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("label for %s: got %q, want %q", k, got[k], v)
		}
	}
}

func TestResolvePeakStatuses_WithholdsFutureLabels(t *testing.T) {
	entries := []domain.Entry{peakEntry("2024-03-11", 36.5)}

	tests := []struct {
		today string
		want  int
	}{
		{"2024-03-11", 1},
		{"2024-03-12", 2},
		{"2024-03-13", 3},
		{"2024-03-14", 4},
		{"2024-03-30", 4},
	}
	for _, tc := range tests {
		got := inference.ResolvePeakStatuses(entries, tc.today)
		if len(got) != tc.want {
			t.Fatalf("today %s: got %d labels (%v), want %d", tc.today, len(got), got, tc.want)
		}
	}
}

func TestResolvePeakStatuses_EarliestPeakWins(t *testing.T) {
	entries := []domain.Entry{
		peakEntry("2024-03-15", 36.6),
		peakEntry("2024-03-11", 36.5),
	}
	got := inference.ResolvePeakStatuses(entries, "2024-03-20")
	if got["2024-03-11"] != "P" {
		t.Fatalf("expected earliest peak to win, got %v", got)
	}
	if _, ok := got["2024-03-15"]; ok && got["2024-03-15"] == "P" {
		t.Fatalf("later peak should not be labeled P: %v", got)
	}
}

func TestResolvePeakStatuses_SkipsIgnoredEntries(t *testing.T) {
	ignored := peakEntry("2024-03-11", 36.5)
	ignored.Ignored = true

	got := inference.ResolvePeakStatuses([]domain.Entry{ignored}, "2024-03-20")
	if len(got) != 0 {
		t.Fatalf("ignored peak must not emit a window, got %v", got)
	}

	// With the earlier peak ignored, the later marker becomes the peak.
	later := peakEntry("2024-03-14", 36.6)
	got = inference.ResolvePeakStatuses([]domain.Entry{ignored, later}, "2024-03-20")
	if got["2024-03-14"] != "P" || got["2024-03-11"] != "" {
		t.Fatalf("expected the unignored peak to win, got %v", got)
	}
}

func TestResolvePeakStatuses_SkipsPlaceholdersAndFuture(t *testing.T) {
	placeholder := domain.Entry{IsoDate: "2024-03-10", PeakMarker: domain.PeakDay}
	future := peakEntry("2024-03-25", 36.5)
	got := inference.ResolvePeakStatuses([]domain.Entry{placeholder, future}, "2024-03-20")
	if len(got) != 0 {
		t.Fatalf("expected empty map, got %v", got)
	}
}

func TestResolvePeakStatuses_MalformedInput(t *testing.T) {
	if got := inference.ResolvePeakStatuses(nil, "2024-03-20"); len(got) != 0 {
		t.Fatalf("nil entries: got %v", got)
	}
	if got := inference.ResolvePeakStatuses([]domain.Entry{peakEntry("2024-03-11", 36.5)}, "garbage"); len(got) != 0 {
		t.Fatalf("malformed today: got %v", got)
	}
	if got := inference.ResolvePeakStatuses([]domain.Entry{peakEntry("bad-date", 36.5)}, "2024-03-20"); len(got) != 0 {
		t.Fatalf("malformed entry date: got %v", got)
	}
}
