package inference_test

import (
	"fmt"
	"testing"

	"cycletrack/internal/inference"
)

func iptr(v int) *int { return &v }

func TestBuildCPM_AutoDeductionByCycleCount(t *testing.T) {
	tests := []struct {
		name       string
		cycleCount int
		deduction  *int
		want       int
	}{
		{"few cycles widen the margin", 10, nil, 21},
		{"enough cycles use the default", 14, nil, 20},
		{"boundary uses the default", 12, nil, 20},
		{"explicit deduction wins", 10, iptr(19), 19},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := inference.BuildCPM(inference.MetricInput{
				Mode:          inference.MetricModeAuto,
				AutoBase:      iptr(27),
				AutoDeduction: tc.deduction,
				CycleCount:    tc.cycleCount,
			})
			if m.Deduction != tc.want {
				t.Fatalf("deduction: got %d, want %d", m.Deduction, tc.want)
			}
			if m.Final == nil || *m.Final != 27-tc.want {
				t.Fatalf("final: got %v, want %d", m.Final, 27-tc.want)
			}
			if m.ModeLabel != "Auto" || m.ManualSource {
				t.Fatalf("mode: %+v", m)
			}
		})
	}
}

func TestBuildCPM_ManualDeductionIsFixed(t *testing.T) {
	m := inference.BuildCPM(inference.MetricInput{
		Mode:       inference.MetricModeManual,
		ManualBase: iptr(26),
		CycleCount: 3,
	})
	if m.Deduction != 20 {
		t.Fatalf("manual deduction must be 20, got %d", m.Deduction)
	}
	if m.Final == nil || *m.Final != 6 {
		t.Fatalf("final: got %v", m.Final)
	}
	if !m.ManualSource || m.ModeLabel != "Manual" {
		t.Fatalf("manual flags: %+v", m)
	}
}

func TestBuildCPM_ManualWithoutStoredValue(t *testing.T) {
	// Manual mode with nothing recorded behaves like a final value with
	// unknown base.
	m := inference.BuildCPM(inference.MetricInput{
		Mode:      inference.MetricModeManual,
		AutoFinal: iptr(8),
	})
	if m.Base != nil {
		t.Fatalf("base must be unknown: %+v", m)
	}
	if m.Final == nil || *m.Final != 8 {
		t.Fatalf("final: got %v", m.Final)
	}
	if m.ManualSource {
		t.Fatal("nothing manual was recorded")
	}
}

func TestBuildCPM_NoneModeBlanksEverything(t *testing.T) {
	m := inference.BuildCPM(inference.MetricInput{
		Mode:      inference.MetricModeNone,
		AutoBase:  iptr(27),
		AutoFinal: iptr(7),
	})
	if m.Base != nil || m.Final != nil {
		t.Fatalf("none mode forces nulls: %+v", m)
	}
	if m.ModeLabel != "Sin usar" {
		t.Fatalf("mode label: %q", m.ModeLabel)
	}
	if m.Headline != "--" {
		t.Fatalf("headline: %q", m.Headline)
	}
}

func TestBuildT8_FixedDeduction(t *testing.T) {
	m := inference.BuildT8(inference.MetricInput{
		Mode:           inference.MetricModeAuto,
		AutoBase:       iptr(16),
		AutoComputable: true,
	})
	if m.Deduction != 8 {
		t.Fatalf("t-8 deduction must be 8, got %d", m.Deduction)
	}
	if m.Final == nil || *m.Final != 8 {
		t.Fatalf("final: got %v", m.Final)
	}
}

func TestBuildT8_AutoRequiresComputableRise(t *testing.T) {
	m := inference.BuildT8(inference.MetricInput{
		Mode:     inference.MetricModeAuto,
		AutoBase: iptr(16),
	})
	if m.Base != nil || m.Final != nil {
		t.Fatalf("no identifiable rise, no values: %+v", m)
	}
	if m.ModeLabel != "Auto" {
		t.Fatalf("mode label: %q", m.ModeLabel)
	}
}

func TestBuildT8_ManualIgnoresComputability(t *testing.T) {
	m := inference.BuildT8(inference.MetricInput{
		Mode:       inference.MetricModeManual,
		ManualBase: iptr(14),
	})
	if m.Final == nil || *m.Final != 6 {
		t.Fatalf("final: got %v", m.Final)
	}
	if !m.ManualSource {
		t.Fatalf("manual flags: %+v", m)
	}
}

func TestMetric_FormattingAndCaption(t *testing.T) {
	format := func(d int) string { return fmt.Sprintf("Día %d", d) }
	m := inference.BuildCPM(inference.MetricInput{
		Mode:       inference.MetricModeAuto,
		AutoBase:   iptr(27),
		CycleCount: 14,
		Format:     format,
	})
	if m.Headline != "Día 7" {
		t.Fatalf("headline: %q", m.Headline)
	}
	if m.Caption != "Día 27 - 20 = Día 7" {
		t.Fatalf("caption: %q", m.Caption)
	}
}
