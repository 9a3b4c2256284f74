package inference

import (
	"fmt"
	"strconv"
)

// MetricMode selects where a summary indicator takes its values from.
type MetricMode string

// Metric modes.
const (
	MetricModeNone   MetricMode = "none"
	MetricModeManual MetricMode = "manual"
	MetricModeAuto   MetricMode = "auto"
)

// Mode labels consumed verbatim by the presentation layer.
const (
	modeLabelManual = "Manual"
	modeLabelAuto   = "Auto"
	modeLabelUnused = "Sin usar"
)

// Deduction constants. CPM subtracts 20 days from its base except for users
// with fewer than 12 recorded cycles, where the shorter luteal-phase margin
// widens it to 21. T-8 always subtracts 8.
const (
	cpmDeductionDefault = 20
	cpmDeductionShort   = 21
	cpmCycleCountFloor  = 12
	t8Deduction         = 8
)

// MetricInput feeds one indicator builder.
type MetricInput struct {
	Mode MetricMode

	// Automatically computed pair.
	AutoBase  *int
	AutoFinal *int
	// AutoDeduction overrides the cycle-count default in auto mode (CPM).
	AutoDeduction *int
	// AutoComputable reports whether the automatic computation found an
	// identifiable thermal rise (T-8).
	AutoComputable bool

	// Manual override pair.
	ManualBase  *int
	ManualFinal *int

	CycleCount int
	// Format renders a day number for display. nil falls back to the
	// decimal representation.
	Format func(int) string
}

// Metric is the resolved indicator handed to the presentation layer, which
// uses it verbatim without re-deriving any rule.
type Metric struct {
	Headline     string `json:"headline"`
	ModeLabel    string `json:"modeLabel"`
	Caption      string `json:"caption"`
	ManualSource bool   `json:"manualSource"`
	Base         *int   `json:"base,omitempty"`
	Final        *int   `json:"final,omitempty"`
	Deduction    int    `json:"deduction"`
}

// BuildCPM resolves the earliest-likely-fertile-day countdown indicator.
func BuildCPM(in MetricInput) Metric {
	return buildMetric(in, cpmDeduction(in), true)
}

// BuildT8 resolves the temperature-rise offset indicator.
func BuildT8(in MetricInput) Metric {
	return buildMetric(in, t8Deduction, in.AutoComputable)
}

func cpmDeduction(in MetricInput) int {
	if in.Mode == MetricModeAuto && in.AutoDeduction != nil {
		return *in.AutoDeduction
	}
	if in.Mode == MetricModeAuto && in.CycleCount < cpmCycleCountFloor {
		return cpmDeductionShort
	}
	return cpmDeductionDefault
}

// buildMetric is the shared resolution core of the two builders.
// autoUsable gates the automatic pair; manual and none behave identically
// for both indicators.
func buildMetric(in MetricInput, deduction int, autoUsable bool) Metric {
	m := Metric{Deduction: deduction}

	switch in.Mode {
	case MetricModeManual:
		m.ModeLabel = modeLabelManual
		switch {
		case in.ManualBase != nil:
			m.ManualSource = true
			m.Base = in.ManualBase
			if in.ManualFinal != nil {
				m.Final = in.ManualFinal
			} else {
				f := *in.ManualBase - deduction
				m.Final = &f
			}
		case in.ManualFinal != nil:
			m.ManualSource = true
			m.Final = in.ManualFinal
		default:
			// Manual mode without a stored manual value behaves like a
			// final value with unknown base.
			m.Final = in.AutoFinal
		}
	case MetricModeAuto:
		m.ModeLabel = modeLabelAuto
		if autoUsable {
			m.Base = in.AutoBase
			switch {
			case in.AutoFinal != nil:
				m.Final = in.AutoFinal
			case in.AutoBase != nil:
				f := *in.AutoBase - deduction
				m.Final = &f
			}
		}
	default:
		m.ModeLabel = modeLabelUnused
	}

	format := in.Format
	if format == nil {
		format = strconv.Itoa
	}
	m.Headline = "--"
	if m.Final != nil {
		m.Headline = format(*m.Final)
	}
	m.Caption = caption(m, format)
	return m
}

func caption(m Metric, format func(int) string) string {
	switch {
	case m.Base != nil && m.Final != nil:
		return fmt.Sprintf("%s - %d = %s", format(*m.Base), m.Deduction, format(*m.Final))
	case m.Final != nil:
		return format(*m.Final)
	default:
		return ""
	}
}
