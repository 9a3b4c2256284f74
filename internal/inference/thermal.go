package inference

import (
	"fmt"
	"math"
)

// highMargin is how far above baseline the decisive high reading must sit
// under the postpartum rules.
const highMargin = 0.2

// floatSlack absorbs binary rounding noise when comparing a reading against
// baseline + highMargin.
const floatSlack = 1e-9

// ShiftRule tags which postpartum confirmation rule fired.
type ShiftRule string

// Confirmation rule tags.
const (
	RuleFourHigh      ShiftRule = "pp-4-high"
	RuleExOneFiveHigh ShiftRule = "pp-ex1-5-high"
	RuleExTwoFiveHigh ShiftRule = "pp-ex2-5-high"
)

// TempPoint is one charted day as seen by the classifier. Temperature is
// the display temperature; NaN means no reading.
type TempPoint struct {
	Temperature float64
}

// ShiftResult is the structured outcome of a thermal-shift evaluation.
// Every code path produces one; the classifier never fails.
type ShiftResult struct {
	Confirmed         bool      `json:"confirmed"`
	ConfirmationIndex int       `json:"confirmationIndex"`
	Rule              ShiftRule `json:"rule,omitempty"`
	// UsedIndices is the exact set of days consumed by the evaluation,
	// starting with the last low day that established the baseline and
	// followed by every visited day in order.
	UsedIndices         []int `json:"usedIndices"`
	HighSequenceIndices []int `json:"highSequenceIndices"`
	RequireRebaseline   bool  `json:"requireRebaseline"`
}

// shiftState is a named state of the confirmation machine.
type shiftState int

const (
	stateScanning shiftState = iota
	stateExceptionTwo
	stateConfirmed
	stateRequiresRebaseline
)

func (s shiftState) String() string {
	switch s {
	case stateScanning:
		return "Scanning"
	case stateExceptionTwo:
		return "ExceptionTwoActive"
	case stateConfirmed:
		return "Confirmed"
	case stateRequiresRebaseline:
		return "RequiresRebaseline"
	}
	return fmt.Sprintf("shiftState(%d)", int(s))
}

// shiftMachine evaluates one reading at a time. The transition taken depends
// only on the current state, the day classification (high vs. low-or-line)
// and the position of the reading within the high sequence.
type shiftMachine struct {
	baseline  float64
	threshold float64
	state     shiftState
	rule      ShiftRule
	highs     []float64
	lowDays   int
	confirmAt int
}

func newShiftMachine(baseline float64) *shiftMachine {
	return &shiftMachine{
		baseline:  baseline,
		threshold: baseline + highMargin,
		state:     stateScanning,
		confirmAt: -1,
	}
}

func (m *shiftMachine) meetsMargin(temp float64) bool {
	return temp+floatSlack >= m.threshold
}

// observe feeds the reading at index idx into the machine and returns true
// while the machine wants more input.
func (m *shiftMachine) observe(idx int, temp float64) bool {
	if temp > m.baseline {
		m.observeHigh(idx, temp)
	} else {
		m.observeLowOrLine()
	}
	return m.state == stateScanning || m.state == stateExceptionTwo
}

func (m *shiftMachine) observeHigh(idx int, temp float64) {
	m.highs = append(m.highs, temp)
	nth := len(m.highs)

	switch m.state {
	case stateScanning:
		switch nth {
		case 4:
			// The base rule decides at the 3rd high: when it already sits
			// at baseline+0.2 the 4th high confirms. A short 3rd high
			// defers to the 5th (Exception 1).
			if m.meetsMargin(m.highs[2]) {
				m.confirm(idx, RuleFourHigh)
			}
		case 5:
			m.confirm(idx, RuleExOneFiveHigh)
		}
	case stateExceptionTwo:
		switch nth {
		case 4:
			// Under Exception 2 the 4th high must reach baseline+0.2;
			// falling short ends the sequence, not just the rule.
			if !m.meetsMargin(temp) {
				m.state = stateRequiresRebaseline
			}
		case 5:
			m.confirm(idx, RuleExTwoFiveHigh)
		}
	}
}

func (m *shiftMachine) observeLowOrLine() {
	m.lowDays++
	switch {
	case m.lowDays >= 2:
		// A second low/line day is always terminal.
		m.state = stateRequiresRebaseline
	case m.state == stateScanning && len(m.highs) >= 3:
		// An interruption after 3+ highs cannot fall back to Exception 2.
		m.state = stateRequiresRebaseline
	case m.state == stateScanning && len(m.highs) >= 1:
		m.state = stateExceptionTwo
	default:
		m.state = stateRequiresRebaseline
	}
}

func (m *shiftMachine) confirm(idx int, rule ShiftRule) {
	m.state = stateConfirmed
	m.rule = rule
	m.confirmAt = idx
}

// ConfirmThermalShift runs the postpartum high-sequence confirmation from
// the candidate first-high day. It scans forward while each visited point is
// valid and carries a finite temperature, stopping quietly at the first one
// that is not. valid may be nil, in which case every point in range counts.
func ConfirmThermalShift(baseline float64, firstHighIndex int, points []TempPoint, valid func(TempPoint) bool) ShiftResult {
	res := ShiftResult{ConfirmationIndex: -1}
	if firstHighIndex < 0 || firstHighIndex >= len(points) {
		return res
	}
	if firstHighIndex > 0 {
		// The day before the first high is the last low day establishing
		// the baseline; the chart marks it as consumed regardless of outcome.
		res.UsedIndices = append(res.UsedIndices, firstHighIndex-1)
	}

	m := newShiftMachine(baseline)
	for i := firstHighIndex; i < len(points); i++ {
		p := points[i]
		if valid != nil && !valid(p) {
			break
		}
		if math.IsNaN(p.Temperature) || math.IsInf(p.Temperature, 0) {
			break
		}
		res.UsedIndices = append(res.UsedIndices, i)
		if p.Temperature > baseline {
			res.HighSequenceIndices = append(res.HighSequenceIndices, i)
		}
		if !m.observe(i, p.Temperature) {
			break
		}
	}

	switch m.state {
	case stateConfirmed:
		res.Confirmed = true
		res.ConfirmationIndex = m.confirmAt
		res.Rule = m.rule
	case stateRequiresRebaseline:
		res.RequireRebaseline = true
	}
	return res
}
