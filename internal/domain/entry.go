// Package domain contains the core business entities and interfaces.
package domain

// PeakMarker flags an entry as the charted ovulation peak.
type PeakMarker string

// Peak marker values.
const (
	PeakUnset PeakMarker = ""
	PeakDay   PeakMarker = "peak"
)

// FertilitySymbol is the chart symbol assigned to a day.
type FertilitySymbol string

// Fertility symbols used on the chart.
const (
	SymbolNone     FertilitySymbol = "none"
	SymbolRed      FertilitySymbol = "red"
	SymbolWhite    FertilitySymbol = "white"
	SymbolGreen    FertilitySymbol = "green"
	SymbolSpotting FertilitySymbol = "spotting"
)

// Measurement is one sub-day temperature candidate. At most one measurement
// of an entry is selected.
type Measurement struct {
	Time        string  `json:"time"`
	Temperature float64 `json:"temperature"`
	Selected    bool    `json:"selected"`
}

// Entry is one calendar day's observation within exactly one cycle.
type Entry struct {
	IsoDate              string          `json:"isoDate"`
	TemperatureRaw       *float64        `json:"temperatureRaw,omitempty"`
	TemperatureCorrected *float64        `json:"temperatureCorrected,omitempty"`
	UseCorrected         bool            `json:"useCorrected"`
	MucusSensation       string          `json:"mucusSensation,omitempty"`
	MucusAppearance      string          `json:"mucusAppearance,omitempty"`
	FertilitySymbol      FertilitySymbol `json:"fertilitySymbol,omitempty"`
	Observations         string          `json:"observations,omitempty"`
	HadRelations         bool            `json:"hadRelations"`
	Ignored              bool            `json:"ignored"`
	PeakMarker           PeakMarker      `json:"peakMarker,omitempty"`
	Measurements         []Measurement   `json:"measurements,omitempty"`
}

// DisplayTemperature returns the authoritative temperature for the day:
// the corrected value when UseCorrected is set, otherwise the raw value.
// nil means no temperature was logged.
func (e Entry) DisplayTemperature() *float64 {
	if e.UseCorrected {
		return e.TemperatureCorrected
	}
	return e.TemperatureRaw
}

// CycleDay returns the 1-based day number of the entry within a cycle
// starting on cycleStart, or 0 when either date is malformed.
func (e Entry) CycleDay(cycleStart string) int {
	d, ok := DaysBetween(cycleStart, e.IsoDate)
	if !ok {
		return 0
	}
	return d + 1
}

// IsPlaceholder reports whether the entry is a synthetic calendar filler
// carrying no real observation. Placeholders never participate in inference.
func (e Entry) IsPlaceholder() bool {
	return e.TemperatureRaw == nil &&
		e.TemperatureCorrected == nil &&
		e.MucusSensation == "" &&
		e.MucusAppearance == "" &&
		(e.FertilitySymbol == "" || e.FertilitySymbol == SymbolNone) &&
		e.Observations == "" &&
		!e.HadRelations &&
		len(e.Measurements) == 0
}

// SelectedMeasurement returns the selected sub-day measurement, or nil.
func (e Entry) SelectedMeasurement() *Measurement {
	for i := range e.Measurements {
		if e.Measurements[i].Selected {
			return &e.Measurements[i]
		}
	}
	return nil
}
