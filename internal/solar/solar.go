// Package solar holds the sizing calculation. It is a placeholder yield model:
// deterministic, side-effect free, and tolerant of any payload shape.
package solar

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	// ReferenceYield is the annual energy per installed kWdc before losses.
	ReferenceYield = 1600.0

	DefaultLossesPct     = 14.0
	DefaultEfficiencyPct = 97.0

	minLosses     = 0.0
	maxLosses     = 0.5
	minEfficiency = 0.80
	maxEfficiency = 0.995
)

// Notes are attached to every result.
var Notes = []string{
	"Placeholder yield model: 1600 kWh per kWdc per year before losses.",
	"Identical inputs always produce identical results.",
}

// Inputs are the numeric fields read from a payload after defaulting.
type Inputs struct {
	PanelWatts    float64
	NumPanels     int64
	LossesPct     float64
	EfficiencyPct float64
}

// Result is the calculation output.
type Result struct {
	DCkW         float64  `json:"dc_kw"`
	KWhPerKWdc   float64  `json:"kwh_per_kwdc"`
	EstAnnualKWh float64  `json:"est_annual_kwh"`
	Notes        []string `json:"notes"`
}

// Map returns the result as a JSON document.
func (r Result) Map() map[string]interface{} {
	notes := make([]interface{}, len(r.Notes))
	for i, n := range r.Notes {
		notes[i] = n
	}
	return map[string]interface{}{
		"dc_kw":          r.DCkW,
		"kwh_per_kwdc":   r.KWhPerKWdc,
		"est_annual_kwh": r.EstAnnualKWh,
		"notes":          notes,
	}
}

// ParseInputs reads pv.panel_watts, pv.num_panels, pv.losses_pct and
// inverter.efficiency_pct. Missing or malformed values take their defaults.
func ParseInputs(payload map[string]interface{}) Inputs {
	pv := section(payload, "pv")
	inverter := section(payload, "inverter")

	return Inputs{
		PanelWatts:    floatOr(pv["panel_watts"], 0),
		NumPanels:     intOr(pv["num_panels"], 0),
		LossesPct:     floatOr(pv["losses_pct"], DefaultLossesPct),
		EfficiencyPct: floatOr(inverter["efficiency_pct"], DefaultEfficiencyPct),
	}
}

// Calculate runs the sizing model on payload. It never fails.
func Calculate(payload map[string]interface{}) Result {
	return CalculateInputs(ParseInputs(payload))
}

// CalculateInputs runs the sizing model on already parsed inputs.
func CalculateInputs(in Inputs) Result {
	dcKW := in.PanelWatts * float64(in.NumPanels) / 1000
	losses := clamp(in.LossesPct/100, minLosses, maxLosses)
	efficiency := clamp(in.EfficiencyPct/100, minEfficiency, maxEfficiency)
	kwhPerKWdc := ReferenceYield * (1 - losses) * efficiency
	annual := dcKW * kwhPerKWdc

	notes := make([]string, len(Notes))
	copy(notes, Notes)

	return Result{
		DCkW:         round(dcKW, 3),
		KWhPerKWdc:   round(kwhPerKWdc, 1),
		EstAnnualKWh: round(annual, 0),
		Notes:        notes,
	}
}

func section(payload map[string]interface{}, key string) map[string]interface{} {
	if payload == nil {
		return nil
	}
	m, _ := payload[key].(map[string]interface{})
	return m
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// round rounds half to even on the exact binary value, so 0.125 -> 0.12 and
// 2.675 (stored as 2.67499...) -> 2.67. Non-finite values become 0.
func round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	if err != nil {
		return 0
	}
	if r == 0 {
		return 0
	}
	return r
}

func floatOr(v interface{}, def float64) float64 {
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}

// intOr truncates fractional numbers toward zero. Strings must hold an integer.
func intOr(v interface{}, def int64) int64 {
	switch n := v.(type) {
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return def
		}
		return i
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
	}

	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt64/2 {
		return def
	}
	return int64(f)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
