package solar

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculate_ReferenceExample(t *testing.T) {
	payload := map[string]interface{}{
		"pv":       map[string]interface{}{"panel_watts": 500.0, "num_panels": 8.0, "losses_pct": 12.0},
		"inverter": map[string]interface{}{"efficiency_pct": 97.0},
	}

	got := Calculate(payload)

	// 1600 * 0.88 * 0.97 = 1365.76; 4.0 * 1365.76 = 5463.04
	assert.Equal(t, 4.0, got.DCkW)
	assert.Equal(t, 1365.8, got.KWhPerKWdc)
	assert.Equal(t, 5463.0, got.EstAnnualKWh)
	assert.Equal(t, Notes, got.Notes)
}

func TestCalculate_Defaults(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]interface{}
		want    Result
	}{
		{
			name:    "nil payload",
			payload: nil,
			want:    Result{DCkW: 0, KWhPerKWdc: 1334.7, EstAnnualKWh: 0},
		},
		{
			name:    "sections of the wrong type",
			payload: map[string]interface{}{"pv": "oops", "inverter": []interface{}{1}},
			want:    Result{DCkW: 0, KWhPerKWdc: 1334.7, EstAnnualKWh: 0},
		},
		{
			name: "malformed numbers fall back",
			payload: map[string]interface{}{
				"pv":       map[string]interface{}{"panel_watts": "abc", "num_panels": "8.5", "losses_pct": nil},
				"inverter": map[string]interface{}{"efficiency_pct": map[string]interface{}{}},
			},
			want: Result{DCkW: 0, KWhPerKWdc: 1334.7, EstAnnualKWh: 0},
		},
		{
			name: "numeric strings and truncated panel count",
			payload: map[string]interface{}{
				"pv": map[string]interface{}{"panel_watts": "400", "num_panels": 10.9},
			},
			want: Result{DCkW: 4.0, KWhPerKWdc: 1334.7, EstAnnualKWh: 5339},
		},
		{
			name: "losses and efficiency are clamped",
			payload: map[string]interface{}{
				"pv":       map[string]interface{}{"panel_watts": 1000, "num_panels": 1, "losses_pct": 90},
				"inverter": map[string]interface{}{"efficiency_pct": 120},
			},
			want: Result{DCkW: 1.0, KWhPerKWdc: 796.0, EstAnnualKWh: 796},
		},
		{
			name: "negative losses clamp to zero, low efficiency to 80",
			payload: map[string]interface{}{
				"pv":       map[string]interface{}{"panel_watts": 250, "num_panels": 4, "losses_pct": -5},
				"inverter": map[string]interface{}{"efficiency_pct": 10},
			},
			want: Result{DCkW: 1.0, KWhPerKWdc: 1280.0, EstAnnualKWh: 1280},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.payload)
			assert.Equal(t, tt.want.DCkW, got.DCkW)
			assert.Equal(t, tt.want.KWhPerKWdc, got.KWhPerKWdc)
			assert.Equal(t, tt.want.EstAnnualKWh, got.EstAnnualKWh)
		})
	}
}

func TestCalculate_JSONNumbers(t *testing.T) {
	var payload map[string]interface{}
	dec := json.NewDecoder(strings.NewReader(`{"pv":{"panel_watts":500,"num_panels":8,"losses_pct":12},"inverter":{"efficiency_pct":97}}`))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&payload))

	got := Calculate(payload)
	assert.Equal(t, 5463.0, got.EstAnnualKWh)
}

func TestCalculate_Deterministic(t *testing.T) {
	payload := map[string]interface{}{
		"pv": map[string]interface{}{"panel_watts": 415.5, "num_panels": 23, "losses_pct": 11.3},
	}

	first, err := json.Marshal(Calculate(payload).Map())
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := json.Marshal(Calculate(payload).Map())
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestRound_HalfEven(t *testing.T) {
	assert.Equal(t, 0.12, round(0.125, 2))
	assert.Equal(t, 2.67, round(2.675, 2))
	assert.Equal(t, 2.0, round(2.5, 0))
	assert.Equal(t, 4.0, round(3.5, 0))
	assert.Equal(t, 0.0, round(-0.0001, 0))
}

func TestResultMap_DoesNotShareNotes(t *testing.T) {
	r := Calculate(nil)
	r.Notes[0] = "changed"
	assert.NotEqual(t, "changed", Notes[0])
}
