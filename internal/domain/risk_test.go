package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRiskScore(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  float64
		found bool
	}{
		{"bare number", "0.72", 0.72, true},
		{"bare number with whitespace", "  0.3\n", 0.3, true},
		{"trailing period", "0.5.", 0.5, true},
		{"zero", "0", 0, true},
		{"one", "1", 1, true},
		{"labelled score", "Risk score: 0.85", 0.85, true},
		{"labelled leading dot", "score = .4 given the storm", 0.4, true},
		{"out of range bare", "1.5", 0, false},
		{"out of range labelled", "risk: 7", 0, false},
		{"negative", "-0.2", 0, false},
		{"prose only", "The port looks fine.", 0, false},
		{"unlabelled number in prose", "Winds of 40 knots expected", 0, false},
		{"number then prose", "0.7 due to high winds", 0.7, true},
		{"number then second line", "0.8\nStorm warning in effect.", 0.8, true},
		{"prose then number", "Based on the data: 0.65", 0.65, true},
		{"label preferred over first number", "Winds 40 knots; risk score 0.9", 0.9, true},
		{"negative in prose", "Adjusted by -0.3 overall", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseRiskScore(tt.text)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestParseRiskStatus(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		status    RiskStatus
		rationale string
		found     bool
	}{
		{"high risk", "High Risk - 40 knot winds and a strike tomorrow.", StatusHighRisk, "40 knot winds and a strike tomorrow.", true},
		{"operational", "Operational: calm seas.", StatusOperational, "calm seas.", true},
		{"closed lowercase", "port is closed due to typhoon", StatusClosed, "due to typhoon", true},
		{"earliest wins", "Closed. It will not be operational until Friday.", StatusClosed, "It will not be operational until Friday.", true},
		{"extra spacing", "HIGH  RISK: typhoon landfall", StatusHighRisk, "typhoon landfall", true},
		{"negated skipped", "Not operational; port is closed to traffic.", StatusClosed, "to traffic.", true},
		{"hyphenated negation", "Non-operational berths only", StatusUnknown, "", false},
		{"negation with be", "The terminal will not be operational today.", StatusUnknown, "", false},
		{"word boundary", "The unclosed gate was fixed.", StatusUnknown, "", false},
		{"nothing", "Unable to assess.", StatusUnknown, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, rationale, ok := ParseRiskStatus(tt.text)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.rationale, rationale)
		})
	}
}

func TestValidateCoordinates(t *testing.T) {
	assert.NoError(t, ValidateCoordinates(51.92, 4.47))
	assert.NoError(t, ValidateCoordinates(-90, 180))

	for _, c := range [][2]float64{{91, 0}, {0, -181}, {math.NaN(), 0}} {
		err := ValidateCoordinates(c[0], c[1])
		assert.True(t, errors.Is(err, ErrInvalidInput), "%v", c)
	}
}

func TestForecast_WindSpeedKnots(t *testing.T) {
	f := Forecast{WindSpeedMS: 10}
	assert.InDelta(t, 19.44, f.WindSpeedKnots(), 0.01)
}
