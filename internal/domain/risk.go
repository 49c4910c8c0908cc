package domain

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// RiskStatus is the qualitative port status a model may return.
type RiskStatus string

const (
	StatusUnknown     RiskStatus = ""
	StatusOperational RiskStatus = "Operational"
	StatusHighRisk    RiskStatus = "High Risk"
	StatusClosed      RiskStatus = "Closed"
)

// RiskScorer asks a language model to judge port risk from weather and news.
// The returned text is untyped; use ParseRiskScore and ParseRiskStatus.
type RiskScorer interface {
	ScoreRisk(ctx context.Context, weather []Forecast, news []Article) (string, error)
}

// RiskAssessment is the parsed outcome of one scoring call.
type RiskAssessment struct {
	Lat        float64    `json:"lat"`
	Lon        float64    `json:"lon"`
	Raw        string     `json:"raw"`
	Score      *float64   `json:"score"`
	Status     RiskStatus `json:"status,omitempty"`
	Rationale  string     `json:"rationale,omitempty"`
	AssessedAt time.Time  `json:"assessed_at"`
}

// TrajectoryRiskSample is the assessment of one sampled trajectory point.
type TrajectoryRiskSample struct {
	Sequence  int       `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
	RiskAssessment
}

// TrajectoryRisk is the risk along one vessel's trajectory, sampled every
// Every points starting from the first.
type TrajectoryRisk struct {
	VesselID  string                 `json:"vessel_id"`
	VoyageID  int                    `json:"voyage_id"`
	RouteType string                 `json:"route_type"`
	Every     int                    `json:"every"`
	Samples   []TrajectoryRiskSample `json:"samples"`
}

// SampleIndices returns 0, every, 2*every, ... below n.
func SampleIndices(n, every int) []int {
	if n <= 0 || every <= 0 {
		return nil
	}
	out := make([]int, 0, (n+every-1)/every)
	for i := 0; i < n; i += every {
		out = append(out, i)
	}
	return out
}

// labeledScoreRe finds a number following "score" or "risk", e.g.
// "Risk score: 0.82" or "risk level = .4".
var labeledScoreRe = regexp.MustCompile(`(?i)(?:score|risk)[^0-9.]{0,24}(\d*\.?\d+)`)

// numberRe matches a decimal number token. The sign is captured so that
// negative values are rejected rather than read as positive.
var numberRe = regexp.MustCompile(`-?\d*\.?\d+`)

// ParseRiskScore extracts a score in [0, 1]. A bare number is taken as is.
// Otherwise a number labelled with "score"/"risk" wins, and failing that the
// first number in the text is used. Values outside the range report false.
func ParseRiskScore(text string) (float64, bool) {
	trimmed := strings.Trim(strings.TrimSpace(text), `".`)
	if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return v, inUnitRange(v)
	}

	var token string
	if m := labeledScoreRe.FindStringSubmatch(text); len(m) == 2 {
		token = m[1]
	} else {
		token = numberRe.FindString(text)
	}
	if token == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(token, 64)
	if err != nil || !inUnitRange(v) {
		return 0, false
	}
	return v, true
}

func inUnitRange(v float64) bool {
	return v >= 0 && v <= 1
}

// statusRe matches a status phrase on word boundaries. The optional first
// group captures a negation ("not operational", "non-operational").
var statusRe = regexp.MustCompile(`(?i)\b(not\s+(?:be\s+)?|non-|no\s+longer\s+)?(high\s+risk|operational|closed)\b`)

// ParseRiskStatus finds the earliest non-negated status phrase in the text
// and returns it with the trailing rationale. Matching is case-insensitive.
func ParseRiskStatus(text string) (RiskStatus, string, bool) {
	for _, m := range statusRe.FindAllStringSubmatchIndex(text, -1) {
		if m[2] >= 0 {
			continue
		}
		status := riskStatusFor(text[m[4]:m[5]])
		rationale := strings.TrimSpace(text[m[1]:])
		rationale = strings.TrimSpace(strings.TrimLeft(rationale, "\"'.:;,-\u2013\u2014 "))
		return status, rationale, true
	}
	return StatusUnknown, "", false
}

func riskStatusFor(phrase string) RiskStatus {
	switch strings.ToLower(strings.Join(strings.Fields(phrase), " ")) {
	case "high risk":
		return StatusHighRisk
	case "operational":
		return StatusOperational
	default:
		return StatusClosed
	}
}
