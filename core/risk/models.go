package risk

import (
	"github.com/shopspring/decimal"
)

// Levels
const (
	LevelLow      = "low"
	LevelMedium   = "medium"
	LevelHigh     = "high"
	LevelCritical = "critical"
)

var Levels = []string{LevelLow, LevelMedium, LevelHigh, LevelCritical}

// Urgencies
const (
	UrgencyLow       = "low"
	UrgencyMedium    = "medium"
	UrgencyHigh      = "high"
	UrgencyImmediate = "immediate"
)

// DimensionScores holds each weighted heuristic on a 0-100 scale, 100 being the riskiest.
type DimensionScores struct {
	Recency      int `json:"recency"`
	Frequency    int `json:"frequency"`
	Monetary     int `json:"monetary"`
	Satisfaction int `json:"satisfaction"`
	Signals      int `json:"signals"`
}

type Strategy struct {
	Urgency         string          `json:"urgency"`
	Actions         []string        `json:"actions"`
	Budget          decimal.Decimal `json:"budget"`
	ExpectedSuccess float64         `json:"expected_success"` // probability in [0, 1]
}

type Assessment struct {
	CustomerID        string          `json:"customer_id"`
	CustomerName      string          `json:"customer_name"`
	TotalRiskScore    int             `json:"total_risk_score"`
	RiskLevel         string          `json:"risk_level"`
	DimensionScores   DimensionScores `json:"dimension_scores"`
	ChurnSignals      []string        `json:"churn_signals"`
	RetentionStrategy Strategy        `json:"retention_strategy"`
}

// LevelFor maps a total score onto its level. Lower bounds are inclusive.
func LevelFor(score int) string {
	switch {
	case score < 25:
		return LevelLow
	case score < 50:
		return LevelMedium
	case score < 75:
		return LevelHigh
	default:
		return LevelCritical
	}
}

func IsValidLevel(level string) bool {
	for _, l := range Levels {
		if l == level {
			return true
		}
	}
	return false
}
