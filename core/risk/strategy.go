package risk

import (
	"github.com/shopspring/decimal"
)

// HighValueSpend is the total spend from which a customer gets the richer retention plan.
var HighValueSpend = decimal.NewFromInt(2000)

type strategyKey struct {
	level     string
	highValue bool
}

var strategies = map[strategyKey]Strategy{
	{LevelCritical, true}: {
		Urgency: UrgencyImmediate,
		Actions: []string{
			"personal call from the salon owner within 24 hours",
			"complimentary premium service on next visit",
			"upgrade to VIP loyalty tier",
			"assign a dedicated stylist for follow-up",
		},
		Budget:          decimal.NewFromInt(200),
		ExpectedSuccess: 0.65,
	},
	{LevelCritical, false}: {
		Urgency: UrgencyImmediate,
		Actions: []string{
			"personal call within 48 hours",
			"30% discount on next visit",
		},
		Budget:          decimal.NewFromInt(50),
		ExpectedSuccess: 0.40,
	},
	{LevelHigh, true}: {
		Urgency: UrgencyHigh,
		Actions: []string{
			"personal outreach from preferred stylist",
			"20% discount on next service",
			"priority booking for the next month",
		},
		Budget:          decimal.NewFromInt(100),
		ExpectedSuccess: 0.70,
	},
	{LevelHigh, false}: {
		Urgency: UrgencyHigh,
		Actions: []string{
			"reminder email with a 15% discount offer",
			"satisfaction survey",
		},
		Budget:          decimal.NewFromInt(30),
		ExpectedSuccess: 0.50,
	},
	{LevelMedium, true}: {
		Urgency: UrgencyMedium,
		Actions: []string{
			"personalised rebooking reminder",
			"complimentary add-on treatment at next visit",
		},
		Budget:          decimal.NewFromInt(50),
		ExpectedSuccess: 0.80,
	},
	{LevelMedium, false}: {
		Urgency: UrgencyMedium,
		Actions: []string{
			"rebooking reminder",
			"double loyalty points on next visit",
		},
		Budget:          decimal.NewFromInt(15),
		ExpectedSuccess: 0.60,
	},
	{LevelLow, true}: {
		Urgency: UrgencyLow,
		Actions: []string{
			"thank-you note",
			"early access to new services",
		},
		Budget:          decimal.NewFromInt(20),
		ExpectedSuccess: 0.90,
	},
	{LevelLow, false}: {
		Urgency:         UrgencyLow,
		Actions:         []string{"regular newsletter"},
		Budget:          decimal.Zero,
		ExpectedSuccess: 0.85,
	},
}

// StrategyFor picks the retention plan for a risk level, richer for high-value customers.
func StrategyFor(level string, totalSpent decimal.Decimal) Strategy {
	st, ok := strategies[strategyKey{level, totalSpent.GreaterThanOrEqual(HighValueSpend)}]
	if !ok {
		st = strategies[strategyKey{LevelCritical, false}]
	}
	actions := make([]string, len(st.Actions))
	copy(actions, st.Actions)
	st.Actions = actions
	return st
}
