package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/belleza/salon/core/appointment"
	"github.com/belleza/salon/core/customer"
	"github.com/belleza/salon/core/risk"
)

// TopAtRiskCount is the number of customers listed in Report.TopAtRisk.
const TopAtRiskCount = 10

type LevelCounts struct {
	Low      int `json:"low"`
	Medium   int `json:"medium"`
	High     int `json:"high"`
	Critical int `json:"critical"`
}

type Report struct {
	CustomerCount    int               `json:"customer_count"`
	AppointmentCount int               `json:"appointment_count"`
	Levels           LevelCounts       `json:"levels"`
	AverageScore     float64           `json:"average_score"`
	Revenue          decimal.Decimal   `json:"revenue"`         // completed appointments
	AtRiskRevenue    decimal.Decimal   `json:"at_risk_revenue"` // lifetime spend of high and critical customers
	TopAtRisk        []risk.Assessment `json:"top_at_risk"`
}

// Summarize aggregates assessments and history into a Report.
// Missing input yields a zero-valued Report.
func Summarize(assessments []risk.Assessment, customers []customer.Customer, appts []appointment.Appointment) Report {
	var rep Report
	if len(assessments) == 0 && len(customers) == 0 && len(appts) == 0 {
		return rep
	}

	rep.CustomerCount = len(customers)
	rep.AppointmentCount = len(appts)
	for _, a := range appts {
		if a.Status == appointment.StatusCompleted && a.Amount != nil {
			rep.Revenue = rep.Revenue.Add(*a.Amount)
		}
	}

	spent := make(map[string]decimal.Decimal, len(customers))
	for _, c := range customers {
		spent[c.ID] = c.TotalSpent
	}

	total := 0
	atRisk := make([]risk.Assessment, 0)
	for _, a := range assessments {
		total += a.TotalRiskScore
		switch a.RiskLevel {
		case risk.LevelLow:
			rep.Levels.Low++
		case risk.LevelMedium:
			rep.Levels.Medium++
		case risk.LevelHigh:
			rep.Levels.High++
		case risk.LevelCritical:
			rep.Levels.Critical++
		}
		if a.RiskLevel == risk.LevelHigh || a.RiskLevel == risk.LevelCritical {
			rep.AtRiskRevenue = rep.AtRiskRevenue.Add(spent[a.CustomerID])
			atRisk = append(atRisk, a)
		}
	}
	if len(assessments) > 0 {
		rep.AverageScore = float64(total) / float64(len(assessments))
	}

	// riskiest first, then biggest spenders
	sort.SliceStable(atRisk, func(i, j int) bool {
		if atRisk[i].TotalRiskScore != atRisk[j].TotalRiskScore {
			return atRisk[i].TotalRiskScore > atRisk[j].TotalRiskScore
		}
		return spent[atRisk[i].CustomerID].GreaterThan(spent[atRisk[j].CustomerID])
	})
	if len(atRisk) > TopAtRiskCount {
		atRisk = atRisk[:TopAtRiskCount]
	}
	if len(atRisk) > 0 {
		rep.TopAtRisk = atRisk
	}
	return rep
}
