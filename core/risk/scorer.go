package risk

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/belleza/salon/core/appointment"
	"github.com/belleza/salon/core/customer"
)

const day = 24 * time.Hour

// Dimension weights, summing to 1.
const (
	weightRecency      = 0.4
	weightFrequency    = 0.2
	weightMonetary     = 0.2
	weightSatisfaction = 0.1
	weightSignals      = 0.1
)

// Churn signals
const (
	SignalFrequencyDrop = "visit frequency dropped by more than half over the last 3 months"
	SignalMissed        = "has cancelled or missed appointments"
	SignalSpendDrop     = "spending dropped by more than 50% over the last 3 months"
	SignalLowRating     = "rated a visit below 3"
)

var (
	spendTier5000 = decimal.NewFromInt(5000)
	spendTier2000 = decimal.NewFromInt(2000)
	spendTier500  = decimal.NewFromInt(500)
)

// Scorer computes churn risk assessments. The zero value uses the wall clock.
type Scorer struct {
	Now func() time.Time
}

func (s Scorer) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Assess scores one customer against the appointment history. Appointments belong to the
// customer when either the customer ID or the customer name matches.
func (s Scorer) Assess(c customer.Customer, appts []appointment.Appointment) Assessment {
	return s.assess(c, matchAppointments(c, appts), s.now())
}

func (s Scorer) assess(c customer.Customer, appts []appointment.Appointment, now time.Time) Assessment {
	signals := churnSignals(appts, now)
	dims := DimensionScores{
		Recency:      recencyScore(c, appts, now),
		Frequency:    frequencyScore(appts, now),
		Monetary:     monetaryScore(c.TotalSpent),
		Satisfaction: satisfactionScore(c.Satisfaction),
		Signals:      signalsScore(len(signals)),
	}

	total := int(math.Round(
		weightRecency*float64(dims.Recency) +
			weightFrequency*float64(dims.Frequency) +
			weightMonetary*float64(dims.Monetary) +
			weightSatisfaction*float64(dims.Satisfaction) +
			weightSignals*float64(dims.Signals),
	))
	level := LevelFor(total)

	return Assessment{
		CustomerID:        c.ID,
		CustomerName:      c.Name,
		TotalRiskScore:    total,
		RiskLevel:         level,
		DimensionScores:   dims,
		ChurnSignals:      signals,
		RetentionStrategy: StrategyFor(level, c.TotalSpent),
	}
}

func matchAppointments(c customer.Customer, appts []appointment.Appointment) []appointment.Appointment {
	matched := make([]appointment.Appointment, 0)
	for _, a := range appts {
		if belongsTo(c, a) {
			matched = append(matched, a)
		}
	}
	return matched
}

func belongsTo(c customer.Customer, a appointment.Appointment) bool {
	return (c.ID != "" && a.CustomerID == c.ID) || (c.Name != "" && a.CustomerName == c.Name)
}

// lastVisit returns the latest matched appointment date, upcoming bookings included,
// or the customer's recorded last appointment date when that is later.
func lastVisit(c customer.Customer, appts []appointment.Appointment) (time.Time, bool) {
	var last time.Time
	for _, a := range appts {
		if a.Date.After(last) {
			last = a.Date
		}
	}
	if d := c.LastAppointmentDate; d != nil && d.After(last) {
		last = *d
	}
	return last, !last.IsZero()
}

func recencyScore(c customer.Customer, appts []appointment.Appointment, now time.Time) int {
	last, ok := lastVisit(c, appts)
	if !ok {
		return 100
	}
	days := math.Max(now.Sub(last).Hours()/24, 0)
	switch {
	case days <= 30:
		return 0
	case days <= 60:
		return 25
	case days <= 90:
		return 50
	case days <= 180:
		return 75
	default:
		return 100
	}
}

// countSince counts appointments dated within (now-d, now].
func countSince(appts []appointment.Appointment, now time.Time, d time.Duration) int {
	from := now.Add(-d)
	n := 0
	for _, a := range appts {
		if a.Date.After(from) && !a.Date.After(now) {
			n++
		}
	}
	return n
}

func frequencyScore(appts []appointment.Appointment, now time.Time) int {
	rate := float64(countSince(appts, now, 180*day)) / 6
	switch {
	case rate >= 1.5:
		return 0
	case rate >= 1:
		return 20
	case rate >= 0.5:
		return 50
	case rate > 0:
		return 75
	default:
		return 100
	}
}

func monetaryScore(spent decimal.Decimal) int {
	switch {
	case spent.GreaterThanOrEqual(spendTier5000):
		return 0
	case spent.GreaterThanOrEqual(spendTier2000):
		return 20
	case spent.GreaterThanOrEqual(spendTier500):
		return 50
	case spent.IsPositive():
		return 75
	default:
		return 100
	}
}

func satisfactionScore(satisfaction *float64) int {
	if satisfaction == nil {
		return 100
	}
	s := *satisfaction
	if math.IsNaN(s) || s < 0 || s > 100 {
		return 100
	}
	switch {
	case s >= 90:
		return 0
	case s >= 80:
		return 15
	case s >= 70:
		return 40
	case s >= 60:
		return 70
	default:
		return 100
	}
}

func signalsScore(n int) int {
	if n*20 > 100 {
		return 100
	}
	return n * 20
}

func churnSignals(appts []appointment.Appointment, now time.Time) []string {
	signals := make([]string, 0, 4)
	if frequencyDropped(appts, now) {
		signals = append(signals, SignalFrequencyDrop)
	}
	for _, a := range appts {
		if a.IsMissed() {
			signals = append(signals, SignalMissed)
			break
		}
	}
	if spendDropped(appts, now) {
		signals = append(signals, SignalSpendDrop)
	}
	for _, a := range appts {
		if a.Rating != nil && *a.Rating < 3 {
			signals = append(signals, SignalLowRating)
			break
		}
	}
	return signals
}

func frequencyDropped(appts []appointment.Appointment, now time.Time) bool {
	last6 := countSince(appts, now, 180*day)
	if last6 == 0 {
		return false
	}
	rate3 := float64(countSince(appts, now, 90*day)) / 3
	rate6 := float64(last6) / 6
	return rate3 < rate6/2
}

func spendDropped(appts []appointment.Appointment, now time.Time) bool {
	recentFrom := now.Add(-90 * day)
	priorFrom := now.Add(-180 * day)
	recent, prior := decimal.Zero, decimal.Zero
	for _, a := range appts {
		if a.Amount == nil || a.IsMissed() || a.Date.After(now) {
			continue
		}
		switch {
		case a.Date.After(recentFrom):
			recent = recent.Add(*a.Amount)
		case a.Date.After(priorFrom):
			prior = prior.Add(*a.Amount)
		}
	}
	if !prior.IsPositive() {
		return false
	}
	return recent.LessThan(prior.Div(decimal.NewFromInt(2)))
}
