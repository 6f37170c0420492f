package risk

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/belleza/salon/core/appointment"
	"github.com/belleza/salon/core/customer"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func testScorer() Scorer {
	return Scorer{Now: func() time.Time { return now }}
}

func daysAgo(n int) time.Time {
	return now.Add(-time.Duration(n) * day)
}

func timePtr(t time.Time) *time.Time { return &t }
func floatPtr(f float64) *float64  { return &f }
func intPtr(i int) *int             { return &i }
func decPtr(i int64) *decimal.Decimal {
	d := decimal.NewFromInt(i)
	return &d
}

func appt(custID string, daysBack int, status string) appointment.Appointment {
	return appointment.Appointment{CustomerID: custID, Date: daysAgo(daysBack), Status: status}
}

func TestAssess_LoyalCustomer(t *testing.T) {
	c := customer.Customer{
		ID:                  "c1",
		Name:                "Amina",
		TotalSpent:          decimal.NewFromInt(6000),
		Satisfaction:        floatPtr(95),
		LastAppointmentDate: timePtr(daysAgo(10)),
	}
	a := testScorer().Assess(c, nil)

	assert.Equal(t, 0, a.DimensionScores.Recency)
	assert.Equal(t, 0, a.DimensionScores.Monetary)
	assert.Equal(t, 0, a.DimensionScores.Satisfaction)
	assert.Equal(t, 0, a.DimensionScores.Signals)
	assert.Empty(t, a.ChurnSignals)
	assert.Equal(t, 20, a.TotalRiskScore)
	assert.Equal(t, LevelLow, a.RiskLevel)
	assert.Equal(t, "c1", a.CustomerID)
}

func TestAssess_NoHistory(t *testing.T) {
	a := testScorer().Assess(customer.Customer{ID: "c1", Name: "Ghost"}, nil)

	assert.Equal(t, 100, a.DimensionScores.Recency)
	assert.Equal(t, 100, a.DimensionScores.Frequency)
	assert.Equal(t, 100, a.DimensionScores.Monetary)
	assert.Equal(t, 100, a.DimensionScores.Satisfaction)
	assert.Equal(t, 90, a.TotalRiskScore)
	assert.Equal(t, LevelCritical, a.RiskLevel)
	assert.Equal(t, UrgencyImmediate, a.RetentionStrategy.Urgency)
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, LevelLow},
		{24, LevelLow},
		{25, LevelMedium},
		{49, LevelMedium},
		{50, LevelHigh},
		{74, LevelHigh},
		{75, LevelCritical},
		{100, LevelCritical},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.score), func(t *testing.T) {
			assert.Equal(t, tt.want, LevelFor(tt.score))
		})
	}
}

func TestRecencyScore(t *testing.T) {
	tests := []struct {
		name string
		days int
		want int
	}{
		{"30 days", 30, 0},
		{"31 days", 31, 25},
		{"60 days", 60, 25},
		{"90 days", 90, 50},
		{"180 days", 180, 75},
		{"181 days", 181, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appts := []appointment.Appointment{appt("c1", tt.days, appointment.StatusCompleted)}
			assert.Equal(t, tt.want, recencyScore(customer.Customer{ID: "c1"}, appts, now))
		})
	}
}

func TestRecencyScore_UsesLatest(t *testing.T) {
	c := customer.Customer{ID: "c1", LastAppointmentDate: timePtr(daysAgo(200))}
	appts := []appointment.Appointment{
		appt("c1", 150, appointment.StatusCompleted),
		appt("c1", 5, appointment.StatusCompleted),
	}
	assert.Equal(t, 0, recencyScore(c, appts, now))

	c.LastAppointmentDate = timePtr(daysAgo(1))
	assert.Equal(t, 0, recencyScore(c, appts[:1], now))
}

func TestRecencyScore_UpcomingBooking(t *testing.T) {
	c := customer.Customer{ID: "c1", LastAppointmentDate: timePtr(daysAgo(200))}
	appts := []appointment.Appointment{
		appt("c1", 200, appointment.StatusCompleted),
		appt("c1", -7, appointment.StatusScheduled),
	}
	assert.Equal(t, 0, recencyScore(c, appts, now))
	assert.Equal(t, 100, recencyScore(c, appts[:1], now))

	// a zero date is not a visit
	assert.Equal(t, 100, recencyScore(customer.Customer{ID: "c1"}, []appointment.Appointment{{CustomerID: "c1"}}, now))
}

func TestFrequencyScore(t *testing.T) {
	tests := []struct {
		name  string
		count int
		want  int
	}{
		{"none", 0, 100},
		{"one", 1, 75},
		{"three", 3, 50},
		{"six", 6, 20},
		{"nine", 9, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var appts []appointment.Appointment
			for i := 0; i < tt.count; i++ {
				appts = append(appts, appt("c1", 1+i*15, appointment.StatusCompleted))
			}
			// outside the 180 day window
			appts = append(appts, appt("c1", 400, appointment.StatusCompleted))
			assert.Equal(t, tt.want, frequencyScore(appts, now))
		})
	}
}

func TestMonetaryScore(t *testing.T) {
	tests := []struct {
		spent string
		want  int
	}{
		{"5000", 0},
		{"4999.99", 20},
		{"2000", 20},
		{"500", 50},
		{"0.01", 75},
		{"0", 100},
		{"-10", 100},
	}
	for _, tt := range tests {
		t.Run(tt.spent, func(t *testing.T) {
			assert.Equal(t, tt.want, monetaryScore(decimal.RequireFromString(tt.spent)))
		})
	}
}

func TestSatisfactionScore(t *testing.T) {
	tests := []struct {
		name string
		in   *float64
		want int
	}{
		{"missing", nil, 100},
		{"90", floatPtr(90), 0},
		{"85", floatPtr(85), 15},
		{"70", floatPtr(70), 40},
		{"60", floatPtr(60), 70},
		{"59", floatPtr(59), 100},
		{"out of range", floatPtr(140), 100},
		{"negative", floatPtr(-1), 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, satisfactionScore(tt.in))
		})
	}
}

func TestChurnSignals(t *testing.T) {
	lowRated := appt("c1", 10, appointment.StatusCompleted)
	lowRated.Rating = intPtr(2)
	okRated := appt("c1", 10, appointment.StatusCompleted)
	okRated.Rating = intPtr(3)

	spend := func(daysBack int, amount int64) appointment.Appointment {
		a := appt("c1", daysBack, appointment.StatusCompleted)
		a.Amount = decPtr(amount)
		return a
	}

	tests := []struct {
		name  string
		appts []appointment.Appointment
		want  []string
	}{
		{name: "none", appts: nil, want: []string{}},
		{
			name:  "frequency drop",
			appts: []appointment.Appointment{appt("c1", 100, ""), appt("c1", 120, ""), appt("c1", 150, "")},
			want:  []string{SignalFrequencyDrop},
		},
		{
			name:  "steady frequency",
			appts: []appointment.Appointment{appt("c1", 10, ""), appt("c1", 120, "")},
			want:  []string{},
		},
		{
			name:  "no-show",
			appts: []appointment.Appointment{appt("c1", 10, appointment.StatusNoShow)},
			want:  []string{SignalMissed},
		},
		{
			name:  "cancelled",
			appts: []appointment.Appointment{appt("c1", 10, appointment.StatusCancelled)},
			want:  []string{SignalMissed},
		},
		{
			name:  "spend drop",
			appts: []appointment.Appointment{spend(10, 40), spend(100, 100)},
			want:  []string{SignalSpendDrop},
		},
		{
			name:  "spend halved exactly",
			appts: []appointment.Appointment{spend(10, 50), spend(100, 100)},
			want:  []string{},
		},
		{name: "low rating", appts: []appointment.Appointment{lowRated}, want: []string{SignalLowRating}},
		{name: "rating of 3", appts: []appointment.Appointment{okRated}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, churnSignals(tt.appts, now))
		})
	}
}

func TestSignalsScore(t *testing.T) {
	assert.Equal(t, 0, signalsScore(0))
	assert.Equal(t, 40, signalsScore(2))
	assert.Equal(t, 80, signalsScore(4))
	assert.Equal(t, 100, signalsScore(6))
}

func TestAssess_MatchesByIDOrName(t *testing.T) {
	c := customer.Customer{ID: "c1", Name: "Amina"}
	appts := []appointment.Appointment{
		{CustomerID: "c1", Date: daysAgo(200)},
		{CustomerName: "Amina", Date: daysAgo(3)},
		{CustomerID: "c2", CustomerName: "Zoe", Date: daysAgo(1)},
		{Date: daysAgo(1)}, // no owner
	}
	a := testScorer().Assess(c, appts)
	assert.Equal(t, 0, a.DimensionScores.Recency)
	assert.Equal(t, 75, a.DimensionScores.Frequency)

	nameless := testScorer().Assess(customer.Customer{ID: "c9"}, appts)
	assert.Equal(t, 100, nameless.DimensionScores.Recency)
}

func TestStrategyFor(t *testing.T) {
	for _, level := range Levels {
		t.Run(level, func(t *testing.T) {
			rich := StrategyFor(level, decimal.NewFromInt(2000))
			poor := StrategyFor(level, decimal.NewFromInt(1999))

			assert.Equal(t, rich.Urgency, poor.Urgency)
			assert.Greater(t, len(rich.Actions), len(poor.Actions))
			assert.True(t, rich.Budget.GreaterThan(poor.Budget))
			assert.Greater(t, rich.ExpectedSuccess, poor.ExpectedSuccess)
		})
	}

	st := StrategyFor(LevelLow, decimal.Zero)
	st.Actions[0] = "changed"
	assert.NotEqual(t, "changed", StrategyFor(LevelLow, decimal.Zero).Actions[0])
}

func TestAssessBatch(t *testing.T) {
	var customers []customer.Customer
	var appts []appointment.Appointment
	for i := 0; i < 40; i++ {
		id := fmt.Sprintf("c%d", i)
		customers = append(customers, customer.Customer{ID: id, Name: "Customer " + id, TotalSpent: decimal.NewFromInt(int64(i * 150))})
		for j := 0; j < i%5; j++ {
			appts = append(appts, appt(id, 10+j*20, appointment.StatusCompleted))
		}
	}

	s := testScorer()
	got, err := s.AssessBatch(context.Background(), customers, appts, 4)
	require.NoError(t, err)
	require.Len(t, got, len(customers))
	for i, c := range customers {
		assert.Equal(t, c.ID, got[i].CustomerID)
		assert.Equal(t, s.Assess(c, appts), got[i])
	}
}

func TestAssessBatch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testScorer().AssessBatch(ctx, []customer.Customer{{ID: "c1"}}, nil, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAssessBatch_Empty(t *testing.T) {
	got, err := testScorer().AssessBatch(context.Background(), nil, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}
