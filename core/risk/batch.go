package risk

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/belleza/salon/core/appointment"
	"github.com/belleza/salon/core/customer"
)

// AssessBatch scores every customer against the shared appointment history, using at most
// `parallelism` goroutines (unbounded when <= 0). The result is in the same order as customers.
func (s Scorer) AssessBatch(ctx context.Context, customers []customer.Customer, appts []appointment.Appointment, parallelism int) ([]Assessment, error) {
	now := s.now()
	idx := newAppointmentIndex(appts)
	out := make([]Assessment, len(customers))

	g, ctx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}
	for i := range customers {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c := customers[i]
			out[i] = s.assess(c, idx.lookup(c), now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// appointmentIndex finds a customer's appointments by ID or name without rescanning the history.
type appointmentIndex struct {
	appts  []appointment.Appointment
	byID   map[string][]int
	byName map[string][]int
}

func newAppointmentIndex(appts []appointment.Appointment) *appointmentIndex {
	idx := &appointmentIndex{
		appts:  appts,
		byID:   make(map[string][]int),
		byName: make(map[string][]int),
	}
	for i, a := range appts {
		if a.CustomerID != "" {
			idx.byID[a.CustomerID] = append(idx.byID[a.CustomerID], i)
		}
		if a.CustomerName != "" {
			idx.byName[a.CustomerName] = append(idx.byName[a.CustomerName], i)
		}
	}
	return idx
}

func (idx *appointmentIndex) lookup(c customer.Customer) []appointment.Appointment {
	seen := make(map[int]struct{})
	positions := make([]int, 0)
	add := func(list []int) {
		for _, i := range list {
			if _, ok := seen[i]; !ok {
				seen[i] = struct{}{}
				positions = append(positions, i)
			}
		}
	}
	if c.ID != "" {
		add(idx.byID[c.ID])
	}
	if c.Name != "" {
		add(idx.byName[c.Name])
	}
	sort.Ints(positions)

	matched := make([]appointment.Appointment, 0, len(positions))
	for _, i := range positions {
		matched = append(matched, idx.appts[i])
	}
	return matched
}
