package risk

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/belleza/salon/core"
	"github.com/belleza/salon/core/appointment"
	"github.com/belleza/salon/core/customer"
)

type (
	CustomerService interface {
		GetByID(ctx context.Context, id string) (customer.Customer, error)
		Query(ctx context.Context, filter *customer.QueryFilter, ordering []core.DBOrdering) ([]customer.Customer, error)
	}

	AppointmentService interface {
		QueryAll(ctx context.Context) ([]appointment.Appointment, error)
	}

	Service struct {
		custSvc     CustomerService
		apptSvc     AppointmentService
		scorer      Scorer
		parallelism int
	}
)

func NewService(custSvc CustomerService, apptSvc AppointmentService, conf *core.Config) *Service {
	return &Service{
		custSvc:     custSvc,
		apptSvc:     apptSvc,
		parallelism: conf.Risk.BatchParallelism,
	}
}

// SetScorer replaces the scorer, e.g. to pin the clock.
func (svc *Service) SetScorer(s Scorer) {
	svc.scorer = s
}

func (svc *Service) AssessCustomer(ctx context.Context, id string) (Assessment, error) {
	c, err := svc.custSvc.GetByID(ctx, id)
	if err != nil {
		return Assessment{}, err
	}
	appts, err := svc.apptSvc.QueryAll(ctx)
	if err != nil {
		return Assessment{}, errors.Wrap(err, "querying appointments")
	}
	return svc.scorer.Assess(c, appts), nil
}

type QueryFilter struct {
	Level string `query:"level"`
}

func (qf *QueryFilter) Clean() error {
	qf.Level = core.CleanString(qf.Level, true /* lower */)
	if qf.Level != "" && !IsValidLevel(qf.Level) {
		return core.NewValidationError(nil, core.FieldError{Field: "level", Error: "level must be one of [low medium high critical]"})
	}
	return nil
}

// AssessAll scores every customer. Orderings on "score" sort the result, otherwise the
// customers' order is kept.
func (svc *Service) AssessAll(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Assessment, error) {
	customers, appts, err := svc.Data(ctx)
	if err != nil {
		return nil, err
	}
	res, err := svc.scorer.AssessBatch(ctx, customers, appts, svc.parallelism)
	if err != nil {
		return nil, errors.Wrap(err, "assessing customers")
	}

	if filter != nil && filter.Level != "" {
		filtered := res[:0]
		for _, a := range res {
			if a.RiskLevel == filter.Level {
				filtered = append(filtered, a)
			}
		}
		res = filtered
	}
	for _, ord := range core.CleanOrderings(ordering, "score") {
		asc := ord.Ascending
		sort.SliceStable(res, func(i, j int) bool {
			if asc {
				return res[i].TotalRiskScore < res[j].TotalRiskScore
			}
			return res[i].TotalRiskScore > res[j].TotalRiskScore
		})
	}
	return res, nil
}

// Data loads the customers and appointment history that assessments are computed from.
func (svc *Service) Data(ctx context.Context) ([]customer.Customer, []appointment.Appointment, error) {
	customers, err := svc.custSvc.Query(ctx, nil, []core.DBOrdering{{Field: "created_at", Ascending: true}})
	if err != nil {
		return nil, nil, errors.Wrap(err, "querying customers")
	}
	appts, err := svc.apptSvc.QueryAll(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "querying appointments")
	}
	return customers, appts, nil
}

// Batch scores the given records with the service's scorer and parallelism.
func (svc *Service) Batch(ctx context.Context, customers []customer.Customer, appts []appointment.Appointment) ([]Assessment, error) {
	return svc.scorer.AssessBatch(ctx, customers, appts, svc.parallelism)
}
