package analytics

import (
	"context"

	"github.com/pkg/errors"

	"github.com/belleza/salon/core"
	"github.com/belleza/salon/core/appointment"
	"github.com/belleza/salon/core/customer"
	"github.com/belleza/salon/core/risk"
)

const reportKey = "report"

type (
	RiskService interface {
		Data(ctx context.Context) ([]customer.Customer, []appointment.Appointment, error)
		Batch(ctx context.Context, customers []customer.Customer, appts []appointment.Appointment) ([]risk.Assessment, error)
	}

	Service struct {
		riskSvc RiskService
		cache   *core.TTLCache[string, Report]
	}
)

func NewService(riskSvc RiskService, conf *core.Config) *Service {
	return &Service{
		riskSvc: riskSvc,
		cache:   core.NewTTLCache[string, Report](conf.Risk.ReportCacheTTL),
	}
}

// Report returns the salon-wide risk report, recomputed at most once per cache TTL.
func (svc *Service) Report(ctx context.Context) (Report, error) {
	return svc.cache.GetOrLoad(ctx, reportKey, svc.build)
}

// Invalidate drops the cached report.
func (svc *Service) Invalidate() {
	svc.cache.Purge()
}

func (svc *Service) build(ctx context.Context) (Report, error) {
	customers, appts, err := svc.riskSvc.Data(ctx)
	if err != nil {
		return Report{}, err
	}
	assessments, err := svc.riskSvc.Batch(ctx, customers, appts)
	if err != nil {
		return Report{}, errors.Wrap(err, "assessing customers")
	}
	return Summarize(assessments, customers, appts), nil
}
