package customer

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/belleza/salon/core"
)

var ErrNotFound = core.NewNotFoundError("customer")

type (
	Repository interface {
		CreateCustomer(ctx context.Context, c Customer) (Customer, error)
		// QueryCustomers does a case-insensitive match of QueryFilter.Search on name, email or phone.
		QueryCustomers(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Customer, error)
		GetCustomerByID(ctx context.Context, id string) (Customer, error)
		UpdateCustomer(ctx context.Context, c Customer) (Customer, error)
		DeleteCustomersByID(ctx context.Context, ids ...string) (int, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

var orderingFields = []string{"name", "email", "total_spent", "satisfaction", "last_appointment_date", "created_at", "updated_at"}

func (svc *Service) Create(ctx context.Context, nc NewCustomer) (Customer, error) {
	now := time.Now().UTC()
	return svc.repo.CreateCustomer(ctx, Customer{
		Name:         nc.Name,
		Email:        nc.Email,
		Phone:        nc.Phone,
		TotalSpent:   nc.TotalSpent,
		Satisfaction: nc.Satisfaction,
		Notes:        nc.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Customer, error) {
	return svc.repo.QueryCustomers(ctx, filter, core.CleanOrderings(ordering, orderingFields...))
}

func (svc *Service) GetByID(ctx context.Context, id string) (Customer, error) {
	return svc.repo.GetCustomerByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, c Customer, uc UpdateCustomer) (Customer, error) {
	if uc.Name != "" {
		c.Name = uc.Name
	}
	if uc.Email != "" {
		c.Email = uc.Email
	}
	if uc.Phone != "" {
		c.Phone = uc.Phone
	}
	if uc.Satisfaction != nil {
		c.Satisfaction = uc.Satisfaction
	}
	if uc.Notes != nil {
		c.Notes = *uc.Notes
	}
	c.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCustomer(ctx, c)
}

// RecordVisit adds a completed visit's amount to the customer's spend and moves
// LastAppointmentDate forward (never backwards).
func (svc *Service) RecordVisit(ctx context.Context, id string, amount decimal.Decimal, date time.Time) (Customer, error) {
	c, err := svc.repo.GetCustomerByID(ctx, id)
	if err != nil {
		return Customer{}, errors.Wrap(err, "finding customer by ID")
	}
	if amount.IsPositive() {
		c.TotalSpent = c.TotalSpent.Add(amount)
	}
	if c.LastAppointmentDate == nil || date.After(*c.LastAppointmentDate) {
		d := date.UTC()
		c.LastAppointmentDate = &d
	}
	c.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCustomer(ctx, c)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteCustomersByID(ctx, ids...)
	return err
}
