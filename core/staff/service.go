package staff

import (
	"context"
	"time"

	"github.com/belleza/salon/core"
)

var ErrNotFound = core.NewNotFoundError("staff")

type (
	Repository interface {
		CreateStaff(ctx context.Context, s Staff) (Staff, error)
		// QueryStaff does a case-insensitive match of QueryFilter.Search on name or email.
		QueryStaff(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Staff, error)
		GetStaffByID(ctx context.Context, id string) (Staff, error)
		UpdateStaff(ctx context.Context, s Staff) (Staff, error)
		DeleteStaffByID(ctx context.Context, ids ...string) (int, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

var orderingFields = []string{"name", "email", "role", "is_active", "created_at", "updated_at"}

func (svc *Service) Create(ctx context.Context, ns NewStaff) (Staff, error) {
	now := time.Now().UTC()
	return svc.repo.CreateStaff(ctx, Staff{
		Name:        ns.Name,
		Email:       ns.Email,
		Phone:       ns.Phone,
		Role:        ns.Role,
		Specialties: ns.Specialties,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Staff, error) {
	return svc.repo.QueryStaff(ctx, filter, core.CleanOrderings(ordering, orderingFields...))
}

func (svc *Service) GetByID(ctx context.Context, id string) (Staff, error) {
	return svc.repo.GetStaffByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, s Staff, us UpdateStaff) (Staff, error) {
	if us.Name != "" {
		s.Name = us.Name
	}
	if us.Email != "" {
		s.Email = us.Email
	}
	if us.Phone != "" {
		s.Phone = us.Phone
	}
	if us.Role != "" {
		s.Role = us.Role
	}
	if us.Specialties != nil {
		s.Specialties = us.Specialties
	}
	if us.IsActive != nil {
		s.IsActive = *us.IsActive
	}
	s.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStaff(ctx, s)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteStaffByID(ctx, ids...)
	return err
}
