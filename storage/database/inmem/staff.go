package inmemdb

import (
	"context"

	"github.com/belleza/salon/core"
	"github.com/belleza/salon/core/staff"
)

type staffRepository struct {
	db *table[staff.Staff]
}

var _ staff.Repository = (*staffRepository)(nil)

func NewStaffRepository(db *DB) *staffRepository {
	return &staffRepository{db: db.staff}
}

func (repo *staffRepository) CreateStaff(_ context.Context, s staff.Staff) (staff.Staff, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	s.ID = newID()
	repo.db.rows[s.ID] = &s
	return s, nil
}

func (repo *staffRepository) QueryStaff(_ context.Context, filter *staff.QueryFilter, ordering []core.DBOrdering) ([]staff.Staff, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	members := repo.db.all(func(s staff.Staff) bool {
		if filter == nil {
			return true
		}
		if filter.Search != "" && !contains(s.Name, filter.Search) && !contains(s.Email, filter.Search) {
			return false
		}
		if filter.Role != "" && s.Role != filter.Role {
			return false
		}
		if filter.IsActive != nil && s.IsActive != *filter.IsActive {
			return false
		}
		return true
	})
	sortRows(members, ordering, core.DBOrdering{Field: "name", Ascending: true}, staffField)
	return members, nil
}

func staffField(s staff.Staff, field string) interface{} {
	switch field {
	case "email":
		return s.Email
	case "role":
		return s.Role
	case "is_active":
		return s.IsActive
	case "created_at":
		return s.CreatedAt
	case "updated_at":
		return s.UpdatedAt
	default:
		return s.Name
	}
}

func (repo *staffRepository) GetStaffByID(_ context.Context, id string) (staff.Staff, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.rows[id]; ok {
		return *s, nil
	}
	return staff.Staff{}, staff.ErrNotFound
}

func (repo *staffRepository) UpdateStaff(_ context.Context, s staff.Staff) (staff.Staff, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.rows[s.ID]; !ok {
		return staff.Staff{}, staff.ErrNotFound
	}
	repo.db.rows[s.ID] = &s
	return s, nil
}

func (repo *staffRepository) DeleteStaffByID(_ context.Context, ids ...string) (int, error) {
	return repo.db.deleteByID(ids...), nil
}
