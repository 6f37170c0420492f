package inmemdb

import (
	"context"

	"github.com/belleza/salon/core"
	"github.com/belleza/salon/core/customer"
)

type customerRepository struct {
	db *table[customer.Customer]
}

var _ customer.Repository = (*customerRepository)(nil)

func NewCustomerRepository(db *DB) *customerRepository {
	return &customerRepository{db: db.customer}
}

func (repo *customerRepository) CreateCustomer(_ context.Context, c customer.Customer) (customer.Customer, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	c.ID = newID()
	repo.db.rows[c.ID] = &c
	return c, nil
}

func (repo *customerRepository) QueryCustomers(_ context.Context, filter *customer.QueryFilter, ordering []core.DBOrdering) ([]customer.Customer, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	customers := repo.db.all(func(c customer.Customer) bool {
		if filter == nil || filter.Search == "" {
			return true
		}
		return contains(c.Name, filter.Search) || contains(c.Email, filter.Search) || contains(c.Phone, filter.Search)
	})
	sortRows(customers, ordering, core.DBOrdering{Field: "created_at", Ascending: true}, customerField)
	return customers, nil
}

func customerField(c customer.Customer, field string) interface{} {
	switch field {
	case "name":
		return c.Name
	case "email":
		return c.Email
	case "total_spent":
		return c.TotalSpent
	case "satisfaction":
		return floatOrZero(c.Satisfaction)
	case "last_appointment_date":
		return timeOrZero(c.LastAppointmentDate)
	case "updated_at":
		return c.UpdatedAt
	default:
		return c.CreatedAt
	}
}

func (repo *customerRepository) GetCustomerByID(_ context.Context, id string) (customer.Customer, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.rows[id]; ok {
		return *c, nil
	}
	return customer.Customer{}, customer.ErrNotFound
}

func (repo *customerRepository) UpdateCustomer(_ context.Context, c customer.Customer) (customer.Customer, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.rows[c.ID]; !ok {
		return customer.Customer{}, customer.ErrNotFound
	}
	repo.db.rows[c.ID] = &c
	return c, nil
}

func (repo *customerRepository) DeleteCustomersByID(_ context.Context, ids ...string) (int, error) {
	return repo.db.deleteByID(ids...), nil
}
