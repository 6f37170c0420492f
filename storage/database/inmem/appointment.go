package inmemdb

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/belleza/salon/core"
	"github.com/belleza/salon/core/appointment"
)

type appointmentRepository struct {
	db *table[appointment.Appointment]
}

var _ appointment.Repository = (*appointmentRepository)(nil)

func NewAppointmentRepository(db *DB) *appointmentRepository {
	return &appointmentRepository{db: db.appointment}
}

func (repo *appointmentRepository) CreateAppointment(_ context.Context, a appointment.Appointment) (appointment.Appointment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	a.ID = newID()
	repo.db.rows[a.ID] = &a
	return a, nil
}

func (repo *appointmentRepository) QueryAppointments(_ context.Context, filter *appointment.QueryFilter, ordering []core.DBOrdering) ([]appointment.Appointment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	appts := repo.db.all(func(a appointment.Appointment) bool {
		if filter == nil {
			return true
		}
		if filter.CustomerID != "" && a.CustomerID != filter.CustomerID {
			return false
		}
		if filter.StaffID != "" && a.StaffID != filter.StaffID {
			return false
		}
		if filter.Status != "" && a.Status != filter.Status {
			return false
		}
		if !filter.DateFrom.IsZero() && a.Date.Before(filter.DateFrom) {
			return false
		}
		if !filter.DateTo.IsZero() && a.Date.After(filter.DateTo) {
			return false
		}
		return true
	})
	sortRows(appts, ordering, core.DBOrdering{Field: "date", Ascending: false}, appointmentField)
	return appts, nil
}

func appointmentField(a appointment.Appointment, field string) interface{} {
	switch field {
	case "status":
		return a.Status
	case "service":
		return a.Service
	case "customer_name":
		return a.CustomerName
	case "amount":
		if a.Amount == nil {
			return decimal.Zero
		}
		return *a.Amount
	case "rating":
		if a.Rating == nil {
			return 0
		}
		return *a.Rating
	case "created_at":
		return a.CreatedAt
	case "updated_at":
		return a.UpdatedAt
	default:
		return a.Date
	}
}

func (repo *appointmentRepository) GetAppointmentByID(_ context.Context, id string) (appointment.Appointment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if a, ok := repo.db.rows[id]; ok {
		return *a, nil
	}
	return appointment.Appointment{}, appointment.ErrNotFound
}

func (repo *appointmentRepository) UpdateAppointment(_ context.Context, a appointment.Appointment) (appointment.Appointment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.rows[a.ID]; !ok {
		return appointment.Appointment{}, appointment.ErrNotFound
	}
	repo.db.rows[a.ID] = &a
	return a, nil
}

func (repo *appointmentRepository) DeleteAppointmentsByID(_ context.Context, ids ...string) (int, error) {
	return repo.db.deleteByID(ids...), nil
}
