package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/belleza/salon/core"
	"github.com/belleza/salon/core/appointment"
)

type appointmentRow struct {
	ID           string              `db:"id"`
	CustomerID   string              `db:"customer_id"`
	CustomerName string              `db:"customer_name"`
	StaffID      null.String         `db:"staff_id"`
	Service      string              `db:"service"`
	Date         time.Time           `db:"date"`
	Status       string              `db:"status"`
	Amount       decimal.NullDecimal `db:"amount"`
	Rating       null.Int            `db:"rating"`
	Notes        null.String         `db:"notes"`
	CreatedAt    time.Time           `db:"created_at"`
	UpdatedAt    time.Time           `db:"updated_at"`
}

const appointmentColumns = `id, customer_id, customer_name, staff_id, service, date, status, amount, rating, notes, created_at, updated_at`

type appointmentRepository struct {
	db *sqlx.DB
}

var _ appointment.Repository = (*appointmentRepository)(nil)

func NewAppointmentRepository(db *sqlx.DB) *appointmentRepository {
	return &appointmentRepository{db: db}
}

func (repo appointmentRepository) boil(a appointment.Appointment) appointmentRow {
	row := appointmentRow{
		ID:           a.ID,
		CustomerID:   a.CustomerID,
		CustomerName: a.CustomerName,
		StaffID:      null.NewString(a.StaffID, a.StaffID != ""),
		Service:      a.Service,
		Date:         a.Date.UTC(),
		Status:       a.Status,
		Rating:       null.IntFromPtr(a.Rating),
		Notes:        null.NewString(a.Notes, a.Notes != ""),
		CreatedAt:    a.CreatedAt.UTC(),
		UpdatedAt:    a.UpdatedAt.UTC(),
	}
	if a.Amount != nil {
		row.Amount = decimal.NewNullDecimal(*a.Amount)
	}
	return row
}

func (repo appointmentRepository) unboil(row appointmentRow) appointment.Appointment {
	a := appointment.Appointment{
		ID:           row.ID,
		CustomerID:   row.CustomerID,
		CustomerName: row.CustomerName,
		StaffID:      row.StaffID.String,
		Service:      row.Service,
		Date:         row.Date.UTC(),
		Status:       row.Status,
		Rating:       row.Rating.Ptr(),
		Notes:        row.Notes.String,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
	if row.Amount.Valid {
		amount := row.Amount.Decimal
		a.Amount = &amount
	}
	return a
}

func (repo appointmentRepository) CreateAppointment(ctx context.Context, a appointment.Appointment) (appointment.Appointment, error) {
	a.ID = uuid.New().String()
	q := `INSERT INTO appointment (` + appointmentColumns + `) VALUES (:id, :customer_id, :customer_name, :staff_id, :service, :date, :status, :amount, :rating, :notes, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, repo.boil(a)); err != nil {
		return appointment.Appointment{}, errors.Wrap(err, "inserting appointment")
	}
	return a, nil
}

func (repo appointmentRepository) QueryAppointments(ctx context.Context, filter *appointment.QueryFilter, ordering []core.DBOrdering) ([]appointment.Appointment, error) {
	var w where
	if filter != nil {
		if filter.CustomerID != "" {
			if _, err := uuid.Parse(filter.CustomerID); err != nil {
				return []appointment.Appointment{}, nil
			}
			w.add("customer_id = ?", filter.CustomerID)
		}
		if filter.StaffID != "" {
			if _, err := uuid.Parse(filter.StaffID); err != nil {
				return []appointment.Appointment{}, nil
			}
			w.add("staff_id = ?", filter.StaffID)
		}
		if filter.Status != "" {
			w.add("status = ?", filter.Status)
		}
		if !filter.DateFrom.IsZero() {
			w.add("date >= ?", filter.DateFrom.UTC())
		}
		if !filter.DateTo.IsZero() {
			w.add("date <= ?", filter.DateTo.UTC())
		}
	}

	var rows []appointmentRow
	q := `SELECT ` + appointmentColumns + ` FROM appointment` + w.String() + orderBy(ordering, "date DESC")
	if err := repo.db.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying appointments")
	}
	appts := make([]appointment.Appointment, 0, len(rows))
	for _, row := range rows {
		appts = append(appts, repo.unboil(row))
	}
	return appts, nil
}

func (repo appointmentRepository) GetAppointmentByID(ctx context.Context, id string) (appointment.Appointment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return appointment.Appointment{}, appointment.ErrNotFound
	}
	var row appointmentRow
	q := `SELECT ` + appointmentColumns + ` FROM appointment WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return appointment.Appointment{}, trapNoRowsErr(err, appointment.ErrNotFound, "finding appointment by ID")
	}
	return repo.unboil(row), nil
}

func (repo appointmentRepository) UpdateAppointment(ctx context.Context, a appointment.Appointment) (appointment.Appointment, error) {
	q := `UPDATE appointment SET staff_id = :staff_id, service = :service, date = :date, status = :status,
		amount = :amount, rating = :rating, notes = :notes, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, repo.boil(a))
	if err != nil {
		return appointment.Appointment{}, errors.Wrap(err, "updating appointment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return appointment.Appointment{}, appointment.ErrNotFound
	}
	return a, nil
}

func (repo appointmentRepository) DeleteAppointmentsByID(ctx context.Context, ids ...string) (int, error) {
	return deleteByID(ctx, repo.db, "appointment", ids)
}
