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
	"github.com/belleza/salon/core/customer"
)

type customerRow struct {
	ID                  string          `db:"id"`
	Name                string          `db:"name"`
	Email               null.String     `db:"email"`
	Phone               null.String     `db:"phone"`
	TotalSpent          decimal.Decimal `db:"total_spent"`
	Satisfaction        null.Float64    `db:"satisfaction"`
	LastAppointmentDate null.Time       `db:"last_appointment_date"`
	Notes               null.String     `db:"notes"`
	CreatedAt           time.Time       `db:"created_at"`
	UpdatedAt           time.Time       `db:"updated_at"`
}

const customerColumns = `id, name, email, phone, total_spent, satisfaction, last_appointment_date, notes, created_at, updated_at`

type customerRepository struct {
	db *sqlx.DB
}

var _ customer.Repository = (*customerRepository)(nil)

func NewCustomerRepository(db *sqlx.DB) *customerRepository {
	return &customerRepository{db: db}
}

func (repo customerRepository) boil(c customer.Customer) customerRow {
	row := customerRow{
		ID:           c.ID,
		Name:         c.Name,
		Email:        null.NewString(c.Email, c.Email != ""),
		Phone:        null.NewString(c.Phone, c.Phone != ""),
		TotalSpent:   c.TotalSpent,
		Satisfaction: null.Float64FromPtr(c.Satisfaction),
		Notes:        null.NewString(c.Notes, c.Notes != ""),
		CreatedAt:    c.CreatedAt.UTC(),
		UpdatedAt:    c.UpdatedAt.UTC(),
	}
	if c.LastAppointmentDate != nil {
		row.LastAppointmentDate = null.TimeFrom(c.LastAppointmentDate.UTC())
	}
	return row
}

func (repo customerRepository) unboil(row customerRow) customer.Customer {
	c := customer.Customer{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email.String,
		Phone:        row.Phone.String,
		TotalSpent:   row.TotalSpent,
		Satisfaction: row.Satisfaction.Ptr(),
		Notes:        row.Notes.String,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
	if row.LastAppointmentDate.Valid {
		d := row.LastAppointmentDate.Time.UTC()
		c.LastAppointmentDate = &d
	}
	return c
}

func (repo customerRepository) CreateCustomer(ctx context.Context, c customer.Customer) (customer.Customer, error) {
	c.ID = uuid.New().String()
	q := `INSERT INTO customer (` + customerColumns + `) VALUES (:id, :name, :email, :phone, :total_spent, :satisfaction, :last_appointment_date, :notes, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, repo.boil(c)); err != nil {
		return customer.Customer{}, errors.Wrap(err, "inserting customer")
	}
	return c, nil
}

func (repo customerRepository) QueryCustomers(ctx context.Context, filter *customer.QueryFilter, ordering []core.DBOrdering) ([]customer.Customer, error) {
	var w where
	if filter != nil && filter.Search != "" {
		val := like(filter.Search)
		w.add("(name ILIKE ? OR email ILIKE ? OR phone ILIKE ?)", val, val, val)
	}

	var rows []customerRow
	q := `SELECT ` + customerColumns + ` FROM customer` + w.String() + orderBy(ordering, "created_at ASC")
	if err := repo.db.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying customers")
	}
	customers := make([]customer.Customer, 0, len(rows))
	for _, row := range rows {
		customers = append(customers, repo.unboil(row))
	}
	return customers, nil
}

func (repo customerRepository) GetCustomerByID(ctx context.Context, id string) (customer.Customer, error) {
	if _, err := uuid.Parse(id); err != nil {
		return customer.Customer{}, customer.ErrNotFound
	}
	var row customerRow
	q := `SELECT ` + customerColumns + ` FROM customer WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return customer.Customer{}, trapNoRowsErr(err, customer.ErrNotFound, "finding customer by ID")
	}
	return repo.unboil(row), nil
}

func (repo customerRepository) UpdateCustomer(ctx context.Context, c customer.Customer) (customer.Customer, error) {
	q := `UPDATE customer SET name = :name, email = :email, phone = :phone, total_spent = :total_spent,
		satisfaction = :satisfaction, last_appointment_date = :last_appointment_date, notes = :notes,
		updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, repo.boil(c))
	if err != nil {
		return customer.Customer{}, errors.Wrap(err, "updating customer")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return customer.Customer{}, customer.ErrNotFound
	}
	return c, nil
}

func (repo customerRepository) DeleteCustomersByID(ctx context.Context, ids ...string) (int, error) {
	return deleteByID(ctx, repo.db, "customer", ids)
}
