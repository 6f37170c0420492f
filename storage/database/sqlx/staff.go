package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/belleza/salon/core"
	"github.com/belleza/salon/core/staff"
)

type staffRow struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Email       null.String    `db:"email"`
	Phone       null.String    `db:"phone"`
	Role        string         `db:"role"`
	Specialties pq.StringArray `db:"specialties"`
	IsActive    bool           `db:"is_active"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

const staffColumns = `id, name, email, phone, role, specialties, is_active, created_at, updated_at`

type staffRepository struct {
	db *sqlx.DB
}

var _ staff.Repository = (*staffRepository)(nil)

func NewStaffRepository(db *sqlx.DB) *staffRepository {
	return &staffRepository{db: db}
}

func (repo staffRepository) boil(s staff.Staff) staffRow {
	specialties := s.Specialties
	if specialties == nil {
		specialties = []string{}
	}
	return staffRow{
		ID:          s.ID,
		Name:        s.Name,
		Email:       null.NewString(s.Email, s.Email != ""),
		Phone:       null.NewString(s.Phone, s.Phone != ""),
		Role:        s.Role,
		Specialties: specialties,
		IsActive:    s.IsActive,
		CreatedAt:   s.CreatedAt.UTC(),
		UpdatedAt:   s.UpdatedAt.UTC(),
	}
}

func (repo staffRepository) unboil(row staffRow) staff.Staff {
	return staff.Staff{
		ID:          row.ID,
		Name:        row.Name,
		Email:       row.Email.String,
		Phone:       row.Phone.String,
		Role:        row.Role,
		Specialties: []string(row.Specialties),
		IsActive:    row.IsActive,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
}

func (repo staffRepository) CreateStaff(ctx context.Context, s staff.Staff) (staff.Staff, error) {
	s.ID = uuid.New().String()
	q := `INSERT INTO staff (` + staffColumns + `) VALUES (:id, :name, :email, :phone, :role, :specialties, :is_active, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, repo.boil(s)); err != nil {
		return staff.Staff{}, errors.Wrap(err, "inserting staff")
	}
	return s, nil
}

func (repo staffRepository) QueryStaff(ctx context.Context, filter *staff.QueryFilter, ordering []core.DBOrdering) ([]staff.Staff, error) {
	var w where
	if filter != nil {
		if filter.Search != "" {
			val := like(filter.Search)
			w.add("(name ILIKE ? OR email ILIKE ?)", val, val)
		}
		if filter.Role != "" {
			w.add("role = ?", filter.Role)
		}
		if filter.IsActive != nil {
			w.add("is_active = ?", *filter.IsActive)
		}
	}

	var rows []staffRow
	q := `SELECT ` + staffColumns + ` FROM staff` + w.String() + orderBy(ordering, "name ASC")
	if err := repo.db.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying staff")
	}
	members := make([]staff.Staff, 0, len(rows))
	for _, row := range rows {
		members = append(members, repo.unboil(row))
	}
	return members, nil
}

func (repo staffRepository) GetStaffByID(ctx context.Context, id string) (staff.Staff, error) {
	if _, err := uuid.Parse(id); err != nil {
		return staff.Staff{}, staff.ErrNotFound
	}
	var row staffRow
	q := `SELECT ` + staffColumns + ` FROM staff WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return staff.Staff{}, trapNoRowsErr(err, staff.ErrNotFound, "finding staff by ID")
	}
	return repo.unboil(row), nil
}

func (repo staffRepository) UpdateStaff(ctx context.Context, s staff.Staff) (staff.Staff, error) {
	q := `UPDATE staff SET name = :name, email = :email, phone = :phone, role = :role,
		specialties = :specialties, is_active = :is_active, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, repo.boil(s))
	if err != nil {
		return staff.Staff{}, errors.Wrap(err, "updating staff")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return staff.Staff{}, staff.ErrNotFound
	}
	return s, nil
}

func (repo staffRepository) DeleteStaffByID(ctx context.Context, ids ...string) (int, error) {
	return deleteByID(ctx, repo.db, "staff", ids)
}
