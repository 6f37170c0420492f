package appointment

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/belleza/salon/core"
)

// Statuses
const (
	StatusScheduled = "scheduled"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no-show"
)

var Statuses = []string{StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow}

// Appointment is a booked (or past) visit. Amount is what was charged and Rating the
// customer's 1-5 review, both only known once the visit happened.
type Appointment struct {
	ID           string           `json:"id"`
	CustomerID   string           `json:"customer_id"`
	CustomerName string           `json:"customer_name"`
	StaffID      string           `json:"staff_id"`
	Service      string           `json:"service"`
	Date         time.Time        `json:"date"` // UTC
	Status       string           `json:"status"`
	Amount       *decimal.Decimal `json:"amount"`
	Rating       *int             `json:"rating"`
	Notes        string           `json:"notes"`
	CreatedAt    time.Time        `json:"created_at"` // UTC
	UpdatedAt    time.Time        `json:"updated_at"` // UTC
}

// IsMissed reports whether the customer cancelled or did not show up.
func (a Appointment) IsMissed() bool {
	return a.Status == StatusCancelled || a.Status == StatusNoShow
}

type NewAppointment struct {
	CustomerID string           `json:"customer_id" validate:"required"`
	StaffID    string           `json:"staff_id"`
	Service    string           `json:"service" validate:"required"`
	Date       time.Time        `json:"date" validate:"required"`
	Status     string           `json:"status" validate:"omitempty,oneof=scheduled confirmed completed cancelled no-show"`
	Amount     *decimal.Decimal `json:"amount" validate:"omitempty,gte=0"`
	Rating     *int             `json:"rating" validate:"omitempty,min=1,max=5"`
	Notes      string           `json:"notes"`
}

func (na *NewAppointment) Validate(validate *validator.Validate) error {
	na.CustomerID = core.CleanString(na.CustomerID)
	na.StaffID = core.CleanString(na.StaffID)
	na.Service = core.CleanString(na.Service)
	na.Status = core.CleanString(na.Status, true /* lower */)
	if na.Status == "" {
		na.Status = StatusScheduled
	}
	return validate.Struct(na)
}

type UpdateAppointment struct {
	StaffID *string          `json:"staff_id"`
	Service string           `json:"service"`
	Date    *time.Time       `json:"date"`
	Status  string           `json:"status" validate:"omitempty,oneof=scheduled confirmed completed cancelled no-show"`
	Amount  *decimal.Decimal `json:"amount" validate:"omitempty,gte=0"`
	Rating  *int             `json:"rating" validate:"omitempty,min=1,max=5"`
	Notes   *string          `json:"notes"`
}

func (ua *UpdateAppointment) Validate(validate *validator.Validate) error {
	ua.Service = core.CleanString(ua.Service)
	ua.Status = core.CleanString(ua.Status, true /* lower */)
	return validate.Struct(ua)
}

type QueryFilter struct {
	CustomerID string `query:"customer_id"`
	StaffID    string `query:"staff_id"`
	Status     string `query:"status"`
	From       string `query:"from"` // RFC3339 or YYYY-MM-DD
	To         string `query:"to"`

	DateFrom time.Time `query:"-"`
	DateTo   time.Time `query:"-"`
}

// Clean normalises the filter and parses its date bounds.
func (qf *QueryFilter) Clean() error {
	qf.CustomerID = core.CleanString(qf.CustomerID)
	qf.StaffID = core.CleanString(qf.StaffID)
	qf.Status = core.CleanString(qf.Status, true /* lower */)

	var err error
	if qf.DateFrom, err = parseDate(qf.From); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "from", Error: "invalid date"})
	}
	if qf.DateTo, err = parseDate(qf.To); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "to", Error: "invalid date"})
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	s = core.CleanString(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parsing date %q", s)
	}
	return t.UTC(), nil
}
