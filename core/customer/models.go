package customer

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/belleza/salon/core"
)

// Customer is a salon client. Satisfaction is a 0-100 score collected from surveys.
type Customer struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	Email               string          `json:"email"`
	Phone               string          `json:"phone"`
	TotalSpent          decimal.Decimal `json:"total_spent"`
	Satisfaction        *float64        `json:"satisfaction"`
	LastAppointmentDate *time.Time      `json:"last_appointment_date"`
	Notes               string          `json:"notes"`
	CreatedAt           time.Time       `json:"created_at"` // UTC
	UpdatedAt           time.Time       `json:"updated_at"` // UTC
}

type NewCustomer struct {
	Name         string          `json:"name" validate:"required"`
	Email        string          `json:"email" validate:"omitempty,email"`
	Phone        string          `json:"phone" validate:"omitempty,max=32"`
	TotalSpent   decimal.Decimal `json:"total_spent" validate:"gte=0"`
	Satisfaction *float64        `json:"satisfaction" validate:"omitempty,gte=0,lte=100"`
	Notes        string          `json:"notes"`
}

func (nc *NewCustomer) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Email = core.CleanString(nc.Email, true /* lower */)
	nc.Phone = core.CleanString(nc.Phone)
	return validate.Struct(nc)
}

// UpdateCustomer defines what information may be provided to modify an existing Customer.
// Zero values keep the current value.
type UpdateCustomer struct {
	Name         string   `json:"name"`
	Email        string   `json:"email" validate:"omitempty,email"`
	Phone        string   `json:"phone" validate:"omitempty,max=32"`
	Satisfaction *float64 `json:"satisfaction" validate:"omitempty,gte=0,lte=100"`
	Notes        *string  `json:"notes"`
}

func (uc *UpdateCustomer) Validate(validate *validator.Validate) error {
	uc.Name = core.CleanString(uc.Name)
	uc.Email = core.CleanString(uc.Email, true /* lower */)
	uc.Phone = core.CleanString(uc.Phone)
	return validate.Struct(uc)
}

type QueryFilter struct {
	Search string `query:"search"` // name, email or phone
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
