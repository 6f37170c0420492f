package product

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/belleza/salon/core"
)

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Image       string          `json:"image"`
	CreatedAt   time.Time       `json:"created_at"` // UTC
	UpdatedAt   time.Time       `json:"updated_at"` // UTC
}

type NewProduct struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Category    string          `json:"category" validate:"required"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Image       string          `json:"image"`
}

func (np *NewProduct) Validate(validate *validator.Validate) error {
	np.Name = core.CleanString(np.Name)
	np.Category = core.CleanString(np.Category, true /* lower */)
	np.Image = core.CleanString(np.Image)
	return validate.Struct(np)
}

type UpdateProduct struct {
	Name        string           `json:"name"`
	Description *string          `json:"description"`
	Category    string           `json:"category"`
	Price       *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
	Stock       *int             `json:"stock" validate:"omitempty,gte=0"`
	Image       *string          `json:"image"`
}

func (up *UpdateProduct) Validate(validate *validator.Validate) error {
	up.Name = core.CleanString(up.Name)
	up.Category = core.CleanString(up.Category, true /* lower */)
	return validate.Struct(up)
}

type QueryFilter struct {
	Search   string `query:"search"`
	Category string `query:"category"`
	InStock  *bool  `query:"in_stock"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Category = core.CleanString(qf.Category, true /* lower */)
}
