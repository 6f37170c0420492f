package staff

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/belleza/salon/core"
)

// Staff roles
const (
	RoleStylist     = "stylist"
	RoleColorist    = "colorist"
	RoleNailTech    = "nail_tech"
	RoleEsthetician = "esthetician"
	RoleManager     = "manager"
)

type Staff struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Role        string    `json:"role"`
	Specialties []string  `json:"specialties"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

type NewStaff struct {
	Name        string   `json:"name" validate:"required"`
	Email       string   `json:"email" validate:"omitempty,email"`
	Phone       string   `json:"phone" validate:"omitempty,max=32"`
	Role        string   `json:"role" validate:"required,oneof=stylist colorist nail_tech esthetician manager"`
	Specialties []string `json:"specialties"`
}

func (ns *NewStaff) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Phone = core.CleanString(ns.Phone)
	ns.Role = core.CleanString(ns.Role, true /* lower */)
	ns.Specialties = cleanSpecialties(ns.Specialties)
	return validate.Struct(ns)
}

type UpdateStaff struct {
	Name        string   `json:"name"`
	Email       string   `json:"email" validate:"omitempty,email"`
	Phone       string   `json:"phone" validate:"omitempty,max=32"`
	Role        string   `json:"role" validate:"omitempty,oneof=stylist colorist nail_tech esthetician manager"`
	Specialties []string `json:"specialties"`
	IsActive    *bool    `json:"is_active"`
}

func (us *UpdateStaff) Validate(validate *validator.Validate) error {
	us.Name = core.CleanString(us.Name)
	us.Email = core.CleanString(us.Email, true /* lower */)
	us.Phone = core.CleanString(us.Phone)
	us.Role = core.CleanString(us.Role, true /* lower */)
	if us.Specialties != nil {
		us.Specialties = cleanSpecialties(us.Specialties)
	}
	return validate.Struct(us)
}

type QueryFilter struct {
	Search   string `query:"search"`
	Role     string `query:"role"`
	IsActive *bool  `query:"is_active"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Role = core.CleanString(qf.Role, true /* lower */)
}

func cleanSpecialties(specs []string) []string {
	clean := make([]string, 0, len(specs))
	seen := make(map[string]bool, len(specs))
	for _, s := range specs {
		s = core.CleanString(s, true /* lower */)
		if s != "" && !seen[s] {
			seen[s] = true
			clean = append(clean, s)
		}
	}
	return clean
}
