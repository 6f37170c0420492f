package appointment

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/belleza/salon/core"
	"github.com/belleza/salon/core/customer"
	"github.com/belleza/salon/core/staff"
)

var ErrNotFound = core.NewNotFoundError("appointment")

type (
	Repository interface {
		CreateAppointment(ctx context.Context, a Appointment) (Appointment, error)
		// QueryAppointments applies AND operation on available QueryFilter fields.
		QueryAppointments(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Appointment, error)
		GetAppointmentByID(ctx context.Context, id string) (Appointment, error)
		UpdateAppointment(ctx context.Context, a Appointment) (Appointment, error)
		DeleteAppointmentsByID(ctx context.Context, ids ...string) (int, error)
	}

	CustomerService interface {
		GetByID(ctx context.Context, id string) (customer.Customer, error)
		RecordVisit(ctx context.Context, id string, amount decimal.Decimal, date time.Time) (customer.Customer, error)
	}

	StaffService interface {
		GetByID(ctx context.Context, id string) (staff.Staff, error)
	}

	Service struct {
		repo     Repository
		custSvc  CustomerService
		staffSvc StaffService
		mailSvc  core.EmailService
	}
)

func NewService(repo Repository, custSvc CustomerService, staffSvc StaffService, mailSvc core.EmailService) *Service {
	return &Service{
		repo:     repo,
		custSvc:  custSvc,
		staffSvc: staffSvc,
		mailSvc:  mailSvc,
	}
}

var orderingFields = []string{"date", "status", "service", "customer_name", "amount", "rating", "created_at", "updated_at"}

func (svc *Service) checkStaff(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if _, err := svc.staffSvc.GetByID(ctx, id); err != nil {
		if core.IsNotFound(err) {
			return core.NewValidationError(err, core.FieldError{Field: "staff_id", Error: err.Error()})
		}
		return errors.Wrap(err, "finding staff by ID")
	}
	return nil
}

// Create books an appointment for an existing customer and mails them a confirmation.
func (svc *Service) Create(ctx context.Context, na NewAppointment) (Appointment, error) {
	cust, err := svc.custSvc.GetByID(ctx, na.CustomerID)
	if err != nil {
		return Appointment{}, errors.Wrap(err, "finding customer by ID")
	}
	if err = svc.checkStaff(ctx, na.StaffID); err != nil {
		return Appointment{}, err
	}

	now := time.Now().UTC()
	appt, err := svc.repo.CreateAppointment(ctx, Appointment{
		CustomerID:   cust.ID,
		CustomerName: cust.Name,
		StaffID:      na.StaffID,
		Service:      na.Service,
		Date:         na.Date.UTC(),
		Status:       na.Status,
		Amount:       na.Amount,
		Rating:       na.Rating,
		Notes:        na.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return Appointment{}, errors.Wrap(err, "creating appointment")
	}

	if appt.Status == StatusCompleted {
		if err = svc.recordVisit(ctx, appt); err != nil {
			return Appointment{}, err
		}
	} else if cust.Email != "" && appt.Date.After(now) {
		svc.sendConfirmationMail(cust, appt)
	}
	return appt, nil
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Appointment, error) {
	return svc.repo.QueryAppointments(ctx, filter, core.CleanOrderings(ordering, orderingFields...))
}

// QueryAll returns every appointment, oldest first.
func (svc *Service) QueryAll(ctx context.Context) ([]Appointment, error) {
	return svc.repo.QueryAppointments(ctx, nil, []core.DBOrdering{{Field: "date", Ascending: true}})
}

func (svc *Service) GetByID(ctx context.Context, id string) (Appointment, error) {
	return svc.repo.GetAppointmentByID(ctx, id)
}

// Update modifies an appointment. Moving it to "completed" credits its amount to the customer.
func (svc *Service) Update(ctx context.Context, appt Appointment, ua UpdateAppointment) (Appointment, error) {
	wasCompleted := appt.Status == StatusCompleted

	if ua.StaffID != nil {
		staffID := *ua.StaffID
		if err := svc.checkStaff(ctx, staffID); err != nil {
			return Appointment{}, err
		}
		appt.StaffID = staffID
	}
	if ua.Service != "" {
		appt.Service = ua.Service
	}
	if ua.Date != nil {
		appt.Date = ua.Date.UTC()
	}
	if ua.Status != "" {
		appt.Status = ua.Status
	}
	if ua.Amount != nil {
		appt.Amount = ua.Amount
	}
	if ua.Rating != nil {
		appt.Rating = ua.Rating
	}
	if ua.Notes != nil {
		appt.Notes = *ua.Notes
	}
	appt.UpdatedAt = time.Now().UTC()

	appt, err := svc.repo.UpdateAppointment(ctx, appt)
	if err != nil {
		return Appointment{}, errors.Wrap(err, "updating appointment")
	}
	if !wasCompleted && appt.Status == StatusCompleted {
		if err = svc.recordVisit(ctx, appt); err != nil {
			return Appointment{}, err
		}
	}
	return appt, nil
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteAppointmentsByID(ctx, ids...)
	return err
}

func (svc *Service) recordVisit(ctx context.Context, appt Appointment) error {
	amount := decimal.Zero
	if appt.Amount != nil {
		amount = *appt.Amount
	}
	if _, err := svc.custSvc.RecordVisit(ctx, appt.CustomerID, amount, appt.Date); err != nil {
		return errors.Wrap(err, "recording customer visit")
	}
	return nil
}

func (svc *Service) sendConfirmationMail(cust customer.Customer, appt Appointment) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: cust.Name, Address: cust.Email}},
		Subject:      "Your appointment is booked",
		TemplateName: "appointment_confirmation",
		TemplateData: map[string]interface{}{
			"Name":    cust.Name,
			"Service": appt.Service,
			"Date":    appt.Date,
		},
	})
}
