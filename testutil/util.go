// Package testutil holds fixtures shared by the HTTP and CLI tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/belleza/salon/core"
	"github.com/belleza/salon/core/appointment"
	"github.com/belleza/salon/core/customer"
	"github.com/belleza/salon/core/product"
	"github.com/belleza/salon/core/staff"
	"github.com/belleza/salon/core/user"
)

// NewConfig returns a TEST configuration that needs no external service.
func NewConfig() *core.Config {
	conf := &core.Config{
		AppName:                   "Belleza",
		Env:                       "TEST",
		Build:                     "test",
		TestMode:                  true,
		SecretKey:                 "test-secret-key",
		FrontendBaseURL:           "http://localhost:3000",
		PasswordResetTimeoutDelta: 24 * time.Hour,
	}
	conf.SetDefaultFromEmail("Belleza <noreply@test.cd>")

	conf.Server.JWTExpirationDelta = time.Hour
	conf.Server.JWTRefreshExpirationDelta = 4 * time.Hour
	conf.Server.ShutdownTimeout = time.Second
	conf.Server.RateLimit = 0 // unlimited

	conf.Database.Engine = "inmem"

	conf.Upload.Backend = "local"
	conf.Upload.BaseURL = "/uploads"
	conf.Upload.MaxBytes = 10 << 20
	conf.Upload.MaxFiles = 10
	conf.Upload.AllowedMIMETypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

	conf.Cart.InMemory = true
	conf.Cart.TTL = time.Hour

	conf.Risk.BatchParallelism = 4
	conf.Risk.ReportCacheTTL = time.Minute
	return conf
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateCustomer(
	t *testing.T,
	repo customer.Repository,
	name, email string,
	totalSpent float64,
	satisfaction *float64,
	createdAt ...time.Time,
) customer.Customer {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	c, err := repo.CreateCustomer(context.Background(), customer.Customer{
		Name:         name,
		Email:        email,
		TotalSpent:   decimal.NewFromFloat(totalSpent),
		Satisfaction: satisfaction,
		CreatedAt:    tstamp,
		UpdatedAt:    tstamp,
	})
	if err != nil {
		t.Fatalf("CreateCustomer() failed: %v", err)
	}
	return c
}

func CreateStaff(t *testing.T, repo staff.Repository, name, role string, isActive bool) staff.Staff {
	t.Helper()

	now := time.Now().UTC()
	s, err := repo.CreateStaff(context.Background(), staff.Staff{
		Name:        name,
		Role:        role,
		Specialties: []string{},
		IsActive:    isActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreateStaff() failed: %v", err)
	}
	return s
}

func CreateProduct(t *testing.T, repo product.Repository, name, category string, price float64, stock int) product.Product {
	t.Helper()

	now := time.Now().UTC()
	p, err := repo.CreateProduct(context.Background(), product.Product{
		Name:      name,
		Category:  category,
		Price:     decimal.NewFromFloat(price),
		Stock:     stock,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateProduct() failed: %v", err)
	}
	return p
}

// CreateAppointment books `c` on `date`; a nil amount or rating is stored as unknown.
func CreateAppointment(
	t *testing.T,
	repo appointment.Repository,
	c customer.Customer,
	service, status string,
	date time.Time,
	amount *float64,
	rating *int,
) appointment.Appointment {
	t.Helper()

	var amt *decimal.Decimal
	if amount != nil {
		d := decimal.NewFromFloat(*amount)
		amt = &d
	}
	now := time.Now().UTC()
	a, err := repo.CreateAppointment(context.Background(), appointment.Appointment{
		CustomerID:   c.ID,
		CustomerName: c.Name,
		Service:      service,
		Date:         date.UTC(),
		Status:       status,
		Amount:       amt,
		Rating:       rating,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateAppointment() failed: %v", err)
	}
	return a
}

func FloatPtr(f float64) *float64 { return &f }

func IntPtr(i int) *int { return &i }
