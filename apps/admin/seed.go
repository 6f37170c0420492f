package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/belleza/salon/core/appointment"
	"github.com/belleza/salon/core/customer"
	"github.com/belleza/salon/core/product"
	"github.com/belleza/salon/core/staff"
)

// seedData is the demo data file layout. Appointments refer to customers and staff by name.
type seedData struct {
	Customers []struct {
		Name         string   `yaml:"name"`
		Email        string   `yaml:"email"`
		Phone        string   `yaml:"phone"`
		TotalSpent   float64  `yaml:"total_spent"`
		Satisfaction *float64 `yaml:"satisfaction"`
		Notes        string   `yaml:"notes"`
	} `yaml:"customers"`

	Staff []struct {
		Name        string   `yaml:"name"`
		Email       string   `yaml:"email"`
		Phone       string   `yaml:"phone"`
		Role        string   `yaml:"role"`
		Specialties []string `yaml:"specialties"`
	} `yaml:"staff"`

	Products []struct {
		Name        string  `yaml:"name"`
		Description string  `yaml:"description"`
		Category    string  `yaml:"category"`
		Price       float64 `yaml:"price"`
		Stock       int     `yaml:"stock"`
		Image       string  `yaml:"image"`
	} `yaml:"products"`

	Appointments []struct {
		Customer string   `yaml:"customer"`
		Staff    string   `yaml:"staff"`
		Service  string   `yaml:"service"`
		Date     string   `yaml:"date"` // RFC3339
		Status   string   `yaml:"status"`
		Amount   *float64 `yaml:"amount"`
		Rating   *int     `yaml:"rating"`
		Notes    string   `yaml:"notes"`
	} `yaml:"appointments"`
}

type seedCounts struct {
	customers, staff, products, appointments int
}

func (cli *commandLine) seedCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo customers, staff, products and appointments from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				_ = cmd.Usage()
				return errHelp
			}
			f, err := os.Open(file)
			if err != nil {
				return errors.Wrap(err, "opening seed file")
			}
			defer f.Close()

			n, err := cli.seed(cmd.Context(), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d customers, %d staff, %d products, %d appointments\n",
				n.customers, n.staff, n.products, n.appointments)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the YAML seed file")
	return cmd
}

func (cli *commandLine) seed(ctx context.Context, r io.Reader) (seedCounts, error) {
	var (
		data seedData
		n    seedCounts
	)
	if err := yaml.NewDecoder(r).Decode(&data); err != nil {
		return n, errors.Wrap(err, "decoding seed file")
	}

	customers := make(map[string]string, len(data.Customers)) // name -> ID
	for i, c := range data.Customers {
		nc := customer.NewCustomer{
			Name:         c.Name,
			Email:        c.Email,
			Phone:        c.Phone,
			TotalSpent:   decimal.NewFromFloat(c.TotalSpent),
			Satisfaction: c.Satisfaction,
			Notes:        c.Notes,
		}
		if err := nc.Validate(cli.validate); err != nil {
			return n, errors.Wrapf(err, "customer #%d", i+1)
		}
		created, err := cli.custSvc.Create(ctx, nc)
		if err != nil {
			return n, errors.Wrapf(err, "creating customer %q", c.Name)
		}
		customers[created.Name] = created.ID
		n.customers++
	}

	members := make(map[string]string, len(data.Staff))
	for i, s := range data.Staff {
		ns := staff.NewStaff{Name: s.Name, Email: s.Email, Phone: s.Phone, Role: s.Role, Specialties: s.Specialties}
		if err := ns.Validate(cli.validate); err != nil {
			return n, errors.Wrapf(err, "staff #%d", i+1)
		}
		created, err := cli.staffSvc.Create(ctx, ns)
		if err != nil {
			return n, errors.Wrapf(err, "creating staff %q", s.Name)
		}
		members[created.Name] = created.ID
		n.staff++
	}

	for i, p := range data.Products {
		np := product.NewProduct{
			Name:        p.Name,
			Description: p.Description,
			Category:    p.Category,
			Price:       decimal.NewFromFloat(p.Price),
			Stock:       p.Stock,
			Image:       p.Image,
		}
		if err := np.Validate(cli.validate); err != nil {
			return n, errors.Wrapf(err, "product #%d", i+1)
		}
		if _, err := cli.prodSvc.Create(ctx, np); err != nil {
			return n, errors.Wrapf(err, "creating product %q", p.Name)
		}
		n.products++
	}

	for i, a := range data.Appointments {
		custID, ok := customers[a.Customer]
		if !ok {
			return n, errors.Errorf("appointment #%d: unknown customer %q", i+1, a.Customer)
		}
		var staffID string
		if a.Staff != "" {
			if staffID, ok = members[a.Staff]; !ok {
				return n, errors.Errorf("appointment #%d: unknown staff %q", i+1, a.Staff)
			}
		}
		date, err := time.Parse(time.RFC3339, a.Date)
		if err != nil {
			return n, errors.Wrapf(err, "appointment #%d: invalid date", i+1)
		}

		na := appointment.NewAppointment{
			CustomerID: custID,
			StaffID:    staffID,
			Service:    a.Service,
			Date:       date.UTC(),
			Status:     a.Status,
			Rating:     a.Rating,
			Notes:      a.Notes,
		}
		if a.Amount != nil {
			amt := decimal.NewFromFloat(*a.Amount)
			na.Amount = &amt
		}
		if err = na.Validate(cli.validate); err != nil {
			return n, errors.Wrapf(err, "appointment #%d", i+1)
		}
		if _, err = cli.apptSvc.Create(ctx, na); err != nil {
			return n, errors.Wrapf(err, "creating appointment #%d", i+1)
		}
		n.appointments++
	}
	return n, nil
}
