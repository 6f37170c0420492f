package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/belleza/salon/core"
	"github.com/belleza/salon/core/appointment"
	"github.com/belleza/salon/core/customer"
	"github.com/belleza/salon/core/product"
	"github.com/belleza/salon/core/staff"
	"github.com/belleza/salon/core/user"
	emailsvc "github.com/belleza/salon/services/email"
	logsvc "github.com/belleza/salon/services/logger"
	"github.com/belleza/salon/storage/database"
	sqlxrepos "github.com/belleza/salon/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	std := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(std, conf)
	defer logger.Close()

	if conf.Database.Engine != "postgres" {
		std.Fatalf("the admin CLI needs a postgres database (engine %q)", conf.Database.Engine)
	}

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		std.Fatal(err)
	}
	db, err := database.Open(conf)
	if err != nil {
		std.Fatal(err)
	}
	defer db.Close()

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	mailSvc := emailsvc.NewConsoleService(std, logger, conf)
	custSvc := customer.NewService(sqlxrepos.NewCustomerRepository(db))
	staffSvc := staff.NewService(sqlxrepos.NewStaffRepository(db))

	// start CLI
	cli := commandLine{
		db:       db.DB,
		usrRepo:  sqlxrepos.NewUserRepository(db),
		custSvc:  custSvc,
		staffSvc: staffSvc,
		prodSvc:  product.NewService(sqlxrepos.NewProductRepository(db)),
		apptSvc:  appointment.NewService(sqlxrepos.NewAppointmentRepository(db), custSvc, staffSvc, mailSvc),
		validate: validate,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			std.Printf("\nerror: %s\n", err)
		}
		db.Close()
		os.Exit(1)
	}
}
