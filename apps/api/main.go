package main

import (
	"context"
	"expvar"
	"fmt"
	"io"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	echoapi "github.com/belleza/salon/apps/api/echo"
	"github.com/belleza/salon/core"
	"github.com/belleza/salon/core/analytics"
	"github.com/belleza/salon/core/appointment"
	"github.com/belleza/salon/core/cart"
	"github.com/belleza/salon/core/customer"
	"github.com/belleza/salon/core/product"
	"github.com/belleza/salon/core/risk"
	"github.com/belleza/salon/core/staff"
	"github.com/belleza/salon/core/user"
	emailsvc "github.com/belleza/salon/services/email"
	"github.com/belleza/salon/services/filestore"
	logsvc "github.com/belleza/salon/services/logger"
	"github.com/belleza/salon/storage/database"
	inmemdb "github.com/belleza/salon/storage/database/inmem"
	sqlxrepos "github.com/belleza/salon/storage/database/sqlx"
	"github.com/belleza/salon/storage/kv/badgerdb"
)

type repositories struct {
	users        user.Repository
	customers    customer.Repository
	staff        staff.Repository
	products     product.Repository
	appointments appointment.Repository
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("main: %v", err)
	}
}

func run() error {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	defer logger.Close()

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)

	// set up storage
	repos, closeDB, err := setUpRepositories(conf)
	if err != nil {
		return errors.Wrap(err, "setting up database")
	}
	defer func() {
		if err := closeDB.Close(); err != nil {
			dbLogger.Error("failed to close database", err)
		}
	}()

	kv, err := badgerdb.Open(conf, dbLogger)
	if err != nil {
		return errors.Wrap(err, "opening cart store")
	}
	defer func() {
		if err := kv.Close(); err != nil {
			dbLogger.Error("failed to close cart store", err)
		}
	}()

	files, err := filestore.New(context.Background(), conf)
	if err != nil {
		return errors.Wrap(err, "setting up file store")
	}
	if c, ok := files.(io.Closer); ok {
		defer c.Close()
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug || conf.SendgridAPIKey == "" {
		mailSvc = emailsvc.NewConsoleService(
			log.New(os.Stdout, "MAIL : ", log.LstdFlags|log.Lmicroseconds),
			logger,
			conf,
		)
	} else {
		mailSvc = emailsvc.NewSendgridService(logger, conf)
	}

	usrSvc := user.NewService(repos.users, mailSvc, conf)
	custSvc := customer.NewService(repos.customers)
	staffSvc := staff.NewService(repos.staff)
	prodSvc := product.NewService(repos.products)
	apptSvc := appointment.NewService(repos.appointments, custSvc, staffSvc, mailSvc)
	riskSvc := risk.NewService(custSvc, apptSvc, conf)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	server := echoapi.NewServer(conf.Server.Address, shutdown, &echoapi.Deps{
		Conf:           conf,
		Logger:         logger,
		Validate:       validate,
		Translator:     translator,
		UserSvc:        usrSvc,
		CustomerSvc:    custSvc,
		StaffSvc:       staffSvc,
		ProductSvc:     prodSvc,
		AppointmentSvc: apptSvc,
		CartSvc:        cart.NewService(badgerdb.NewCartRepository(kv, conf.Cart.TTL), prodSvc),
		RiskSvc:        riskSvc,
		AnalyticsSvc:   analytics.NewService(riskSvc, conf),
		FileStore:      files,
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		return errors.Wrap(err, "server error")

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
			if err = server.Close(); err != nil {
				return errors.Wrap(err, "could not force stop server")
			}
		}
	}
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// setUpRepositories picks the storage engine. Postgres databases are created and migrated on start.
func setUpRepositories(conf *core.Config) (repositories, io.Closer, error) {
	if conf.Database.Engine == "inmem" {
		db := inmemdb.Open()
		return repositories{
			users:        inmemdb.NewUserRepository(db),
			customers:    inmemdb.NewCustomerRepository(db),
			staff:        inmemdb.NewStaffRepository(db),
			products:     inmemdb.NewProductRepository(db),
			appointments: inmemdb.NewAppointmentRepository(db),
		}, nopCloser{}, nil
	}

	db, err := openPostgres(conf)
	if err != nil {
		return repositories{}, nil, err
	}
	return repositories{
		users:        sqlxrepos.NewUserRepository(db),
		customers:    sqlxrepos.NewCustomerRepository(db),
		staff:        sqlxrepos.NewStaffRepository(db),
		products:     sqlxrepos.NewProductRepository(db),
		appointments: sqlxrepos.NewAppointmentRepository(db),
	}, db, nil
}

func openPostgres(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
