package database

import (
	"database/sql"
	"embed"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/trezcool/goose"

	"github.com/belleza/salon/core"
)

//go:embed migrations/*.sql
var Migrations embed.FS

const MigrationsDir = "migrations"

func dsn(dbName string, admin bool, conf *core.Config) string {
	user := url.UserPassword(conf.Database.User, conf.Database.Password)
	if admin && conf.Database.AdminUser != "" {
		user = url.UserPassword(conf.Database.AdminUser, conf.Database.AdminPassword)
	}

	sslMode := "require"
	if conf.Database.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   "postgres",
		User:     user,
		Host:     conf.DBAddress(),
		Path:     dbName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// Open connects to the application database and waits for it to answer.
func Open(conf *core.Config) (*sqlx.DB, error) {
	db, err := sqlx.Open(conf.Database.Engine, dsn(conf.Database.Name, false, conf))
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err = ping(db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready, backing off by 100ms more on each attempt.
func ping(db *sql.DB) error {
	var err error
	for attempt := 1; attempt <= 20; attempt++ {
		if err = db.Ping(); err == nil {
			return nil
		}
		time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
	}
	return errors.Wrap(err, "DB ping timeout")
}

func exists(db *sqlx.DB, query, name string) (bool, error) {
	var found bool
	err := db.Get(&found, query, name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return found, err
}

// CreateIfNotExist creates the application role and database using the admin credentials.
func CreateIfNotExist(conf *core.Config) error {
	admin, err := sqlx.Open(conf.Database.Engine, dsn("postgres", true, conf))
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = admin.Close() }()
	if err = ping(admin.DB); err != nil {
		return err
	}

	if conf.Database.User != "" {
		found, err := exists(admin, "SELECT true FROM pg_roles WHERE rolname = $1", conf.Database.User)
		if err != nil {
			return errors.Wrap(err, "checking app user")
		}
		if !found {
			q := "CREATE USER " + pq.QuoteIdentifier(conf.Database.User) +
				" CREATEDB ENCRYPTED PASSWORD " + pq.QuoteLiteral(conf.Database.Password)
			if _, err = admin.Exec(q); err != nil {
				return errors.Wrap(err, "creating app user")
			}
		}
	}

	found, err := exists(admin, "SELECT true FROM pg_database WHERE datname = $1", conf.Database.Name)
	if err != nil {
		return errors.Wrap(err, "checking database")
	}
	if !found {
		q := "CREATE DATABASE " + pq.QuoteIdentifier(conf.Database.Name)
		if conf.Database.User != "" {
			q += " OWNER " + pq.QuoteIdentifier(conf.Database.User)
		}
		if _, err = admin.Exec(q); err != nil {
			return errors.Wrap(err, "creating database")
		}
	}
	return nil
}

// Migrate applies every pending migration.
func Migrate(db *sql.DB) error {
	if err := goose.Up(db, Migrations, MigrationsDir); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}
