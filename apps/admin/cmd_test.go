package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/belleza/salon/core"
	"github.com/belleza/salon/core/appointment"
	"github.com/belleza/salon/core/customer"
	"github.com/belleza/salon/core/product"
	"github.com/belleza/salon/core/staff"
	"github.com/belleza/salon/core/user"
	emailsvc "github.com/belleza/salon/services/email"
	inmemdb "github.com/belleza/salon/storage/database/inmem"
	"github.com/belleza/salon/testutil"
)

var usrRepo user.Repository

func setup(t *testing.T) *commandLine {
	t.Helper()

	// set up DB & repos
	db := inmemdb.Open()
	usrRepo = inmemdb.NewUserRepository(db)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	conf := testutil.NewConfig()
	custSvc := customer.NewService(inmemdb.NewCustomerRepository(db))
	staffSvc := staff.NewService(inmemdb.NewStaffRepository(db))

	// start CLI
	return &commandLine{
		db:       &sql.DB{},
		usrRepo:  usrRepo,
		custSvc:  custSvc,
		staffSvc: staffSvc,
		prodSvc:  product.NewService(inmemdb.NewProductRepository(db)),
		apptSvc:  appointment.NewService(inmemdb.NewAppointmentRepository(db), custSvc, staffSvc, emailsvc.NewConsoleServiceMock(conf)),
		validate: validate,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func mockPassword(pwd string) {
	readPasswordFunc = func(fd int) ([]byte, error) {
		return []byte(pwd), nil
	}
}

func checkErr(t *testing.T, tt cliTest, err error) {
	t.Helper()

	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, err)
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Contains(t, err.Error(), tt.wantErrStr)
		}
	default:
		assert.NoError(t, err)
	}
}

func Test_commandLine_root(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErrStr: `unknown command "lol"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(append([]string{"admin"}, tt.args...)))
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	var ran []string
	record := func(command string) func(db *sql.DB, fsys fs.FS, dir string) error {
		return func(db *sql.DB, fsys fs.FS, dir string) error {
			if _, err := fs.Stat(fsys, dir+"/00001_create_users.sql"); err != nil {
				return err
			}
			ran = append(ran, command)
			return nil
		}
	}
	recordTo := func(command string) func(db *sql.DB, fsys fs.FS, dir string, version int64) error {
		return func(db *sql.DB, fsys fs.FS, dir string, version int64) error {
			ran = append(ran, fmt.Sprintf("%s %d", command, version))
			return nil
		}
	}
	gooseUp, gooseUpByOne, gooseDown, gooseRedo = record("up"), record("up-by-one"), record("down"), record("redo")
	gooseUpTo, gooseDownTo = recordTo("up-to"), recordTo("down-to")

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: migrate up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: migrate down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(append([]string{"admin"}, tt.args...)))
		})
	}
	assert.Equal(t, []string{"up", "up-by-one", "up-to 2", "down", "down-to 1", "redo"}, ran)
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)

	existing := testutil.CreateUser(t, usrRepo, "Stylist", "stylist", "stylist@belleza.test", "old", []string{user.RoleStaff}, false)

	t.Run("missing username and email", func(t *testing.T) {
		mockPassword("secret")
		checkErr(t, cliTest{wantErr: errHelp}, cli.run([]string{"admin", "adduser"}))
	})

	t.Run("missing password", func(t *testing.T) {
		mockPassword("")
		checkErr(t, cliTest{wantErr: errHelp}, cli.run([]string{"admin", "adduser", "--username", "owner"}))
	})

	t.Run("create admin", func(t *testing.T) {
		mockPassword("s3cret")
		err := cli.run([]string{"admin", "adduser", "--username", "Owner", "--email", "owner@belleza.test", "--admin"})
		require.NoError(t, err)

		usr, err := usrRepo.GetUser(context.Background(), user.GetFilter{UsernameOrEmail: "owner"})
		require.NoError(t, err)
		assert.Equal(t, "owner", usr.Name)
		assert.True(t, usr.IsActive)
		assert.True(t, usr.IsAdmin())
		assert.NoError(t, usr.CheckPassword("s3cret"))
	})

	t.Run("create customer by default", func(t *testing.T) {
		mockPassword("s3cret")
		err := cli.run([]string{"admin", "adduser", "--name", "Ada Obi", "--email", "ada@belleza.test"})
		require.NoError(t, err)

		usr, err := usrRepo.GetUser(context.Background(), user.GetFilter{Email: "ada@belleza.test"})
		require.NoError(t, err)
		assert.Equal(t, "Ada Obi", usr.Name)
		assert.Equal(t, user.CustomerRoles, usr.Roles)
	})

	t.Run("update existing", func(t *testing.T) {
		mockPassword("new-password")
		err := cli.run([]string{"admin", "adduser", "--username", existing.Username, "--staff"})
		require.NoError(t, err)

		usr, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: existing.ID})
		require.NoError(t, err)
		assert.True(t, usr.IsActive)
		assert.Equal(t, "Stylist", usr.Name)
		assert.NoError(t, usr.CheckPassword("new-password"))
	})

	t.Run("email taken", func(t *testing.T) {
		mockPassword("s3cret")
		err := cli.run([]string{"admin", "adduser", "--username", "another", "--email", existing.Email})
		assert.Equal(t, user.ErrEmailExists, errors.Cause(err))
	})
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "User", "awe", "awe@test.cd", "mdr", nil, true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "--username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "--username", "lol"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "--username", usr.Username}, extra: extra{pwd: "lol"}},
		{name: "reset with email", args: []string{"resetpassword", "--username", strings.ToUpper(usr.Email)}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshedUsr, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
				if err != nil {
					t.Fatalf("GetUser() failed, %v", err)
				}
				if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
				usr = refreshedUsr
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_seed(t *testing.T) {
	cli := setup(t)

	t.Run("no file", func(t *testing.T) {
		checkErr(t, cliTest{wantErr: errHelp}, cli.run([]string{"admin", "seed"}))
	})

	t.Run("missing file", func(t *testing.T) {
		checkErr(t, cliTest{wantErrStr: "opening seed file"}, cli.run([]string{"admin", "seed", "-f", "testdata/nope.yaml"}))
	})

	t.Run("unknown customer", func(t *testing.T) {
		data := "appointments:\n  - customer: Nobody\n    service: haircut\n    date: \"2026-01-10T10:00:00Z\"\n"
		_, err := cli.seed(context.Background(), strings.NewReader(data))
		assert.EqualError(t, err, `appointment #1: unknown customer "Nobody"`)
	})

	t.Run("seed", func(t *testing.T) {
		require.NoError(t, cli.run([]string{"admin", "seed", "-f", "testdata/seed.yaml"}))
		ctx := context.Background()

		customers, err := cli.custSvc.Query(ctx, &customer.QueryFilter{Search: "ada"}, nil)
		require.NoError(t, err)
		require.Len(t, customers, 1)
		// the completed visit is credited on top of the seeded spend
		assert.True(t, customers[0].TotalSpent.Equal(decimal.NewFromInt(1350)), customers[0].TotalSpent.String())

		members, err := cli.staffSvc.Query(ctx, nil, nil)
		require.NoError(t, err)
		assert.Len(t, members, 2)

		products, err := cli.prodSvc.Query(ctx, &product.QueryFilter{Category: "nails"}, nil)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "Nail Polish", products[0].Name)

		appts, err := cli.apptSvc.QueryAll(ctx)
		require.NoError(t, err)
		require.Len(t, appts, 2)
		statuses := []string{appts[0].Status, appts[1].Status}
		assert.ElementsMatch(t, []string{appointment.StatusCompleted, appointment.StatusNoShow}, statuses)
	})
}
