package main

import (
	"database/sql"
	"errors"
	"fmt"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/belleza/salon/core/appointment"
	"github.com/belleza/salon/core/customer"
	"github.com/belleza/salon/core/product"
	"github.com/belleza/salon/core/staff"
	"github.com/belleza/salon/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db       *sql.DB
	usrRepo  user.Repository
	custSvc  *customer.Service
	staffSvc *staff.Service
	prodSvc  *product.Service
	apptSvc  *appointment.Service
	validate *validator.Validate
}

func (cli *commandLine) run(args []string) error {
	root := cli.rootCommand()
	if len(args) > 1 {
		root.SetArgs(args[1:])
	} else {
		root.SetArgs([]string{})
	}
	return root.Execute()
}

func (cli *commandLine) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Belleza administration commands",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errHelp
		},
	}
	root.AddCommand(
		cli.addUserCommand(),
		cli.resetPasswordCommand(),
		cli.migrateCommand(),
		cli.seedCommand(),
	)
	return root
}

// promptPassword reads a password without echoing it. An empty password prints the usage.
func promptPassword(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		_ = cmd.Usage()
		return "", errHelp
	}
	return string(pwd), nil
}
