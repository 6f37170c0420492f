package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/belleza/salon/core"
	"github.com/belleza/salon/core/user"
)

func (cli *commandLine) addUserCommand() *cobra.Command {
	var (
		name, uname, email string
		isAdmin, isStaff   bool
	)
	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create a user, or update the password and roles of an existing one",
		RunE: func(cmd *cobra.Command, args []string) error {
			if uname == "" && email == "" {
				_ = cmd.Usage()
				return errHelp
			}
			pwd, err := promptPassword(cmd)
			if err != nil {
				return err
			}

			roles := user.CustomerRoles
			switch {
			case isAdmin:
				roles = user.AllRoles
			case isStaff:
				roles = user.StaffRoles
			}
			usr, err := cli.addUser(cmd.Context(), name, uname, email, pwd, roles)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %q saved (%s)\n", usr.Username, usr.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "The user's full name; defaults to the username")
	cmd.Flags().StringVar(&uname, "username", "", "The user's username")
	cmd.Flags().StringVar(&email, "email", "", "The user's email")
	cmd.Flags().BoolVar(&isAdmin, "admin", false, "Grant every role")
	cmd.Flags().BoolVar(&isStaff, "staff", false, "Grant the staff role")
	return cmd
}

// addUser updates or creates a user.User
func (cli *commandLine) addUser(ctx context.Context, name, uname, email, pwd string, roles []string) (user.User, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)
	if name = core.CleanString(name); name == "" {
		name = uname
	}

	lookup := uname
	if lookup == "" {
		lookup = email
	}
	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: lookup})
	exists := err == nil
	if err != nil && errors.Cause(err) != user.ErrNotFound {
		return user.User{}, err
	}

	now := time.Now().UTC()
	if !exists {
		if err = cli.usrRepo.CheckUsernameUniqueness(ctx, uname, email); err != nil {
			return user.User{}, err
		}
		usr = user.User{Name: name, Username: uname, Email: email, CreatedAt: now}
	}
	usr.Roles = roles
	usr.IsActive = true
	usr.UpdatedAt = now
	if err = usr.SetPassword(pwd); err != nil {
		return user.User{}, errors.Wrap(err, "setting password")
	}

	if exists {
		return cli.usrRepo.UpdateUser(ctx, usr)
	}
	return cli.usrRepo.CreateUser(ctx, usr)
}
