package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/belleza/salon/core"
	"github.com/belleza/salon/core/user"
)

func (cli *commandLine) resetPasswordCommand() *cobra.Command {
	var uname string
	cmd := &cobra.Command{
		Use:   "resetpassword",
		Short: "Reset a user's password",
		RunE: func(cmd *cobra.Command, args []string) error {
			if uname == "" {
				_ = cmd.Usage()
				return errHelp
			}
			pwd, err := promptPassword(cmd)
			if err != nil {
				return err
			}
			if err = cli.resetPassword(cmd.Context(), uname, pwd); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "password updated")
			return nil
		},
	}
	cmd.Flags().StringVar(&uname, "username", "", "The user's username or email. The password will be prompted next.")
	return cmd
}

func (cli *commandLine) resetPassword(ctx context.Context, uname, pwd string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: core.CleanString(uname, true /* lower */)})
	if err != nil {
		return err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = cli.usrRepo.UpdateUser(ctx, usr)
	return err
}
