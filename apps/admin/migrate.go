package main

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/trezcool/goose"

	"github.com/belleza/salon/storage/database"
)

// mockable
var (
	gooseUp      = goose.Up
	gooseUpByOne = goose.UpByOne
	gooseUpTo    = goose.UpTo
	gooseDown    = goose.Down
	gooseDownTo  = goose.DownTo
	gooseRedo    = goose.Redo
)

func (cli *commandLine) migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate COMMAND [VERSION]",
		Short: "Run database migrations: up, up-by-one, up-to VERSION, down, down-to VERSION, redo",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Usage()
				return errHelp
			}
			return cli.migrate(args)
		},
	}
}

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return errors.New("no database to migrate")
	}
	fsys, dir := database.Migrations, database.MigrationsDir

	command := args[0]
	switch command {
	case "up":
		return gooseUp(cli.db, fsys, dir)
	case "up-by-one":
		return gooseUpByOne(cli.db, fsys, dir)
	case "down":
		return gooseDown(cli.db, fsys, dir)
	case "redo":
		return gooseRedo(cli.db, fsys, dir)
	case "up-to", "down-to":
		if len(args) < 2 {
			return errors.Errorf("%s must be of form: migrate %s VERSION", command, command)
		}
		version, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return errors.Errorf("version must be a number (got '%s')", args[1])
		}
		if command == "up-to" {
			return gooseUpTo(cli.db, fsys, dir, version)
		}
		return gooseDownTo(cli.db, fsys, dir, version)
	default:
		return errors.Errorf("%q: no such command", command)
	}
}
