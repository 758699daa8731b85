package main

import (
	"github.com/trezcool/goose"

	"github.com/trezcool/kazi/fs"
)

var gooseRunFunc = goose.RunFS // mockable

// migrate runs a goose command against the embedded migrations: args[0] is the command, the rest its arguments.
func (cli *commandLine) migrate(args []string) error {
	command, arguments := args[0], args[1:]
	if err := gooseRunFunc(command, cli.db, appfs.FS, "migrations", arguments...); err != nil {
		return err
	}
	logger.Info("migrate " + command + ": done")
	return nil
}
