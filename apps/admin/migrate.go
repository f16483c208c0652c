package main

import (
	"github.com/JoanAquinoVasquez/SISCON-sub000/storage/database"
)

var migrateFunc = database.RunMigrations // mockable

func (cli *commandLine) migrate(args []string) error {
	return migrateFunc(cli.db, args[0], args[1:]...)
}
