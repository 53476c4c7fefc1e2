package main

import (
	"database/sql"

	"github.com/trezcool/goose"

	appfs "github.com/trezcool/levelup/fs"
)

func gooseMigrate(db *sql.DB) func(command string, args ...string) error {
	return func(command string, args ...string) error {
		return goose.RunFS(command, db, appfs.FS, appfs.MigrationsDir, args...)
	}
}
