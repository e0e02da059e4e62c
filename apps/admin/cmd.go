package main

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/kymawa/ratiba/core"
	"github.com/kymawa/ratiba/storage/database"
)

var (
	// mockable
	createDBFunc = database.CreateIfNotExist
	migrateFunc  = database.RunMigrations

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf *core.Config
	db   *sql.DB
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  createdb               - create the database and app user if missing")
	fmt.Println("  migrate COMMAND [ARGS] - run a migration command (up, down, status, version...)")
	fmt.Println("  seed                   - load a demo dataset into the database")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "createdb":
		return createDBFunc(cli.conf)
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		db, err := cli.openDB()
		if err != nil {
			return err
		}
		return migrateFunc(db, args[2], args[3:]...)
	case "seed":
		db, err := cli.openDB()
		if err != nil {
			return err
		}
		return cli.seed(db)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) openDB() (*sql.DB, error) {
	if cli.db != nil {
		return cli.db, nil
	}
	db, err := database.Open(cli.conf)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	cli.db = db
	return db, nil
}

func (cli *commandLine) close() {
	if cli.db != nil {
		_ = cli.db.Close()
	}
}
