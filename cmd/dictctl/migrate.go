package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/heartmarshall/tjdict-backend/internal/adapter/postgres"
	"github.com/heartmarshall/tjdict-backend/internal/config"
)

var migrateCommand = &cli.Command{
	Name:  "migrate",
	Usage: "apply pending Postgres migrations",
	Description: "The database is taken from the service configuration " +
		"(--config, CONFIG_PATH or DATABASE_DSN).",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "config `FILE` (overrides CONFIG_PATH)",
		},
		&cli.StringFlag{
			Name:  "dir",
			Usage: "migrations `DIR` (overrides database.migrations_dir)",
		},
	},
	Action: func(c *cli.Context) error {
		load := config.Load
		if path := c.String("config"); path != "" {
			load = func() (*config.Config, error) { return config.LoadFile(path) }
		}
		cfg, err := load()
		if err != nil {
			return err
		}
		if err := cfg.RequireDatabase(); err != nil {
			return err
		}

		dir := cfg.Database.MigrationsDir
		if d := c.String("dir"); d != "" {
			dir = d
		}

		applied, err := postgres.Migrate(c.Context, cfg.Database.DSN, dir)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			fmt.Fprintln(c.App.Writer, "database is up to date")
			return nil
		}
		for _, v := range applied {
			fmt.Fprintf(c.App.Writer, "applied %05d\n", v)
		}
		return nil
	},
}
