package main

import (
	"context"
	"fmt"
	"time"

	"github.com/joinify/joinify-go/internal/bootstrap"
)

const defaultMigrationTimeout = 5 * time.Minute

type migrateOptions struct {
	Timeout time.Duration
}

func parseMigrateFlags(cmdCtx *commandContext, args []string) (migrateOptions, error) {
	fs := newFlagSet(cmdCtx, "migrate-storage")
	opts := migrateOptions{Timeout: defaultMigrationTimeout}
	fs.DurationVar(&opts.Timeout, "timeout", defaultMigrationTimeout,
		"Maximum duration to wait for migrations to complete")
	if err := parseFlags(fs, args); err != nil {
		return migrateOptions{}, err
	}
	if opts.Timeout <= 0 {
		_ = writeln(cmdCtx.Out, "--timeout must be greater than zero")
		return migrateOptions{}, errUsage
	}
	return opts, nil
}

// runMigrateStorage applies the postgres token-storage schema without
// opening a session.
func runMigrateStorage(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags(cmdCtx, args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, opts.Timeout)
	defer cancel()

	db, err := bootstrap.ConnectDB(ctx, bootstrap.DatabaseConfig{
		DBConfig: cmdCtx.Config.Postgres,
		Logger:   cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", closeErr)
		}
	}()

	cmdCtx.Logger.Info("running storage migrations")
	applied, err := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	if len(applied) == 0 {
		return writeln(cmdCtx.Out, "Storage schema is up to date.")
	}
	for _, name := range applied {
		if err := writef(cmdCtx.Out, "applied %s\n", name); err != nil {
			return err
		}
	}
	return nil
}

