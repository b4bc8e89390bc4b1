// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package migration applies the SQL files under data/migrations with
golang-migrate.

The api server calls [RunUp] before it starts listening. yamdbctl exposes
[RunUp] and [RunDown] to operators.
*/
package migration

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// Registers the "pgx5" database scheme.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	// Registers the "file" source scheme.
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunUp applies every pending migration. A dirty schema is refused.
func RunUp(dsn string, migrationsPath string, logger *slog.Logger) error {
	return withMigrator(dsn, migrationsPath, logger, func(migrator *migrate.Migrate) error {
		fromVersion, isDirty, err := version(migrator)
		if err != nil {
			return err
		}
		if isDirty {
			return fmt.Errorf("migration: schema is dirty at version %d, fix it by hand and force the version", fromVersion)
		}

		logger.Info("migration_started", slog.Uint64("current_version", uint64(fromVersion)))

		if err := migrator.Up(); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				logger.Info("migration_already_up_to_date")
				return nil
			}
			return fmt.Errorf("migration: up: %w", err)
		}

		toVersion, _, _ := version(migrator)
		logger.Info("migration_successful",
			slog.Uint64("from_version", uint64(fromVersion)),
			slog.Uint64("to_version", uint64(toVersion)),
		)
		return nil
	})
}

// RunDown rolls back steps migrations, or all of them when steps <= 0.
func RunDown(dsn string, migrationsPath string, steps int, logger *slog.Logger) error {
	return withMigrator(dsn, migrationsPath, logger, func(migrator *migrate.Migrate) error {
		var err error
		if steps > 0 {
			err = migrator.Steps(-steps)
		} else {
			err = migrator.Down()
		}
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migration: down: %w", err)
		}

		current, isDirty, err := version(migrator)
		if err != nil {
			return err
		}
		logger.Info("migration_rolled_back", slog.Uint64("version", uint64(current)), slog.Bool("dirty", isDirty))
		return nil
	})
}

func withMigrator(dsn, migrationsPath string, logger *slog.Logger, run func(*migrate.Migrate) error) error {
	migrator, err := migrate.New("file://"+migrationsPath, toPgx5DSN(dsn))
	if err != nil {
		return fmt.Errorf("migration: init: %w", err)
	}
	defer func() {
		if sourceErr, databaseErr := migrator.Close(); sourceErr != nil || databaseErr != nil {
			logger.Error("migration_close_failed",
				slog.Any("source_error", sourceErr),
				slog.Any("database_error", databaseErr),
			)
		}
	}()

	migrator.Log = slogAdapter{logger: logger}
	return run(migrator)
}

// version treats an empty schema as version 0.
func version(migrator *migrate.Migrate) (uint, bool, error) {
	current, isDirty, err := migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("migration: read version: %w", err)
	}
	return current, isDirty, nil
}

// toPgx5DSN rewrites postgres:// and postgresql:// URLs to the pgx5://
// scheme the driver registers. Keyword/value DSNs pass through.
func toPgx5DSN(dsn string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(dsn, scheme); ok {
			return "pgx5://" + rest
		}
	}
	return dsn
}

// slogAdapter satisfies migrate.Logger.
type slogAdapter struct {
	logger *slog.Logger
}

func (adapter slogAdapter) Printf(format string, args ...any) {
	adapter.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (adapter slogAdapter) Verbose() bool {
	return false
}
