package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
)

// RunMigrations applies every pending migration found in dir. Running with
// nothing to apply is not an error.
func RunMigrations(dsn, dir string, logger logrus.FieldLogger) error {
	m, closeDB, err := newMigrator(dsn, dir)
	if err != nil {
		return err
	}
	defer closeDB()

	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}

// RollbackMigrations reverts the given number of migrations.
func RollbackMigrations(dsn, dir string, steps int, logger logrus.FieldLogger) error {
	if steps <= 0 {
		return fmt.Errorf("rollback steps must be positive, got %d", steps)
	}
	m, closeDB, err := newMigrator(dsn, dir)
	if err != nil {
		return err
	}
	defer closeDB()

	logger.WithField("steps", steps).Info("rolling back migrations...")
	return m.Steps(-steps)
}

func newMigrator(dsn, dir string) (*migrate.Migrate, func(), error) {
	// Open sql DB via pgx stdlib
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() { _ = db.Close() }
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", dir), "postgres", driver)
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	return m, closeDB, nil
}
