package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/fittrack"
	"github.com/claude/fittrack/internal/config"
	"github.com/claude/fittrack/internal/models"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Store is the persistence collaborator shared by the HTTP handlers, the
// MCP tools and the completion tracker.
type Store interface {
	// GetOrCreateUser finds or creates a user by login and returns its id.
	GetOrCreateUser(ctx context.Context, login, displayName, avatarURL string) (int, error)
	InsertWorkout(ctx context.Context, w models.NewWorkout) (models.WorkoutRecord, error)
	// ListWorkouts returns a user's workouts, newest first.
	ListWorkouts(ctx context.Context, userID int) ([]models.WorkoutRecord, error)
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*DB)(nil)
	_ Store = (*SQLite)(nil)
)

// Open connects to the database selected by cfg.Driver.
func Open(ctx context.Context, cfg config.DatabaseConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres, "":
		return New(ctx, cfg.DSN())
	case config.DriverSQLite:
		return OpenSQLite(ctx, cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// RunMigrations applies all pending embedded migrations for cfg.Driver.
func RunMigrations(cfg config.DatabaseConfig) error {
	driver := cfg.Driver
	if driver == "" {
		driver = config.DriverPostgres
	}
	if driver == config.DriverSQLite {
		if err := ensureSQLiteDir(cfg.Path); err != nil {
			return err
		}
	}
	src, err := iofs.New(fittrack.Migrations, "migrations/"+driver)
	if err != nil {
		return fmt.Errorf("opening migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, cfg.MigrationURL())
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

func validateWorkout(w models.NewWorkout) error {
	if w.UserID <= 0 {
		return fmt.Errorf("%w: user id is required", models.ErrInvalidWorkout)
	}
	return w.Validate()
}
