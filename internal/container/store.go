package container

import (
	"context"
	"fmt"

	"mergington-be/internal/config"
	"mergington-be/internal/repository"
	"mergington-be/pkg/database"
)

// Store is an opened activity store together with its connection handle
type Store struct {
	Repository repository.ActivityRepository
	Driver     string
	health     func(ctx context.Context) error
	close      func() error
}

// Health pings the underlying database
func (s *Store) Health(ctx context.Context) error {
	return s.health(ctx)
}

// Close releases the connection pool
func (s *Store) Close() error {
	return s.close()
}

// OpenStore connects to the store selected by cfg.StoreDriver
func OpenStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		db, err := database.NewSQLiteDB(ctx, cfg.DatabasePath)
		if err != nil {
			return nil, err
		}
		return &Store{
			Repository: repository.NewSQLiteActivityRepository(db),
			Driver:     config.DriverSQLite,
			health:     db.Health,
			close:      db.Close,
		}, nil

	case config.DriverPostgres:
		db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return &Store{
			Repository: repository.NewPostgresActivityRepository(db),
			Driver:     config.DriverPostgres,
			health:     db.Health,
			close:      db.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
