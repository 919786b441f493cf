package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"mergington-be/internal/domain"
	"mergington-be/internal/observability"
	"mergington-be/internal/repository"
)

// Bootstrap creates the schema and loads seeds into an empty store.
// Existing data is never merged or updated.
func Bootstrap(ctx context.Context, repo repository.ActivityRepository, seeds []domain.SeedActivity, logger *zap.Logger) (bool, error) {
	if err := repo.EnsureSchema(ctx); err != nil {
		return false, fmt.Errorf("bootstrap: %w", err)
	}

	seeded, err := repo.SeedIfEmpty(ctx, seeds)
	if err != nil {
		return false, fmt.Errorf("bootstrap: %w", err)
	}
	observability.RecordBootstrap(seeded)

	if seeded {
		logger.Info("Seeded activity store", zap.Int("activities", len(seeds)))
	} else {
		logger.Info("Activity store already populated, skipping seed")
	}
	return seeded, nil
}
