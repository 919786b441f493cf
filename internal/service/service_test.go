package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mergington-be/internal/domain"
	"mergington-be/internal/repository"
	"mergington-be/pkg/database"
)

// newTestRepo opens an in-memory store loaded with the default seed
func newTestRepo(t *testing.T) repository.ActivityRepository {
	t.Helper()
	return openRepo(t, database.MemoryPath, domain.DefaultSeed)
}

func openRepo(t *testing.T, path string, seeds []domain.SeedActivity) repository.ActivityRepository {
	t.Helper()
	ctx := context.Background()

	db, err := database.NewSQLiteDB(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := repository.NewSQLiteActivityRepository(db)
	_, err = Bootstrap(ctx, repo, seeds, zap.NewNop())
	require.NoError(t, err)
	return repo
}

func openFileRepo(t *testing.T, seeds []domain.SeedActivity) repository.ActivityRepository {
	t.Helper()
	return openRepo(t, filepath.Join(t.TempDir(), "activities.db"), seeds)
}

func rosterOf(t *testing.T, repo repository.ActivityRepository, name string) []string {
	t.Helper()
	details, err := repo.GetActivity(context.Background(), name)
	require.NoError(t, err)
	require.NotNil(t, details)
	return details.Participants
}
