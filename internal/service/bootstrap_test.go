package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mergington-be/internal/domain"
	"mergington-be/internal/repository"
	"mergington-be/pkg/database"
)

func TestBootstrapIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := database.NewSQLiteDB(ctx, filepath.Join(t.TempDir(), "activities.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := repository.NewSQLiteActivityRepository(db)

	seeded, err := Bootstrap(ctx, repo, domain.DefaultSeed, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, seeded)

	// A signup between boots must survive the second bootstrap
	svc := NewRegistrationService(repo, NewLocalLocker(), zap.NewNop())
	_, err = svc.SignUp(ctx, "Art Club", "new@school.edu")
	require.NoError(t, err)

	seeded, err = Bootstrap(ctx, repo, domain.DefaultSeed, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, seeded)

	count, err := repo.CountActivities(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(domain.DefaultSeed), count)
	assert.Contains(t, rosterOf(t, repo, "Art Club"), "new@school.edu")
}

func TestBootstrapSchemaFailure(t *testing.T) {
	repo := &failingRepo{}
	repo.On("EnsureSchema", mock.Anything).Return(errors.New("read-only file system"))

	seeded, err := Bootstrap(context.Background(), repo, domain.DefaultSeed, zap.NewNop())
	assert.Error(t, err)
	assert.False(t, seeded)
	repo.AssertNotCalled(t, "SeedIfEmpty", mock.Anything, mock.Anything)
}
