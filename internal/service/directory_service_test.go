package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mergington-be/internal/domain"
	"mergington-be/pkg/database"
)

func TestListActivitiesReturnsSeed(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewDirectoryService(repo, zap.NewNop())

	directory, err := svc.ListActivities(context.Background())
	require.NoError(t, err)
	require.Len(t, directory, len(domain.DefaultSeed))

	for _, seed := range domain.DefaultSeed {
		details, ok := directory[seed.Name]
		require.True(t, ok, seed.Name)
		assert.Equal(t, seed.Description, details.Description)
		assert.Equal(t, seed.Schedule, details.Schedule)
		assert.Equal(t, seed.MaxParticipants, details.MaxParticipants)
		assert.Equal(t, seed.Participants, details.Participants)
	}
}

func TestListActivitiesReflectsSignup(t *testing.T) {
	repo := newTestRepo(t)
	directory := NewDirectoryService(repo, zap.NewNop())
	registration := NewRegistrationService(repo, NewLocalLocker(), zap.NewNop())
	ctx := context.Background()

	_, err := registration.SignUp(ctx, "Chess Club", "new@school.edu")
	require.NoError(t, err)

	activities, err := directory.ListActivities(ctx)
	require.NoError(t, err)
	chess := activities["Chess Club"]
	assert.Len(t, chess.Participants, 3)
	assert.Contains(t, chess.Participants, "new@school.edu")
	assert.Equal(t, 12, chess.MaxParticipants)
}

func TestListActivitiesEmptyStore(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t, database.MemoryPath, nil)
	svc := NewDirectoryService(repo, zap.NewNop())

	directory, err := svc.ListActivities(ctx)
	require.NoError(t, err)
	assert.NotNil(t, directory)
	assert.Empty(t, directory)
}

func TestGetActivity(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewDirectoryService(repo, zap.NewNop())

	details, err := svc.GetActivity(context.Background(), "Debate Team")
	require.NoError(t, err)
	assert.Equal(t, 12, details.MaxParticipants)

	_, err = svc.GetActivity(context.Background(), "Knitting")
	assert.ErrorIs(t, err, domain.ErrActivityNotFound)
}

func TestListActivitiesStoreFailure(t *testing.T) {
	repo := &failingRepo{}
	repo.On("ListActivities", mock.Anything).Return(nil, errors.New("disk I/O error"))

	svc := NewDirectoryService(repo, zap.NewNop())
	_, err := svc.ListActivities(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrActivityNotFound)
	repo.AssertExpectations(t)
}
