package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"mergington-be/internal/domain"
	"mergington-be/internal/repository"
)

// ActivityDirectoryService serves the activity listing. Nothing is cached;
// every call reads the store.
type ActivityDirectoryService struct {
	repo   repository.ActivityRepository
	logger *zap.Logger
}

func NewDirectoryService(repo repository.ActivityRepository, logger *zap.Logger) *ActivityDirectoryService {
	return &ActivityDirectoryService{repo: repo, logger: logger}
}

// ListActivities returns the full directory, empty but non-nil when no activity exists
func (s *ActivityDirectoryService) ListActivities(ctx context.Context) (domain.ActivityDirectory, error) {
	directory, err := s.repo.ListActivities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	if directory == nil {
		directory = domain.ActivityDirectory{}
	}

	s.logger.Debug("Listed activities", zap.Int("count", len(directory)))
	return directory, nil
}

// GetActivity returns a single activity by exact name
func (s *ActivityDirectoryService) GetActivity(ctx context.Context, name string) (*domain.ActivityDetails, error) {
	details, err := s.repo.GetActivity(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	if details == nil {
		return nil, domain.ErrActivityNotFound
	}
	return details, nil
}
