package service

import (
	"context"

	"mergington-be/internal/domain"
)

// DirectoryService defines the read path over activities
type DirectoryService interface {
	// ListActivities returns every activity with its current roster
	ListActivities(ctx context.Context) (domain.ActivityDirectory, error)

	// GetActivity returns one activity or domain.ErrActivityNotFound
	GetActivity(ctx context.Context, name string) (*domain.ActivityDetails, error)
}

// RegistrationService defines signup and unregister operations
type RegistrationService interface {
	// SignUp registers email for the activity
	SignUp(ctx context.Context, activityName, email string) (*domain.Confirmation, error)

	// Unregister removes email from the activity
	Unregister(ctx context.Context, activityName, email string) (*domain.Confirmation, error)
}

// Locker provides mutual exclusion per key. The returned func releases the lock.
type Locker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

// Services aggregates all service interfaces
type Services struct {
	Directory    DirectoryService
	Registration RegistrationService
}
