package repository

import (
	"context"

	"mergington-be/internal/domain"
)

// ActivityRepository defines the interface for activity and roster storage
type ActivityRepository interface {
	// EnsureSchema creates the activities and participants tables if missing
	EnsureSchema(ctx context.Context) error

	// DropSchema removes both tables and everything in them
	DropSchema(ctx context.Context) error

	// SeedIfEmpty inserts seeds only when no activity exists yet.
	// It reports whether anything was inserted.
	SeedIfEmpty(ctx context.Context, seeds []domain.SeedActivity) (bool, error)

	// CountActivities returns the number of stored activities
	CountActivities(ctx context.Context) (int, error)

	// ListActivities returns every activity with its roster in registration order
	ListActivities(ctx context.Context) (domain.ActivityDirectory, error)

	// GetActivity returns one activity with its roster, or nil when it does not exist
	GetActivity(ctx context.Context, name string) (*domain.ActivityDetails, error)

	// WithinTx runs fn in a transaction that serializes writers of an activity.
	// The transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(tx RegistrationTx) error) error
}

// RegistrationTx is the set of operations available inside WithinTx
type RegistrationTx interface {
	// LockActivity returns the activity and holds it for the rest of the
	// transaction, or nil when it does not exist
	LockActivity(ctx context.Context, name string) (*domain.Activity, error)

	// IsRegistered reports whether email is on the activity's roster
	IsRegistered(ctx context.Context, activityName, email string) (bool, error)

	// CountParticipants returns the roster size of the activity
	CountParticipants(ctx context.Context, activityName string) (int, error)

	// AddParticipant appends email to the activity's roster
	AddParticipant(ctx context.Context, activityName, email string) error

	// RemoveParticipant deletes email from the activity's roster
	RemoveParticipant(ctx context.Context, activityName, email string) error
}
