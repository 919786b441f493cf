package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"mergington-be/internal/domain"
	"mergington-be/pkg/database"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS activities (
		name TEXT PRIMARY KEY,
		description TEXT NOT NULL,
		schedule TEXT NOT NULL,
		max_participants INTEGER NOT NULL CHECK (max_participants > 0)
	);

	CREATE TABLE IF NOT EXISTS participants (
		position BIGSERIAL NOT NULL,
		activity_name TEXT NOT NULL REFERENCES activities(name) ON DELETE CASCADE,
		email TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (activity_name, email)
	);

	CREATE INDEX IF NOT EXISTS idx_participants_activity_position
		ON participants (activity_name, position);
`

// PostgresActivityRepository stores activities in PostgreSQL.
// Writers serialize on the activity row with SELECT ... FOR UPDATE.
type PostgresActivityRepository struct {
	db *database.PostgresDB
}

func NewPostgresActivityRepository(db *database.PostgresDB) *PostgresActivityRepository {
	return &PostgresActivityRepository{db: db}
}

// EnsureSchema creates the tables if they do not exist
func (r *PostgresActivityRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// DropSchema drops both tables
func (r *PostgresActivityRepository) DropSchema(ctx context.Context) error {
	if _, err := r.db.Pool.Exec(ctx, `DROP TABLE IF EXISTS participants, activities CASCADE`); err != nil {
		return fmt.Errorf("failed to drop schema: %w", err)
	}
	return nil
}

// SeedIfEmpty inserts the seed data when no activity exists. The table lock
// keeps two instances booting at once from both seeding.
func (r *PostgresActivityRepository) SeedIfEmpty(ctx context.Context, seeds []domain.SeedActivity) (seeded bool, err error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `LOCK TABLE activities IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return false, fmt.Errorf("failed to lock activities: %w", err)
	}

	var count int
	if err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM activities`).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to count activities: %w", err)
	}
	if count > 0 {
		return false, tx.Commit(ctx)
	}

	batch := &pgx.Batch{}
	for _, seed := range seeds {
		batch.Queue(
			`INSERT INTO activities (name, description, schedule, max_participants) VALUES ($1, $2, $3, $4)`,
			seed.Name, seed.Description, seed.Schedule, seed.MaxParticipants)
		for _, email := range seed.Participants {
			batch.Queue(
				`INSERT INTO participants (activity_name, email) VALUES ($1, $2)`,
				seed.Name, email)
		}
	}
	if err = tx.SendBatch(ctx, batch).Close(); err != nil {
		return false, fmt.Errorf("failed to seed activities: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit seed: %w", err)
	}
	return true, nil
}

// CountActivities returns the number of activities
func (r *PostgresActivityRepository) CountActivities(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM activities`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count activities: %w", err)
	}
	return count, nil
}

// ListActivities joins every activity with its participants
func (r *PostgresActivityRepository) ListActivities(ctx context.Context) (domain.ActivityDirectory, error) {
	query := `
		SELECT a.name, a.description, a.schedule, a.max_participants, p.email
		FROM activities a
		LEFT JOIN participants p ON p.activity_name = a.name
		ORDER BY a.name, p.position
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	directory := domain.ActivityDirectory{}
	for rows.Next() {
		var (
			name    string
			details domain.ActivityDetails
			email   *string
		)
		if err := rows.Scan(&name, &details.Description, &details.Schedule, &details.MaxParticipants, &email); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		if email != nil {
			directory.AddRow(name, details, *email, true)
		} else {
			directory.AddRow(name, details, "", false)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activities: %w", err)
	}

	return directory, nil
}

// GetActivity returns a single activity with its roster
func (r *PostgresActivityRepository) GetActivity(ctx context.Context, name string) (*domain.ActivityDetails, error) {
	var details domain.ActivityDetails
	err := r.db.Pool.QueryRow(ctx,
		`SELECT description, schedule, max_participants FROM activities WHERE name = $1`, name,
	).Scan(&details.Description, &details.Schedule, &details.MaxParticipants)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx,
		`SELECT email FROM participants WHERE activity_name = $1 ORDER BY position`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	participants, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan participants: %w", err)
	}
	details.Participants = participants
	if details.Participants == nil {
		details.Participants = []string{}
	}

	return &details, nil
}

// WithinTx runs fn inside a read committed transaction
func (r *PostgresActivityRepository) WithinTx(ctx context.Context, fn func(tx RegistrationTx) error) (err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(&postgresRegistrationTx{tx: tx}); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type postgresRegistrationTx struct {
	tx pgx.Tx
}

func (t *postgresRegistrationTx) LockActivity(ctx context.Context, name string) (*domain.Activity, error) {
	var activity domain.Activity
	err := t.tx.QueryRow(ctx,
		`SELECT name, description, schedule, max_participants FROM activities WHERE name = $1 FOR UPDATE`, name,
	).Scan(&activity.Name, &activity.Description, &activity.Schedule, &activity.MaxParticipants)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock activity: %w", err)
	}
	return &activity, nil
}

func (t *postgresRegistrationTx) IsRegistered(ctx context.Context, activityName, email string) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM participants WHERE activity_name = $1 AND email = $2)`,
		activityName, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check registration: %w", err)
	}
	return exists, nil
}

func (t *postgresRegistrationTx) CountParticipants(ctx context.Context, activityName string) (int, error) {
	var count int
	err := t.tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM participants WHERE activity_name = $1`, activityName,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count participants: %w", err)
	}
	return count, nil
}

func (t *postgresRegistrationTx) AddParticipant(ctx context.Context, activityName, email string) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO participants (activity_name, email) VALUES ($1, $2)`, activityName, email)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolation:
				return domain.ErrAlreadyRegistered
			case pgForeignKeyViolation:
				return domain.ErrActivityNotFound
			}
		}
		return fmt.Errorf("failed to add participant: %w", err)
	}
	return nil
}

func (t *postgresRegistrationTx) RemoveParticipant(ctx context.Context, activityName, email string) error {
	tag, err := t.tx.Exec(ctx,
		`DELETE FROM participants WHERE activity_name = $1 AND email = $2`, activityName, email)
	if err != nil {
		return fmt.Errorf("failed to remove participant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotRegistered
	}
	return nil
}
