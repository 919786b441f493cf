package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"mergington-be/internal/domain"
	"mergington-be/pkg/database"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS activities (
		name TEXT PRIMARY KEY,
		description TEXT NOT NULL,
		schedule TEXT NOT NULL,
		max_participants INTEGER NOT NULL CHECK (max_participants > 0)
	)`,
	`CREATE TABLE IF NOT EXISTS participants (
		activity_name TEXT NOT NULL,
		email TEXT NOT NULL,
		PRIMARY KEY (activity_name, email),
		FOREIGN KEY (activity_name) REFERENCES activities(name) ON DELETE CASCADE
	)`,
}

// SQLiteActivityRepository stores activities in a SQLite file.
// Roster order is the participants table rowid order.
type SQLiteActivityRepository struct {
	db *database.SQLiteDB
}

func NewSQLiteActivityRepository(db *database.SQLiteDB) *SQLiteActivityRepository {
	return &SQLiteActivityRepository{db: db}
}

// EnsureSchema creates the tables if they do not exist
func (r *SQLiteActivityRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range sqliteSchema {
		if _, err := r.db.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// DropSchema drops both tables
func (r *SQLiteActivityRepository) DropSchema(ctx context.Context) error {
	for _, stmt := range []string{
		`DROP TABLE IF EXISTS participants`,
		`DROP TABLE IF EXISTS activities`,
	} {
		if _, err := r.db.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
	}
	return nil
}

// SeedIfEmpty inserts the seed activities and rosters when the table is empty
func (r *SQLiteActivityRepository) SeedIfEmpty(ctx context.Context, seeds []domain.SeedActivity) (seeded bool, err error) {
	tx, err := r.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var count int
	if err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM activities`).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to count activities: %w", err)
	}
	if count > 0 {
		return false, tx.Commit()
	}

	for _, seed := range seeds {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO activities (name, description, schedule, max_participants) VALUES (?, ?, ?, ?)`,
			seed.Name, seed.Description, seed.Schedule, seed.MaxParticipants)
		if err != nil {
			return false, fmt.Errorf("failed to seed activity %q: %w", seed.Name, err)
		}
		for _, email := range seed.Participants {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO participants (activity_name, email) VALUES (?, ?)`,
				seed.Name, email)
			if err != nil {
				return false, fmt.Errorf("failed to seed participant of %q: %w", seed.Name, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit seed: %w", err)
	}
	return true, nil
}

// CountActivities returns the number of activities
func (r *SQLiteActivityRepository) CountActivities(ctx context.Context) (int, error) {
	var count int
	if err := r.db.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM activities`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count activities: %w", err)
	}
	return count, nil
}

// ListActivities joins every activity with its participants
func (r *SQLiteActivityRepository) ListActivities(ctx context.Context) (domain.ActivityDirectory, error) {
	query := `
		SELECT a.name, a.description, a.schedule, a.max_participants, p.email
		FROM activities a
		LEFT JOIN participants p ON p.activity_name = a.name
		ORDER BY a.name, p.rowid
	`

	rows, err := r.db.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	directory := domain.ActivityDirectory{}
	for rows.Next() {
		var (
			name    string
			details domain.ActivityDetails
			email   sql.NullString
		)
		if err := rows.Scan(&name, &details.Description, &details.Schedule, &details.MaxParticipants, &email); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		directory.AddRow(name, details, email.String, email.Valid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activities: %w", err)
	}

	return directory, nil
}

// GetActivity returns a single activity with its roster
func (r *SQLiteActivityRepository) GetActivity(ctx context.Context, name string) (*domain.ActivityDetails, error) {
	var details domain.ActivityDetails
	err := r.db.DB.QueryRowContext(ctx,
		`SELECT description, schedule, max_participants FROM activities WHERE name = ?`, name,
	).Scan(&details.Description, &details.Schedule, &details.MaxParticipants)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}

	rows, err := r.db.DB.QueryContext(ctx,
		`SELECT email FROM participants WHERE activity_name = ? ORDER BY rowid`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	details.Participants = []string{}
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		details.Participants = append(details.Participants, email)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return &details, nil
}

// WithinTx runs fn inside a BEGIN IMMEDIATE transaction, which takes the
// database write lock up front
func (r *SQLiteActivityRepository) WithinTx(ctx context.Context, fn func(tx RegistrationTx) error) (err error) {
	tx, err := r.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(&sqliteRegistrationTx{tx: tx}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type sqliteRegistrationTx struct {
	tx *sql.Tx
}

func (t *sqliteRegistrationTx) LockActivity(ctx context.Context, name string) (*domain.Activity, error) {
	var activity domain.Activity
	err := t.tx.QueryRowContext(ctx,
		`SELECT name, description, schedule, max_participants FROM activities WHERE name = ?`, name,
	).Scan(&activity.Name, &activity.Description, &activity.Schedule, &activity.MaxParticipants)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return &activity, nil
}

func (t *sqliteRegistrationTx) IsRegistered(ctx context.Context, activityName, email string) (bool, error) {
	var exists bool
	err := t.tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM participants WHERE activity_name = ? AND email = ?)`,
		activityName, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check registration: %w", err)
	}
	return exists, nil
}

func (t *sqliteRegistrationTx) CountParticipants(ctx context.Context, activityName string) (int, error) {
	var count int
	err := t.tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM participants WHERE activity_name = ?`, activityName,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count participants: %w", err)
	}
	return count, nil
}

func (t *sqliteRegistrationTx) AddParticipant(ctx context.Context, activityName, email string) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO participants (activity_name, email) VALUES (?, ?)`, activityName, email)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) {
			switch sqliteErr.ExtendedCode {
			case sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique:
				return domain.ErrAlreadyRegistered
			case sqlite3.ErrConstraintForeignKey:
				return domain.ErrActivityNotFound
			}
		}
		return fmt.Errorf("failed to add participant: %w", err)
	}
	return nil
}

func (t *sqliteRegistrationTx) RemoveParticipant(ctx context.Context, activityName, email string) error {
	res, err := t.tx.ExecContext(ctx,
		`DELETE FROM participants WHERE activity_name = ? AND email = ?`, activityName, email)
	if err != nil {
		return fmt.Errorf("failed to remove participant: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotRegistered
	}
	return nil
}
