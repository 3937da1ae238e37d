package storage

import (
	"context"
	"fmt"

	"github.com/claude/fittrack/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a pgxpool.Pool and implements Store on PostgreSQL.
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a new DB with a connection pool.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{Pool: pool}, nil
}

func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// Close closes the connection pool.
func (db *DB) Close() error {
	db.Pool.Close()
	return nil
}

// InsertWorkout validates and inserts a workout row and returns it as stored.
func (db *DB) InsertWorkout(ctx context.Context, w models.NewWorkout) (models.WorkoutRecord, error) {
	if err := validateWorkout(w); err != nil {
		return models.WorkoutRecord{}, err
	}

	rec := models.WorkoutRecord{
		ID:               uuid.New(),
		UserID:           w.UserID,
		MuscleGroupLabel: w.MuscleGroupLabel,
		EquipmentLabel:   w.EquipmentLabel,
		DurationMinutes:  w.DurationMinutes,
		Notes:            w.Notes,
	}
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO workouts (id, user_id, muscle_group_label, equipment_label, duration_minutes, notes)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`,
		rec.ID, rec.UserID, rec.MuscleGroupLabel, rec.EquipmentLabel, rec.DurationMinutes, rec.Notes,
	).Scan(&rec.Date)
	if err != nil {
		return models.WorkoutRecord{}, fmt.Errorf("inserting workout: %w", err)
	}
	return rec, nil
}

// ListWorkouts returns all workouts of a user, newest first.
func (db *DB) ListWorkouts(ctx context.Context, userID int) ([]models.WorkoutRecord, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, created_at, muscle_group_label, equipment_label, duration_minutes, notes
		 FROM workouts
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	return scanWorkoutRows(rows)
}

func scanWorkoutRows(rows pgx.Rows) ([]models.WorkoutRecord, error) {
	result := []models.WorkoutRecord{}
	for rows.Next() {
		var r models.WorkoutRecord
		if err := rows.Scan(&r.ID, &r.UserID, &r.Date, &r.MuscleGroupLabel,
			&r.EquipmentLabel, &r.DurationMinutes, &r.Notes); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
