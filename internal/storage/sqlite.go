package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/claude/fittrack/internal/models"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLite implements Store on a local database file. Timestamps are stored
// as unix milliseconds.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens the database file at path, creating its directory.
// Migrations must have been applied with RunMigrations.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if err := ensureSQLiteDir(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}
	return &SQLite{db: db}, nil
}

// ensureSQLiteDir creates the directory holding the database file.
func ensureSQLiteDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating database dir %s: %w", dir, err)
	}
	return nil
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) GetOrCreateUser(ctx context.Context, login, displayName, avatarURL string) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (login, display_name, avatar_url, last_seen)
		VALUES (?1, ?2, ?3, ?4)
		ON CONFLICT (login) DO UPDATE
			SET last_seen = excluded.last_seen,
			    display_name = COALESCE(NULLIF(?2, ''), users.display_name),
			    avatar_url = COALESCE(NULLIF(?3, ''), users.avatar_url)
		RETURNING id
	`, login, displayName, avatarURL, time.Now().UnixMilli()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting user %s: %w", login, err)
	}
	return id, nil
}

func (s *SQLite) InsertWorkout(ctx context.Context, w models.NewWorkout) (models.WorkoutRecord, error) {
	if err := validateWorkout(w); err != nil {
		return models.WorkoutRecord{}, err
	}

	rec := models.WorkoutRecord{
		ID:               uuid.New(),
		UserID:           w.UserID,
		Date:             time.UnixMilli(time.Now().UnixMilli()).UTC(),
		MuscleGroupLabel: w.MuscleGroupLabel,
		EquipmentLabel:   w.EquipmentLabel,
		DurationMinutes:  w.DurationMinutes,
		Notes:            w.Notes,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO workouts (id, user_id, created_at, muscle_group_label, equipment_label, duration_minutes, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.UserID, rec.Date.UnixMilli(),
		rec.MuscleGroupLabel, rec.EquipmentLabel, rec.DurationMinutes, rec.Notes)
	if err != nil {
		return models.WorkoutRecord{}, fmt.Errorf("inserting workout: %w", err)
	}
	return rec, nil
}

func (s *SQLite) ListWorkouts(ctx context.Context, userID int) ([]models.WorkoutRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, created_at, muscle_group_label, equipment_label, duration_minutes, notes
		 FROM workouts
		 WHERE user_id = ?
		 ORDER BY created_at DESC, rowid DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	result := []models.WorkoutRecord{}
	for rows.Next() {
		var (
			r       models.WorkoutRecord
			id      string
			created int64
		)
		if err := rows.Scan(&id, &r.UserID, &created, &r.MuscleGroupLabel,
			&r.EquipmentLabel, &r.DurationMinutes, &r.Notes); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parsing workout id %q: %w", id, err)
		}
		r.Date = time.UnixMilli(created).UTC()
		result = append(result, r)
	}
	return result, rows.Err()
}
