package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is the identity attached to a session. A nil *User means nobody is
// signed in.
type User struct {
	ID          int    `json:"id"`
	Login       string `json:"login"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// NewWorkout is a row ready for insertion into the workouts table.
type NewWorkout struct {
	UserID           int    `json:"-"`
	MuscleGroupLabel string `json:"muscle_group_label"`
	EquipmentLabel   string `json:"equipment_label"`
	DurationMinutes  int    `json:"duration_minutes"`
	Notes            string `json:"notes"`
}

// WorkoutRecord is a persisted workout as read back from storage.
type WorkoutRecord struct {
	ID               uuid.UUID `json:"id"`
	UserID           int       `json:"user_id"`
	Date             time.Time `json:"date"`
	MuscleGroupLabel string    `json:"muscle_group_label"`
	EquipmentLabel   string    `json:"equipment_label"`
	DurationMinutes  int       `json:"duration_minutes"`
	Notes            string    `json:"notes"`
}

// ErrInvalidWorkout is returned by NewWorkout.Validate.
var ErrInvalidWorkout = errors.New("invalid workout")

// Validate checks the fields the workouts table requires.
func (w NewWorkout) Validate() error {
	switch {
	case strings.TrimSpace(w.MuscleGroupLabel) == "":
		return fmt.Errorf("%w: muscle_group_label is required", ErrInvalidWorkout)
	case strings.TrimSpace(w.EquipmentLabel) == "":
		return fmt.Errorf("%w: equipment_label is required", ErrInvalidWorkout)
	case w.DurationMinutes <= 0:
		return fmt.Errorf("%w: duration_minutes must be positive", ErrInvalidWorkout)
	case strings.TrimSpace(w.Notes) == "":
		return fmt.Errorf("%w: notes is required", ErrInvalidWorkout)
	}
	return nil
}
