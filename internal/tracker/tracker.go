// Package tracker records which exercises of a plan were completed during one
// session and hands the finished workout to a Recorder.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/claude/fittrack/internal/models"
	"github.com/claude/fittrack/internal/plan"
)

// DefaultDurationMinutes is recorded when Meta leaves the duration unset.
const DefaultDurationMinutes = 45

var (
	ErrIndexOutOfRange  = errors.New("exercise index out of range")
	ErrNothingCompleted = errors.New("no exercises completed")
	ErrAuthRequired     = errors.New("authentication required")
	ErrSaveInProgress   = errors.New("save already in progress")
	ErrPersistence      = errors.New("saving workout failed")
)

// Recorder persists a finished workout.
type Recorder interface {
	InsertWorkout(ctx context.Context, w models.NewWorkout) (models.WorkoutRecord, error)
}

// Meta carries the labels and duration stored alongside the summary.
type Meta struct {
	MuscleGroupLabel string
	EquipmentLabel   string
	DurationMinutes  int
}

// Summary describes how much of a plan was completed.
type Summary struct {
	CompletedCount int    `json:"completed_count"`
	TotalCount     int    `json:"total_count"`
	Percentage     int    `json:"percentage"`
	NoteText       string `json:"note_text"`
}

// Notes renders the free-text note persisted with a workout.
func (s Summary) Notes() string {
	return fmt.Sprintf("%d/%d exercises completed (%d%%): %s",
		s.CompletedCount, s.TotalCount, s.Percentage, s.NoteText)
}

// Summarize counts the completed indices that fall inside exercises and
// joins their names in plan order.
func Summarize(exercises []plan.PlannedExercise, completed []int) Summary {
	s := Summary{TotalCount: len(exercises)}

	done := make(map[int]bool, len(completed))
	for _, i := range completed {
		if i >= 0 && i < len(exercises) {
			done[i] = true
		}
	}

	names := make([]string, 0, len(done))
	for i, ex := range exercises {
		if done[i] {
			names = append(names, ex.Name)
		}
	}
	s.CompletedCount = len(names)
	s.NoteText = strings.Join(names, ", ")
	if s.TotalCount > 0 {
		s.Percentage = int(math.Round(100 * float64(s.CompletedCount) / float64(s.TotalCount)))
	}
	return s
}

// Tracker holds the completion state for one plan. Methods are safe for
// concurrent use.
type Tracker struct {
	mu        sync.Mutex
	exercises []plan.PlannedExercise
	completed map[int]struct{}
	saving    bool
}

// New starts tracking exercises with nothing completed.
func New(exercises []plan.PlannedExercise) *Tracker {
	return &Tracker{
		exercises: slices.Clone(exercises),
		completed: make(map[int]struct{}),
	}
}

// Exercises returns the tracked plan.
func (t *Tracker) Exercises() []plan.PlannedExercise {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.exercises)
}

// Toggle flips the completion of exercise i.
func (t *Tracker) Toggle(i int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if i < 0 || i >= len(t.exercises) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(t.exercises))
	}
	if _, ok := t.completed[i]; ok {
		delete(t.completed, i)
	} else {
		t.completed[i] = struct{}{}
	}
	return nil
}

// IsCompleted reports whether exercise i is marked complete.
func (t *Tracker) IsCompleted(i int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.completed[i]
	return ok
}

// Completed returns the completed indices in ascending order.
func (t *Tracker) Completed() []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completedLocked()
}

func (t *Tracker) completedLocked() []int {
	out := make([]int, 0, len(t.completed))
	for i := range t.completed {
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}

// Summary summarizes the current state.
func (t *Tracker) Summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Summarize(t.exercises, t.completedLocked())
}

// Finish saves the session through rec. Validation and auth errors leave the
// tracker untouched. A failed insert returns an error wrapping
// ErrPersistence and keeps the completion state so the caller can retry;
// a successful one clears it.
func (t *Tracker) Finish(ctx context.Context, rec Recorder, user *models.User, meta Meta) (models.WorkoutRecord, error) {
	t.mu.Lock()
	if t.saving {
		t.mu.Unlock()
		return models.WorkoutRecord{}, ErrSaveInProgress
	}
	summary := Summarize(t.exercises, t.completedLocked())
	if summary.CompletedCount == 0 {
		t.mu.Unlock()
		return models.WorkoutRecord{}, ErrNothingCompleted
	}
	if user == nil {
		t.mu.Unlock()
		return models.WorkoutRecord{}, ErrAuthRequired
	}
	t.saving = true
	t.mu.Unlock()

	duration := meta.DurationMinutes
	if duration <= 0 {
		duration = DefaultDurationMinutes
	}
	record, err := rec.InsertWorkout(ctx, models.NewWorkout{
		UserID:           user.ID,
		MuscleGroupLabel: meta.MuscleGroupLabel,
		EquipmentLabel:   meta.EquipmentLabel,
		DurationMinutes:  duration,
		Notes:            summary.Notes(),
	})

	t.mu.Lock()
	defer t.mu.Unlock()
	t.saving = false
	if err != nil {
		return models.WorkoutRecord{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	clear(t.completed)
	return record, nil
}
