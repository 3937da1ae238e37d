package tracker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/claude/fittrack/internal/catalog"
	"github.com/claude/fittrack/internal/models"
	"github.com/claude/fittrack/internal/plan"
	"github.com/claude/fittrack/internal/tracker"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func exercises(names ...string) []plan.PlannedExercise {
	out := make([]plan.PlannedExercise, len(names))
	for i, n := range names {
		out[i] = plan.PlannedExercise{
			Exercise: catalog.Exercise{Name: n, Reps: "8-10"},
			Profile:  plan.Profile{Sets: 4, RestSeconds: 90, RestLabel: "90 sec"},
		}
	}
	return out
}

// fakeRecorder records inserts and optionally fails or blocks.
type fakeRecorder struct {
	err     error
	block   chan struct{}
	entered chan struct{}
	got     []models.NewWorkout
}

func (f *fakeRecorder) InsertWorkout(ctx context.Context, w models.NewWorkout) (models.WorkoutRecord, error) {
	if f.entered != nil {
		close(f.entered)
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return models.WorkoutRecord{}, ctx.Err()
		}
	}
	if f.err != nil {
		return models.WorkoutRecord{}, f.err
	}
	f.got = append(f.got, w)
	return models.WorkoutRecord{
		ID:               uuid.New(),
		UserID:           w.UserID,
		Date:             time.Now(),
		MuscleGroupLabel: w.MuscleGroupLabel,
		EquipmentLabel:   w.EquipmentLabel,
		DurationMinutes:  w.DurationMinutes,
		Notes:            w.Notes,
	}, nil
}

var user = &models.User{ID: 7, Login: "alice@example.com"}

func TestToggleIsItsOwnInverse(t *testing.T) {
	tr := tracker.New(exercises("Squat", "Lunge", "Leg Press"))

	require.NoError(t, tr.Toggle(1))
	assert.True(t, tr.IsCompleted(1))
	require.NoError(t, tr.Toggle(1))
	assert.False(t, tr.IsCompleted(1))
	assert.Empty(t, tr.Completed())
}

func TestToggleOutOfRange(t *testing.T) {
	tr := tracker.New(exercises("Squat"))

	assert.ErrorIs(t, tr.Toggle(1), tracker.ErrIndexOutOfRange)
	assert.ErrorIs(t, tr.Toggle(-1), tracker.ErrIndexOutOfRange)
	assert.Empty(t, tr.Completed())
}

func TestCompletedIsSorted(t *testing.T) {
	tr := tracker.New(exercises("a", "b", "c", "d"))
	for _, i := range []int{3, 0, 2} {
		require.NoError(t, tr.Toggle(i))
	}
	assert.Equal(t, []int{0, 2, 3}, tr.Completed())
}

func TestSummarize(t *testing.T) {
	ex := exercises("Bench Press", "Incline Press", "Cable Flyes", "Dips")

	tests := []struct {
		name      string
		completed []int
		want      tracker.Summary
	}{
		{"none", nil, tracker.Summary{TotalCount: 4}},
		{"half", []int{2, 0}, tracker.Summary{CompletedCount: 2, TotalCount: 4, Percentage: 50, NoteText: "Bench Press, Cable Flyes"}},
		{"all", []int{0, 1, 2, 3}, tracker.Summary{CompletedCount: 4, TotalCount: 4, Percentage: 100, NoteText: "Bench Press, Incline Press, Cable Flyes, Dips"}},
		{"ignores stray indices", []int{1, 9, -2}, tracker.Summary{CompletedCount: 1, TotalCount: 4, Percentage: 25, NoteText: "Incline Press"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tracker.Summarize(ex, tt.completed))
		})
	}
}

func TestSummarizeRoundsPercentage(t *testing.T) {
	s := tracker.Summarize(exercises("a", "b", "c"), []int{0, 1})
	assert.Equal(t, 67, s.Percentage)
	assert.Equal(t, "2/3 exercises completed (67%): a, b", s.Notes())

	empty := tracker.Summarize(nil, nil)
	assert.Equal(t, 0, empty.Percentage)
}

func TestFinishSavesAndClears(t *testing.T) {
	tr := tracker.New(exercises("Squat", "Lunge", "Leg Press", "Calf Raise"))
	require.NoError(t, tr.Toggle(0))
	require.NoError(t, tr.Toggle(2))
	rec := &fakeRecorder{}

	got, err := tr.Finish(context.Background(), rec, user, tracker.Meta{MuscleGroupLabel: "Legs", EquipmentLabel: "Gym"})
	require.NoError(t, err)

	require.Len(t, rec.got, 1)
	assert.Equal(t, models.NewWorkout{
		UserID:           7,
		MuscleGroupLabel: "Legs",
		EquipmentLabel:   "Gym",
		DurationMinutes:  tracker.DefaultDurationMinutes,
		Notes:            "2/4 exercises completed (50%): Squat, Leg Press",
	}, rec.got[0])
	assert.Equal(t, 7, got.UserID)
	assert.Empty(t, tr.Completed())
}

func TestFinishValidationAndAuth(t *testing.T) {
	rec := &fakeRecorder{}

	tr := tracker.New(exercises("Squat"))
	_, err := tr.Finish(context.Background(), rec, user, tracker.Meta{})
	assert.ErrorIs(t, err, tracker.ErrNothingCompleted)

	// Validation wins over missing identity.
	_, err = tr.Finish(context.Background(), rec, nil, tracker.Meta{})
	assert.ErrorIs(t, err, tracker.ErrNothingCompleted)

	require.NoError(t, tr.Toggle(0))
	_, err = tr.Finish(context.Background(), rec, nil, tracker.Meta{})
	assert.ErrorIs(t, err, tracker.ErrAuthRequired)

	assert.Empty(t, rec.got)
	assert.Equal(t, []int{0}, tr.Completed())
}

func TestFinishPersistenceFailureKeepsState(t *testing.T) {
	tr := tracker.New(exercises("Squat", "Lunge"))
	require.NoError(t, tr.Toggle(1))
	boom := errors.New("connection refused")
	rec := &fakeRecorder{err: boom}

	_, err := tr.Finish(context.Background(), rec, user, tracker.Meta{MuscleGroupLabel: "Legs", EquipmentLabel: "Home", DurationMinutes: 30})
	assert.ErrorIs(t, err, tracker.ErrPersistence)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []int{1}, tr.Completed())

	// A retry after the failure goes through.
	rec.err = nil
	got, err := tr.Finish(context.Background(), rec, user, tracker.Meta{MuscleGroupLabel: "Legs", EquipmentLabel: "Home", DurationMinutes: 30})
	require.NoError(t, err)
	assert.Equal(t, 30, got.DurationMinutes)
	assert.Empty(t, tr.Completed())
}

func TestFinishRejectsConcurrentSave(t *testing.T) {
	tr := tracker.New(exercises("Squat"))
	require.NoError(t, tr.Toggle(0))
	rec := &fakeRecorder{block: make(chan struct{}), entered: make(chan struct{})}

	done := make(chan error, 1)
	go func() {
		_, err := tr.Finish(context.Background(), rec, user, tracker.Meta{MuscleGroupLabel: "Legs", EquipmentLabel: "Gym"})
		done <- err
	}()
	<-rec.entered

	_, err := tr.Finish(context.Background(), &fakeRecorder{}, user, tracker.Meta{})
	assert.ErrorIs(t, err, tracker.ErrSaveInProgress)

	close(rec.block)
	require.NoError(t, <-done)
}
