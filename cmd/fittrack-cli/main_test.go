package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/claude/fittrack/internal/calorie"
	"github.com/claude/fittrack/internal/catalog"
	"github.com/claude/fittrack/internal/client"
	"github.com/claude/fittrack/internal/i18n"
	"github.com/claude/fittrack/internal/models"
	"github.com/claude/fittrack/internal/plan"
	"github.com/claude/fittrack/internal/progress"
	"github.com/claude/fittrack/internal/tracker"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	user      *models.User
	plans     []plan.Selection
	inserted  []models.NewWorkout
	records   []models.WorkoutRecord
	report    progress.Report
	lastRange progress.Range
	calories  calorie.Input
	muscles   []catalog.LabeledOption
}

func (f *fakeAPI) Me(context.Context) (*models.User, error) {
	if f.user == nil {
		return nil, tracker.ErrAuthRequired
	}
	return f.user, nil
}

func (f *fakeAPI) Catalog(context.Context) (client.Catalog, error) {
	muscles := f.muscles
	if muscles == nil {
		muscles = []catalog.LabeledOption{{ID: "chest", Label: "Chest"}, {ID: "legs", Label: "Legs"}}
	}
	return client.Catalog{View: catalog.View{
		Muscles:      muscles,
		Equipment:    []catalog.LabeledOption{{ID: "gym", Label: "Gym"}},
		Difficulties: []catalog.LabeledOption{{ID: "beginner", Label: "Beginner"}},
	}}, nil
}

func (f *fakeAPI) Plan(_ context.Context, sel plan.Selection) (plan.View, error) {
	f.plans = append(f.plans, sel)
	profile, _ := plan.ProfileFor(sel.Difficulty)
	return plan.View{
		Plan: plan.Plan{
			Selection: sel,
			Exercises: []plan.PlannedExercise{
				{Exercise: catalog.Exercise{Name: "Squat", Reps: "10-12"}, Profile: profile},
				{Exercise: catalog.Exercise{Name: "Lunge", Reps: "12"}, Profile: profile},
			},
			MatchedDifficulty: sel.Difficulty,
		},
		MuscleGroupLabel: "Legs",
		EquipmentLabel:   "Gym",
		DifficultyLabel:  "Beginner",
	}, nil
}

func (f *fakeAPI) InsertWorkout(_ context.Context, w models.NewWorkout) (models.WorkoutRecord, error) {
	f.inserted = append(f.inserted, w)
	return models.WorkoutRecord{ID: uuid.New(), UserID: w.UserID, Notes: w.Notes}, nil
}

func (f *fakeAPI) ListWorkouts(context.Context, int) ([]models.WorkoutRecord, error) {
	return f.records, nil
}

func (f *fakeAPI) Progress(_ context.Context, rng progress.Range) (progress.Report, error) {
	f.lastRange = rng
	return f.report, nil
}

func (f *fakeAPI) Calories(_ context.Context, in calorie.Input) (calorie.Result, error) {
	f.calories = in
	return calorie.Estimate(in)
}

func run(t *testing.T, f *fakeAPI, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(func(string, string, i18n.Language) api { return f })
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(args, "--lang", "en"))
	err := cmd.Execute()
	return out.String(), err
}

func TestWorkoutSession(t *testing.T) {
	f := &fakeAPI{user: &models.User{ID: 4, Login: "sam"}}

	// legs, gym, back, gym, beginner, save (nothing), toggle 1, save, quit
	out, err := run(t, f, "2\n1\nb\n1\n1\ns\n1\ns\nq\n", "workout", "--duration", "30")
	require.NoError(t, err)

	require.Len(t, f.plans, 1)
	assert.Equal(t, plan.Selection{MuscleGroup: "legs", Equipment: "gym", Difficulty: "beginner"}, f.plans[0])

	require.Len(t, f.inserted, 1)
	w := f.inserted[0]
	assert.Equal(t, 4, w.UserID)
	assert.Equal(t, 30, w.DurationMinutes)
	assert.Equal(t, "Legs", w.MuscleGroupLabel)
	assert.True(t, strings.HasPrefix(w.Notes, "1/2 exercises completed (50%): Squat"), w.Notes)

	assert.Contains(t, out, "Complete at least one exercise before saving.")
	assert.Contains(t, out, "Workout saved successfully!")
	assert.Contains(t, out, "3 x 10-12, rest 60 sec")
}

func TestWorkoutSessionAnonymous(t *testing.T) {
	f := &fakeAPI{}

	out, err := run(t, f, "1\n1\n1\n2\ns\nq\n", "workout")
	require.NoError(t, err)
	assert.Empty(t, f.inserted)
	assert.GreaterOrEqual(t, strings.Count(out, "Please sign in first."), 2)
}

func TestWorkoutSessionRejectsBadInput(t *testing.T) {
	f := &fakeAPI{user: &models.User{ID: 1}}

	out, err := run(t, f, "b\n9\nx\n", "workout")
	require.NoError(t, err)
	assert.Contains(t, out, "Already at the first step.")
	assert.Contains(t, out, "Enter a number between 1 and 2.")
	assert.Empty(t, f.plans)
}

func TestWorkoutSessionReportsOptionWithoutID(t *testing.T) {
	f := &fakeAPI{
		user:    &models.User{ID: 1},
		muscles: []catalog.LabeledOption{{ID: "", Label: "Broken"}, {ID: "legs", Label: "Legs"}},
	}

	out, err := run(t, f, "1\n2\n1\n1\nq\n", "workout")
	require.NoError(t, err)
	assert.Contains(t, out, "Option 1 has no id")
	require.Len(t, f.plans, 1)
	assert.Equal(t, "legs", f.plans[0].MuscleGroup)
}

func TestPlanCommand(t *testing.T) {
	f := &fakeAPI{}
	out, err := run(t, f, "", "plan", "legs", "gym", "beginner")
	require.NoError(t, err)
	assert.Contains(t, out, "Legs / Gym / Beginner")
	assert.Contains(t, out, "Squat")

	_, err = run(t, f, "", "plan", "legs")
	assert.Error(t, err)
}

func TestHistoryCommand(t *testing.T) {
	f := &fakeAPI{records: []models.WorkoutRecord{
		{Date: time.Now(), MuscleGroupLabel: "Legs", EquipmentLabel: "Gym", DurationMinutes: 45, Notes: "2/5"},
		{Date: time.Now().Add(-time.Hour), MuscleGroupLabel: "Chest", EquipmentLabel: "Home", DurationMinutes: 30, Notes: "1/5"},
	}}
	out, err := run(t, f, "", "history", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Legs")
	assert.NotContains(t, out, "Chest")

	out, err = run(t, &fakeAPI{}, "", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No workouts recorded yet.")
}

func TestProgressCommand(t *testing.T) {
	f := &fakeAPI{report: progress.Report{
		Range:  progress.RangeWeek,
		Stats:  progress.Stats{TotalWorkouts: 3, TotalMinutes: 150, AvgDuration: 50},
		Streak: 2,
	}}
	out, err := run(t, f, "", "progress", "--range", "week")
	require.NoError(t, err)
	assert.Equal(t, progress.RangeWeek, f.lastRange)
	assert.Contains(t, out, "Total minutes:  150")

	_, err = run(t, f, "", "progress", "--range", "decade")
	assert.Error(t, err)
}

func TestCaloriesCommand(t *testing.T) {
	f := &fakeAPI{}
	out, err := run(t, f, "", "calories", "--sex", "male", "--age", "25", "--height", "180", "--weight", "75", "--activity", "moderate")
	require.NoError(t, err)
	assert.Equal(t, 1.55, f.calories.ActivityFactor)
	assert.Contains(t, out, "BMR:       1815 kcal")
	assert.Contains(t, out, "TDEE:      2813 kcal")

	_, err = run(t, f, "", "calories", "--sex", "male", "--age=-1", "--height", "180", "--weight", "75")
	assert.ErrorIs(t, err, calorie.ErrInvalidInput)
}
