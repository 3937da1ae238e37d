package mcp

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/claude/fittrack/internal/calorie"
	"github.com/claude/fittrack/internal/i18n"
	"github.com/claude/fittrack/internal/plan"
	"github.com/claude/fittrack/internal/progress"
	"github.com/claude/fittrack/internal/tracker"
	"github.com/mark3labs/mcp-go/mcp"
)

// language reads the optional "lang" argument.
func language(req mcp.CallToolRequest) i18n.Language {
	if lang, ok := i18n.Parse(req.GetString("lang", "")); ok {
		return lang
	}
	return i18n.DefaultLanguage
}

// parseExerciseNumbers turns "1, 3,4" into sorted, distinct zero-based indices.
func parseExerciseNumbers(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%q is not an exercise number", part)
		}
		out = append(out, n-1)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// --- Tool definitions ---

var langArg = mcp.WithString("lang", mcp.Description("Label language. Defaults to en."), mcp.Enum("en", "tr"))

var toolListCatalog = mcp.NewTool("list_catalog",
	mcp.WithDescription("List the muscle groups, equipment and difficulty levels a plan can be built from, plus the calorie calculator's activity levels."),
	langArg,
)

var toolBuildPlan = mcp.NewTool("build_plan",
	mcp.WithDescription("Build an exercise plan for a muscle group, equipment and difficulty. Each exercise carries its rep range, set count and rest period. When the catalog lacks the requested difficulty the intermediate exercises are returned with fallback=true."),
	mcp.WithString("muscle", mcp.Required(), mcp.Description("Muscle group id from list_catalog (e.g. chest, legs)")),
	mcp.WithString("equipment", mcp.Required(), mcp.Description("Equipment id from list_catalog (e.g. gym, home, bodyweight)")),
	mcp.WithString("difficulty", mcp.Required(), mcp.Description("Difficulty id"), mcp.Enum("beginner", "intermediate", "advanced")),
	langArg,
)

var toolRecordWorkout = mcp.NewTool("record_workout",
	mcp.WithDescription("Record a finished workout. Builds the plan for the selection, marks the given exercises complete and saves a summary for the authenticated user."),
	mcp.WithString("muscle", mcp.Required(), mcp.Description("Muscle group id")),
	mcp.WithString("equipment", mcp.Required(), mcp.Description("Equipment id")),
	mcp.WithString("difficulty", mcp.Required(), mcp.Description("Difficulty id"), mcp.Enum("beginner", "intermediate", "advanced")),
	mcp.WithString("completed", mcp.Required(), mcp.Description("Comma-separated 1-based numbers of the completed exercises in build_plan order (e.g. '1,2,4')")),
	mcp.WithNumber("duration_minutes", mcp.Description("Workout duration in minutes. Defaults to 45.")),
	langArg,
)

var toolListWorkouts = mcp.NewTool("list_workouts",
	mcp.WithDescription("List the authenticated user's recorded workouts, newest first."),
	mcp.WithNumber("limit", mcp.Description("Maximum number of workouts to return. Defaults to all.")),
)

var toolGetProgress = mcp.NewTool("get_progress",
	mcp.WithDescription("Summarize recorded workouts: totals, average duration, per-muscle-group distribution and the current day streak."),
	mcp.WithString("range", mcp.Description("Time range. Defaults to all."), mcp.Enum("week", "month", "year", "all")),
	mcp.WithString("tz", mcp.Description("IANA time zone for day and week boundaries (e.g. Europe/Istanbul). Defaults to the server's zone.")),
)

var toolEstimateCalories = mcp.NewTool("estimate_calories",
	mcp.WithDescription("Estimate basal metabolic rate and total daily energy expenditure with the Harris-Benedict equations, plus lose/maintain/gain targets (±500 kcal)."),
	mcp.WithString("sex", mcp.Required(), mcp.Enum("male", "female")),
	mcp.WithNumber("age", mcp.Required(), mcp.Description("Age in years")),
	mcp.WithNumber("height", mcp.Required(), mcp.Description("Height in cm")),
	mcp.WithNumber("weight", mcp.Required(), mcp.Description("Weight in kg")),
	mcp.WithString("activity", mcp.Required(), mcp.Description("Activity level name or factor"), mcp.Enum("sedentary", "light", "moderate", "active", "athlete")),
)

// --- Tool handlers ---

func (h *handlers) listCatalog(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(map[string]any{
		"catalog":         h.catalog.View(language(req)),
		"activity_levels": calorie.Levels(),
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func selectionArgs(req mcp.CallToolRequest) (plan.Selection, error) {
	var sel plan.Selection
	var err error
	if sel.MuscleGroup, err = req.RequireString("muscle"); err != nil {
		return sel, err
	}
	if sel.Equipment, err = req.RequireString("equipment"); err != nil {
		return sel, err
	}
	if sel.Difficulty, err = req.RequireString("difficulty"); err != nil {
		return sel, err
	}
	return sel, nil
}

func (h *handlers) buildPlan(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sel, err := selectionArgs(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v, err := plan.BuildView(h.catalog, sel, language(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) recordWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lang := language(req)
	sel, err := selectionArgs(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	completedArg, err := req.RequireString("completed")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	completed, err := parseExerciseNumbers(completedArg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	v, err := plan.BuildView(h.catalog, sel, lang)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if v.Empty() {
		return mcp.NewToolResultError(v.Message), nil
	}

	t := tracker.New(v.Exercises)
	for _, i := range completed {
		if err := t.Toggle(i); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("exercise %d: %v", i+1, err)), nil
		}
	}

	rec, err := t.Finish(ctx, h.ds, UserFromContext(ctx), tracker.Meta{
		MuscleGroupLabel: v.MuscleGroupLabel,
		EquipmentLabel:   v.EquipmentLabel,
		DurationMinutes:  req.GetInt("duration_minutes", 0),
	})
	switch {
	case errors.Is(err, tracker.ErrNothingCompleted):
		return mcp.NewToolResultError(i18n.Translate(lang, "workout.nothing_completed")), nil
	case errors.Is(err, tracker.ErrAuthRequired):
		return mcp.NewToolResultError(i18n.Translate(lang, "workout.auth_required")), nil
	case err != nil:
		h.log.ErrorContext(ctx, "mcp record_workout", "error", err)
		return mcp.NewToolResultError(i18n.Translate(lang, "workout.error")), nil
	}

	result, err := mcp.NewToolResultJSON(rec)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	u := UserFromContext(ctx)
	if u == nil {
		return mcp.NewToolResultError("authentication required"), nil
	}

	workouts, err := h.ds.ListWorkouts(ctx, u.ID)
	if err != nil {
		h.log.ErrorContext(ctx, "mcp list_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if limit := req.GetInt("limit", 0); limit > 0 && limit < len(workouts) {
		workouts = workouts[:limit]
	}

	result, err := mcp.NewToolResultJSON(workouts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	u := UserFromContext(ctx)
	if u == nil {
		return mcp.NewToolResultError("authentication required"), nil
	}
	rng, err := progress.ParseRange(req.GetString("range", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	loc, err := progress.Location(req.GetString("tz", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	workouts, err := h.ds.ListWorkouts(ctx, u.ID)
	if err != nil {
		h.log.ErrorContext(ctx, "mcp get_progress", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(progress.Summarize(workouts, rng, time.Now().In(loc)))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) estimateCalories(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sex, err := req.RequireString("sex")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	activity, err := req.RequireString("activity")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format := func(name string) string {
		return strconv.FormatFloat(req.GetFloat(name, 0), 'f', -1, 64)
	}

	in, err := calorie.ParseInput(sex, format("age"), format("height"), format("weight"), activity)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := calorie.Estimate(in)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(res)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
