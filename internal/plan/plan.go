// Package plan turns a muscle/equipment/difficulty selection into a list of
// exercises styled with the difficulty's set count and rest period.
package plan

import (
	"errors"
	"fmt"

	"github.com/claude/fittrack/internal/catalog"
)

var (
	// ErrIncompleteSelection is returned when any part of the selection is empty.
	ErrIncompleteSelection = errors.New("selection needs muscle group, equipment and difficulty")
	// ErrUnknownDifficulty is returned when no profile exists for the requested difficulty.
	ErrUnknownDifficulty = errors.New("unknown difficulty")
)

// Profile is the styling applied to every exercise of a plan.
type Profile struct {
	Sets        int    `json:"sets"`
	RestSeconds int    `json:"rest_seconds"`
	RestLabel   string `json:"rest"`
}

var profiles = map[string]Profile{
	catalog.Beginner:     {Sets: 3, RestSeconds: 60, RestLabel: "60 sec"},
	catalog.Intermediate: {Sets: 4, RestSeconds: 90, RestLabel: "90 sec"},
	catalog.Advanced:     {Sets: 5, RestSeconds: 120, RestLabel: "120 sec"},
}

// ProfileFor returns the profile of a difficulty id.
func ProfileFor(difficulty string) (Profile, bool) {
	p, ok := profiles[difficulty]
	return p, ok
}

// Selection is the triple collected by the wizard.
type Selection struct {
	MuscleGroup string `json:"muscle_group"`
	Equipment   string `json:"equipment"`
	Difficulty  string `json:"difficulty"`
}

// Complete reports whether all three parts are set.
func (s Selection) Complete() bool {
	return s.MuscleGroup != "" && s.Equipment != "" && s.Difficulty != ""
}

// PlannedExercise is a catalog exercise with the plan's profile applied.
type PlannedExercise struct {
	catalog.Exercise
	Profile
}

// Plan is the result of Build.
type Plan struct {
	Selection Selection         `json:"selection"`
	Exercises []PlannedExercise `json:"exercises"`
	// MatchedDifficulty is the catalog tier the exercises came from. It
	// differs from Selection.Difficulty when Fallback is set.
	MatchedDifficulty string `json:"matched_difficulty,omitempty"`
	Fallback          bool   `json:"fallback"`
}

// Empty reports whether the plan has no exercises.
func (p Plan) Empty() bool {
	return len(p.Exercises) == 0
}

// Build looks up the exercises for sel. When the catalog has nothing for the
// requested difficulty it falls back to the intermediate tier, still styled
// with the requested difficulty's profile. Unknown muscle groups or
// equipment produce an empty plan rather than an error.
func Build(cat *catalog.Catalog, sel Selection) (Plan, error) {
	if !sel.Complete() {
		return Plan{}, ErrIncompleteSelection
	}
	profile, ok := ProfileFor(sel.Difficulty)
	if !ok {
		return Plan{}, fmt.Errorf("%w: %q", ErrUnknownDifficulty, sel.Difficulty)
	}

	p := Plan{Selection: sel, Exercises: []PlannedExercise{}}

	key := catalog.Key{Muscle: sel.MuscleGroup, Equipment: sel.Equipment, Difficulty: sel.Difficulty}
	exercises, found := cat.Lookup(key)
	if found {
		p.MatchedDifficulty = sel.Difficulty
	} else {
		key.Difficulty = catalog.Intermediate
		if exercises, found = cat.Lookup(key); found {
			p.MatchedDifficulty = catalog.Intermediate
			p.Fallback = sel.Difficulty != catalog.Intermediate
		}
	}

	for _, ex := range exercises {
		p.Exercises = append(p.Exercises, PlannedExercise{Exercise: ex, Profile: profile})
	}
	return p, nil
}
