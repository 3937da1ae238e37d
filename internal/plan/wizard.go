package plan

import "errors"

// ErrEmptySelection is returned by Wizard.Select for an empty id.
var ErrEmptySelection = errors.New("empty selection")

// Step is the wizard's current question.
type Step int

const (
	StepMuscle Step = iota
	StepEquipment
	StepDifficulty
)

func (s Step) String() string {
	switch s {
	case StepMuscle:
		return "muscle"
	case StepEquipment:
		return "equipment"
	case StepDifficulty:
		return "difficulty"
	default:
		return "unknown"
	}
}

// Wizard collects a Selection one step at a time. It is not safe for
// concurrent use.
type Wizard struct {
	step       Step
	sel        Selection
	onComplete func(Selection)
}

// NewWizard returns a wizard at StepMuscle. onComplete is called with the
// full selection each time the difficulty step is answered; it may be nil.
func NewWizard(onComplete func(Selection)) *Wizard {
	return &Wizard{onComplete: onComplete}
}

// Step returns the current step.
func (w *Wizard) Step() Step { return w.step }

// Selection returns the values recorded so far.
func (w *Wizard) Selection() Selection { return w.sel }

// Select records id for the current step and advances. At the difficulty
// step the wizard stays put and emits the selection.
func (w *Wizard) Select(id string) error {
	if id == "" {
		return ErrEmptySelection
	}
	switch w.step {
	case StepMuscle:
		w.sel.MuscleGroup = id
		w.step = StepEquipment
	case StepEquipment:
		w.sel.Equipment = id
		w.step = StepDifficulty
	case StepDifficulty:
		w.sel.Difficulty = id
		if w.onComplete != nil {
			w.onComplete(w.sel)
		}
	}
	return nil
}

// Back moves one step backwards, clearing the answer of the step it returns
// to and everything after it. It reports whether it moved.
func (w *Wizard) Back() bool {
	switch w.step {
	case StepEquipment:
		w.sel.Equipment = ""
		w.sel.MuscleGroup = ""
		w.step = StepMuscle
	case StepDifficulty:
		w.sel.Difficulty = ""
		w.sel.Equipment = ""
		w.step = StepEquipment
	default:
		return false
	}
	return true
}

// Reset returns the wizard to StepMuscle with an empty selection.
func (w *Wizard) Reset() {
	w.step = StepMuscle
	w.sel = Selection{}
}
