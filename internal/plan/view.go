package plan

import (
	"github.com/claude/fittrack/internal/catalog"
	"github.com/claude/fittrack/internal/i18n"
)

// View is a plan with display labels for its selection. Message is set when
// the plan has no exercises.
type View struct {
	Plan
	MuscleGroupLabel string `json:"muscle_group_label"`
	EquipmentLabel   string `json:"equipment_label"`
	DifficultyLabel  string `json:"difficulty_label"`
	Message          string `json:"message,omitempty"`
}

// BuildView builds the plan for sel and labels it in lang. Ids missing from
// the catalog are used as their own label.
func BuildView(cat *catalog.Catalog, sel Selection, lang i18n.Language) (View, error) {
	p, err := Build(cat, sel)
	if err != nil {
		return View{}, err
	}
	v := View{
		Plan:             p,
		MuscleGroupLabel: sel.MuscleGroup,
		EquipmentLabel:   sel.Equipment,
		DifficultyLabel:  sel.Difficulty,
	}
	if o, ok := cat.Muscle(sel.MuscleGroup); ok {
		v.MuscleGroupLabel = o.Label(lang)
	}
	if o, ok := cat.EquipmentOption(sel.Equipment); ok {
		v.EquipmentLabel = o.Label(lang)
	}
	if o, ok := cat.Difficulty(sel.Difficulty); ok {
		v.DifficultyLabel = o.Label(lang)
	}
	if p.Empty() {
		v.Message = i18n.Translate(lang, "plan.no_exercises")
	}
	return v, nil
}
