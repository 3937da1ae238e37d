// Package catalog holds the static exercise catalog keyed by muscle group,
// equipment and difficulty, together with the option sets offered to users.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"

	"github.com/claude/fittrack/internal/i18n"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Difficulty ids known to the plan builder.
const (
	Beginner     = "beginner"
	Intermediate = "intermediate"
	Advanced     = "advanced"
)

//go:embed exercises.yaml
var defaultDocument []byte

// Option is one selectable muscle group, equipment or difficulty.
type Option struct {
	ID     string      `yaml:"id" json:"id"`
	Labels i18n.Labels `yaml:"labels" json:"-"`
}

// Label returns the display name in lang.
func (o Option) Label(lang i18n.Language) string {
	return o.Labels.Get(lang)
}

// Exercise describes one exercise of a catalog entry.
type Exercise struct {
	Name string `yaml:"name" json:"name"`
	Reps string `yaml:"reps" json:"reps"`
	Link string `yaml:"link" json:"link"`
}

// Key addresses a catalog entry.
type Key struct {
	Muscle     string
	Equipment  string
	Difficulty string
}

func (k Key) String() string {
	return k.Muscle + "/" + k.Equipment + "/" + k.Difficulty
}

// Catalog is an immutable exercise lookup table. The zero value is empty.
type Catalog struct {
	muscles      []Option
	equipment    []Option
	difficulties []Option
	entries      map[Key][]Exercise
}

type document struct {
	Muscles      []Option                                   `yaml:"muscles"`
	Equipment    []Option                                   `yaml:"equipment"`
	Difficulties []Option                                   `yaml:"difficulties"`
	Exercises    map[string]map[string]map[string][]Exercise `yaml:"exercises"`
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Parse(defaultDocument)
}

// Parse decodes a YAML catalog document and validates it.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	entries := make(map[Key][]Exercise)
	for muscle, byEquipment := range doc.Exercises {
		for equipment, byDifficulty := range byEquipment {
			for difficulty, exercises := range byDifficulty {
				entries[Key{muscle, equipment, difficulty}] = exercises
			}
		}
	}

	c := New(doc.Muscles, doc.Equipment, doc.Difficulties, entries)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("catalog validation: %w", err)
	}
	return c, nil
}

// New builds a catalog from already decoded parts. The inputs are copied.
// New does not validate; call Validate before serving from the result.
func New(muscles, equipment, difficulties []Option, entries map[Key][]Exercise) *Catalog {
	c := &Catalog{
		muscles:      slices.Clone(muscles),
		equipment:    slices.Clone(equipment),
		difficulties: slices.Clone(difficulties),
		entries:      make(map[Key][]Exercise, len(entries)),
	}
	for k, v := range entries {
		c.entries[k] = slices.Clone(v)
	}
	return c
}

// Validate reports every problem that would let a reachable selection
// resolve to nothing: each muscle/equipment pair must have a non-empty
// intermediate list, and entries may only use declared ids.
func (c *Catalog) Validate() error {
	var err error

	err = multierr.Append(err, validateOptions("muscle", c.muscles))
	err = multierr.Append(err, validateOptions("equipment", c.equipment))
	err = multierr.Append(err, validateOptions("difficulty", c.difficulties))
	if _, ok := findOption(c.difficulties, Intermediate); !ok {
		err = multierr.Append(err, errors.New("difficulty options must include intermediate"))
	}

	for k, exercises := range c.entries {
		if _, ok := findOption(c.muscles, k.Muscle); !ok {
			err = multierr.Append(err, fmt.Errorf("%s: unknown muscle group %q", k, k.Muscle))
		}
		if _, ok := findOption(c.equipment, k.Equipment); !ok {
			err = multierr.Append(err, fmt.Errorf("%s: unknown equipment %q", k, k.Equipment))
		}
		if _, ok := findOption(c.difficulties, k.Difficulty); !ok {
			err = multierr.Append(err, fmt.Errorf("%s: unknown difficulty %q", k, k.Difficulty))
		}
		for i, ex := range exercises {
			if ex.Name == "" || ex.Reps == "" {
				err = multierr.Append(err, fmt.Errorf("%s: exercise %d needs a name and a rep range", k, i+1))
			}
		}
	}

	for _, m := range c.muscles {
		for _, e := range c.equipment {
			k := Key{m.ID, e.ID, Intermediate}
			if len(c.entries[k]) == 0 {
				err = multierr.Append(err, fmt.Errorf("%s: missing intermediate exercises", k))
			}
		}
	}
	return err
}

func validateOptions(kind string, opts []Option) error {
	if len(opts) == 0 {
		return fmt.Errorf("no %s options", kind)
	}
	var err error
	seen := make(map[string]bool, len(opts))
	for _, o := range opts {
		switch {
		case o.ID == "":
			err = multierr.Append(err, fmt.Errorf("%s option with empty id", kind))
		case seen[o.ID]:
			err = multierr.Append(err, fmt.Errorf("duplicate %s option %q", kind, o.ID))
		case o.Labels[i18n.DefaultLanguage] == "":
			err = multierr.Append(err, fmt.Errorf("%s option %q has no %s label", kind, o.ID, i18n.DefaultLanguage))
		}
		seen[o.ID] = true
	}
	return err
}

func findOption(opts []Option, id string) (Option, bool) {
	for _, o := range opts {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// Lookup returns a copy of the exercises stored under k.
func (c *Catalog) Lookup(k Key) ([]Exercise, bool) {
	exercises, ok := c.entries[k]
	if !ok {
		return nil, false
	}
	return slices.Clone(exercises), true
}

// Muscles returns the muscle group options in display order.
func (c *Catalog) Muscles() []Option { return slices.Clone(c.muscles) }

// Equipment returns the equipment options in display order.
func (c *Catalog) Equipment() []Option { return slices.Clone(c.equipment) }

// Difficulties returns the difficulty options in display order.
func (c *Catalog) Difficulties() []Option { return slices.Clone(c.difficulties) }

// Muscle looks up a muscle group option by id.
func (c *Catalog) Muscle(id string) (Option, bool) { return findOption(c.muscles, id) }

// EquipmentOption looks up an equipment option by id.
func (c *Catalog) EquipmentOption(id string) (Option, bool) { return findOption(c.equipment, id) }

// Difficulty looks up a difficulty option by id.
func (c *Catalog) Difficulty(id string) (Option, bool) { return findOption(c.difficulties, id) }

// LabeledOption is an option rendered in one language.
type LabeledOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// View lists the options of every wizard step in one language.
type View struct {
	Muscles      []LabeledOption `json:"muscles"`
	Equipment    []LabeledOption `json:"equipment"`
	Difficulties []LabeledOption `json:"difficulties"`
}

// View renders the option sets in lang.
func (c *Catalog) View(lang i18n.Language) View {
	return View{
		Muscles:      labeled(c.muscles, lang),
		Equipment:    labeled(c.equipment, lang),
		Difficulties: labeled(c.difficulties, lang),
	}
}

func labeled(opts []Option, lang i18n.Language) []LabeledOption {
	out := make([]LabeledOption, len(opts))
	for i, o := range opts {
		out[i] = LabeledOption{ID: o.ID, Label: o.Label(lang)}
	}
	return out
}
