package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/claude/fittrack/internal/catalog"
	"github.com/claude/fittrack/internal/client"
	"github.com/claude/fittrack/internal/i18n"
	"github.com/claude/fittrack/internal/models"
	"github.com/claude/fittrack/internal/plan"
	"github.com/claude/fittrack/internal/tracker"
)

// session drives one interactive workout: the three-step wizard, then the
// completion checklist for the resulting plan.
type session struct {
	api      api
	lang     i18n.Language
	duration int
	in       *bufio.Scanner
	out      io.Writer

	user    *models.User
	catalog client.Catalog
}

func newSession(a api, lang i18n.Language, duration int, in io.Reader, out io.Writer) *session {
	return &session{api: a, lang: lang, duration: duration, in: bufio.NewScanner(in), out: out}
}

func (s *session) readLine() (string, bool) {
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

func (s *session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *session) options(step plan.Step) []catalog.LabeledOption {
	switch step {
	case plan.StepMuscle:
		return s.catalog.Muscles
	case plan.StepEquipment:
		return s.catalog.Equipment
	default:
		return s.catalog.Difficulties
	}
}

// run loops until the input ends or the user quits.
func (s *session) run(ctx context.Context) error {
	user, err := s.api.Me(ctx)
	switch {
	case client.IsAuthRequired(err):
		s.printf("%s\n", i18n.Translate(s.lang, "workout.auth_required"))
	case err != nil:
		return err
	default:
		s.user = user
	}

	if s.catalog, err = s.api.Catalog(ctx); err != nil {
		return err
	}

	for {
		sel, ok := s.wizard()
		if !ok {
			return nil
		}
		v, err := s.api.Plan(ctx, sel)
		if err != nil {
			return err
		}
		if v.Empty() {
			s.printf("%s\n\n", v.Message)
			continue
		}
		if !s.track(ctx, v) {
			return nil
		}
	}
}

// wizard asks the three questions. It returns false when the user quits.
func (s *session) wizard() (plan.Selection, bool) {
	var (
		done bool
		sel  plan.Selection
	)
	w := plan.NewWizard(func(got plan.Selection) {
		done = true
		sel = got
	})

	for !done {
		opts := s.options(w.Step())
		s.printf("Choose %s:\n", w.Step())
		for i, o := range opts {
			s.printf("  %d) %s\n", i+1, o.Label)
		}
		s.printf("[number, b=back, q=quit] > ")

		line, ok := s.readLine()
		if !ok || line == "q" {
			return plan.Selection{}, false
		}
		if line == "b" {
			if !w.Back() {
				s.printf("Already at the first step.\n")
			}
			continue
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > len(opts) {
			s.printf("Enter a number between 1 and %d.\n", len(opts))
			continue
		}
		if err := w.Select(opts[n-1].ID); err != nil {
			s.printf("Option %d has no id: %v\n", n, err)
		}
	}
	return sel, true
}

func (s *session) printPlan(v plan.View, t *tracker.Tracker) {
	s.printf("\n%s / %s / %s\n", v.MuscleGroupLabel, v.EquipmentLabel, v.DifficultyLabel)
	for i, ex := range v.Exercises {
		mark := " "
		if t.IsCompleted(i) {
			mark = "x"
		}
		s.printf("  [%s] %d. %s  %d x %s, rest %s\n", mark, i+1, ex.Name, ex.Sets, ex.Reps, ex.RestLabel)
	}
	sum := t.Summary()
	s.printf("%d/%d completed (%d%%)\n", sum.CompletedCount, sum.TotalCount, sum.Percentage)
}

// track runs the checklist for v. It returns false when the user quits.
func (s *session) track(ctx context.Context, v plan.View) bool {
	t := tracker.New(v.Exercises)
	for {
		s.printPlan(v, t)
		s.printf("[number=toggle, s=save, n=new plan, q=quit] > ")

		line, ok := s.readLine()
		if !ok || line == "q" {
			return false
		}
		switch line {
		case "n":
			return true
		case "s":
			if s.save(ctx, v, t) {
				return true
			}
			continue
		}

		n, err := strconv.Atoi(line)
		if err != nil {
			s.printf("Unknown command %q.\n", line)
			continue
		}
		if err := t.Toggle(n - 1); err != nil {
			s.printf("No exercise %d.\n", n)
		}
	}
}

func (s *session) save(ctx context.Context, v plan.View, t *tracker.Tracker) bool {
	rec, err := t.Finish(ctx, s.api, s.user, tracker.Meta{
		MuscleGroupLabel: v.MuscleGroupLabel,
		EquipmentLabel:   v.EquipmentLabel,
		DurationMinutes:  s.duration,
	})
	switch {
	case err == nil:
		s.printf("%s (%s)\n\n", i18n.Translate(s.lang, "workout.saved"), rec.Notes)
		return true
	case errors.Is(err, tracker.ErrNothingCompleted):
		s.printf("%s\n", i18n.Translate(s.lang, "workout.nothing_completed"))
	case errors.Is(err, tracker.ErrAuthRequired):
		s.printf("%s\n", i18n.Translate(s.lang, "workout.auth_required"))
	default:
		s.printf("%s\n", i18n.Translate(s.lang, "workout.error"))
		var se *client.StatusError
		if errors.As(err, &se) {
			s.printf("  %s\n", se.Message)
		}
	}
	return false
}
