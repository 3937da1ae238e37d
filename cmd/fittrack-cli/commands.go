package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/claude/fittrack/internal/calorie"
	"github.com/claude/fittrack/internal/plan"
	"github.com/claude/fittrack/internal/progress"
	"github.com/claude/fittrack/internal/tracker"
	"github.com/spf13/cobra"
)

func newWorkoutCmd(connect func() api, opts *rootOptions) *cobra.Command {
	var duration int
	cmd := &cobra.Command{
		Use:   "workout",
		Short: "Pick a plan interactively and check off exercises as you go",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := newSession(connect(), opts.language(), duration, cmd.InOrStdin(), cmd.OutOrStdout())
			return s.run(cmd.Context())
		},
	}
	cmd.Flags().IntVar(&duration, "duration", tracker.DefaultDurationMinutes, "workout duration in minutes")
	return cmd
}

func newPlanCmd(connect func() api) *cobra.Command {
	return &cobra.Command{
		Use:   "plan MUSCLE EQUIPMENT DIFFICULTY",
		Short: "Print the plan for a selection",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := connect().Plan(cmd.Context(), plan.Selection{
				MuscleGroup: args[0],
				Equipment:   args[1],
				Difficulty:  args[2],
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if v.Empty() {
				fmt.Fprintln(out, v.Message)
				return nil
			}

			fmt.Fprintf(out, "%s / %s / %s\n", v.MuscleGroupLabel, v.EquipmentLabel, v.DifficultyLabel)
			if v.Fallback {
				fmt.Fprintf(out, "(showing %s exercises)\n", v.MatchedDifficulty)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tEXERCISE\tSETS\tREPS\tREST")
			for i, ex := range v.Exercises {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", i+1, ex.Name, ex.Sets, ex.Reps, ex.RestLabel)
			}
			return tw.Flush()
		},
	}
}

func newHistoryCmd(connect func() api) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded workouts, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := connect().ListWorkouts(cmd.Context(), 0)
			if err != nil {
				return err
			}
			if limit > 0 && limit < len(records) {
				records = records[:limit]
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No workouts recorded yet.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tMUSCLE GROUP\tEQUIPMENT\tMIN\tNOTES")
			for _, r := range records {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", r.Date.Local().Format("2006-01-02 15:04"),
					r.MuscleGroupLabel, r.EquipmentLabel, r.DurationMinutes, r.Notes)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum workouts to show (0 for all)")
	return cmd
}

func newProgressCmd(connect func() api) *cobra.Command {
	var rangeFlag string
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Summarize workouts for a time range",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rng, err := progress.ParseRange(rangeFlag)
			if err != nil {
				return err
			}
			rep, err := connect().Progress(cmd.Context(), rng)
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), rep)
			return nil
		},
	}
	cmd.Flags().StringVar(&rangeFlag, "range", string(progress.RangeAll), "week, month, year or all")
	return cmd
}

func printReport(out io.Writer, rep progress.Report) {
	fmt.Fprintf(out, "Range:          %s\n", rep.Range)
	fmt.Fprintf(out, "Workouts:       %d\n", rep.Stats.TotalWorkouts)
	fmt.Fprintf(out, "Total minutes:  %d\n", rep.Stats.TotalMinutes)
	fmt.Fprintf(out, "Average:        %d min\n", rep.Stats.AvgDuration)
	fmt.Fprintf(out, "Streak:         %d days\n", rep.Streak)
	for _, sh := range rep.Stats.Shares {
		fmt.Fprintf(out, "  %-16s %3d  %3d%%\n", sh.Label, sh.Count, sh.Percentage)
	}
}

func newCaloriesCmd(connect func() api) *cobra.Command {
	var (
		sex      string
		age      float64
		height   float64
		weight   float64
		activity string
	)
	cmd := &cobra.Command{
		Use:   "calories",
		Short: "Estimate BMR and daily calorie needs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := calorie.ParseInput(sex, formatFlag(age), formatFlag(height), formatFlag(weight), activity)
			if err != nil {
				return err
			}
			res, err := connect().Calories(cmd.Context(), in)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "BMR:       %d kcal\n", res.BMR)
			fmt.Fprintf(out, "TDEE:      %d kcal\n", res.TDEE)
			fmt.Fprintf(out, "Lose:      %d kcal\n", res.Lose)
			fmt.Fprintf(out, "Maintain:  %d kcal\n", res.Maintain)
			fmt.Fprintf(out, "Gain:      %d kcal\n", res.Gain)
			return nil
		},
	}
	cmd.Flags().StringVar(&sex, "sex", "", "male or female")
	cmd.Flags().Float64Var(&age, "age", 0, "age in years")
	cmd.Flags().Float64Var(&height, "height", 0, "height in cm")
	cmd.Flags().Float64Var(&weight, "weight", 0, "weight in kg")
	cmd.Flags().StringVar(&activity, "activity", "moderate", "activity level name or factor")
	for _, f := range []string{"sex", "age", "height", "weight"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func formatFlag(f float64) string {
	return fmt.Sprintf("%g", f)
}
