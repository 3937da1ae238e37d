// Command fittrack-cli is a terminal front end for a FitTrack server.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/claude/fittrack/internal/calorie"
	"github.com/claude/fittrack/internal/client"
	"github.com/claude/fittrack/internal/i18n"
	"github.com/claude/fittrack/internal/models"
	"github.com/claude/fittrack/internal/plan"
	"github.com/claude/fittrack/internal/progress"
	"github.com/spf13/cobra"
)

// api is the subset of client.Client the commands use.
type api interface {
	Me(ctx context.Context) (*models.User, error)
	Catalog(ctx context.Context) (client.Catalog, error)
	Plan(ctx context.Context, sel plan.Selection) (plan.View, error)
	InsertWorkout(ctx context.Context, w models.NewWorkout) (models.WorkoutRecord, error)
	ListWorkouts(ctx context.Context, userID int) ([]models.WorkoutRecord, error)
	Progress(ctx context.Context, rng progress.Range) (progress.Report, error)
	Calories(ctx context.Context, in calorie.Input) (calorie.Result, error)
}

var _ api = (*client.Client)(nil)

type apiFactory func(serverURL, apiKey string, lang i18n.Language) api

func newClient(serverURL, apiKey string, lang i18n.Language) api {
	return client.New(serverURL, apiKey, lang)
}

type rootOptions struct {
	server string
	apiKey string
	lang   string
}

func (o *rootOptions) language() i18n.Language {
	return i18n.Negotiate(o.lang, os.Getenv("LANG"))
}

func newRootCmd(factory apiFactory) *cobra.Command {
	opts := &rootOptions{}
	connect := func() api {
		return factory(opts.server, opts.apiKey, opts.language())
	}

	rootCmd := &cobra.Command{
		Use:           "fittrack-cli",
		Short:         "Build workout plans and track progress against a FitTrack server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.server, "server", envOr("FITTRACK_SERVER", "http://fittrack"), "FitTrack server base URL")
	rootCmd.PersistentFlags().StringVar(&opts.apiKey, "api-key", os.Getenv("FITTRACK_API_KEY"), "API key sent as X-API-Key")
	rootCmd.PersistentFlags().StringVar(&opts.lang, "lang", "", "language for labels and messages (en, tr)")

	rootCmd.AddCommand(
		newWorkoutCmd(connect, opts),
		newPlanCmd(connect),
		newHistoryCmd(connect),
		newProgressCmd(connect),
		newCaloriesCmd(connect),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd(newClient).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
