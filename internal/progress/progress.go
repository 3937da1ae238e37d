// Package progress aggregates persisted workout records into statistics.
package progress

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/claude/fittrack/internal/models"
)

// Range limits which records a report covers.
type Range string

const (
	RangeWeek  Range = "week"
	RangeMonth Range = "month"
	RangeYear  Range = "year"
	RangeAll   Range = "all"
)

// ParseRange accepts week, month, year or all. The empty string means all.
func ParseRange(s string) (Range, error) {
	switch r := Range(strings.ToLower(strings.TrimSpace(s))); r {
	case "":
		return RangeAll, nil
	case RangeWeek, RangeMonth, RangeYear, RangeAll:
		return r, nil
	default:
		return "", fmt.Errorf("unknown range %q (want week, month, year or all)", s)
	}
}

// Location resolves an IANA zone name such as "Europe/Istanbul". The empty
// string is the server's local zone.
func Location(tz string) (*time.Location, error) {
	tz = strings.TrimSpace(tz)
	if tz == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q: %w", tz, err)
	}
	return loc, nil
}

// Start returns the first instant covered by r relative to now, in now's
// location. The zero time means unbounded.
func (r Range) Start(now time.Time) time.Time {
	y, m, d := now.Date()
	loc := now.Location()
	switch r {
	case RangeWeek:
		offset := (int(now.Weekday()) + 6) % 7 // days since Monday
		return time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
	case RangeMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case RangeYear:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	default:
		return time.Time{}
	}
}

// Share is one muscle group's slice of the distribution.
type Share struct {
	Label      string `json:"label"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

// Stats summarizes a set of workouts.
type Stats struct {
	TotalWorkouts      int            `json:"total_workouts"`
	TotalMinutes       int            `json:"total_minutes"`
	AvgDuration        int            `json:"avg_duration"`
	MuscleDistribution map[string]int `json:"muscle_distribution"`
	Shares             []Share        `json:"shares"`
}

// Aggregate computes totals and the per-muscle-group distribution.
func Aggregate(records []models.WorkoutRecord) Stats {
	s := Stats{
		TotalWorkouts:      len(records),
		MuscleDistribution: make(map[string]int),
		Shares:             []Share{},
	}
	if len(records) == 0 {
		return s
	}

	for _, r := range records {
		s.TotalMinutes += r.DurationMinutes
		s.MuscleDistribution[r.MuscleGroupLabel]++
	}
	s.AvgDuration = int(math.Round(float64(s.TotalMinutes) / float64(s.TotalWorkouts)))

	for label, count := range s.MuscleDistribution {
		s.Shares = append(s.Shares, Share{
			Label:      label,
			Count:      count,
			Percentage: int(math.Round(100 * float64(count) / float64(s.TotalWorkouts))),
		})
	}
	slices.SortFunc(s.Shares, func(a, b Share) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Label, b.Label)
	})
	return s
}

// Filter returns the records dated within rng, keeping their order.
func Filter(records []models.WorkoutRecord, rng Range, now time.Time) []models.WorkoutRecord {
	start := rng.Start(now)
	out := make([]models.WorkoutRecord, 0, len(records))
	for _, r := range records {
		if start.IsZero() || !r.Date.Before(start) {
			out = append(out, r)
		}
	}
	return out
}

type day struct {
	year  int
	month time.Month
	day   int
}

func dayOf(t time.Time) day {
	y, m, d := t.Date()
	return day{y, m, d}
}

// Streak counts consecutive calendar days with at least one workout, ending
// today or, when nothing has been logged today yet, yesterday. Days are taken
// in now's location.
func Streak(records []models.WorkoutRecord, now time.Time) int {
	active := make(map[day]bool, len(records))
	for _, r := range records {
		active[dayOf(r.Date.In(now.Location()))] = true
	}

	y, m, d := now.Date()
	cursor := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	if !active[dayOf(cursor)] {
		cursor = cursor.AddDate(0, 0, -1)
	}

	streak := 0
	for active[dayOf(cursor)] {
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}

// Report is what the progress view shows.
type Report struct {
	Range  Range                  `json:"range"`
	Stats  Stats                  `json:"stats"`
	Streak int                    `json:"streak"`
	Recent []models.WorkoutRecord `json:"recent"`
}

// Summarize filters records to rng and aggregates them. The streak always
// looks at every record.
func Summarize(records []models.WorkoutRecord, rng Range, now time.Time) Report {
	filtered := Filter(records, rng, now)
	slices.SortStableFunc(filtered, func(a, b models.WorkoutRecord) int {
		return b.Date.Compare(a.Date)
	})
	return Report{
		Range:  rng,
		Stats:  Aggregate(filtered),
		Streak: Streak(records, now),
		Recent: filtered,
	}
}
