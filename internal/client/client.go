// Package client talks to the FitTrack REST API. It backs the command line
// tool and the stdio MCP server when data lives on a remote instance.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/fittrack/internal/calorie"
	"github.com/claude/fittrack/internal/catalog"
	"github.com/claude/fittrack/internal/i18n"
	"github.com/claude/fittrack/internal/models"
	"github.com/claude/fittrack/internal/plan"
	"github.com/claude/fittrack/internal/progress"
	"github.com/claude/fittrack/internal/tracker"
)

// StatusError is returned for any non-2xx response other than 401.
type StatusError struct {
	Path       string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("client: %s returned %d", e.Path, e.StatusCode)
	}
	return fmt.Sprintf("client: %s returned %d: %s", e.Path, e.StatusCode, e.Message)
}

// Catalog is the /api/v1/catalog payload.
type Catalog struct {
	catalog.View
	ActivityLevels []calorie.Level `json:"activity_levels"`
}

// Client calls the FitTrack REST API. Requests are never retried.
type Client struct {
	baseURL    string
	apiKey     string
	lang       i18n.Language
	httpClient *http.Client
}

var _ tracker.Recorder = (*Client)(nil)

// New creates a Client targeting baseURL. An empty apiKey sends no key.
func New(baseURL, apiKey string, lang i18n.Language) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		lang:       lang,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Language returns the language sent with every request.
func (c *Client) Language() i18n.Language { return c.lang }

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("lang", string(c.lang))
	u := c.baseURL + path + "?" + params.Encode()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encode %s: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("client: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept-Language", string(c.lang))
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: read body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return tracker.ErrAuthRequired
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
			msg = payload.Error
			if payload.Message != "" {
				msg = payload.Message
			}
		}
		return &StatusError{Path: path, StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("client: decode %s: %w", path, err)
	}
	return nil
}

// Me returns the caller's identity, or tracker.ErrAuthRequired.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodGet, "/api/v1/me", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Catalog fetches the labeled wizard options.
func (c *Client) Catalog(ctx context.Context) (Catalog, error) {
	var cat Catalog
	err := c.do(ctx, http.MethodGet, "/api/v1/catalog", nil, nil, &cat)
	return cat, err
}

// Plan builds the plan for sel on the server.
func (c *Client) Plan(ctx context.Context, sel plan.Selection) (plan.View, error) {
	params := url.Values{}
	params.Set("muscle", sel.MuscleGroup)
	params.Set("equipment", sel.Equipment)
	params.Set("difficulty", sel.Difficulty)

	var v plan.View
	err := c.do(ctx, http.MethodGet, "/api/v1/plan", params, nil, &v)
	return v, err
}

// InsertWorkout saves w for the caller. The server assigns the user, so
// w.UserID is ignored.
func (c *Client) InsertWorkout(ctx context.Context, w models.NewWorkout) (models.WorkoutRecord, error) {
	var rec models.WorkoutRecord
	err := c.do(ctx, http.MethodPost, "/api/v1/workouts", nil, w, &rec)
	return rec, err
}

// ListWorkouts returns the caller's workouts, newest first. userID is
// ignored; the server scopes results to the authenticated user.
func (c *Client) ListWorkouts(ctx context.Context, _ int) ([]models.WorkoutRecord, error) {
	var records []models.WorkoutRecord
	if err := c.do(ctx, http.MethodGet, "/api/v1/workouts", nil, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Progress fetches the progress report for rng.
func (c *Client) Progress(ctx context.Context, rng progress.Range) (progress.Report, error) {
	params := url.Values{}
	params.Set("range", string(rng))

	var rep progress.Report
	err := c.do(ctx, http.MethodGet, "/api/v1/progress", params, nil, &rep)
	return rep, err
}

// Calories asks the server for a calorie estimate.
func (c *Client) Calories(ctx context.Context, in calorie.Input) (calorie.Result, error) {
	params := url.Values{}
	params.Set("sex", string(in.Sex))
	params.Set("age", formatFloat(in.Age))
	params.Set("height", formatFloat(in.HeightCM))
	params.Set("weight", formatFloat(in.WeightKG))
	params.Set("activity", formatFloat(in.ActivityFactor))

	var res calorie.Result
	err := c.do(ctx, http.MethodGet, "/api/v1/calories", params, nil, &res)
	return res, err
}

// IsAuthRequired reports whether err means the caller must sign in.
func IsAuthRequired(err error) bool {
	return errors.Is(err, tracker.ErrAuthRequired)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
