package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/claude/fittrack/internal/i18n"
	"github.com/claude/fittrack/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

const recentDays = 14

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) catalogResource(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonContents(req.Params.URI, h.catalog.View(i18n.DefaultLanguage))
}

func (h *handlers) recentWorkouts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	u := UserFromContext(ctx)
	if u == nil {
		return nil, errors.New("authentication required")
	}

	workouts, err := h.ds.ListWorkouts(ctx, u.ID)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().AddDate(0, 0, -recentDays)
	recent := []models.WorkoutRecord{}
	for _, w := range workouts {
		if w.Date.After(cutoff) {
			recent = append(recent, w)
		}
	}
	return jsonContents(req.Params.URI, recent)
}
