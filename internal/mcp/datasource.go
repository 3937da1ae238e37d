package mcp

import (
	"context"

	"github.com/claude/fittrack/internal/models"
	"github.com/claude/fittrack/internal/storage"
	"github.com/claude/fittrack/internal/tracker"
)

// DataSource abstracts the data layer for MCP tools. Both storage.Store
// (local) and client.Client (remote via REST API) satisfy this interface.
type DataSource interface {
	tracker.Recorder
	ListWorkouts(ctx context.Context, userID int) ([]models.WorkoutRecord, error)
}

// Compile-time check: storage.Store satisfies DataSource.
var _ DataSource = storage.Store(nil)
