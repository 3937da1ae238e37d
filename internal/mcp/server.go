package mcp

import (
	"context"
	"log/slog"

	"github.com/claude/fittrack/internal/catalog"
	"github.com/claude/fittrack/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userKey contextKey = iota

// UserFromContext returns the user injected by the transport layer, or nil.
func UserFromContext(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

// WithUser returns a context carrying u for tool and resource handlers.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, cat *catalog.Catalog, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("FitTrack", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("FitTrack workout server. Build exercise plans from the catalog, record completed workouts, review progress and estimate daily calorie needs. Workout data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, catalog: cat, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListCatalog, Handler: h.listCatalog},
		server.ServerTool{Tool: toolBuildPlan, Handler: h.buildPlan},
		server.ServerTool{Tool: toolRecordWorkout, Handler: h.recordWorkout},
		server.ServerTool{Tool: toolListWorkouts, Handler: h.listWorkouts},
		server.ServerTool{Tool: toolGetProgress, Handler: h.getProgress},
		server.ServerTool{Tool: toolEstimateCalories, Handler: h.estimateCalories},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resCatalog, Handler: h.catalogResource},
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds      DataSource
	catalog *catalog.Catalog
	log     *slog.Logger
}

// --- Resource definitions ---

var resCatalog = mcp.NewResource(
	"fittrack://catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("Muscle groups, equipment and difficulty levels that can be combined into a plan"),
	mcp.WithMIMEType("application/json"),
)

var resRecentWorkouts = mcp.NewResource(
	"fittrack://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("Workouts recorded in the last 14 days"),
	mcp.WithMIMEType("application/json"),
)
