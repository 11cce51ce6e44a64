package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/meltforce/liftsignal/internal/analytics"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, cfg analytics.Config, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("LiftSignal", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("LiftSignal strength training server. Query set logs, exercise metrics (estimated 1RM, effective volume), performance baselines and alerts, muscle-group recovery, and periodization cycle state. All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, cfg: cfg, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetSetLogs, Handler: h.getSetLogs},
		server.ServerTool{Tool: toolGetExerciseMetrics, Handler: h.getExerciseMetrics},
		server.ServerTool{Tool: toolGetBaseline, Handler: h.getBaseline},
		server.ServerTool{Tool: toolGetAlerts, Handler: h.getAlerts},
		server.ServerTool{Tool: toolGetFatigue, Handler: h.getFatigue},
		server.ServerTool{Tool: toolGetTrainingIntensity, Handler: h.getTrainingIntensity},
		server.ServerTool{Tool: toolGetVolumeSummary, Handler: h.getVolumeSummary},
		server.ServerTool{Tool: toolGetPeriodizationStatus, Handler: h.getPeriodizationStatus},
		server.ServerTool{Tool: toolGetDataStats, Handler: h.getDataStats},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resTrainingSnapshot, Handler: h.trainingSnapshot},
		server.ServerResource{Resource: resExerciseCatalog, Handler: h.exerciseCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	cfg analytics.Config
	log *slog.Logger
}

// --- Resource definitions ---

var resTrainingSnapshot = mcp.NewResource(
	"liftsignal://training_snapshot",
	"Training Snapshot",
	mcp.WithResourceDescription("Sets from the last 14 days, current muscle-group recovery states, and overall data statistics"),
	mcp.WithMIMEType("application/json"),
)

var resExerciseCatalog = mcp.NewResource(
	"liftsignal://exercise_catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("All known exercises with their muscle group and recovery profile"),
	mcp.WithMIMEType("application/json"),
)
