package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) trainingSnapshot(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)
	end := time.Now()
	start := end.AddDate(0, 0, -14)

	sets, err := h.ds.QuerySetLogs(ctx, start, end, uid, "")
	if err != nil {
		return nil, err
	}

	fatigue, err := h.fatigueStates(ctx, uid)
	if err != nil {
		h.log.Warn("training_snapshot: fatigue failed", "error", err)
	}

	stats, err := h.ds.GetDataStats(ctx, uid)
	if err != nil {
		h.log.Warn("training_snapshot: stats failed", "error", err)
	}

	snapshot := map[string]any{
		"range_start": start.Format("2006-01-02"),
		"range_end":   end.Format("2006-01-02"),
		"recent_sets": sets,
		"fatigue":     fatigue,
		"stats":       stats,
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) exerciseCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	entries, err := h.ds.GetExerciseCatalog(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
