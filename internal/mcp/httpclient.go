package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/meltforce/liftsignal/internal/models"
	"github.com/meltforce/liftsignal/internal/periodization"
	"github.com/meltforce/liftsignal/internal/storage"
)

// HTTPClient implements DataSource by calling the LiftSignal REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// bucketToAgg maps bucket values to REST API agg parameter values.
func bucketToAgg(bucket string) string {
	if bucket == "1 month" {
		return "monthly"
	}
	return "weekly"
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

func timeParams(start, end time.Time) url.Values {
	v := url.Values{}
	v.Set("start", start.Format(time.RFC3339))
	v.Set("end", end.Format(time.RFC3339))
	return v
}

func (c *HTTPClient) QuerySetLogs(ctx context.Context, start, end time.Time, _ int, exerciseFilter string) ([]models.SetLogRow, error) {
	params := timeParams(start, end)
	if exerciseFilter != "" {
		params.Set("exercise", exerciseFilter)
	}

	body, err := c.get(ctx, "/api/v1/sets", params)
	if err != nil {
		return nil, err
	}

	var rows []models.SetLogRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("httpclient: decode sets: %w", err)
	}
	return rows, nil
}

// ExerciseSessionHistory fetches the exercise's full set history and applies
// the session ordering and limit client-side, since the sets endpoint
// returns newest-first. The sets endpoint filters by substring, so rows are
// narrowed to the exact exercise name here; otherwise "Bench Press" would
// pull "Incline Bench Press" sets into the same history.
func (c *HTTPClient) ExerciseSessionHistory(ctx context.Context, userID int, exercise string, limit int) ([]models.SetLogRow, error) {
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	fetched, err := c.QuerySetLogs(ctx, start, time.Now().AddDate(0, 0, 1), userID, exercise)
	if err != nil {
		return nil, err
	}

	rows := fetched[:0]
	for _, r := range fetched {
		if strings.EqualFold(r.ExerciseName, exercise) {
			rows = append(rows, r)
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].SessionDate.Equal(rows[j].SessionDate) {
			return rows[i].SessionDate.Before(rows[j].SessionDate)
		}
		return rows[i].SetNumber < rows[j].SetNumber
	})

	if limit > 0 {
		dates := map[time.Time]bool{}
		for _, r := range rows {
			dates[r.SessionDate] = true
		}
		if len(dates) > limit {
			ordered := make([]time.Time, 0, len(dates))
			for d := range dates {
				ordered = append(ordered, d)
			}
			sort.Slice(ordered, func(i, j int) bool { return ordered[i].Before(ordered[j]) })
			cutoff := ordered[len(ordered)-limit]

			kept := rows[:0]
			for _, r := range rows {
				if !r.SessionDate.Before(cutoff) {
					kept = append(kept, r)
				}
			}
			rows = kept
		}
	}
	return rows, nil
}

func (c *HTTPClient) GetTrainingIntensity(ctx context.Context, start, end time.Time, _ int, exerciseFilter string) (*storage.TrainingIntensityResult, error) {
	params := timeParams(start, end)
	if exerciseFilter != "" {
		params.Set("exercise", exerciseFilter)
	}

	body, err := c.get(ctx, "/api/v1/intensity", params)
	if err != nil {
		return nil, err
	}

	var result storage.TrainingIntensityResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("httpclient: decode intensity: %w", err)
	}
	return &result, nil
}

func (c *HTTPClient) GetVolumeSummary(ctx context.Context, start, end time.Time, bucket string, _ int) ([]storage.VolumePeriod, error) {
	params := timeParams(start, end)
	params.Set("agg", bucketToAgg(bucket))

	body, err := c.get(ctx, "/api/v1/volume", params)
	if err != nil {
		return nil, err
	}

	var periods []storage.VolumePeriod
	if err := json.Unmarshal(body, &periods); err != nil {
		return nil, fmt.Errorf("httpclient: decode volume: %w", err)
	}
	return periods, nil
}

func (c *HTTPClient) MuscleTrainingStatus(ctx context.Context, _ int) ([]storage.MuscleTraining, error) {
	body, err := c.get(ctx, "/api/v1/muscles/last-trained", nil)
	if err != nil {
		return nil, err
	}

	var training []storage.MuscleTraining
	if err := json.Unmarshal(body, &training); err != nil {
		return nil, fmt.Errorf("httpclient: decode muscle status: %w", err)
	}
	return training, nil
}

func (c *HTTPClient) GetDataStats(ctx context.Context, _ int) (*storage.DataStats, error) {
	body, err := c.get(ctx, "/api/v1/stats", nil)
	if err != nil {
		return nil, err
	}

	var stats storage.DataStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("httpclient: decode stats: %w", err)
	}
	return &stats, nil
}

func (c *HTTPClient) GetExerciseCatalog(ctx context.Context) ([]storage.CatalogEntry, error) {
	body, err := c.get(ctx, "/api/v1/catalog", nil)
	if err != nil {
		return nil, err
	}

	var entries []storage.CatalogEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("httpclient: decode catalog: %w", err)
	}
	return entries, nil
}

func (c *HTTPClient) ProgramsByUser(ctx context.Context, _ int) ([]models.ProgramRow, error) {
	body, err := c.get(ctx, "/api/v1/programs", nil)
	if err != nil {
		return nil, err
	}

	var programs []models.ProgramRow
	if err := json.Unmarshal(body, &programs); err != nil {
		return nil, fmt.Errorf("httpclient: decode programs: %w", err)
	}
	return programs, nil
}

func (c *HTTPClient) PeriodizationStatus(ctx context.Context, programID uuid.UUID) (*periodization.Status, error) {
	params := url.Values{}
	params.Set("program_id", programID.String())

	body, err := c.get(ctx, "/api/v1/periodization/status", params)
	if err != nil {
		return nil, err
	}

	var status periodization.Status
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("httpclient: decode periodization status: %w", err)
	}
	return &status, nil
}
