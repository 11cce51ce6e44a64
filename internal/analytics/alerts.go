package analytics

import "fmt"

// AlertType identifies the kind of training signal detected.
type AlertType string

const (
	AlertImprovement  AlertType = "improvement"
	AlertStagnation   AlertType = "stagnation"
	AlertRegression   AlertType = "regression"
	AlertOvertraining AlertType = "overtraining"
)

// Severity ranks an alert.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// Alert is a detected training signal for one exercise.
type Alert struct {
	Type      AlertType      `json:"type"`
	Severity  Severity       `json:"severity"`
	Exercise  string         `json:"exercise,omitempty"`
	Message   string         `json:"message"`
	PctChange float64        `json:"pct_change"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// DetectAlerts scans a history of session estimated-1RM values (oldest first,
// newest last) for improvement, stagnation, regression, and overtraining
// signals. systemicFatigue is a 0–100 scalar for the whole body, typically
// the worst muscle-group fatigue. Fewer than 4 sessions yields no alerts;
// multiple alert types can co-occur and all qualifying alerts are returned.
func DetectAlerts(exercise string, history []float64, systemicFatigue float64, cfg Config) []Alert {
	n := len(history)
	if n < 4 {
		return nil
	}

	var alerts []Alert

	// Trend: mean of the last 3 sessions vs the mean of the 3 before that.
	if n >= 6 {
		recent := mean(history[n-3:])
		prev := mean(history[n-6 : n-3])
		if prev != 0 {
			rel := (recent - prev) / prev
			if rel > cfg.ImprovementThreshold {
				alerts = append(alerts, Alert{
					Type:      AlertImprovement,
					Severity:  SeverityInfo,
					Exercise:  exercise,
					Message:   fmt.Sprintf("%s trending up %.1f%% over the last 3 sessions", exercise, rel*100),
					PctChange: rel,
					Metadata:  map[string]any{"recent_avg": recent, "previous_avg": prev},
				})
			}
			if abs(rel) < cfg.StagnationThreshold && n >= 8 {
				alerts = append(alerts, Alert{
					Type:      AlertStagnation,
					Severity:  SeverityWarn,
					Exercise:  exercise,
					Message:   fmt.Sprintf("%s has been flat for %d sessions, consider changing stimulus", exercise, n),
					PctChange: rel,
					Metadata:  map[string]any{"sessions": n},
				})
			}
		}
	}

	// Regression: both of the 2 most recent sessions below a common baseline
	// 3 positions back. Using one shared reference avoids flagging a single
	// bad day.
	if base := history[n-4]; base != 0 {
		rel1 := (history[n-1] - base) / base
		rel2 := (history[n-2] - base) / base
		if rel1 < cfg.RegressionThreshold && rel2 < cfg.RegressionThreshold {
			alerts = append(alerts, Alert{
				Type:      AlertRegression,
				Severity:  SeverityWarn,
				Exercise:  exercise,
				Message:   fmt.Sprintf("%s down %.1f%% from baseline across the last 2 sessions", exercise, rel1*100),
				PctChange: rel1,
				Metadata:  map[string]any{"baseline": base, "latest_pct": rel1, "previous_pct": rel2},
			})
		}
	}

	// Overtraining: high systemic fatigue plus a declining latest session.
	if systemicFatigue > cfg.FatigueCeiling && history[n-2] != 0 {
		rel := (history[n-1] - history[n-2]) / history[n-2]
		if rel < 0 {
			alerts = append(alerts, Alert{
				Type:      AlertOvertraining,
				Severity:  SeverityError,
				Exercise:  exercise,
				Message:   fmt.Sprintf("performance dropping on %s with systemic fatigue at %.0f, recovery recommended", exercise, systemicFatigue),
				PctChange: rel,
				Metadata:  map[string]any{"systemic_fatigue": systemicFatigue},
			})
		}
	}

	return alerts
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
