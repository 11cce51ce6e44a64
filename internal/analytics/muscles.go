package analytics

import "strings"

// RecoveryGroup classifies how fast a muscle group recovers between sessions.
type RecoveryGroup string

const (
	RecoveryFast   RecoveryGroup = "fast"   // ~24h to 95% recovery
	RecoveryMedium RecoveryGroup = "medium" // ~48h
	RecoveryLarge  RecoveryGroup = "large"  // ~72h
)

// muscleKeywords maps muscle-name keywords to recovery groups. Matching is
// case-insensitive substring with longest-keyword-wins tie-breaking, so
// "lower back" beats "back" and iteration order never decides the result.
var muscleKeywords = []struct {
	keyword string
	group   RecoveryGroup
}{
	{"quadriceps", RecoveryLarge},
	{"quads", RecoveryLarge},
	{"hamstrings", RecoveryLarge},
	{"hamstring", RecoveryLarge},
	{"glutes", RecoveryLarge},
	{"glute", RecoveryLarge},
	{"lower back", RecoveryLarge},
	{"back", RecoveryLarge},
	{"lats", RecoveryLarge},
	{"legs", RecoveryLarge},

	{"chest", RecoveryMedium},
	{"pecs", RecoveryMedium},
	{"shoulders", RecoveryMedium},
	{"shoulder", RecoveryMedium},
	{"delts", RecoveryMedium},
	{"traps", RecoveryMedium},

	{"biceps", RecoveryFast},
	{"triceps", RecoveryFast},
	{"forearms", RecoveryFast},
	{"forearm", RecoveryFast},
	{"calves", RecoveryFast},
	{"calf", RecoveryFast},
	{"abs", RecoveryFast},
	{"core", RecoveryFast},
	{"neck", RecoveryFast},
}

// ClassifyMuscle maps a muscle name to its recovery group. Unrecognized
// names default to medium.
func ClassifyMuscle(name string) RecoveryGroup {
	lower := strings.ToLower(name)

	best := RecoveryMedium
	bestLen := 0
	for _, e := range muscleKeywords {
		if len(e.keyword) > bestLen && strings.Contains(lower, e.keyword) {
			best = e.group
			bestLen = len(e.keyword)
		}
	}
	return best
}

// decayFor returns the per-hour decay constant for a recovery group.
func decayFor(group RecoveryGroup, cfg Config) float64 {
	switch group {
	case RecoveryFast:
		return cfg.DecayFast
	case RecoveryLarge:
		return cfg.DecayLarge
	default:
		return cfg.DecayMedium
	}
}
