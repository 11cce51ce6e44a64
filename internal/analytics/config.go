package analytics

// Formula selects the estimated-1RM regression formula.
type Formula string

const (
	FormulaEpley   Formula = "epley"
	FormulaBrzycki Formula = "brzycki"
)

// Config holds the tunable parameters of the analytics core. The zero value
// is not usable; start from DefaultConfig and override fields as needed.
type Config struct {
	Formula        Formula
	DefaultRIR     float64
	BaselineWindow int
	Sensitivity    float64

	ImprovementThreshold float64
	StagnationThreshold  float64
	RegressionThreshold  float64
	FatigueCeiling       float64

	// Per-recovery-group decay constants, per hour.
	DecayFast   float64
	DecayMedium float64
	DecayLarge  float64
}

// DefaultConfig returns the documented defaults: Epley formula, baseline
// window of 8 sessions, sensitivity 1.0, alert thresholds +2%/1%/−3%,
// systemic fatigue ceiling 80, and decay constants calibrated for ~24h/48h/72h
// to 95% recovery.
func DefaultConfig() Config {
	return Config{
		Formula:              FormulaEpley,
		DefaultRIR:           0,
		BaselineWindow:       8,
		Sensitivity:          1.0,
		ImprovementThreshold: 0.02,
		StagnationThreshold:  0.01,
		RegressionThreshold:  -0.03,
		FatigueCeiling:       80,
		DecayFast:            0.125,
		DecayMedium:          0.063,
		DecayLarge:           0.046,
	}
}
