package memctrl

// Config groups the construction parameters for a BwLatMemCtrl, per spec
// §6.2. It is immutable after construction — New copies the values it
// needs and BwLatMemCtrl exposes no setters.
type Config struct {
	// CurvePath is the directory holding the curve family
	// ("bwlat_<percent>.txt" files). Must exist.
	CurvePath string

	// CurveFrequencyGHz is the frequency at which curve latencies were
	// measured. Must be > 0.
	CurveFrequencyGHz float64

	// WindowSize is the number of accesses per measurement window. Must be
	// >= 1; simulators typically use 500-5000.
	WindowSize int64

	// CPUFrequencyGHz is the frequency of the simulated CPU whose cycles
	// Access accepts and returns. Must be > 0.
	CPUFrequencyGHz float64

	// OnCoreLatency is the constant portion of the measured latency
	// contributed by on-core hierarchy (L1+L2+L3), subtracted from curve
	// values. Must be >= 0.
	OnCoreLatency float64
}

// validate checks the construction parameters that aren't already covered
// by LoadCurveStore's own checks (frequencies, onCoreLatency). WindowSize is
// the one parameter curve loading never sees.
func (c Config) validate() error {
	if c.WindowSize < 1 {
		return newConfigError("windowSize must be >= 1", nil)
	}
	return nil
}
