package sparsity

// Mode selects how thresholds are computed.
type Mode int

// Supported modes.
const (
	// Global computes one threshold over the pooled scores of all layers.
	Global Mode = iota
	// Local computes one threshold per layer for the same level.
	Local
)

// ParseMode resolves "global" or "local". An empty key selects Global.
func ParseMode(key string) (Mode, error) {
	switch key {
	case "", "global":
		return Global, nil
	case "local":
		return Local, nil
	default:
		return 0, &ConfigurationError{Key: "sparsity_level_setting_mode", Value: key}
	}
}

// String returns the configuration key of the mode.
func (m Mode) String() string {
	switch m {
	case Global:
		return "global"
	case Local:
		return "local"
	default:
		return "unknown"
	}
}

// CompressionStage is a coarse progress indicator for a schedule.
type CompressionStage int

// Compression stages.
const (
	Uncompressed CompressionStage = iota
	PartiallyCompressed
	FullyCompressed
)

// String returns a human-readable stage name.
func (s CompressionStage) String() string {
	switch s {
	case Uncompressed:
		return "uncompressed"
	case PartiallyCompressed:
		return "partially compressed"
	case FullyCompressed:
		return "fully compressed"
	default:
		return "unknown"
	}
}
