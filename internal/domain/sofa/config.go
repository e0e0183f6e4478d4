package sofa

import "time"

// Config holds every tunable of the scoring rule. It is an immutable value
// passed explicitly into each invocation so concurrent calculators can
// never observe inconsistent settings.
type Config struct {
	// Pre-window lookback per organ, applied only when a window holds no
	// in-window measurement. The boundary is inclusive.
	RespiratoryLookback time.Duration
	LiverLookback       time.Duration
	KidneyLookback      time.Duration
	HemostasisLookback  time.Duration

	// MinPressorEpisode is the shortest vasopressor infusion that counts
	// toward scoring. An episode of exactly this duration qualifies.
	MinPressorEpisode time.Duration

	// RatioTolerance is the maximum age of an inspired-oxygen value when
	// pairing it with an oxygenation measurement.
	RatioTolerance time.Duration

	// SedationInvalidation is the configured post-sedation window after
	// which a neurological assessment would be considered valid again.
	// The brain calculator does not consult it; the published rule does
	// not say how it interacts with the sedation floor.
	SedationInvalidation time.Duration
}

// DefaultConfig returns the published defaults.
func DefaultConfig() Config {
	return Config{
		RespiratoryLookback:  24 * time.Hour,
		LiverLookback:        48 * time.Hour,
		KidneyLookback:       48 * time.Hour,
		HemostasisLookback:   48 * time.Hour,
		MinPressorEpisode:    60 * time.Minute,
		RatioTolerance:       4 * time.Hour,
		SedationInvalidation: 6 * time.Hour,
	}
}
