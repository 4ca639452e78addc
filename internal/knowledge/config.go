package knowledge

import "time"

// Config holds the store tunables. All values are explicit configuration,
// never embedded constants: tests and callers pass the horizon and
// thresholds they mean.
type Config struct {
	// DecayHorizon is the unreinforced interval after which an active
	// record starts decaying; a second horizon marks it stale.
	DecayHorizon time.Duration

	// DecayFactor scales confidence down once per horizon crossing.
	DecayFactor float64

	// SimilarityThreshold is the token-set similarity at or above which
	// a candidate component is rejected as a near-duplicate.
	SimilarityThreshold float64

	// WindowSize bounds the confidence rolling window.
	WindowSize int

	// DailyExtractionLimit caps new-record extractions per originating
	// journey per calendar day, counted from the history log.
	DailyExtractionLimit int

	// LockTimeout bounds the wait for the store's advisory lock; a lock
	// that cannot be acquired in time fails the operation rather than
	// hanging or corrupting state.
	LockTimeout time.Duration

	// LockRetryDelay is the poll interval while waiting for the lock.
	LockRetryDelay time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		DecayHorizon:         30 * 24 * time.Hour,
		DecayFactor:          0.8,
		SimilarityThreshold:  0.8,
		WindowSize:           90,
		DailyExtractionLimit: 3,
		LockTimeout:          5 * time.Second,
		LockRetryDelay:       50 * time.Millisecond,
	}
}

// Clock abstracts wall-clock time so decay and rate limiting are testable
// without sleeping.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production clock.
type SystemClock struct{}

// Now returns the current wall-clock time in UTC.
func (SystemClock) Now() time.Time { return time.Now().UTC() }
