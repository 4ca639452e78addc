package knowledge

import (
	"errors"
	"fmt"
	"time"
)

// CorruptStoreError reports a record file that failed to load (bad JSON
// or schema version mismatch). The operation continued against an empty
// set for that record kind only; surface the warning, never swallow it.
// QuarantinePath is set once a lock-holding operation has moved the file
// aside; lock-free readers leave it in place.
type CorruptStoreError struct {
	Path           string
	QuarantinePath string
	Err            error
}

func (e *CorruptStoreError) Error() string {
	if e.QuarantinePath == "" {
		return fmt.Sprintf("store file %s is corrupt: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("store file %s is corrupt (quarantined to %s): %v", e.Path, e.QuarantinePath, e.Err)
}

func (e *CorruptStoreError) Unwrap() error { return e.Err }

// IsCorruptStore reports whether err wraps a CorruptStoreError.
func IsCorruptStore(err error) bool {
	var ce *CorruptStoreError
	return errors.As(err, &ce)
}

// LockTimeoutError reports that the store's advisory lock could not be
// acquired within the bounded wait. Transient: writes are atomic, so the
// operation is safe to retry with backoff.
type LockTimeoutError struct {
	Path    string
	Timeout time.Duration
	Err     error
}

func (e *LockTimeoutError) Error() string {
	return fmt.Sprintf("could not acquire store lock %s within %s", e.Path, e.Timeout)
}

func (e *LockTimeoutError) Unwrap() error { return e.Err }

// IsLockTimeout reports whether err wraps a LockTimeoutError.
func IsLockTimeout(err error) bool {
	var le *LockTimeoutError
	return errors.As(err, &le)
}

// RateLimitError reports a deliberate, surfaced skip: the journey already
// extracted its daily allowance of new records. Not a failure.
type RateLimitError struct {
	JourneyID string
	Day       string
	Limit     int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("journey %s reached the extraction limit (%d) for %s", e.JourneyID, e.Limit, e.Day)
}

// IsRateLimited reports whether err wraps a RateLimitError.
func IsRateLimited(err error) bool {
	var re *RateLimitError
	return errors.As(err, &re)
}

// DuplicateError reports a candidate component rejected as a
// near-duplicate of an existing same-category component.
type DuplicateError struct {
	ExistingID string
	Similarity float64
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("near-duplicate of component %s (similarity %.2f)", e.ExistingID, e.Similarity)
}

// IsDuplicate reports whether err wraps a DuplicateError.
func IsDuplicate(err error) bool {
	var de *DuplicateError
	return errors.As(err, &de)
}
