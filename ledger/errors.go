package ledger

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error taxonomy for the ledger. Invariant violations are client errors:
// the transaction rolls back and no audit row is written. StorageUnavailable
// wraps unexpected store failures and is retryable by the caller.
var (
	ErrAlreadyClockedIn       = errors.New("worker already has an open shift")
	ErrNoActiveShift          = errors.New("worker has no open shift")
	ErrNotFound               = errors.New("record not found")
	ErrAlreadyApproved        = errors.New("entry already approved")
	ErrReasonRequired         = errors.New("rejection reason is required")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrInconsistentTotals     = errors.New("hour buckets do not sum to total hours")
	ErrInvalidHours           = errors.New("hours must be greater than 0 and at most 24")
	ErrBreakAlreadyOpen       = errors.New("entry already has an open break")
	ErrNoOpenBreak            = errors.New("no open break to end")
	ErrStorageUnavailable     = errors.New("storage unavailable")
)

// IsClientError reports whether err is an invariant violation rather than
// an infrastructure failure. Client errors are never retried.
func IsClientError(err error) bool {
	for _, e := range []error{
		ErrAlreadyClockedIn, ErrNoActiveShift, ErrNotFound,
		ErrAlreadyApproved, ErrReasonRequired, ErrInvalidStateTransition,
		ErrInvalidHours, ErrBreakAlreadyOpen, ErrNoOpenBreak,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// storageErr classifies a raw store error. Not-found maps to ErrNotFound;
// anything else unexpected is wrapped as ErrStorageUnavailable so callers
// can retry with backoff.
func storageErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}
