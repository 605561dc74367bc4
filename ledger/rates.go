package ledger

import (
	"errors"

	"timeledger/models"

	"gorm.io/gorm"
)

// RateResolver picks the single effective hourly rate for a worker and
// optional job. Precedence, highest first: active rate override for the
// (job, worker) pair, then the worker's default rate, then the system
// fallback. It is a pure read and never errors; missing configuration
// must not block a shift from starting.
type RateResolver struct {
	fallback float64
}

func NewRateResolver(fallbackRate float64) *RateResolver {
	return &RateResolver{fallback: fallbackRate}
}

// Resolve runs against the given handle so callers can resolve inside
// their own transaction.
func (r *RateResolver) Resolve(db *gorm.DB, workerID uint, jobID *uint) float64 {
	if jobID != nil {
		var override models.RateOverride
		err := db.Where("job_id = ? AND worker_id = ? AND active = ?", *jobID, workerID, true).
			Order("updated_at desc").
			First(&override).Error
		if err == nil && override.Rate > 0 {
			return override.Rate
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			// Degraded store read: fall through to the worker default
			// rather than blocking the clock-in.
			return r.resolveDefault(db, workerID)
		}
	}
	return r.resolveDefault(db, workerID)
}

func (r *RateResolver) resolveDefault(db *gorm.DB, workerID uint) float64 {
	var worker models.User
	if err := db.First(&worker, workerID).Error; err == nil && worker.DefaultRate > 0 {
		return worker.DefaultRate
	}
	return r.fallback
}
