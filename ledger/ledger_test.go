package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"timeledger/database"
	"timeledger/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens a throwaway sqlite database with the full schema,
// including the partial unique indexes the invariants depend on.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "ledger.db") + "?_pragma=busy_timeout(10000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// A single pooled connection serializes concurrent transactions the
	// way row locks do on postgres.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func newWorker(t *testing.T, db *gorm.DB, username string, rate float64) *models.User {
	t.Helper()
	worker := &models.User{
		Username:     username,
		FullName:     "Test " + username,
		PasswordHash: "x",
		Role:         models.RoleWorker,
		DefaultRate:  rate,
	}
	require.NoError(t, db.Create(worker).Error)
	return worker
}

func newJob(t *testing.T, db *gorm.DB, name string) *models.Job {
	t.Helper()
	job := &models.Job{Name: name, Active: true}
	require.NoError(t, db.Create(job).Error)
	return job
}

func newOverride(t *testing.T, db *gorm.DB, jobID, workerID uint, rate float64) *models.RateOverride {
	t.Helper()
	override := &models.RateOverride{JobID: jobID, WorkerID: workerID, Rate: rate, Active: true}
	require.NoError(t, db.Create(override).Error)
	return override
}

func newTracker(db *gorm.DB) *ShiftTracker {
	return NewShiftTracker(db, NewRateResolver(15.0), NewPaySplitter(), NewAuditRecorder(), zap.NewNop())
}

func newBreaks(db *gorm.DB) *BreakLedger {
	return NewBreakLedger(db, NewAuditRecorder(), zap.NewNop())
}

func newApproval(db *gorm.DB, events Publisher) *ApprovalService {
	if events == nil {
		events = NopPublisher{}
	}
	return NewApprovalService(db, NewPaySplitter(), NewAuditRecorder(), events, zap.NewNop())
}

func testProvenance(actorID uint) Provenance {
	return Provenance{
		ActorID:   actorID,
		IPAddress: "203.0.113.7",
		UserAgent: "ledger-test/1.0",
		RequestID: "11111111-2222-3333-4444-555555555555",
	}
}

// fixedClock returns a now func pinned to t0 that can be advanced.
type fixedClock struct {
	t time.Time
}

func (c *fixedClock) now() time.Time {
	return c.t
}

func (c *fixedClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func auditRows(t *testing.T, db *gorm.DB, entryID uint) []models.AuditRecord {
	t.Helper()
	var rows []models.AuditRecord
	require.NoError(t, db.Where("time_entry_id = ?", entryID).Order("id asc").Find(&rows).Error)
	return rows
}
