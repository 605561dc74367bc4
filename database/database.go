package database

import (
	"timeledger/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Init(dsn string, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if err := seedDefaultAdmin(db, log); err != nil {
		return nil, err
	}

	DB = db
	return db, nil
}

// Migrate creates the schema plus the partial unique indexes backing the
// single-open-shift and single-open-break invariants. AutoMigrate cannot
// express partial indexes, so they are created directly; the syntax is
// shared by postgres and the sqlite test driver.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Job{},
		&models.TimeEntry{},
		&models.Break{},
		&models.RateOverride{},
		&models.RejectionNote{},
		&models.AuditRecord{},
	)
	if err != nil {
		return err
	}

	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_open_entry_per_worker
			ON time_entries (worker_id) WHERE end_time IS NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_open_break_per_entry
			ON breaks (time_entry_id) WHERE end_time IS NULL`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedDefaultAdmin(db *gorm.DB, log *zap.Logger) error {
	var count int64
	db.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
	if count > 0 {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Username:           "admin",
		FullName:           "Administrator",
		PasswordHash:       string(hashedPassword),
		Role:               models.RoleAdmin,
		MustChangePassword: true,
	}
	if result := db.Create(&admin); result.Error != nil {
		return result.Error
	}

	log.Info("default admin user created", zap.String("username", "admin"))
	return nil
}

func GetDB() *gorm.DB {
	return DB
}
