package database

import (
	"log"

	"breakdesk/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Init(dsn string) error {
	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Info),
		TranslateError: true,
	})
	if err != nil {
		return err
	}

	// Auto migrate the schema
	err = DB.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.TeamModerator{},
		&models.AttendanceInterval{},
		&models.BreakRequest{},
	)
	if err != nil {
		return err
	}

	// Concurrency guards AutoMigrate cannot express. The break request
	// invariant ("one live break per interval") and the attendance
	// invariant ("one open shift per user") must hold at the datastore,
	// not just in application pre-checks.
	if err := createGuardIndexes(); err != nil {
		return err
	}

	// Seed default super admin if not exists
	if err := seedDefaultAdmin(); err != nil {
		return err
	}

	return nil
}

func createGuardIndexes() error {
	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_attendance_one_open_per_user
		 ON attendance_intervals (user_id)
		 WHERE clock_out_at IS NULL AND deleted_at IS NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_break_one_live_per_attendance
		 ON break_requests (user_id, attendance_id)
		 WHERE status IN ('pending', 'approved', 'active') AND deleted_at IS NULL`,
	}
	for _, stmt := range stmts {
		if err := DB.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedDefaultAdmin() error {
	var count int64
	DB.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
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
		Role:               models.RoleSuperAdmin,
		MustChangePassword: true,
	}

	result := DB.Create(&admin)
	if result.Error != nil {
		return result.Error
	}

	log.Println("Default super admin user created (username: admin, password: admin)")
	return nil
}

func GetDB() *gorm.DB {
	return DB
}
