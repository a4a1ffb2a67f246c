package database

import (
	"fmt"
	"log"

	config "github.com/kasozi256/schooldesk/configs"
	"github.com/kasozi256/schooldesk/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	var err error
	dsn := config.Config("DATABASE_URL")

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:                              false,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		DisableNestedTransaction:                 true,
		TranslateError:                           true,
	})
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	fmt.Println("✅ Database connected successfully")
}

func Migrate() {
	if err := MigrateModels(DB); err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	fmt.Println("✅ Database migration successful")
}

// MigrateModels runs AutoMigrate for every model on the given connection.
// Shared with the sqlite-backed test database.
func MigrateModels(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.Family{},
		&models.Student{},
		&models.DiscountPolicy{},
		&models.FeeRecord{},
		&models.FeeCharge{},
		&models.FeePayment{},
		&models.AttendanceRecord{},
		&models.ExamResult{},
	)
}
