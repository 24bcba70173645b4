package database

import (
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ewhitmore/mtg-price-watch/internal/models"
)

var DB *gorm.DB

func Initialize(dbPath string) error {
	var err error
	DB, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return err
	}

	// Auto-migrate the schema
	err = DB.AutoMigrate(&models.RunSnapshot{}, &models.PriceObservation{})
	if err != nil {
		return err
	}

	log.Println("Run archive ready")
	return nil
}

func GetDB() *gorm.DB {
	return DB
}
