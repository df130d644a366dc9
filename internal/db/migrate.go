package db

import (
	"paylite/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus"
	"gorm.io/gorm" // GORM ORM library
)

// models in dependency order, owners first
var models = []any{&domain.User{}, &domain.Wallet{}, &domain.Transaction{}}

// Migrate creates or updates tables, foreign keys, check constraints and indexes
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models...); err != nil {
		return err
	}
	logrus.Info("Migration completed.") // Log successful migration
	return nil
}

// Drop removes every table, dependents first
func Drop(db *gorm.DB) error {
	for i := len(models) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(models[i]); err != nil {
			return err
		}
	}
	logrus.Warn("Database tables dropped.")
	return nil
}
