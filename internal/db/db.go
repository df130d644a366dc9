package db

import (
	"fmt"
	"time"

	"paylite/internal/config" // Database settings

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql" // MySQL driver for GORM
	"gorm.io/gorm"         // GORM ORM library
	"gorm.io/gorm/logger"
)

// Open connects to MySQL with the settings from cfg
func Open(cfg *config.Config) (*gorm.DB, error) {
	gdb, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{
		TranslateError: true, // Duplicate keys surface as gorm.ErrDuplicatedKey
		Logger:         newLogger(cfg.IsProd),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxOpenConns / 2)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return gdb, nil
}

// newLogger routes GORM's slow query and error logs through logrus
func newLogger(isProd bool) logger.Interface {
	level := logger.Warn
	if isProd {
		level = logger.Error
	}
	return logger.New(logrus.StandardLogger(), logger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true, // Not found is an expected outcome
		Colorful:                  false,
	})
}
