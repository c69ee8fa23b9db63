package database

import (
	"fmt"
	"log"

	"github.com/yukikurage/ems-api/internal/config"
	"github.com/yukikurage/ems-api/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the relational store selected by cfg.DBDriver.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel(cfg.GinMode)),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Printf("Database connection established (%s)", cfg.DBDriver)
	return db, nil
}

func dialectorFor(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBName,
		)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBName,
		)
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

func logLevel(ginMode string) logger.LogLevel {
	if ginMode == "release" {
		return logger.Warn
	}
	return logger.Info
}

// Migrate creates the relational schema. Tasks are only migrated when the
// task store lives in the same database.
func Migrate(db *gorm.DB, includeTasks bool) error {
	log.Println("Running database migrations...")
	tables := []any{
		&models.Department{},
		&models.User{},
		&models.Notification{},
	}
	if includeTasks {
		tables = append(tables, &models.Task{})
	}
	if err := db.AutoMigrate(tables...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := AddIndexes(db, includeTasks); err != nil {
		return err
	}
	log.Println("Database migrations completed")
	return nil
}
