package config

import (
	"fmt"
	"time"

	applog "ai-finance-chat/backend/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB opens the postgres connection and tunes the pool from config.
// Connection attempts are retried so the server survives starting
// before the database container is ready.
func NewDB() (*gorm.DB, error) {
	cfg := Get()

	log := applog.GetGlobal()
	if log == nil {
		log = applog.New(applog.DefaultConfig())
	}

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)

	// GORM's own query logging stays quiet outside development
	gormConfig := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Error)}
	if cfg.Server.Env == "development" {
		gormConfig.Logger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	var db *gorm.DB
	var err error
	for attempt := 1; attempt <= cfg.Database.ConnectRetries; attempt++ {
		db, err = gorm.Open(postgres.Open(dsn), gormConfig)
		if err == nil {
			break
		}
		log.Warn("Database connection failed, retrying",
			"attempt", attempt,
			"retries", cfg.Database.ConnectRetries,
			"delay", cfg.Database.RetryDelay.String(),
		)
		time.Sleep(cfg.Database.RetryDelay)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d retries: %w", cfg.Database.ConnectRetries, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.Database.ConnMaxIdleTime)

	log.Info("Database connected",
		"host", cfg.Database.Host,
		"name", cfg.Database.Name,
		"max_conns", cfg.Database.MaxConns,
	)

	return db, nil
}

// TestConnection checks if the database connection is working
func TestConnection(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}
