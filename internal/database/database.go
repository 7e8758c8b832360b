package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"project-management-api/internal/config"
	"project-management-api/internal/logging"
	"project-management-api/internal/models"
	"project-management-api/internal/retry"
)

// Open connects to the configured database, migrates the schema and seeds
// the fixed role, status and action-type rows.
func Open(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(logging.StdLog(log, "gorm"), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLogLevel(cfg.LogLevel),
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.Driver == "sqlite" {
		// SQLite allows one writer; a single connection avoids SQLITE_BUSY storms.
		sqlDB.SetMaxOpenConns(1)
	} else if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info("Database connected and migrated", zap.String("driver", cfg.Driver))
	return db, nil
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "sqlite":
		return sqlite.Open(sqliteDSN(cfg.DSN)), nil
	case "postgres":
		return postgres.Open(cfg.DSN), nil
	case "mysql":
		return mysql.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// sqliteDSN turns on foreign key enforcement, which SQLite leaves off by default.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// Migrate creates missing tables and inserts the seed rows.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return Seed(db)
}

// Seed inserts roles, action types and default statuses. Existing rows are
// left untouched so the call is safe on every start.
func Seed(db *gorm.DB) error {
	roles := append([]models.Role(nil), models.SeedRoles...)
	actionTypes := append([]models.ActionType(nil), models.SeedActionTypes...)
	statuses := append([]models.Status(nil), models.SeedStatuses...)

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&roles).Error; err != nil {
			return fmt.Errorf("failed to seed roles: %w", err)
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&actionTypes).Error; err != nil {
			return fmt.Errorf("failed to seed action types: %w", err)
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&statuses).Error; err != nil {
			return fmt.Errorf("failed to seed statuses: %w", err)
		}
		if tx.Dialector.Name() == "postgres" {
			// Explicit ids leave the serial sequence behind; move it past the seeds.
			if err := tx.Exec(`SELECT setval(pg_get_serial_sequence('statuses', 'id'), GREATEST((SELECT MAX(id) FROM statuses), 1))`).Error; err != nil {
				return fmt.Errorf("failed to advance statuses sequence: %w", err)
			}
		}
		return nil
	})
}

// WithTx runs fn in a transaction, retrying the whole transaction when it
// fails with a transient error. fn must use only the tx it is given.
func WithTx(ctx context.Context, db *gorm.DB, cfg *retry.Config, fn func(tx *gorm.DB) error) error {
	return retry.DoIfRetryable(ctx, cfg, func() error {
		return db.WithContext(ctx).Transaction(fn)
	})
}

// RetryConfig converts the configured retry settings.
func RetryConfig(cfg config.RetryConfig) *retry.Config {
	rc := retry.DefaultConfig()
	rc.MaxRetries = cfg.MaxRetries
	if cfg.InitialDelay > 0 {
		rc.InitialDelay = cfg.InitialDelay
	}
	if cfg.MaxDelay > 0 {
		rc.MaxDelay = cfg.MaxDelay
	}
	return rc
}
