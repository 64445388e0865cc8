package database

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

const sqlitePrefix = "sqlite://"

// Connect opens the database named by DATABASE_URL, falling back to the
// discrete DB_* postgres settings, and stores it in DB.
func Connect(cfg *config.Config) error {
	var err error
	switch {
	case strings.HasPrefix(cfg.DatabaseURL, sqlitePrefix):
		DB, err = OpenSQLite(strings.TrimPrefix(cfg.DatabaseURL, sqlitePrefix))
		if err != nil {
			return err
		}
		slog.Info("database connected", "driver", "sqlite")
		return nil
	case cfg.DatabaseURL != "":
		DB, err = openPostgres(cfg.DatabaseURL)
	default:
		DB, err = openPostgres(cfg.DSN())
	}
	if err != nil {
		return err
	}

	slog.Info("database connected", "driver", "postgres")
	return nil
}

func openPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

// OpenSQLite opens a SQLite database. ":memory:" gives a private database,
// which is what the tests use.
func OpenSQLite(path string) (*gorm.DB, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	// A single connection keeps in-memory databases shared and serialises writers.
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// Models lists every table owned by the service, parents before children.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.RefreshToken{},
		&models.Category{},
		&models.CategoryFollow{},
		&models.CategoryAccessRequest{},
		&models.Post{},
		&models.PostMedia{},
		&models.PostLike{},
		&models.Comment{},
		&models.Report{},
		&models.SystemLog{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// MigrateShared migrates the global connection.
func MigrateShared() error {
	return Migrate(DB)
}

func Ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
