package config

import (
	"os"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the database pointed at by DATABASE_URL. Deployments use
// Postgres; with no URL set it falls back to a local SQLite file, which
// is enough for development.
func InitDB() (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return gorm.Open(sqlite.Open("supermercado.db"), cfg)
	}
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return gorm.Open(postgres.Open(dsn), cfg)
	}
	return gorm.Open(sqlite.Open(dsn), cfg)
}
