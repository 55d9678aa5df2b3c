package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Connect opens the relational store. URLs prefixed with sqlite: or file: use
// the embedded SQLite driver, everything else is treated as a PostgreSQL DSN.
func Connect(url string) (*gorm.DB, error) {
	if url == "" {
		return nil, fmt.Errorf("database url must not be empty")
	}

	switch {
	case strings.HasPrefix(url, "sqlite:"):
		return ConnectSQLite(strings.TrimPrefix(url, "sqlite:"))
	case strings.HasPrefix(url, "file:"):
		return ConnectSQLite(url)
	default:
		return ConnectPostgres(url)
	}
}

// ConnectPostgres establishes a connection to the PostgreSQL database using the provided DSN.
// Constraint violations surface as gorm.ErrDuplicatedKey.
func ConnectPostgres(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn must not be empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return db, nil
}

// ConnectSQLite opens a SQLite database at path.
func ConnectSQLite(path string) (*gorm.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path must not be empty")
	}

	db, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	return db, nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{TranslateError: true}
}
