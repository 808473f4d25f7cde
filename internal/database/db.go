package database

import (
	"fmt"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres" // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"              // SQLite driver
)

// Supported dialects
const (
	DialectSQLite   = "sqlite3"
	DialectPostgres = "postgres"
)

// Dialect maps a store driver name from configuration to a gorm dialect
func Dialect(driver string) (string, error) {
	switch driver {
	case "sqlite", DialectSQLite:
		return DialectSQLite, nil
	case DialectPostgres:
		return DialectPostgres, nil
	}
	return "", fmt.Errorf("unsupported database driver: %s", driver)
}

// Open opens the database and migrates the kiosk tables
func Open(driver, url string) (*gorm.DB, error) {
	dialect, err := Dialect(driver)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialect, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}

	// SQLite allows a single writer; one connection avoids "database is locked"
	if dialect == DialectSQLite {
		db.DB().SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the kiosk tables
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Setting{}, &OrderRecord{}, &OrderLineRecord{}).Error; err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
