// Package data persists finished matches. The live session registry is
// purely in memory; this package only sees sessions after the server has
// reaped them.
package data

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the configured database engine and runs migrations. By
// default only errors are logged but debug mode enables full SQL query
// prints-to-console.
func Connect(engine, dataSource string, debug bool) (*gorm.DB, error) {
	log := logger.Default.LogMode(logger.Error)
	if debug {
		log = logger.Default.LogMode(logger.Info)
	}

	var dialector gorm.Dialector
	switch strings.ToLower(engine) {
	case "sqlite":
		dialector = sqlite.Open(dataSource)
	case "postgres":
		dialector = postgres.Open(dataSource)
	default:
		return nil, fmt.Errorf("unsupported database engine: %s", engine)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: log})
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %s", err)
	}

	if err = db.AutoMigrate(&Match{}); err != nil {
		return nil, fmt.Errorf("error auto migrating db: %s", err)
	}

	return db, nil
}

func Shutdown(db *gorm.DB) error {
	database, err := db.DB()
	if err != nil {
		return fmt.Errorf("error while getting current connection: %w", err)
	}
	if err := database.Close(); err != nil {
		return fmt.Errorf("error while closing database connection: %w", err)
	}
	return nil
}
