package gormstore

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config selects the dialect and connection string for Open. Verbose switches
// the GORM logger from silent to info-level statement tracing.
type Config struct {
	Driver  string
	DSN     string
	Verbose bool
}

// Open connects to the configured database. The driver defaults to sqlite for
// file-backed deployments; postgres DSNs usually point at a PostGIS database
// so geometry columns can be reprojected server side.
func Open(config Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch config.Driver {
	case "", DriverSQLite:
		dialector = sqlite.Open(config.DSN)
	case DriverPostgres:
		dialector = postgres.Open(config.DSN)
	default:
		return nil, fmt.Errorf("gormstore: unsupported driver %q", config.Driver)
	}

	level := logger.Silent
	if config.Verbose {
		level = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gormstore: open %s database: %w", driverName(config.Driver), err)
	}
	return db, nil
}

func driverName(driver string) string {
	if driver == "" {
		return DriverSQLite
	}
	return driver
}
