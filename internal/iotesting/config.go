// Package iotesting provides shared utilities for integration tests.
package iotesting

import (
	"os"
	"testing"

	"github.com/sdss/lvmmag/internal/ioconfig"
	"github.com/sdss/lvmmag/pkg/config"
)

// TestDatabaseName is the database used by all integration tests, so
// a test run can never touch a production catalog database.
const TestDatabaseName = "lvmmag_test"

// SkipWithoutDatabase skips the test unless LVMMAG_TEST_DATABASE is
// set. Integration tests need a reachable PostgreSQL server:
//
//	docker run -d -e POSTGRES_PASSWORD=sdss -e POSTGRES_USER=sdss \
//	  -e POSTGRES_DB=lvmmag_test -p 5432:5432 postgres:16
//	LVMMAG_TEST_DATABASE=1 go test ./...
func SkipWithoutDatabase(t *testing.T) {
	t.Helper()
	if os.Getenv("LVMMAG_TEST_DATABASE") == "" {
		t.Skip("set LVMMAG_TEST_DATABASE to run database integration tests")
	}
}

// GetTestConfig loads the standard configuration and forces the
// database name to TestDatabaseName.
func GetTestConfig() *config.Config {
	result, err := ioconfig.Load("")

	var cfg *config.Config
	if err != nil {
		cfg = config.Defaults()
	} else {
		cfg = result.Config
	}
	cfg.MergeWithDefaults()

	cfg.Database.Database = TestDatabaseName
	return cfg
}

// GetTestDatabaseConfig returns only the database configuration.
func GetTestDatabaseConfig() *config.DatabaseConfig {
	cfg := GetTestConfig()
	return &cfg.Database
}
