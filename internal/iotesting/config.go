// Package iotesting provides shared test utilities for integration tests.
// This is an internal package for test infrastructure only.
package iotesting

import (
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/gizisehat/gizi/pkg/config"
)

const (
	// TestDatabaseName is the database name used for all integration tests.
	// This ensures tests never accidentally run against production databases.
	TestDatabaseName = "gizi_test"

	// PostgresEnv enables PostgreSQL integration tests when set.
	PostgresEnv = "GIZI_TEST_POSTGRES"
)

// RequirePostgres skips the test unless PostgreSQL integration tests
// are enabled.
func RequirePostgres(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if os.Getenv(PostgresEnv) == "" {
		t.Skipf("Skipping PostgreSQL test, set %s to enable", PostgresEnv)
	}
}

// GetTestDatabaseConfig returns database settings for integration tests.
// Defaults are overridden by GIZI_DATABASE_* variables, the database
// name is always TestDatabaseName.
func GetTestDatabaseConfig() *config.DatabaseConfig {
	cfg := config.New()
	var opts []config.Option
	if s := os.Getenv("GIZI_DATABASE_HOST"); s != "" {
		opts = append(opts, config.OptDatabaseHost(s))
	}
	if s := os.Getenv("GIZI_DATABASE_PORT"); s != "" {
		if i, err := strconv.Atoi(s); err == nil {
			opts = append(opts, config.OptDatabasePort(i))
		}
	}
	if s := os.Getenv("GIZI_DATABASE_USER"); s != "" {
		opts = append(opts, config.OptDatabaseUser(s))
	}
	if s := os.Getenv("GIZI_DATABASE_PASSWORD"); s != "" {
		opts = append(opts, config.OptDatabasePassword(s))
	}
	opts = append(opts,
		config.OptDatabaseDriver("postgres"),
		config.OptDatabaseDatabase(TestDatabaseName),
	)
	cfg.Update(opts)
	return &cfg.Database
}

// Clock returns a clock that starts at t and advances by step on every
// call. It is not safe for concurrent use.
func Clock(t time.Time, step time.Duration) func() time.Time {
	cur := t.Add(-step)
	return func() time.Time {
		cur = cur.Add(step)
		return cur
	}
}
