package testutil

import (
	"database/sql"
	"os"
	"testing"

	"github.com/ragstack/ragd/internal/config"
	"github.com/ragstack/ragd/internal/db"
)

// OpenTestDB connects to the postgres instance named by TEST_DB_HOST. The
// database needs the pgvector extension available.
func OpenTestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set, skipping postgres test")
	}
	conn, err := db.Open(config.DatabaseConfig{
		Host:     host,
		Port:     5432,
		User:     "ragd",
		Password: "ragd_pass",
		DBName:   "ragd_test",
		SSLMode:  "disable",
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(conn); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return conn, func() {
		_ = conn.Close()
	}
}
