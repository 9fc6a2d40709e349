// Package testutil holds helpers shared by package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"supportdesk/internal/config"
	"supportdesk/internal/db"
)

// NewDB returns a migrated sqlite database in a temp directory. It is closed
// when the test ends.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.Init(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("db.Init: %v", err)
	}
	t.Cleanup(func() { db.Close(gdb) })
	return gdb
}

func Ptr[T any](v T) *T {
	return &v
}
