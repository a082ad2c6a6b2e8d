// Package storetest provides an in-memory SQLite store for tests.
package storetest

import (
	"testing"

	"github.com/zulandar/taskyard/internal/config"
	"github.com/zulandar/taskyard/internal/db"
	"github.com/zulandar/taskyard/internal/logging"
	"github.com/zulandar/taskyard/internal/store"
)

// New opens a migrated in-memory SQLite database wrapped in a GormStore.
func New(t *testing.T) *store.GormStore {
	t.Helper()
	logging.Discard()
	gormDB, err := db.Connect(config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return store.NewGormStore(gormDB)
}
