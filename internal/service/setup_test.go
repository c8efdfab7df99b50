package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/longform/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "-", " ", "-").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s-%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	gdb, err := db.Open(sqlite.Open(dsn), logger.Silent)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func modelID(id uint) gorm.Model { return gorm.Model{ID: id} }

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func statusPtr(s db.EntryStatus) *db.EntryStatus { return &s }
