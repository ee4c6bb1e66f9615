package main

import (
	"fmt"
	"testing"

	"github.com/gilbertoneto04/betmanagerpro/schema"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestSvc builds a service over a private in-memory database with the
// default configuration seeded. No kafka: notifications are dropped.
func newTestSvc(t *testing.T) *dashSvc {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %s", err)
	}
	err = db.AutoMigrate(&User{}, &Task{}, &Account{}, &Pack{}, &PixKey{}, &LogEntry{}, &House{}, &TaskTypeConfig{})
	if err != nil {
		t.Fatalf("failed to migrate test database: %s", err)
	}
	seedDefaultConfig(db)

	return &dashSvc{
		logger: zap.NewNop().Sugar(),
		db:     db,
	}
}

func adminActor() *User {
	return &User{PublicId: "admin-1", Login: "admin", Name: "Admin", RoleID: schema.RoleAdmin}
}

func userActor() *User {
	return &User{PublicId: "user-1", Login: "user", Name: "Operator", RoleID: schema.RoleUser}
}

func kfbActor() *User {
	return &User{PublicId: "kfb-1", Login: "kfb", Name: "KFB", RoleID: schema.RoleKFB}
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("failed to count rows: %s", err)
	}
	return n
}

// lastLogAction returns the most recent activity log action text
func lastLogAction(t *testing.T, db *gorm.DB) string {
	t.Helper()
	var entry LogEntry
	result := db.Order("id DESC").First(&entry)
	if result.RowsAffected != 1 {
		t.Fatalf("expected at least one log entry")
	}
	return entry.Action
}
