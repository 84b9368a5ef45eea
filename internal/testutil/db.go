// Package testutil provides an in-memory database and fixtures shared by the tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rijalsawan/photography-sub000/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database with every table migrated.
// The pool is pinned to one connection so all statements see the same database;
// code under test must therefore use the transaction handle it was given.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=private", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// CreateUser inserts a user whose id and username are both username.
func CreateUser(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{ID: username, Username: username, Name: username, Email: username + "@example.com"}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreatePhoto inserts a photo owned by ownerID.
func CreatePhoto(t testing.TB, db *gorm.DB, ownerID, title string) *models.Photo {
	t.Helper()
	p := &models.Photo{
		UserID: ownerID,
		URL:    "https://img.example.com/" + uuid.NewString() + ".jpg",
		Title:  title,
	}
	require.NoError(t, db.Omit("User").Create(p).Error)
	return p
}

// ReloadPhoto reads the photo row back, counters included.
func ReloadPhoto(t testing.TB, db *gorm.DB, id string) *models.Photo {
	t.Helper()
	var p models.Photo
	require.NoError(t, db.First(&p, "id = ?", id).Error)
	return &p
}

// Notifications returns every notification addressed to recipientID, newest first.
func Notifications(t testing.TB, db *gorm.DB, recipientID string) []models.Notification {
	t.Helper()
	var out []models.Notification
	require.NoError(t, db.Where("user_id = ?", recipientID).Order("updated_at DESC").Find(&out).Error)
	return out
}

// Count returns the number of rows of model matching the optional condition.
func Count(t testing.TB, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

// DropNotifications removes the notifications table so every notification write fails.
func DropNotifications(t testing.TB, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Migrator().DropTable(&models.Notification{}))
}
