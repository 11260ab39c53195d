// Package testutil holds helpers shared by package tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rpupo63/blog-backend/models"
)

// OpenDB returns a migrated, empty in-memory sqlite database private to t.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, models.Migrate(db))
	return db
}

// SeedUser inserts a user with a placeholder password hash.
func SeedUser(t *testing.T, db *gorm.DB, name, email string) *models.User {
	t.Helper()

	user := &models.User{Name: name, Email: email, Password: "unused"}
	require.NoError(t, db.Create(user).Error)
	return user
}

// SeedPost inserts a post authored by author.
func SeedPost(t *testing.T, db *gorm.DB, author *models.User, title string) *models.BlogPost {
	t.Helper()

	post := &models.BlogPost{
		Title:    title,
		Subtitle: title + " subtitle",
		Body:     "<p>" + title + "</p>",
		ImgURL:   "https://images.example/" + uuid.NewString() + ".jpg",
		Author:   author.Name,
		AuthorID: author.ID,
		Date:     "April 05, 2024",
	}
	require.NoError(t, db.Omit("Comments", "AuthorUser").Create(post).Error)
	return post
}
