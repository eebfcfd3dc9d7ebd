package repository

import (
	"context"
	"fmt"
	"testing"

	"chirp/internal/database"
	"chirp/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq int

// openTestDB returns a fresh in-memory database with the full schema.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbSeq++
	dsn := fmt.Sprintf("file:repo_test_%d?mode=memory&cache=shared", dbSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.AllModels()...))
	return db
}

// createTestUser persists a user with an empty profile.
func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	repo := NewUserRepository(db)
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

// createTestPost persists a plain post for the user through the repository.
func createTestPost(t *testing.T, db *gorm.DB, userID uint, content string) *models.Post {
	t.Helper()
	repo := NewPostRepository(db)
	post := &models.Post{UserID: userID, Content: content}
	require.NoError(t, repo.Create(context.Background(), post))
	return post
}

func getPost(t *testing.T, db *gorm.DB, id uint) *models.Post {
	t.Helper()
	var post models.Post
	require.NoError(t, db.First(&post, id).Error)
	return &post
}

func getProfile(t *testing.T, db *gorm.DB, userID uint) *models.Profile {
	t.Helper()
	var profile models.Profile
	require.NoError(t, db.Where("user_id = ?", userID).First(&profile).Error)
	return &profile
}
