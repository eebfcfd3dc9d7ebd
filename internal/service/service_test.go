package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"chirp/internal/database"
	"chirp/internal/models"
	"chirp/internal/notifications"
	"chirp/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq int

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbSeq++
	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared", dbSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.AllModels()...))
	return db
}

func newTestPostService(t *testing.T, db *gorm.DB) *PostService {
	t.Helper()
	notifier := notifications.NewNotifier(repository.NewNotificationRepository(db), nil)
	return NewPostService(
		repository.NewPostRepository(db),
		repository.NewUserRepository(db),
		repository.NewHashtagRepository(db),
		repository.NewFollowRepository(db),
		repository.NewCommunityRepository(db),
		notifier,
	)
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	repo := repository.NewUserRepository(db)
	user := &models.User{Username: username, Email: username + "@example.com", Password: "hashed"}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

// recordingMailer captures sends for assertions.
type recordingMailer struct {
	mu    sync.Mutex
	sends []string
}

func (m *recordingMailer) Send(_ context.Context, to, subject, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sends = append(m.sends, to+": "+subject)
	return nil
}
