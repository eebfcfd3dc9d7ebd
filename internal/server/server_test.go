package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"chirp/internal/config"
	"chirp/internal/database"
	"chirp/internal/mailer"
	"chirp/internal/models"
	"chirp/internal/notifications"
	"chirp/internal/repository"
	"chirp/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq int

// newTestServer builds a Server over a fresh in-memory database, without
// the Prometheus middleware so tests can create servers freely.
func newTestServer(t *testing.T) (*Server, *gorm.DB) {
	t.Helper()
	dbSeq++
	dsn := fmt.Sprintf("file:server_test_%d?mode=memory&cache=shared", dbSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.AllModels()...))

	cfg := &config.Config{JWTSecret: "test-secret", Env: "test"}
	s := &Server{
		config:           cfg,
		db:               db,
		userRepo:         repository.NewUserRepository(db),
		postRepo:         repository.NewPostRepository(db),
		hashtagRepo:      repository.NewHashtagRepository(db),
		engagementRepo:   repository.NewEngagementRepository(db),
		followRepo:       repository.NewFollowRepository(db),
		notificationRepo: repository.NewNotificationRepository(db),
		communityRepo:    repository.NewCommunityRepository(db),
		messageRepo:      repository.NewMessageRepository(db),
	}
	s.notifier = notifications.NewNotifier(s.notificationRepo, nil)
	s.postService = service.NewPostService(
		s.postRepo, s.userRepo, s.hashtagRepo, s.followRepo, s.communityRepo, s.notifier)
	s.accountService = service.NewAccountService(
		s.userRepo, mailer.NewLogMailer("test@chirp.local"), cfg.JWTSecret, "http://localhost")
	return s, db
}

// newTestApp mounts the full route table with a stub auth middleware that
// reads the user ID from the X-Test-User header.
func newTestApp(s *Server) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if raw := c.Get("X-Test-User"); raw != "" {
			var id uint
			fmt.Sscanf(raw, "%d", &id)
			c.Locals("userID", id)
		}
		return c.Next()
	})
	registerTestRoutes(app, s)
	return app
}

// registerTestRoutes mirrors SetupRoutes minus metrics and rate limiting.
func registerTestRoutes(app *fiber.App, s *Server) {
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", s.Register)
	auth.Post("/login", s.Login)
	auth.Post("/password/reset", s.RequestPasswordReset)
	auth.Post("/password/reset/confirm", s.ConfirmPasswordReset)
	auth.Post("/verify-email", s.VerifyEmail)
	auth.Post("/verify-email/resend", s.ResendVerification)

	posts := api.Group("/posts")
	posts.Post("/", s.CreatePost)
	posts.Get("/", s.GetPosts)
	posts.Get("/home", s.GetHomeFeed)
	posts.Get("/trending-hashtags", s.GetTrendingHashtags)
	posts.Get("/hashtag/:tag", s.GetPostsByHashtag)
	posts.Get("/mentions/:username", s.GetPostsByMention)
	posts.Post("/:id/retweet", s.Retweet)
	posts.Post("/:id/unretweet", s.Unretweet)
	posts.Delete("/:id/retweet", s.Unretweet)
	posts.Get("/:id/thread", s.GetThread)
	posts.Get("/:id/replies", s.GetReplies)
	posts.Patch("/:id", s.UpdatePost)
	posts.Delete("/:id", s.DeletePost)
	posts.Get("/:id", s.GetPost)

	users := api.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	users.Get("/:id/posts", s.GetUserPosts)
	users.Get("/:id/followers", s.GetFollowers)
	users.Get("/:id/following", s.GetFollowing)
	users.Get("/:id", s.GetUserProfile)

	likes := api.Group("/likes")
	likes.Post("/:postId", s.LikePost)
	likes.Delete("/:postId", s.UnlikePost)
	likes.Get("/", s.GetLikedPosts)

	bookmarks := api.Group("/bookmarks")
	bookmarks.Post("/:postId", s.BookmarkPost)
	bookmarks.Delete("/:postId", s.UnbookmarkPost)
	bookmarks.Get("/", s.GetBookmarkedPosts)

	follows := api.Group("/follows")
	follows.Post("/:userId", s.FollowUser)
	follows.Delete("/:userId", s.UnfollowUser)

	communities := api.Group("/communities")
	communities.Post("/", s.CreateCommunity)
	communities.Get("/", s.GetCommunities)
	communities.Get("/by-name/:name", s.GetCommunityByName)
	communities.Post("/:id/posts", s.CreateCommunityPost)
	communities.Post("/:id/join", s.JoinCommunity)
	communities.Delete("/:id/join", s.LeaveCommunity)
	communities.Get("/:id/posts", s.GetCommunityPosts)
	communities.Get("/:id/members", s.GetCommunityMembers)
	communities.Get("/:id", s.GetCommunity)

	messages := api.Group("/messages")
	messages.Get("/:userId", s.GetConversation)
	messages.Post("/:userId", s.SendMessage)
	messages.Post("/:userId/read", s.MarkConversationRead)

	notificationsGroup := api.Group("/notifications")
	notificationsGroup.Get("/", s.GetNotifications)
	notificationsGroup.Get("/unread-count", s.GetUnreadNotificationCount)
	notificationsGroup.Post("/mark-read/:id", s.MarkNotificationRead)
	notificationsGroup.Post("/mark-all-read", s.MarkAllNotificationsRead)

	api.Get("/search", s.Search)
}

func createServerTestUser(t *testing.T, s *Server, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", Password: "hashed"}
	require.NoError(t, s.userRepo.Create(context.Background(), user))
	return user
}

func doJSON(t *testing.T, app *fiber.App, method, path string, userID uint, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != 0 {
		req.Header.Set("X-Test-User", fmt.Sprintf("%d", userID))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}
