package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"chirp/internal/models"
	"chirp/internal/notifications"
	"chirp/internal/repository"
	"chirp/internal/service"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// Seeder populates the database through the same repositories the API
// uses, so seeded data carries correct counters, hashtags and mentions.
type Seeder struct {
	db       *gorm.DB
	factory  *Factory
	posts    repository.PostRepository
	users    repository.UserRepository
	hashtags repository.HashtagRepository
	follows  repository.FollowRepository
	likes    repository.EngagementRepository
	messages repository.MessageRepository
}

// NewSeeder creates a seeder bound to the given database.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{
		db:       db,
		factory:  NewFactory(db),
		posts:    repository.NewPostRepository(db),
		users:    repository.NewUserRepository(db),
		hashtags: repository.NewHashtagRepository(db),
		follows:  repository.NewFollowRepository(db),
		likes:    repository.NewEngagementRepository(db),
		messages: repository.NewMessageRepository(db),
	}
}

// ClearAll wipes every seeded table, children first.
func (s *Seeder) ClearAll() error {
	tables := []interface{}{
		&models.Notification{}, &models.Message{}, &models.CommunityMember{},
		&models.Community{}, &models.Like{}, &models.Bookmark{},
		&models.Mention{}, &models.PostHashtag{}, &models.Hashtag{},
		&models.Follow{}, &models.Post{}, &models.Profile{}, &models.User{},
	}
	for _, table := range tables {
		if err := s.db.Unscoped().Where("1 = 1").Delete(table).Error; err != nil {
			return fmt.Errorf("failed to clear table %T: %w", table, err)
		}
	}
	return nil
}

// Seed populates the database with test data
func (s *Seeder) Seed(opts Options) error {
	ctx := context.Background()
	log.Printf("Seeding %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return err
		}
	}

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("created %d users", len(users))

	// Follow mesh: each user follows a handful of others.
	for _, user := range users {
		for i := 0; i < 3 && len(users) > 1; i++ {
			target := users[rand.Intn(len(users))]
			if target.ID == user.ID {
				continue
			}
			if err := s.follows.Create(ctx, user.ID, target.ID); err != nil {
				continue // duplicate edges are fine
			}
		}
	}

	// Posts go through the service-level helpers so hashtags, mentions
	// and counters come out consistent.
	postSvc := s.postService()
	created := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := users[rand.Intn(len(users))]
		post, err := postSvc.Create(ctx, service.CreatePostInput{
			UserID:  author.ID,
			Content: s.factory.PostContent(users),
		})
		if err != nil {
			return fmt.Errorf("failed to create post: %w", err)
		}
		created = append(created, post)

		// Occasionally reply to an earlier post.
		if len(created) > 1 && rand.Intn(4) == 0 {
			parent := created[rand.Intn(len(created)-1)]
			replier := users[rand.Intn(len(users))]
			_, err := postSvc.Create(ctx, service.CreatePostInput{
				UserID:       replier.ID,
				Content:      s.factory.PostContent(users),
				ParentPostID: &parent.ID,
			})
			if err != nil {
				return fmt.Errorf("failed to create reply: %w", err)
			}
		}
	}
	log.Printf("created %d posts", len(created))

	// Likes
	for _, post := range created {
		for i := 0; i < rand.Intn(4); i++ {
			_ = s.likes.Like(ctx, users[rand.Intn(len(users))].ID, post.ID)
		}
	}

	// Communities
	for i := 0; i < 3 && len(users) > 0; i++ {
		if _, err := s.factory.CreateCommunity(users[rand.Intn(len(users))]); err != nil {
			return fmt.Errorf("failed to create community: %w", err)
		}
	}

	// A few direct messages between random pairs.
	for i := 0; i < opts.NumUsers && len(users) > 1; i++ {
		a := users[rand.Intn(len(users))]
		b := users[rand.Intn(len(users))]
		if a.ID == b.ID {
			continue
		}
		msg := &models.Message{SenderID: a.ID, ReceiverID: b.ID, Content: s.factory.PostContent(nil)}
		if err := s.messages.Create(ctx, msg); err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}
	}

	return nil
}

func (s *Seeder) postService() *service.PostService {
	notifier := notifications.NewNotifier(repository.NewNotificationRepository(s.db), nil)
	return service.NewPostService(s.posts, s.users, s.hashtags, s.follows,
		repository.NewCommunityRepository(s.db), notifier)
}
