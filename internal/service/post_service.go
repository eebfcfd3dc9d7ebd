// Package service holds the business logic layered between the HTTP
// handlers and the repositories.
package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"chirp/internal/cache"
	"chirp/internal/middleware"
	"chirp/internal/models"
	"chirp/internal/notifications"
	"chirp/internal/repository"
)

// TrendingWindow is how far back hashtag activity counts as trending.
const TrendingWindow = 7 * 24 * time.Hour

// TrendingLimit caps the trending hashtag list.
const TrendingLimit = 20

// HomeFeedLimit caps the home feed.
const HomeFeedLimit = 50

// CreatePostInput carries the client-settable fields for a new post.
type CreatePostInput struct {
	UserID       uint
	Content      string
	ParentPostID *uint
	RetweetOfID  *uint
	CommunityID  *uint
}

// PostService implements post creation, retweets, threads, feeds and the
// hashtag/mention side effects of posting.
type PostService struct {
	posts     repository.PostRepository
	users     repository.UserRepository
	hashtags  repository.HashtagRepository
	follows   repository.FollowRepository
	community repository.CommunityRepository
	notifier  *notifications.Notifier
}

func NewPostService(
	posts repository.PostRepository,
	users repository.UserRepository,
	hashtags repository.HashtagRepository,
	follows repository.FollowRepository,
	community repository.CommunityRepository,
	notifier *notifications.Notifier,
) *PostService {
	return &PostService{
		posts:     posts,
		users:     users,
		hashtags:  hashtags,
		follows:   follows,
		community: community,
		notifier:  notifier,
	}
}

// Create validates and persists a new post. The thread root is resolved
// here, once; quote-tweet status is derived from the combination of
// retweet target and content. After the post is committed, hashtags and
// mentions are extracted from its content and linked, and notifications
// go out to the parent author, the retweeted author and every mentioned
// user.
func (s *PostService) Create(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	content := strings.TrimSpace(in.Content)
	if utf8.RuneCountInString(content) > models.MaxPostContentLen {
		return nil, models.NewValidationError("post content exceeds 280 characters")
	}
	if content == "" && in.RetweetOfID == nil {
		return nil, models.NewValidationError("post content cannot be empty")
	}

	post := &models.Post{
		UserID:       in.UserID,
		Content:      content,
		ParentPostID: in.ParentPostID,
		RetweetOfID:  in.RetweetOfID,
		CommunityID:  in.CommunityID,
		IsQuoteTweet: in.RetweetOfID != nil && content != "",
	}

	var parent *models.Post
	if in.ParentPostID != nil {
		var err error
		parent, err = s.posts.GetByID(ctx, *in.ParentPostID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, models.NewNotFoundError("parent post", *in.ParentPostID)
		}
		if parent.RootPostID != nil {
			post.RootPostID = parent.RootPostID
		} else {
			post.RootPostID = &parent.ID
		}
	}

	var target *models.Post
	if in.RetweetOfID != nil {
		var err error
		target, err = s.posts.GetByID(ctx, *in.RetweetOfID)
		if err != nil {
			return nil, err
		}
		if target == nil {
			return nil, models.NewNotFoundError("post", *in.RetweetOfID)
		}
		if !post.IsQuoteTweet {
			existing, err := s.posts.FindPureRetweet(ctx, in.UserID, *in.RetweetOfID)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return nil, models.NewConflictError("Already retweeted")
			}
		}
	}

	if in.CommunityID != nil {
		community, err := s.community.GetByID(ctx, *in.CommunityID)
		if err != nil {
			return nil, err
		}
		if community == nil {
			return nil, models.NewNotFoundError("community", *in.CommunityID)
		}
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	s.attachEntities(ctx, post, true)
	s.fanOut(ctx, post, parent, target)

	if in.ParentPostID != nil {
		cache.Invalidate(ctx, cache.PostKey(*in.ParentPostID))
	}
	if in.RetweetOfID != nil {
		cache.Invalidate(ctx, cache.PostKey(*in.RetweetOfID))
	}

	return post, nil
}

// Retweet creates a pure retweet of the target post.
func (s *PostService) Retweet(ctx context.Context, userID, postID uint) (*models.Post, error) {
	return s.Create(ctx, CreatePostInput{UserID: userID, RetweetOfID: &postID})
}

// Unretweet removes the caller's pure retweet of the target post. Quote
// tweets are regular posts and are not affected.
func (s *PostService) Unretweet(ctx context.Context, userID, postID uint) error {
	existing, err := s.posts.FindPureRetweet(ctx, userID, postID)
	if err != nil {
		return err
	}
	if existing == nil {
		return models.NewConflictError("Not retweeted")
	}
	if err := s.posts.HardDeleteRetweet(ctx, existing); err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.PostKey(postID), cache.PostKey(existing.ID))
	return nil
}

// Delete soft-deletes a post. Only the author or an admin may delete.
func (s *PostService) Delete(ctx context.Context, userID uint, isAdmin bool, postID uint) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return models.NewNotFoundError("post", postID)
	}
	if post.UserID != userID && !isAdmin {
		return models.NewUnauthorizedError("you can only delete your own posts")
	}
	if err := s.posts.SoftDelete(ctx, post); err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.PostKey(postID))
	if post.ParentPostID != nil {
		cache.Invalidate(ctx, cache.PostKey(*post.ParentPostID))
	}
	if post.RetweetOfID != nil {
		cache.Invalidate(ctx, cache.PostKey(*post.RetweetOfID))
	}
	return nil
}

// Update edits a post's content. Only the author may edit; pure retweets
// carry no content of their own. Hashtags and mentions found in the new
// content are linked, but already-mentioned users are not notified again.
func (s *PostService) Update(ctx context.Context, userID, postID uint, content string) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, models.NewNotFoundError("post", postID)
	}
	if post.UserID != userID {
		return nil, models.NewUnauthorizedError("you can only edit your own posts")
	}
	if post.RetweetOfID != nil && !post.IsQuoteTweet {
		return nil, models.NewValidationError("retweets cannot be edited")
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("post content cannot be empty")
	}
	if utf8.RuneCountInString(content) > models.MaxPostContentLen {
		return nil, models.NewValidationError("post content exceeds 280 characters")
	}

	post.Content = content
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	s.attachEntities(ctx, post, false)
	cache.Invalidate(ctx, cache.PostKey(postID))
	return post, nil
}

// Get returns a single post, cache-aside.
func (s *PostService) Get(ctx context.Context, postID uint) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(postID), &post, cache.PostTTL, func() error {
		p, err := s.posts.GetByID(ctx, postID)
		if err != nil {
			return err
		}
		if p == nil {
			return models.NewNotFoundError("post", postID)
		}
		post = *p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// HomeFeed returns the newest posts by the user and everyone they follow.
func (s *PostService) HomeFeed(ctx context.Context, userID uint) ([]models.Post, error) {
	ids, err := s.follows.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids = append(ids, userID)
	return s.posts.ByUsers(ctx, ids, HomeFeedLimit)
}

// ByHashtag returns posts tagged with the given hashtag, newest first.
func (s *PostService) ByHashtag(ctx context.Context, tag string, limit, offset int) ([]models.Post, error) {
	hashtag, err := s.hashtags.GetByTag(ctx, tag)
	if err != nil {
		return nil, err
	}
	if hashtag == nil {
		return []models.Post{}, nil
	}
	return s.posts.ByHashtag(ctx, hashtag.ID, limit, offset)
}

// Mentioning returns posts that mention the given username, newest first.
func (s *PostService) Mentioning(ctx context.Context, username string, limit, offset int) ([]models.Post, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("user", username)
	}
	return s.posts.ByMention(ctx, user.ID, limit, offset)
}

// Thread returns the root post and all of its descendants, oldest first.
func (s *PostService) Thread(ctx context.Context, postID uint) ([]models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, models.NewNotFoundError("post", postID)
	}
	rootID := post.ID
	if post.RootPostID != nil {
		rootID = *post.RootPostID
	}
	return s.posts.Thread(ctx, rootID)
}

// TrendingHashtags returns the most used hashtags with activity in the
// last week, cache-aside.
func (s *PostService) TrendingHashtags(ctx context.Context) ([]models.Hashtag, error) {
	var tags []models.Hashtag
	err := cache.Aside(ctx, cache.TrendingHashtagsKey, &tags, cache.TrendingTTL, func() error {
		fetched, err := s.hashtags.Trending(ctx, time.Now().Add(-TrendingWindow), TrendingLimit)
		if err != nil {
			return err
		}
		tags = fetched
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// attachEntities extracts hashtags and mentions from the committed post's
// content and links them. Failures here are logged, not surfaced; the post
// itself is already stored. notifyMentions is false on edits so users
// already mentioned are not pinged again.
func (s *PostService) attachEntities(ctx context.Context, post *models.Post, notifyMentions bool) {
	if post.Content == "" {
		return
	}
	if tags := models.ExtractHashtagOccurrences(post.Content); len(tags) > 0 {
		if err := s.hashtags.AttachToPost(ctx, post.ID, tags); err != nil {
			middleware.Logger.ErrorContext(ctx, "failed to attach hashtags", "post_id", post.ID, "error", err)
		}
		cache.Invalidate(ctx, cache.TrendingHashtagsKey)
	}

	names := models.ExtractMentions(post.Content)
	if len(names) == 0 {
		return
	}
	users, err := s.users.GetUsernames(ctx, names)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to resolve mentions", "post_id", post.ID, "error", err)
		return
	}
	seen := make(map[uint]bool, len(users))
	var mentions []models.Mention
	for i, name := range names {
		user, ok := users[name]
		if !ok || seen[user.ID] {
			continue
		}
		seen[user.ID] = true
		mentions = append(mentions, models.Mention{
			PostID:          post.ID,
			MentionedUserID: user.ID,
			MentionerUserID: post.UserID,
			Position:        i,
		})
	}
	if err := s.posts.AttachMentions(ctx, mentions); err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to attach mentions", "post_id", post.ID, "error", err)
		return
	}
	if notifyMentions {
		for _, m := range mentions {
			s.notify(ctx, m.MentionedUserID, post.UserID, models.VerbMentioned, post.ID)
		}
	}
}

// fanOut notifies the parent author on replies and the target author on
// retweets and quotes. Self-notifications are filtered by the notifier.
func (s *PostService) fanOut(ctx context.Context, post *models.Post, parent, target *models.Post) {
	if parent != nil {
		s.notify(ctx, parent.UserID, post.UserID, models.VerbReplied, post.ID)
	}
	if target != nil {
		verb := models.VerbRetweeted
		if post.IsQuoteTweet {
			verb = models.VerbQuoted
		}
		s.notify(ctx, target.UserID, post.UserID, verb, target.ID)
	}
}

func (s *PostService) notify(ctx context.Context, userID, actorID uint, verb string, postID uint) {
	actor := actorID
	target := postID
	n := &models.Notification{
		UserID:     userID,
		ActorID:    &actor,
		Verb:       verb,
		TargetType: "post",
		TargetID:   &target,
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to create notification",
			"user_id", userID, "verb", verb, "error", err)
	}
}
