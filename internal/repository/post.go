package repository

import (
	"context"
	"errors"
	"time"

	"chirp/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostFilter narrows List queries. Zero values mean "no filter".
type PostFilter struct {
	UserID      uint
	CommunityID uint
	RepliesOnly bool
	TopLevel    bool
}

// PostRepository defines the interface for post data operations.
// Create and delete operations maintain the denormalized counters on
// parent posts and author profiles inside the same transaction as the
// row change itself.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, filter PostFilter, limit, offset int) ([]models.Post, error)
	ByUsers(ctx context.Context, userIDs []uint, limit int) ([]models.Post, error)
	ByHashtag(ctx context.Context, hashtagID uint, limit, offset int) ([]models.Post, error)
	ByMention(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error)
	Thread(ctx context.Context, rootID uint) ([]models.Post, error)
	Replies(ctx context.Context, parentID uint, limit, offset int) ([]models.Post, error)
	FindPureRetweet(ctx context.Context, userID, retweetOfID uint) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	SoftDelete(ctx context.Context, post *models.Post) error
	HardDeleteRetweet(ctx context.Context, post *models.Post) error
	PurgeDeleted(ctx context.Context, olderThan time.Time) (int64, error)
	Search(ctx context.Context, query string, limit, offset int) ([]models.Post, error)
	AttachMentions(ctx context.Context, mentions []models.Mention) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// Create inserts the post and bumps the affected counters atomically.
// A reply increments its parent's reply_count, a retweet increments the
// target's retweet_count or quote_count, and the author's posts_count
// always goes up by one.
func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		if post.ParentPostID != nil {
			if err := tx.Model(&models.Post{}).Where("id = ?", *post.ParentPostID).
				UpdateColumn("reply_count", gorm.Expr("reply_count + ?", 1)).Error; err != nil {
				return err
			}
		}
		if post.RetweetOfID != nil {
			column := "retweet_count"
			if post.IsQuoteTweet {
				column = "quote_count"
			}
			if err := tx.Model(&models.Post{}).Where("id = ?", *post.RetweetOfID).
				UpdateColumn(column, gorm.Expr(column+" + ?", 1)).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.Profile{}).Where("user_id = ?", post.UserID).
			UpdateColumn("posts_count", gorm.Expr("posts_count + ?", 1)).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// GetByID returns the post or nil for unknown or soft-deleted IDs.
func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("User").Preload("User.Profile").
		Preload("RetweetOf").Preload("RetweetOf.User").
		Where("is_deleted = ?", false).
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, filter PostFilter, limit, offset int) ([]models.Post, error) {
	q := r.visible(ctx).Order("created_at DESC").Limit(limit).Offset(offset)
	if filter.UserID != 0 {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.CommunityID != 0 {
		q = q.Where("community_id = ?", filter.CommunityID)
	}
	if filter.RepliesOnly {
		q = q.Where("parent_post_id IS NOT NULL")
	}
	if filter.TopLevel {
		q = q.Where("parent_post_id IS NULL")
	}
	var posts []models.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// ByUsers returns the newest posts authored by any of the given users.
func (r *postRepository) ByUsers(ctx context.Context, userIDs []uint, limit int) ([]models.Post, error) {
	if len(userIDs) == 0 {
		return []models.Post{}, nil
	}
	var posts []models.Post
	err := r.visible(ctx).
		Where("user_id IN ?", userIDs).
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ByHashtag(ctx context.Context, hashtagID uint, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	err := r.visible(ctx).
		Joins("JOIN post_hashtags ON post_hashtags.post_id = posts.id").
		Where("post_hashtags.hashtag_id = ?", hashtagID).
		Order("posts.created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ByMention(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	err := r.visible(ctx).
		Joins("JOIN mentions ON mentions.post_id = posts.id").
		Where("mentions.mentioned_user_id = ?", userID).
		Order("posts.created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// Thread returns the root post followed by every descendant reply in
// chronological order. Descendants all carry the same root_post_id, so a
// single query suffices.
func (r *postRepository) Thread(ctx context.Context, rootID uint) ([]models.Post, error) {
	var posts []models.Post
	err := r.visible(ctx).
		Where("id = ? OR root_post_id = ?", rootID, rootID).
		Order("created_at ASC").
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Replies(ctx context.Context, parentID uint, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	err := r.visible(ctx).
		Where("parent_post_id = ?", parentID).
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// FindPureRetweet looks up an existing content-free retweet of the target
// by the user. Quote tweets do not count.
func (r *postRepository) FindPureRetweet(ctx context.Context, userID, retweetOfID uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND retweet_of_id = ? AND is_quote_tweet = ? AND is_deleted = ?",
			userID, retweetOfID, false, false).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

// Update persists a content edit. Only the content column (plus
// updated_at) is written; the denormalized counters are maintained by
// atomic increments and must not be overwritten with a read-time snapshot.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Model(post).
		Select("content").Updates(models.Post{Content: post.Content}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// SoftDelete marks the post deleted and reverses the counter bumps its
// creation applied, in one transaction.
func (r *postRepository) SoftDelete(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).Where("id = ?", post.ID).
			UpdateColumn("is_deleted", true).Error; err != nil {
			return err
		}
		return r.reverseCounters(tx, post)
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	post.IsDeleted = true
	return nil
}

// HardDeleteRetweet removes a pure retweet row entirely and decrements the
// target's retweet_count and the author's posts_count.
func (r *postRepository) HardDeleteRetweet(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Delete(&models.Post{}, post.ID).Error; err != nil {
			return err
		}
		return r.reverseCounters(tx, post)
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) reverseCounters(tx *gorm.DB, post *models.Post) error {
	if post.ParentPostID != nil {
		if err := tx.Model(&models.Post{}).Where("id = ?", *post.ParentPostID).
			UpdateColumn("reply_count", gorm.Expr("reply_count - ?", 1)).Error; err != nil {
			return err
		}
	}
	if post.RetweetOfID != nil {
		column := "retweet_count"
		if post.IsQuoteTweet {
			column = "quote_count"
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", *post.RetweetOfID).
			UpdateColumn(column, gorm.Expr(column+" - ?", 1)).Error; err != nil {
			return err
		}
	}
	return tx.Model(&models.Profile{}).Where("user_id = ?", post.UserID).
		UpdateColumn("posts_count", gorm.Expr("posts_count - ?", 1)).Error
}

// PurgeDeleted hard-removes posts that have been soft-deleted since before
// the cutoff. Counters were already adjusted at soft-delete time, so no
// further bookkeeping happens here.
func (r *postRepository) PurgeDeleted(ctx context.Context, olderThan time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Unscoped().
		Where("is_deleted = ? AND updated_at < ?", true, olderThan).
		Delete(&models.Post{})
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *postRepository) Search(ctx context.Context, query string, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	like := "%" + query + "%"
	err := r.visible(ctx).
		Where("lower(content) LIKE lower(?)", like).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// AttachMentions records mention rows for a post. A user mentioned twice
// in one post is stored once.
func (r *postRepository) AttachMentions(ctx context.Context, mentions []models.Mention) error {
	if len(mentions) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&mentions).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) visible(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Post{}).
		Preload("User").Preload("User.Profile").
		Preload("RetweetOf").
		Where("posts.is_deleted = ?", false)
}
