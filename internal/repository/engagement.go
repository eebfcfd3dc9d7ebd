package repository

import (
	"context"
	"errors"

	"chirp/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EngagementRepository defines the interface for like and bookmark operations.
// Like/Unlike keep the post's like_count in step with the rows; bookmarks
// maintain bookmark_count the same way.
type EngagementRepository interface {
	Like(ctx context.Context, userID, postID uint) error
	Unlike(ctx context.Context, userID, postID uint) error
	HasLiked(ctx context.Context, userID, postID uint) (bool, error)
	LikedPosts(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error)
	Bookmark(ctx context.Context, userID, postID uint) error
	Unbookmark(ctx context.Context, userID, postID uint) error
	BookmarkedPosts(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error)
}

type engagementRepository struct {
	db *gorm.DB
}

// NewEngagementRepository creates a new engagement repository
func NewEngagementRepository(db *gorm.DB) EngagementRepository {
	return &engagementRepository{db: db}
}

// Like records the like and increments like_count. Liking a post twice
// returns a conflict error and leaves the counter untouched.
func (r *engagementRepository) Like(ctx context.Context, userID, postID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		like := models.Like{UserID: userID, PostID: postID}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like)
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewConflictError("post already liked")
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("like_count", gorm.Expr("like_count + ?", 1)).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
}

func (r *engagementRepository) Unlike(ctx context.Context, userID, postID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("like for post", postID)
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("like_count", gorm.Expr("like_count - ?", 1)).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
}

func (r *engagementRepository) HasLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var like models.Like
	err := r.db.WithContext(ctx).Where("user_id = ? AND post_id = ?", userID, postID).First(&like).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, models.NewInternalError(err)
	}
	return true, nil
}

func (r *engagementRepository) LikedPosts(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Preload("User").Preload("User.Profile").
		Joins("JOIN likes ON likes.post_id = posts.id").
		Where("likes.user_id = ? AND posts.is_deleted = ?", userID, false).
		Order("likes.created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *engagementRepository) Bookmark(ctx context.Context, userID, postID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bookmark := models.Bookmark{UserID: userID, PostID: postID}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&bookmark)
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewConflictError("post already bookmarked")
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("bookmark_count", gorm.Expr("bookmark_count + ?", 1)).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
}

func (r *engagementRepository) Unbookmark(ctx context.Context, userID, postID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Bookmark{})
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("bookmark for post", postID)
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("bookmark_count", gorm.Expr("bookmark_count - ?", 1)).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
}

func (r *engagementRepository) BookmarkedPosts(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Preload("User").Preload("User.Profile").
		Joins("JOIN bookmarks ON bookmarks.post_id = posts.id").
		Where("bookmarks.user_id = ? AND posts.is_deleted = ?", userID, false).
		Order("bookmarks.created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}
