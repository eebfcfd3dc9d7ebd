package repository

import (
	"context"
	"errors"
	"time"

	"chirp/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HashtagRepository defines the interface for hashtag data operations
type HashtagRepository interface {
	GetByTag(ctx context.Context, tag string) (*models.Hashtag, error)
	AttachToPost(ctx context.Context, postID uint, tags []models.TagOccurrence) error
	Trending(ctx context.Context, since time.Time, limit int) ([]models.Hashtag, error)
}

type hashtagRepository struct {
	db *gorm.DB
}

// NewHashtagRepository creates a new hashtag repository
func NewHashtagRepository(db *gorm.DB) HashtagRepository {
	return &hashtagRepository{db: db}
}

func (r *hashtagRepository) GetByTag(ctx context.Context, tag string) (*models.Hashtag, error) {
	var hashtag models.Hashtag
	err := r.db.WithContext(ctx).Where("tag = ?", models.NormalizeTag(tag)).First(&hashtag).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &hashtag, nil
}

// AttachToPost upserts each distinct tag and links it to the post at the
// first position it appeared in the content. Usage stats are bumped only
// when the link is new, so duplicate occurrences within one post and
// re-attachment after a content edit count once.
func (r *hashtagRepository) AttachToPost(ctx context.Context, postID uint, tags []models.TagOccurrence) error {
	if len(tags) == 0 {
		return nil
	}
	now := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seen := make(map[string]bool, len(tags))
		for _, occ := range tags {
			tag := models.NormalizeTag(occ.Tag)
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true

			hashtag := models.Hashtag{Tag: tag, LastUsedAt: now}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "tag"}},
				DoNothing: true,
			}).Create(&hashtag).Error; err != nil {
				return err
			}
			if hashtag.ID == 0 {
				if err := tx.Where("tag = ?", tag).First(&hashtag).Error; err != nil {
					return err
				}
			}
			link := models.PostHashtag{PostID: postID, HashtagID: hashtag.ID, Position: occ.Position}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&link)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// already linked to this post (content edit), stats stay
				continue
			}
			if err := tx.Model(&models.Hashtag{}).Where("id = ?", hashtag.ID).
				UpdateColumns(map[string]interface{}{
					"use_count":    gorm.Expr("use_count + ?", 1),
					"last_used_at": now,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Trending returns the most used hashtags that have seen activity since
// the cutoff, highest use_count first.
func (r *hashtagRepository) Trending(ctx context.Context, since time.Time, limit int) ([]models.Hashtag, error) {
	var hashtags []models.Hashtag
	err := r.db.WithContext(ctx).
		Where("last_used_at >= ?", since).
		Order("use_count DESC").
		Limit(limit).
		Find(&hashtags).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return hashtags, nil
}
