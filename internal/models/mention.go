package models

import "time"

// Mention records an @username reference inside a post. A user can be
// mentioned at most once per post; Position keeps the first occurrence's
// order of appearance.
type Mention struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	PostID          uint      `gorm:"not null;uniqueIndex:idx_post_mentioned;index" json:"post_id"`
	MentionedUserID uint      `gorm:"not null;uniqueIndex:idx_post_mentioned;index:idx_mentions_user_created" json:"mentioned_user_id"`
	MentionedUser   User      `gorm:"foreignKey:MentionedUserID" json:"mentioned_user"`
	MentionerUserID uint      `gorm:"not null" json:"mentioner_user_id"`
	Position        int       `gorm:"default:0" json:"position"`
	CreatedAt       time.Time `gorm:"index:idx_mentions_user_created" json:"created_at"`
}
