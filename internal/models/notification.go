package models

import "time"

// Notification verbs emitted by the interaction handlers.
const (
	VerbFollowed  = "followed you"
	VerbLiked     = "liked your post"
	VerbRetweeted = "retweeted your post"
	VerbQuoted    = "quoted your post"
	VerbMentioned = "mentioned you in a post"
	VerbReplied   = "replied to your post"
)

// Notification is a fan-out record created as a side effect of follow,
// like, retweet, quote, mention, and reply actions.
type Notification struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index:idx_notifications_user_created" json:"user_id"`
	ActorID    *uint     `json:"actor_id,omitempty"`
	Actor      *User     `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
	Verb       string    `gorm:"size:255;not null" json:"verb"`
	TargetType string    `gorm:"size:50" json:"target_type,omitempty"`
	TargetID   *uint     `json:"target_id,omitempty"`
	IsRead     bool      `gorm:"default:false" json:"is_read"`
	CreatedAt  time.Time `gorm:"index:idx_notifications_user_created" json:"created_at"`
}
