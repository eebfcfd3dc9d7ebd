package models

import "time"

// Follow is a directed edge in the social graph. The (follower, following)
// pair is unique and self-follows are rejected at the service boundary.
type Follow struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FollowerID  uint      `gorm:"not null;uniqueIndex:idx_follow_edge;index" json:"follower_id"`
	FollowingID uint      `gorm:"not null;uniqueIndex:idx_follow_edge;index:idx_follows_following_created" json:"following_id"`
	Follower    User      `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	Following   User      `gorm:"foreignKey:FollowingID" json:"following,omitempty"`
	CreatedAt   time.Time `gorm:"index:idx_follows_following_created" json:"created_at"`
}
