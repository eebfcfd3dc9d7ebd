// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account identity.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"unique;not null" json:"username"`
	Email     string         `gorm:"unique;not null" json:"email"`
	Password  string         `gorm:"not null" json:"-"`
	IsAdmin   bool           `gorm:"default:false" json:"is_admin"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Profile *Profile `gorm:"foreignKey:UserID" json:"profile,omitempty"`
}

// Profile carries the public-facing profile metadata and the account's
// verification and reset state. Opaque tokens are stored as SHA-256 hex
// digests only, never plaintext.
type Profile struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	UserID    uint   `gorm:"not null;uniqueIndex" json:"user_id"`
	Bio       string `gorm:"type:text" json:"bio"`
	Location  string `gorm:"size:100" json:"location"`
	Website   string `gorm:"size:255" json:"website"`
	AvatarURL string `gorm:"size:500" json:"avatar_url"`
	HeaderURL string `gorm:"size:500" json:"header_url"`

	// Denormalized counts, maintained by atomic column updates.
	FollowersCount int `gorm:"default:0" json:"followers_count"`
	FollowingCount int `gorm:"default:0" json:"following_count"`
	PostsCount     int `gorm:"default:0" json:"posts_count"`

	IsVerified      bool       `gorm:"default:false" json:"is_verified"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`

	ResetToken        string     `gorm:"size:64" json:"-"`
	ResetTokenExpires *time.Time `json:"-"`

	EmailVerificationKey        string     `gorm:"size:64" json:"-"`
	EmailVerificationKeyExpires *time.Time `json:"-"`

	// Resend-verification rate limiting (3 per rolling hour).
	VerificationAttempts      int        `gorm:"default:0" json:"-"`
	LastVerificationAttemptAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
