package models

import "time"

// MaxPostContentLen is the maximum number of characters (runes) allowed in
// post content.
const MaxPostContentLen = 280

// Post is the unified post entity. A post can be a regular post, a reply
// (ParentPostID set), a pure retweet (RetweetOfID set, empty content), or a
// quote tweet (RetweetOfID set, non-empty content).
//
// RootPostID tracks the thread root and is resolved once at creation: a
// reply inherits its parent's root, or the parent itself when the parent is
// a root post. It is never updated afterwards.
type Post struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UserID  uint   `gorm:"not null;index:idx_posts_user_created" json:"user_id"`
	User    User   `gorm:"foreignKey:UserID" json:"user"`
	Content string `gorm:"size:280;not null;default:''" json:"content"`

	ParentPostID *uint `gorm:"index" json:"parent_post_id,omitempty"`
	ParentPost   *Post `gorm:"foreignKey:ParentPostID" json:"parent_post,omitempty"`
	RootPostID   *uint `gorm:"index:idx_posts_root_created" json:"root_post_id,omitempty"`
	RetweetOfID  *uint `gorm:"index:idx_posts_retweet_user" json:"retweet_of_id,omitempty"`
	RetweetOf    *Post `gorm:"foreignKey:RetweetOfID" json:"retweet_of,omitempty"`

	// IsQuoteTweet is derived at creation (RetweetOfID set and content
	// non-empty) and is not settable by clients.
	IsQuoteTweet bool `gorm:"default:false" json:"is_quote_tweet"`

	// CommunityID scopes a post to a community when set.
	CommunityID *uint      `gorm:"index" json:"community_id,omitempty"`
	Community   *Community `gorm:"foreignKey:CommunityID" json:"community,omitempty"`

	IsDeleted bool `gorm:"default:false;index:idx_posts_deleted_created" json:"is_deleted"`

	// Denormalized counters, maintained by atomic column updates on
	// sibling row creation/deletion. Read-only for API clients.
	ReplyCount    int `gorm:"default:0" json:"reply_count"`
	RetweetCount  int `gorm:"default:0" json:"retweet_count"`
	LikeCount     int `gorm:"default:0" json:"like_count"`
	QuoteCount    int `gorm:"default:0" json:"quote_count"`
	BookmarkCount int `gorm:"default:0" json:"bookmark_count"`

	Hashtags []PostHashtag `gorm:"foreignKey:PostID" json:"hashtags,omitempty"`
	Mentions []Mention     `gorm:"foreignKey:PostID" json:"mentions,omitempty"`

	CreatedAt time.Time `gorm:"index:idx_posts_user_created;index:idx_posts_deleted_created;index:idx_posts_root_created" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsRetweet reports whether the post is a pure retweet (shared as-is,
// no added content).
func (p *Post) IsRetweet() bool {
	return p.RetweetOfID != nil && !p.IsQuoteTweet && p.Content == ""
}

// IsReply reports whether the post replies to another post.
func (p *Post) IsReply() bool {
	return p.ParentPostID != nil
}
