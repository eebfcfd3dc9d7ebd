package models

import (
	"regexp"
	"strings"
	"time"
)

// Hashtag stores each tag exactly once, normalized. UseCount and LastUsedAt
// are bumped on every new post association and back the trending query.
type Hashtag struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Tag        string    `gorm:"size:100;not null;uniqueIndex" json:"tag"`
	UseCount   int       `gorm:"default:0;index:idx_hashtags_trending" json:"use_count"`
	LastUsedAt time.Time `gorm:"index:idx_hashtags_trending" json:"last_used_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// PostHashtag links a post to a hashtag. Position records the order of
// appearance within the post content.
type PostHashtag struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	PostID    uint    `gorm:"not null;uniqueIndex:idx_post_hashtag" json:"post_id"`
	HashtagID uint    `gorm:"not null;uniqueIndex:idx_post_hashtag;index" json:"hashtag_id"`
	Hashtag   Hashtag `gorm:"foreignKey:HashtagID" json:"hashtag"`
	Position  int     `gorm:"default:0" json:"position"`
}

var (
	hashtagPattern = regexp.MustCompile(`#(\w+)`)
	mentionPattern = regexp.MustCompile(`@(\w+)`)
)

// TagOccurrence is a token found in post content together with its order
// of appearance, zero-based.
type TagOccurrence struct {
	Tag      string
	Position int
}

// NormalizeTag canonicalizes a hashtag: trim, strip the leading '#', trim
// again, lowercase. Normalization is idempotent.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tag), "#")))
}

// ExtractHashtags returns the #tag tokens in content, left to right,
// without the leading '#'.
func ExtractHashtags(content string) []string {
	var tags []string
	for _, m := range hashtagPattern.FindAllStringSubmatch(content, -1) {
		tags = append(tags, m[1])
	}
	return tags
}

// ExtractMentions returns the @username tokens in content, left to right,
// without the leading '@'.
func ExtractMentions(content string) []string {
	var names []string
	for _, m := range mentionPattern.FindAllStringSubmatch(content, -1) {
		names = append(names, m[1])
	}
	return names
}

// ExtractHashtagOccurrences is ExtractHashtags with positions attached.
func ExtractHashtagOccurrences(content string) []TagOccurrence {
	var occs []TagOccurrence
	for i, tag := range ExtractHashtags(content) {
		occs = append(occs, TagOccurrence{Tag: tag, Position: i})
	}
	return occs
}

// ExtractMentionOccurrences is ExtractMentions with positions attached.
func ExtractMentionOccurrences(content string) []TagOccurrence {
	var occs []TagOccurrence
	for i, name := range ExtractMentions(content) {
		occs = append(occs, TagOccurrence{Tag: name, Position: i})
	}
	return occs
}
