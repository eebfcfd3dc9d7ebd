package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTag(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase passthrough", "golang", "golang"},
		{"strips leading hash", "#golang", "golang"},
		{"lowercases", "GoLang", "golang"},
		{"trims whitespace", "  #GoLang  ", "golang"},
		{"hash with inner whitespace", "# golang", "golang"},
		{"empty", "", ""},
		{"only hash", "#", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeTag(tt.input))
		})
	}
}

func TestNormalizeTagIdempotent(t *testing.T) {
	inputs := []string{"#GoLang", "  #Mixed_Case ", "already", "#123abc"}
	for _, input := range inputs {
		once := NormalizeTag(input)
		assert.Equal(t, once, NormalizeTag(once), "normalizing twice must equal normalizing once for %q", input)
	}
}

func TestExtractHashtags(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected []string
	}{
		{"single", "loving #golang today", []string{"golang"}},
		{"multiple in order", "#first then #second and #third", []string{"first", "second", "third"}},
		{"preserves case for later normalization", "check #GoLang", []string{"GoLang"}},
		{"underscores and digits", "#go_1_2", []string{"go_1_2"}},
		{"none", "no tags here", nil},
		{"bare hash ignored", "just a # sign", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractHashtags(tt.content))
		})
	}
}

func TestExtractMentions(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected []string
	}{
		{"single", "hey @alice how are you", []string{"alice"}},
		{"multiple in order", "@bob meet @carol", []string{"bob", "carol"}},
		{"none", "no mentions", nil},
		{"bare at ignored", "look @ this", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractMentions(tt.content))
		})
	}
}

func TestExtractOccurrencePositions(t *testing.T) {
	occs := ExtractHashtagOccurrences("#a text #b more #a")
	assert.Len(t, occs, 3)
	assert.Equal(t, TagOccurrence{Tag: "a", Position: 0}, occs[0])
	assert.Equal(t, TagOccurrence{Tag: "b", Position: 1}, occs[1])
	assert.Equal(t, TagOccurrence{Tag: "a", Position: 2}, occs[2])

	mentions := ExtractMentionOccurrences("@x and @y")
	assert.Len(t, mentions, 2)
	assert.Equal(t, 0, mentions[0].Position)
	assert.Equal(t, 1, mentions[1].Position)
}

func TestPostKindPredicates(t *testing.T) {
	target := uint(7)

	retweet := Post{RetweetOfID: &target, Content: ""}
	assert.True(t, retweet.IsRetweet())

	quote := Post{RetweetOfID: &target, Content: "hot take", IsQuoteTweet: true}
	assert.False(t, quote.IsRetweet())

	parent := uint(3)
	reply := Post{ParentPostID: &parent, Content: "agreed"}
	assert.True(t, reply.IsReply())
	assert.False(t, reply.IsRetweet())
}
