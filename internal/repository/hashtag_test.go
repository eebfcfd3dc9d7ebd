package repository

import (
	"context"
	"testing"
	"time"

	"chirp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachToPost(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewHashtagRepository(db)
	alice := createTestUser(t, db, "alice")
	post := createTestPost(t, db, alice.ID, "post #Go #go #coffee")

	err := repo.AttachToPost(ctx, post.ID, []models.TagOccurrence{
		{Tag: "Go", Position: 0},
		{Tag: "go", Position: 1},
		{Tag: "coffee", Position: 2},
	})
	require.NoError(t, err)

	// "Go" and "go" normalize to the same tag, counted once per post.
	goTag, err := repo.GetByTag(ctx, "go")
	require.NoError(t, err)
	require.NotNil(t, goTag)
	assert.Equal(t, 1, goTag.UseCount)

	var links []models.PostHashtag
	require.NoError(t, db.Where("post_id = ?", post.ID).Find(&links).Error)
	assert.Len(t, links, 2)

	// A second post using the same tag bumps the counter.
	second := createTestPost(t, db, alice.ID, "more #go")
	require.NoError(t, repo.AttachToPost(ctx, second.ID, []models.TagOccurrence{{Tag: "go"}}))
	goTag, err = repo.GetByTag(ctx, "GO")
	require.NoError(t, err)
	assert.Equal(t, 2, goTag.UseCount)

	// Re-attaching after a content edit does not inflate the counter.
	require.NoError(t, repo.AttachToPost(ctx, second.ID, []models.TagOccurrence{{Tag: "go"}}))
	goTag, err = repo.GetByTag(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, 2, goTag.UseCount)
}

func TestTrendingWindowAndOrder(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewHashtagRepository(db)

	now := time.Now()
	stale := now.Add(-14 * 24 * time.Hour)
	require.NoError(t, db.Create(&models.Hashtag{Tag: "hot", UseCount: 5, LastUsedAt: now}).Error)
	require.NoError(t, db.Create(&models.Hashtag{Tag: "hotter", UseCount: 9, LastUsedAt: now}).Error)
	require.NoError(t, db.Create(&models.Hashtag{Tag: "stale", UseCount: 100, LastUsedAt: stale}).Error)

	trending, err := repo.Trending(ctx, now.Add(-7*24*time.Hour), 20)
	require.NoError(t, err)
	require.Len(t, trending, 2, "tags without recent activity are excluded")
	assert.Equal(t, "hotter", trending[0].Tag)
	assert.Equal(t, "hot", trending[1].Tag)
}

func TestGetByTagNormalizesLookup(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewHashtagRepository(db)

	require.NoError(t, db.Create(&models.Hashtag{Tag: "golang", LastUsedAt: time.Now()}).Error)

	for _, lookup := range []string{"golang", "GOLANG", "#golang", " #GoLang "} {
		tag, err := repo.GetByTag(ctx, lookup)
		require.NoError(t, err)
		require.NotNil(t, tag, "lookup %q should resolve", lookup)
		assert.Equal(t, "golang", tag.Tag)
	}

	missing, err := repo.GetByTag(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
