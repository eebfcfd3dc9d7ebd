package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveProfilePreservesCounters(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	follows := NewFollowRepository(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	snapshot, err := users.GetProfile(ctx, alice.ID)
	require.NoError(t, err)

	// A follow lands between the read and the write of a profile edit.
	require.NoError(t, follows.Create(ctx, bob.ID, alice.ID))
	require.Equal(t, 1, getProfile(t, db, alice.ID).FollowersCount)

	snapshot.Bio = "writing Go all day"
	require.NoError(t, users.SaveProfile(ctx, snapshot))

	after := getProfile(t, db, alice.ID)
	assert.Equal(t, "writing Go all day", after.Bio)
	assert.Equal(t, 1, after.FollowersCount, "edit must not write back the stale counter")
}

func TestSaveProfileClearsTokenFields(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	alice := createTestUser(t, db, "alice")

	profile, err := users.GetProfile(ctx, alice.ID)
	require.NoError(t, err)
	expires := time.Now().Add(time.Hour)
	profile.ResetToken = "abc123"
	profile.ResetTokenExpires = &expires
	require.NoError(t, users.SaveProfile(ctx, profile))
	require.Equal(t, "abc123", getProfile(t, db, alice.ID).ResetToken)

	// Clearing a consumed token writes zero values back.
	profile.ResetToken = ""
	profile.ResetTokenExpires = nil
	require.NoError(t, users.SaveProfile(ctx, profile))

	after := getProfile(t, db, alice.ID)
	assert.Empty(t, after.ResetToken)
	assert.Nil(t, after.ResetTokenExpires)
}
