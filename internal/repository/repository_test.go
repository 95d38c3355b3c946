package repository

import (
	"context"
	"testing"

	"commune/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests run against the database configured for APP_ENV=test; TestMain
// skips the whole package when it is unreachable.

func createTestUser(t *testing.T) *models.User {
	t.Helper()
	suffix := uuid.NewString()[:8]
	user := &models.User{
		Username: "u_" + suffix,
		Email:    suffix + "@test.local",
		Password: "$2a$10$notarealhashnotarealhashnotarealhashnotar",
		Profile:  &models.Profile{Visibility: models.VisibilityPublic},
	}
	require.NoError(t, NewUserRepository(testDB).Create(context.Background(), user))
	return user
}

func TestUserRepository_Lookups(t *testing.T) {
	repo := NewUserRepository(testDB)
	ctx := context.Background()
	user := createTestUser(t)

	byEmail, err := repo.GetByEmail(ctx, user.Email)
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, user.ID, byEmail.ID)

	byUsername, err := repo.GetByUsername(ctx, user.Username)
	require.NoError(t, err)
	require.NotNil(t, byUsername)
	assert.Equal(t, user.ID, byUsername.ID)

	// Missing rows come back as nil, nil so callers can distinguish
	// "no such account" from a query failure.
	missing, err := repo.GetByEmail(ctx, "nobody@test.local")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepository_GetByIDWithProfile(t *testing.T) {
	repo := NewUserRepository(testDB)
	user := createTestUser(t)

	got, err := repo.GetByIDWithProfile(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Profile)
	assert.Equal(t, user.ID, got.Profile.UserID)
}

func TestReactionRepository_ToggleLifecycle(t *testing.T) {
	repo := NewReactionRepository(testDB)
	ctx := context.Background()
	user := createTestUser(t)
	author := createTestUser(t)

	post := &models.Post{UserID: author.ID, Content: "toggle target", Visibility: models.VisibilityPublic}
	require.NoError(t, NewPostRepository(testDB).Create(ctx, post))

	outcome, reaction, err := repo.Toggle(ctx, user.ID, models.SubjectPost, post.ID, models.ReactionLike)
	require.NoError(t, err)
	assert.Equal(t, ToggleCreated, outcome)
	require.NotNil(t, reaction)
	assert.Equal(t, models.ReactionLike, reaction.Type)

	outcome, reaction, err = repo.Toggle(ctx, user.ID, models.SubjectPost, post.ID, models.ReactionLove)
	require.NoError(t, err)
	assert.Equal(t, ToggleUpdated, outcome)
	require.NotNil(t, reaction)
	assert.Equal(t, models.ReactionLove, reaction.Type)

	outcome, reaction, err = repo.Toggle(ctx, user.ID, models.SubjectPost, post.ID, models.ReactionLove)
	require.NoError(t, err)
	assert.Equal(t, ToggleRemoved, outcome)
	assert.Nil(t, reaction)

	count, err := repo.CountBySubject(ctx, models.SubjectPost, post.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRelationshipRepository_FriendLifecycle(t *testing.T) {
	repo := NewRelationshipRepository(testDB)
	ctx := context.Background()
	alice := createTestUser(t)
	bob := createTestUser(t)

	conn := &models.Connection{
		RequesterID: alice.ID,
		TargetID:    bob.ID,
		Type:        models.ConnectionFriend,
		Status:      models.ConnectionPending,
	}
	require.NoError(t, repo.CreateConnection(ctx, conn))

	friends, err := repo.IsFriend(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, friends, "pending request is not a friendship")

	require.NoError(t, repo.UpdateStatus(ctx, conn.ID, models.ConnectionAccepted))

	// Accepted edges are symmetric regardless of who requested.
	friends, err = repo.IsFriend(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, friends)

	ids, err := repo.FriendIDs(ctx, bob.ID)
	require.NoError(t, err)
	assert.Contains(t, ids, alice.ID)

	require.NoError(t, repo.RemoveFriendEdge(ctx, bob.ID, alice.ID))
	friends, err = repo.IsFriend(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, friends)
}

func TestRelationshipRepository_AcceptRefreshesFriendCache(t *testing.T) {
	repo := NewRelationshipRepository(testDB)
	ctx := context.Background()
	alice := createTestUser(t)
	bob := createTestUser(t)

	conn := &models.Connection{
		RequesterID: alice.ID,
		TargetID:    bob.ID,
		Type:        models.ConnectionFriend,
		Status:      models.ConnectionPending,
	}
	require.NoError(t, repo.CreateConnection(ctx, conn))

	// Warm both friend-ID caches while the request is still pending.
	ids, err := repo.FriendIDs(ctx, bob.ID)
	require.NoError(t, err)
	assert.NotContains(t, ids, alice.ID)
	_, err = repo.FriendIDs(ctx, alice.ID)
	require.NoError(t, err)

	require.NoError(t, repo.UpdateStatus(ctx, conn.ID, models.ConnectionAccepted))

	// The new friendship must be visible immediately, not after the TTL.
	ids, err = repo.FriendIDs(ctx, bob.ID)
	require.NoError(t, err)
	assert.Contains(t, ids, alice.ID)
	ids, err = repo.FriendIDs(ctx, alice.ID)
	require.NoError(t, err)
	assert.Contains(t, ids, bob.ID)

	require.NoError(t, repo.DeleteConnection(ctx, conn.ID))
	ids, err = repo.FriendIDs(ctx, bob.ID)
	require.NoError(t, err)
	assert.NotContains(t, ids, alice.ID)
}

func TestRelationshipRepository_FollowingIDs(t *testing.T) {
	repo := NewRelationshipRepository(testDB)
	ctx := context.Background()
	alice := createTestUser(t)
	bob := createTestUser(t)

	conn := &models.Connection{
		RequesterID: alice.ID,
		TargetID:    bob.ID,
		Type:        models.ConnectionFollower,
		Status:      models.ConnectionAccepted,
	}
	require.NoError(t, repo.CreateConnection(ctx, conn))

	ids, err := repo.FollowingIDs(ctx, alice.ID)
	require.NoError(t, err)
	assert.Contains(t, ids, bob.ID)

	require.NoError(t, repo.RemoveFollowEdge(ctx, alice.ID, bob.ID))
	ids, err = repo.FollowingIDs(ctx, alice.ID)
	require.NoError(t, err)
	assert.NotContains(t, ids, bob.ID)
}

func TestRelationshipRepository_Blocks(t *testing.T) {
	repo := NewRelationshipRepository(testDB)
	ctx := context.Background()
	alice := createTestUser(t)
	bob := createTestUser(t)

	require.NoError(t, repo.Block(ctx, alice.ID, bob.ID))

	blocked, err := repo.IsBlockedEitherDirection(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, blocked, "block applies in both directions")

	ids, err := repo.BlockedIDs(ctx, alice.ID)
	require.NoError(t, err)
	assert.Contains(t, ids, bob.ID)

	require.NoError(t, repo.Unblock(ctx, alice.ID, bob.ID))
	blocked, err = repo.IsBlockedEitherDirection(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestNotificationRepository_ReadLifecycle(t *testing.T) {
	repo := NewNotificationRepository(testDB)
	ctx := context.Background()
	recipient := createTestUser(t)
	actor := createTestUser(t)

	for i := 0; i < 2; i++ {
		n := &models.Notification{
			UserID:  recipient.ID,
			ActorID: actor.ID,
			Type:    models.NotifComment,
			Message: "commented on your post",
		}
		require.NoError(t, repo.Create(ctx, n))
	}

	unread, err := repo.UnreadCount(ctx, recipient.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	updated, err := repo.MarkAllRead(ctx, recipient.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	unread, err = repo.UnreadCount(ctx, recipient.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)

	listed, err := repo.ListByUser(ctx, recipient.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}
