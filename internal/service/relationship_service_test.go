package service

import (
	"context"
	"testing"
	"time"

	"commune/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRelationshipService(relRepo *relationshipRepoStub, userRepo *userRepoStub) (*RelationshipService, *[]models.Notification) {
	notifier, captured := captureNotifications()
	return NewRelationshipService(relRepo, userRepo, notifier), captured
}

func userRepoWithUsers(users map[uint]*models.User) *userRepoStub {
	repo := noopUserRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		if u, ok := users[id]; ok {
			return u, nil
		}
		return nil, models.NewNotFoundError("user")
	}
	return repo
}

func TestRelationshipService_SendFriendRequest_ToSelf(t *testing.T) {
	svc, _ := newRelationshipService(noopRelationshipRepo(), noopUserRepo())
	_, err := svc.SendFriendRequest(context.Background(), 1, 1)
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeValidation, err.(*models.AppError).Code)
}

func TestRelationshipService_SendFriendRequest_BlockedReadsAsMissing(t *testing.T) {
	relRepo := noopRelationshipRepo()
	relRepo.isBlockedFn = func(context.Context, uint, uint) (bool, error) { return true, nil }
	userRepo := userRepoWithUsers(map[uint]*models.User{2: {ID: 2, Username: "bob"}})

	svc, _ := newRelationshipService(relRepo, userRepo)
	_, err := svc.SendFriendRequest(context.Background(), 1, 2)
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeNotFound, err.(*models.AppError).Code)
}

func TestRelationshipService_SendFriendRequest_NotifiesTarget(t *testing.T) {
	relRepo := noopRelationshipRepo()
	relRepo.createConnectionFn = func(_ context.Context, conn *models.Connection) error {
		conn.ID = 11
		return nil
	}
	userRepo := userRepoWithUsers(map[uint]*models.User{
		1: {ID: 1, Username: "alice"},
		2: {ID: 2, Username: "bob"},
	})

	svc, captured := newRelationshipService(relRepo, userRepo)
	conn, err := svc.SendFriendRequest(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionPending, conn.Status)
	assert.Equal(t, models.ConnectionFriend, conn.Type)

	require.Len(t, *captured, 1)
	notif := (*captured)[0]
	assert.Equal(t, uint(2), notif.UserID)
	assert.Equal(t, uint(1), notif.ActorID)
	assert.Equal(t, models.NotifFriendRequest, notif.Type)
	assert.Equal(t, "alice sent you a friend request", notif.Message)
}

func TestRelationshipService_SendFriendRequest_ExistingEdge(t *testing.T) {
	userRepo := userRepoWithUsers(map[uint]*models.User{2: {ID: 2, Username: "bob"}})

	send := func(edge *models.Connection) error {
		relRepo := noopRelationshipRepo()
		relRepo.getFriendEdgeFn = func(context.Context, uint, uint) (*models.Connection, error) {
			return edge, nil
		}
		svc, _ := newRelationshipService(relRepo, userRepo)
		_, err := svc.SendFriendRequest(context.Background(), 1, 2)
		return err
	}

	cases := []struct {
		name string
		edge *models.Connection
		want string
	}{
		{"Already friends", &models.Connection{RequesterID: 1, TargetID: 2, Status: models.ConnectionAccepted}, "already friends"},
		{"Outbound pending", &models.Connection{RequesterID: 1, TargetID: 2, Status: models.ConnectionPending}, "friend request already sent"},
		{"Inbound pending", &models.Connection{RequesterID: 2, TargetID: 1, Status: models.ConnectionPending}, "this user already sent you a friend request"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := send(tc.edge)
			require.Error(t, err)
			appErr := err.(*models.AppError)
			assert.Equal(t, models.ErrCodeConflict, appErr.Code)
			assert.Equal(t, tc.want, appErr.Message)
		})
	}
}

func TestRelationshipService_RespondToRequest(t *testing.T) {
	pendingRequest := func() *models.Connection {
		return &models.Connection{
			ID:          11,
			RequesterID: 1,
			TargetID:    2,
			Type:        models.ConnectionFriend,
			Status:      models.ConnectionPending,
		}
	}
	repoWith := func(conn *models.Connection) *relationshipRepoStub {
		relRepo := noopRelationshipRepo()
		relRepo.getConnectionByIDFn = func(context.Context, uint) (*models.Connection, error) { return conn, nil }
		return relRepo
	}
	userRepo := userRepoWithUsers(map[uint]*models.User{2: {ID: 2, Username: "bob"}})

	t.Run("Bad status", func(t *testing.T) {
		svc, _ := newRelationshipService(repoWith(pendingRequest()), userRepo)
		_, err := svc.RespondToRequest(context.Background(), 2, 11, models.ConnectionPending)
		require.Error(t, err)
		assert.Equal(t, models.ErrCodeValidation, err.(*models.AppError).Code)
	})

	t.Run("Only target may respond", func(t *testing.T) {
		svc, _ := newRelationshipService(repoWith(pendingRequest()), userRepo)
		_, err := svc.RespondToRequest(context.Background(), 1, 11, models.ConnectionAccepted)
		require.Error(t, err)
		assert.Equal(t, models.ErrCodePermissionDenied, err.(*models.AppError).Code)
	})

	t.Run("Not pending", func(t *testing.T) {
		conn := pendingRequest()
		conn.Status = models.ConnectionAccepted
		svc, _ := newRelationshipService(repoWith(conn), userRepo)
		_, err := svc.RespondToRequest(context.Background(), 2, 11, models.ConnectionAccepted)
		require.Error(t, err)
		assert.Equal(t, models.ErrCodeConflict, err.(*models.AppError).Code)
	})

	t.Run("Decline deletes the request", func(t *testing.T) {
		relRepo := repoWith(pendingRequest())
		deleted := false
		relRepo.deleteConnectionFn = func(_ context.Context, id uint) error {
			deleted = true
			assert.Equal(t, uint(11), id)
			return nil
		}
		svc, captured := newRelationshipService(relRepo, userRepo)
		conn, err := svc.RespondToRequest(context.Background(), 2, 11, models.ConnectionDeclined)
		require.NoError(t, err)
		assert.True(t, deleted)
		assert.Equal(t, models.ConnectionDeclined, conn.Status)
		assert.Empty(t, *captured)
	})

	t.Run("Accept notifies the requester", func(t *testing.T) {
		svc, captured := newRelationshipService(repoWith(pendingRequest()), userRepo)
		conn, err := svc.RespondToRequest(context.Background(), 2, 11, models.ConnectionAccepted)
		require.NoError(t, err)
		assert.Equal(t, models.ConnectionAccepted, conn.Status)

		require.Len(t, *captured, 1)
		notif := (*captured)[0]
		assert.Equal(t, uint(1), notif.UserID)
		assert.Equal(t, models.NotifFriendAccept, notif.Type)
		assert.Equal(t, "bob accepted your friend request", notif.Message)
	})
}

func TestRelationshipService_RemoveFriend_NotFriends(t *testing.T) {
	svc, _ := newRelationshipService(noopRelationshipRepo(), noopUserRepo())
	err := svc.RemoveFriend(context.Background(), 1, 2)
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeNotFound, err.(*models.AppError).Code)
}

func TestRelationshipService_Follow(t *testing.T) {
	userRepo := userRepoWithUsers(map[uint]*models.User{2: {ID: 2, Username: "bob"}})

	t.Run("Self", func(t *testing.T) {
		svc, _ := newRelationshipService(noopRelationshipRepo(), userRepo)
		_, err := svc.Follow(context.Background(), 1, 1)
		require.Error(t, err)
		assert.Equal(t, models.ErrCodeValidation, err.(*models.AppError).Code)
	})

	t.Run("Blocked", func(t *testing.T) {
		relRepo := noopRelationshipRepo()
		relRepo.isBlockedFn = func(context.Context, uint, uint) (bool, error) { return true, nil }
		svc, _ := newRelationshipService(relRepo, userRepo)
		_, err := svc.Follow(context.Background(), 1, 2)
		require.Error(t, err)
		assert.Equal(t, models.ErrCodePermissionDenied, err.(*models.AppError).Code)
	})

	t.Run("Friends already follow implicitly", func(t *testing.T) {
		relRepo := noopRelationshipRepo()
		relRepo.isFriendFn = func(context.Context, uint, uint) (bool, error) { return true, nil }
		svc, _ := newRelationshipService(relRepo, userRepo)
		_, err := svc.Follow(context.Background(), 1, 2)
		require.Error(t, err)
		assert.Equal(t, models.ErrCodeConflict, err.(*models.AppError).Code)
	})

	t.Run("Already following", func(t *testing.T) {
		relRepo := noopRelationshipRepo()
		relRepo.isFollowerFn = func(context.Context, uint, uint) (bool, error) { return true, nil }
		svc, _ := newRelationshipService(relRepo, userRepo)
		_, err := svc.Follow(context.Background(), 1, 2)
		require.Error(t, err)
		assert.Equal(t, models.ErrCodeConflict, err.(*models.AppError).Code)
	})

	t.Run("Creates accepted follower edge", func(t *testing.T) {
		svc, _ := newRelationshipService(noopRelationshipRepo(), userRepo)
		conn, err := svc.Follow(context.Background(), 1, 2)
		require.NoError(t, err)
		assert.Equal(t, models.ConnectionFollower, conn.Type)
		assert.Equal(t, models.ConnectionAccepted, conn.Status)
	})
}

func TestRelationshipService_Unfollow(t *testing.T) {
	t.Run("Friendship is not a follow", func(t *testing.T) {
		relRepo := noopRelationshipRepo()
		relRepo.isFriendFn = func(context.Context, uint, uint) (bool, error) { return true, nil }
		svc, _ := newRelationshipService(relRepo, noopUserRepo())
		err := svc.Unfollow(context.Background(), 1, 2)
		require.Error(t, err)
		assert.Equal(t, models.ErrCodePermissionDenied, err.(*models.AppError).Code)
	})

	t.Run("Not following", func(t *testing.T) {
		svc, _ := newRelationshipService(noopRelationshipRepo(), noopUserRepo())
		err := svc.Unfollow(context.Background(), 1, 2)
		require.Error(t, err)
		assert.Equal(t, models.ErrCodeNotFound, err.(*models.AppError).Code)
	})

	t.Run("Removes the edge", func(t *testing.T) {
		relRepo := noopRelationshipRepo()
		relRepo.isFollowerFn = func(context.Context, uint, uint) (bool, error) { return true, nil }
		removed := false
		relRepo.removeFollowEdgeFn = func(context.Context, uint, uint) error {
			removed = true
			return nil
		}
		svc, _ := newRelationshipService(relRepo, noopUserRepo())
		require.NoError(t, svc.Unfollow(context.Background(), 1, 2))
		assert.True(t, removed)
	})
}

func TestRelationshipService_ReceivedRequests_Disclosure(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	requestFrom := func(visibility models.Visibility, age time.Duration) models.Connection {
		return models.Connection{
			ID:          11,
			RequesterID: 3,
			TargetID:    1,
			Type:        models.ConnectionFriend,
			Status:      models.ConnectionPending,
			CreatedAt:   now.Add(-age),
			Requester: &models.User{
				ID:       3,
				Username: "carol",
				Profile:  &models.Profile{UserID: 3, Visibility: visibility},
			},
		}
	}
	list := func(conn models.Connection) ReceivedRequest {
		relRepo := noopRelationshipRepo()
		relRepo.getPendingFn = func(context.Context, uint) ([]models.Connection, error) {
			return []models.Connection{conn}, nil
		}
		svc, _ := newRelationshipService(relRepo, noopUserRepo())
		svc.now = func() time.Time { return now }
		out, err := svc.ReceivedRequests(context.Background(), 1)
		require.NoError(t, err)
		require.Len(t, out, 1)
		return out[0]
	}

	t.Run("Private sender inside the window", func(t *testing.T) {
		item := list(requestFrom(models.VisibilityPrivate, 3*24*time.Hour))
		require.NotNil(t, item.Requester)
		assert.Nil(t, item.RequesterMin)
		require.NotNil(t, item.DaysRemaining)
		assert.Equal(t, 4, *item.DaysRemaining)
	})

	t.Run("Private sender past the window", func(t *testing.T) {
		item := list(requestFrom(models.VisibilityPrivate, 8*24*time.Hour))
		assert.Nil(t, item.Requester)
		require.NotNil(t, item.RequesterMin)
		assert.Equal(t, "carol", item.RequesterMin.Username)
		require.NotNil(t, item.DaysRemaining)
		assert.Equal(t, 0, *item.DaysRemaining)
	})

	t.Run("Public sender never decays", func(t *testing.T) {
		item := list(requestFrom(models.VisibilityPublic, 30*24*time.Hour))
		require.NotNil(t, item.Requester)
		assert.Nil(t, item.DaysRemaining)
	})
}

func TestRelationshipService_Block_Validation(t *testing.T) {
	svc, _ := newRelationshipService(noopRelationshipRepo(), noopUserRepo())

	err := svc.Block(context.Background(), 1, 1)
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeValidation, err.(*models.AppError).Code)

	// Blocking an unknown account is a not-found, not a silent success.
	err = svc.Block(context.Background(), 1, 99)
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeNotFound, err.(*models.AppError).Code)
}
