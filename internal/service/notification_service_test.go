package service

import (
	"context"
	"errors"
	"testing"

	"commune/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publisherStub struct {
	publishFn func(context.Context, uint, string) error
}

func (s *publisherStub) PublishUser(ctx context.Context, userID uint, payload string) error {
	return s.publishFn(ctx, userID, payload)
}

func TestNotificationService_Notify_SkipsSelf(t *testing.T) {
	svc, captured := captureNotifications()
	require.NoError(t, svc.Notify(context.Background(), 1, 1, models.NotifComment, 10, "commented on your post"))
	assert.Empty(t, *captured)
}

func TestNotificationService_Notify_PersistsBeforePublishing(t *testing.T) {
	repo := noopNotificationRepo()
	repo.createFn = func(context.Context, *models.Notification) error {
		return models.NewInternalError(errors.New("insert failed"))
	}
	published := false
	svc := NewNotificationService(repo, &publisherStub{
		publishFn: func(context.Context, uint, string) error {
			published = true
			return nil
		},
	})

	err := svc.Notify(context.Background(), 2, 1, models.NotifComment, 10, "commented on your post")
	require.Error(t, err)
	assert.False(t, published)
}

func TestNotificationService_Notify_PublishFailureIsSwallowed(t *testing.T) {
	repo := noopNotificationRepo()
	svc := NewNotificationService(repo, &publisherStub{
		publishFn: func(context.Context, uint, string) error {
			return errors.New("redis down")
		},
	})

	assert.NoError(t, svc.Notify(context.Background(), 2, 1, models.NotifReaction, 10, "reacted to your post"))
}

func TestNotificationService_Notify_PublishesToRecipient(t *testing.T) {
	repo := noopNotificationRepo()
	repo.createFn = func(_ context.Context, n *models.Notification) error {
		n.ID = 5
		return nil
	}
	var gotUser uint
	var gotPayload string
	svc := NewNotificationService(repo, &publisherStub{
		publishFn: func(_ context.Context, userID uint, payload string) error {
			gotUser = userID
			gotPayload = payload
			return nil
		},
	})

	require.NoError(t, svc.Notify(context.Background(), 2, 1, models.NotifFriendRequest, 11, "sent you a friend request"))
	assert.Equal(t, uint(2), gotUser)
	assert.Contains(t, gotPayload, `"friend_request"`)
	assert.Contains(t, gotPayload, `"reference_id":11`)
}
