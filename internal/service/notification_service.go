package service

import (
	"context"
	"encoding/json"

	"commune/internal/models"
	"commune/internal/observability"
	"commune/internal/repository"
)

// Publisher pushes a payload onto a user's real-time channel. Satisfied by
// notifications.Notifier.
type Publisher interface {
	PublishUser(ctx context.Context, userID uint, payload string) error
}

// NotificationService persists notifications and fans them out in real time.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	publisher        Publisher
}

// NewNotificationService returns a new NotificationService. publisher may be
// nil, in which case notifications are durable-only.
func NewNotificationService(notificationRepo repository.NotificationRepository, publisher Publisher) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		publisher:        publisher,
	}
}

// Notify records a notification for recipientID and publishes it to the
// recipient's channel. Self-notifications are silently skipped. The row is
// persisted first; a publish failure is logged via metrics and never returned,
// so callers cannot fail a domain operation on a delivery problem.
func (s *NotificationService) Notify(
	ctx context.Context,
	recipientID, actorID uint,
	notifType models.NotificationType,
	referenceID uint,
	message string,
) error {
	if recipientID == actorID {
		return nil
	}

	notification := &models.Notification{
		UserID:      recipientID,
		ActorID:     actorID,
		Type:        notifType,
		ReferenceID: referenceID,
		Message:     message,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		observability.RecordNotification(string(notifType), "persist_error")
		return err
	}

	if s.publisher == nil {
		observability.RecordNotification(string(notifType), "persisted")
		return nil
	}

	payload, err := json.Marshal(map[string]any{
		"id":           notification.ID,
		"type":         notification.Type,
		"message":      notification.Message,
		"reference_id": notification.ReferenceID,
	})
	if err != nil {
		observability.RecordNotification(string(notifType), "encode_error")
		return nil
	}
	if err := s.publisher.PublishUser(ctx, recipientID, string(payload)); err != nil {
		observability.LogAsyncOperationError(ctx, "notification publish", err, map[string]interface{}{
			"recipient_id": recipientID,
			"type":         notifType,
		})
		observability.RecordNotification(string(notifType), "publish_error")
		return nil
	}
	observability.RecordNotification(string(notifType), "published")
	return nil
}

// List returns the recipient's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID uint, limit, offset int) ([]models.Notification, error) {
	return s.notificationRepo.ListByUser(ctx, userID, limit, offset)
}

// MarkRead acknowledges one notification owned by userID.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID uint) error {
	return s.notificationRepo.MarkRead(ctx, notificationID, userID)
}

// MarkAllRead acknowledges every unread notification for userID.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}

// MarkAllUnread resets every notification for userID to unread.
func (s *NotificationService) MarkAllUnread(ctx context.Context, userID uint) (int64, error) {
	return s.notificationRepo.MarkAllUnread(ctx, userID)
}

// UnreadCount returns the badge counter for userID.
func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.notificationRepo.UnreadCount(ctx, userID)
}
