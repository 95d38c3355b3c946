package models

import "time"

type NotificationType string

const (
	NotifFriendRequest    NotificationType = "friend_request"
	NotifFriendAccept     NotificationType = "friend_accept"
	NotifComment          NotificationType = "comment"
	NotifReply            NotificationType = "reply"
	NotifReaction         NotificationType = "reaction"
	NotifGroupInvite      NotificationType = "group_invite"
	NotifGroupUpdate      NotificationType = "group_update"
	NotifFollowerActivity NotificationType = "follower_activity"
)

// Notification is the persisted record behind every real-time push. Rows are
// written before any publish so delivery failures never lose a notification.
type Notification struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	UserID      uint             `gorm:"not null;index:idx_notification_user_read" json:"user_id"`
	ActorID     uint             `gorm:"not null" json:"actor_id"`
	Type        NotificationType `gorm:"size:32;not null" json:"type"`
	ReferenceID uint             `json:"reference_id"`
	Message     string           `gorm:"size:500;not null" json:"message"`
	IsRead      bool             `gorm:"not null;default:false;index:idx_notification_user_read" json:"is_read"`
	CreatedAt   time.Time        `json:"created_at"`

	Actor *User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}
