package models

import "time"

// ConnectionType distinguishes the two relationship edges. Friend edges are
// mutual once accepted; follower edges are one-way and auto-accepted.
type ConnectionType string

const (
	ConnectionFriend   ConnectionType = "friend"
	ConnectionFollower ConnectionType = "follower"
)

type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionDeclined ConnectionStatus = "declined"
)

// Connection is a directed edge from requester to target. A single accepted
// friend edge stands for the mutual friendship in both directions.
type Connection struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	RequesterID uint             `gorm:"not null;uniqueIndex:idx_connection_edge" json:"requester_id"`
	TargetID    uint             `gorm:"not null;uniqueIndex:idx_connection_edge" json:"target_id"`
	Type        ConnectionType   `gorm:"size:16;not null;uniqueIndex:idx_connection_edge" json:"type"`
	Status      ConnectionStatus `gorm:"size:16;not null;default:pending" json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`

	Requester *User `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Target    *User `gorm:"foreignKey:TargetID" json:"target,omitempty"`
}

// UserBlock is a directed block. Its effect is bidirectional: while the row
// exists neither side can see or interact with the other.
type UserBlock struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BlockerID uint      `gorm:"not null;uniqueIndex:idx_user_block_pair" json:"blocker_id"`
	BlockedID uint      `gorm:"not null;uniqueIndex:idx_user_block_pair" json:"blocked_id"`
	CreatedAt time.Time `json:"created_at"`

	Blocked *User `gorm:"foreignKey:BlockedID" json:"blocked,omitempty"`
}
