package models

import (
	"time"

	"gorm.io/gorm"
)

// GroupPrivacy controls discoverability and join flow. Public groups are
// joinable instantly, private groups queue a join request, secret groups are
// invisible to non-members.
type GroupPrivacy string

const (
	GroupPublic  GroupPrivacy = "public"
	GroupPrivate GroupPrivacy = "private"
	GroupSecret  GroupPrivacy = "secret"
)

func (p GroupPrivacy) Valid() bool {
	switch p {
	case GroupPublic, GroupPrivate, GroupSecret:
		return true
	}
	return false
}

type Group struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatorID   uint           `gorm:"not null;index" json:"creator_id"`
	Name        string         `gorm:"size:100;not null" json:"name"`
	Description string         `gorm:"size:1000" json:"description"`
	CoverURL    string         `gorm:"size:512" json:"cover_url"`
	Privacy     GroupPrivacy   `gorm:"size:16;not null;default:public" json:"privacy"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Creator *User `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`

	MemberCount int64 `gorm:"->;-:migration" json:"member_count"`
}

type MembershipRole string

const (
	RoleMember MembershipRole = "member"
	RoleAdmin  MembershipRole = "admin"
)

type MembershipStatus string

const (
	MembershipPending  MembershipStatus = "pending"
	MembershipApproved MembershipStatus = "approved"
	MembershipRejected MembershipStatus = "rejected"
)

type GroupMembership struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	GroupID   uint             `gorm:"not null;uniqueIndex:idx_group_member_pair" json:"group_id"`
	UserID    uint             `gorm:"not null;uniqueIndex:idx_group_member_pair" json:"user_id"`
	Role      MembershipRole   `gorm:"size:16;not null;default:member" json:"role"`
	Status    MembershipStatus `gorm:"size:16;not null;default:pending" json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`

	User *User `json:"user,omitempty"`
}
