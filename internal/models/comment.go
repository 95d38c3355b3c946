package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment belongs to a post. Nesting is one level deep: a reply's ParentID
// points at a top-level comment, never at another reply.
type Comment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	PostID    uint           `gorm:"not null;index" json:"post_id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	ParentID  *uint          `gorm:"index" json:"parent_id,omitempty"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	IsHidden  bool           `gorm:"not null;default:false" json:"is_hidden"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User    *User     `json:"user,omitempty"`
	Replies []Comment `gorm:"-" json:"replies,omitempty"`

	ReactionCount int64 `gorm:"->;-:migration" json:"reaction_count"`
}

// SharedPostComment is a flat comment on a shared post. Shares carry their
// own comment thread, separate from the original post's.
type SharedPostComment struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	SharedPostID uint           `gorm:"not null;index" json:"shared_post_id"`
	UserID       uint           `gorm:"not null;index" json:"user_id"`
	Content      string         `gorm:"type:text;not null" json:"content"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	User *User `json:"user,omitempty"`
}
