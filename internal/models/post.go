package models

import (
	"time"

	"gorm.io/gorm"
)

type Post struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     uint           `gorm:"not null;index" json:"user_id"`
	GroupID    *uint          `gorm:"index" json:"group_id,omitempty"`
	Content    string         `gorm:"type:text" json:"content"`
	Visibility Visibility     `gorm:"size:16;not null;default:public" json:"visibility"`
	ViewCount  int64          `gorm:"not null;default:0" json:"view_count"`
	ClickCount int64          `gorm:"not null;default:0" json:"click_count"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	User  *User       `json:"user,omitempty"`
	Media []PostMedia `gorm:"constraint:OnDelete:CASCADE" json:"media,omitempty"`

	// Populated by repository subqueries, never written back.
	CommentCount  int64 `gorm:"->;-:migration" json:"comment_count"`
	ReactionCount int64 `gorm:"->;-:migration" json:"reaction_count"`

	// Ranking is computed per viewer by the feed composer.
	Ranking int64 `gorm:"-" json:"ranking,omitempty"`

	// ViewerReaction is the requesting user's own reaction type, if any.
	ViewerReaction string `gorm:"->;-:migration" json:"viewer_reaction,omitempty"`
}

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

func (t MediaType) Valid() bool {
	switch t {
	case MediaImage, MediaVideo:
		return true
	}
	return false
}

type PostMedia struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PostID     uint      `gorm:"not null;index" json:"post_id"`
	Type       MediaType `gorm:"size:16;not null" json:"type"`
	URL        string    `gorm:"size:512;not null" json:"url"`
	OrderIndex int       `gorm:"not null;default:0" json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
}

func (PostMedia) TableName() string { return "post_media" }

// SharedPost republishes an existing post to the sharer's timeline. Shares of
// shares keep a pointer to the intermediate share but always reference the
// root original post, so a deleted intermediary never breaks the chain.
type SharedPost struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UserID         uint           `gorm:"not null;index" json:"user_id"`
	OriginalPostID uint           `gorm:"not null;index" json:"original_post_id"`
	ParentShareID  *uint          `json:"parent_share_id,omitempty"`
	ShareText      string         `gorm:"type:text" json:"share_text"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	User         *User `json:"user,omitempty"`
	OriginalPost *Post `gorm:"foreignKey:OriginalPostID" json:"original_post,omitempty"`

	CommentCount  int64 `gorm:"->;-:migration" json:"comment_count"`
	ReactionCount int64 `gorm:"->;-:migration" json:"reaction_count"`
}

// SavedPost bookmarks a post for later reading.
type SavedPost struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_saved_post_pair" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_saved_post_pair" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`

	Post *Post `json:"post,omitempty"`
}
