package models

import "time"

// StoryLifetime is how long a story stays visible after creation.
const StoryLifetime = 24 * time.Hour

type Story struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	Content    string     `gorm:"size:500" json:"content"`
	MediaURL   string     `gorm:"size:512" json:"media_url"`
	MediaType  MediaType  `gorm:"size:16" json:"media_type"`
	Visibility Visibility `gorm:"size:16;not null;default:public" json:"visibility"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  time.Time  `gorm:"index;not null" json:"expires_at"`

	User *User `json:"user,omitempty"`

	ViewCount     int64 `gorm:"->;-:migration" json:"view_count"`
	ReactionCount int64 `gorm:"->;-:migration" json:"reaction_count"`
}

func (s *Story) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// StoryView records that a viewer opened a story. One row per viewer.
type StoryView struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StoryID   uint      `gorm:"not null;uniqueIndex:idx_story_view_pair" json:"story_id"`
	ViewerID  uint      `gorm:"not null;uniqueIndex:idx_story_view_pair" json:"viewer_id"`
	CreatedAt time.Time `json:"created_at"`

	Viewer *User `gorm:"foreignKey:ViewerID" json:"viewer,omitempty"`
}

// StoryReaction is limited to the love type; the service layer rejects
// anything else.
type StoryReaction struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	StoryID   uint         `gorm:"not null;uniqueIndex:idx_story_reaction_pair" json:"story_id"`
	UserID    uint         `gorm:"not null;uniqueIndex:idx_story_reaction_pair" json:"user_id"`
	Type      ReactionType `gorm:"size:10;not null" json:"type"`
	CreatedAt time.Time    `json:"created_at"`
}
