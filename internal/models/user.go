package models

import (
	"time"

	"gorm.io/gorm"
)

// Visibility controls who may see a profile, post, or story.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityFriends Visibility = "friends"
	VisibilityPrivate Visibility = "private"
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityFriends, VisibilityPrivate:
		return true
	}
	return false
}

type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:30;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:255;not null" json:"email,omitempty"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Profile *Profile `gorm:"constraint:OnDelete:CASCADE" json:"profile,omitempty"`
}

// Profile holds display attributes and the owner's privacy policy.
// Every user has exactly one, created at signup.
type Profile struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	FullName    string     `gorm:"size:100" json:"full_name"`
	Bio         string     `gorm:"size:500" json:"bio"`
	AvatarURL   string     `gorm:"size:512" json:"avatar_url"`
	CoverURL    string     `gorm:"size:512" json:"cover_url"`
	Location    string     `gorm:"size:100" json:"location"`
	Work        string     `gorm:"size:100" json:"work"`
	Education   string     `gorm:"size:100" json:"education"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Visibility  Visibility `gorm:"size:16;not null;default:public" json:"visibility"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// UserSummary is the minimal identity set disclosed to viewers who fail a
// privacy check, and the embedded author shape on posts and comments.
type UserSummary struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

func (u *User) Summary() UserSummary {
	s := UserSummary{ID: u.ID, Username: u.Username}
	if u.Profile != nil {
		s.AvatarURL = u.Profile.AvatarURL
	}
	return s
}
