package models

import "time"

type ReactionType string

const (
	ReactionLike ReactionType = "like"
	ReactionLove ReactionType = "love"
	ReactionHaha ReactionType = "haha"
	ReactionSad  ReactionType = "sad"
)

func (t ReactionType) Valid() bool {
	switch t {
	case ReactionLike, ReactionLove, ReactionHaha, ReactionSad:
		return true
	}
	return false
}

// ReactionSubject names the kind of content a reaction attaches to.
type ReactionSubject string

const (
	SubjectPost          ReactionSubject = "post"
	SubjectComment       ReactionSubject = "comment"
	SubjectSharedPost    ReactionSubject = "shared_post"
	SubjectSharedComment ReactionSubject = "shared_comment"
)

func (s ReactionSubject) Valid() bool {
	switch s {
	case SubjectPost, SubjectComment, SubjectSharedPost, SubjectSharedComment:
		return true
	}
	return false
}

// Reaction is one user's reaction to one subject. The unique index makes the
// toggle semantics enforceable at the database level: at most one row per
// (user, subject).
type Reaction struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      uint            `gorm:"not null;uniqueIndex:idx_reaction_subject" json:"user_id"`
	SubjectType ReactionSubject `gorm:"size:20;not null;uniqueIndex:idx_reaction_subject" json:"subject_type"`
	SubjectID   uint            `gorm:"not null;uniqueIndex:idx_reaction_subject" json:"subject_id"`
	Type        ReactionType    `gorm:"size:10;not null" json:"type"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	User *User `json:"user,omitempty"`
}
