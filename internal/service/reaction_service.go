package service

import (
	"context"
	"fmt"

	"commune/internal/models"
	"commune/internal/repository"
)

// ReactionService provides polymorphic reaction business logic for posts,
// comments, shared posts and shared-post comments. Story reactions live with
// the story service.
type ReactionService struct {
	reactionRepo     repository.ReactionRepository
	postRepo         repository.PostRepository
	commentRepo      repository.CommentRepository
	sharedPostRepo   repository.SharedPostRepository
	relationshipRepo repository.RelationshipRepository
	groupRepo        repository.GroupRepository
	notifications    *NotificationService
}

// NewReactionService returns a new ReactionService.
func NewReactionService(
	reactionRepo repository.ReactionRepository,
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	sharedPostRepo repository.SharedPostRepository,
	relationshipRepo repository.RelationshipRepository,
	groupRepo repository.GroupRepository,
	notifications *NotificationService,
) *ReactionService {
	return &ReactionService{
		reactionRepo:     reactionRepo,
		postRepo:         postRepo,
		commentRepo:      commentRepo,
		sharedPostRepo:   sharedPostRepo,
		relationshipRepo: relationshipRepo,
		groupRepo:        groupRepo,
		notifications:    notifications,
	}
}

// ToggleResult reports what a toggle did. Reaction is nil when the toggle
// removed an existing reaction.
type ToggleResult struct {
	Outcome  repository.ToggleOutcome `json:"outcome"`
	Reaction *models.Reaction         `json:"reaction,omitempty"`
}

// Toggle applies the reaction state machine to a subject: reacting fresh
// creates, repeating the same type removes, a different type swaps in place.
// Creates and swaps notify the subject's owner; removals are silent.
func (s *ReactionService) Toggle(ctx context.Context, userID uint, subject models.ReactionSubject, subjectID uint, reactionType models.ReactionType) (*ToggleResult, error) {
	if !subject.Valid() {
		return nil, models.NewValidationError("invalid reaction subject")
	}
	if !reactionType.Valid() {
		return nil, models.NewValidationError("invalid reaction type")
	}

	ownerID, err := s.resolveSubjectOwner(ctx, userID, subject, subjectID)
	if err != nil {
		return nil, err
	}

	outcome, reaction, err := s.reactionRepo.Toggle(ctx, userID, subject, subjectID, reactionType)
	if err != nil {
		return nil, err
	}

	if outcome != repository.ToggleRemoved && s.notifications != nil {
		verb := "reacted to"
		if outcome == repository.ToggleUpdated {
			verb = "changed their reaction to"
		}
		message := fmt.Sprintf("%s your %s", verb, subjectLabel(subject))
		_ = s.notifications.Notify(ctx, ownerID, userID, models.NotifReaction, subjectID, message)
	}
	return &ToggleResult{Outcome: outcome, Reaction: reaction}, nil
}

// List returns a subject's reactions, newest first.
func (s *ReactionService) List(ctx context.Context, viewerID uint, subject models.ReactionSubject, subjectID uint, limit, offset int) ([]models.Reaction, error) {
	if !subject.Valid() {
		return nil, models.NewValidationError("invalid reaction subject")
	}
	if _, err := s.resolveSubjectOwner(ctx, viewerID, subject, subjectID); err != nil {
		return nil, err
	}
	return s.reactionRepo.ListBySubject(ctx, subject, subjectID, limit, offset)
}

// resolveSubjectOwner loads the subject, runs the same access gate viewing it
// would, and returns the owning user.
func (s *ReactionService) resolveSubjectOwner(ctx context.Context, viewerID uint, subject models.ReactionSubject, subjectID uint) (uint, error) {
	switch subject {
	case models.SubjectPost:
		post, err := s.postRepo.GetByID(ctx, subjectID, viewerID)
		if err != nil {
			return 0, err
		}
		if err := authorizePostView(ctx, s.relationshipRepo, s.groupRepo, viewerID, post); err != nil {
			return 0, err
		}
		return post.UserID, nil

	case models.SubjectComment:
		comment, err := s.commentRepo.GetByID(ctx, subjectID)
		if err != nil {
			return 0, err
		}
		post, err := s.postRepo.GetByID(ctx, comment.PostID, viewerID)
		if err != nil {
			return 0, err
		}
		if err := authorizePostView(ctx, s.relationshipRepo, s.groupRepo, viewerID, post); err != nil {
			return 0, err
		}
		return comment.UserID, nil

	case models.SubjectSharedPost:
		share, err := s.sharedPostRepo.GetByID(ctx, subjectID)
		if err != nil {
			return 0, err
		}
		if err := s.authorizeShareView(ctx, viewerID, share.UserID); err != nil {
			return 0, err
		}
		return share.UserID, nil

	case models.SubjectSharedComment:
		comment, err := s.sharedPostRepo.GetCommentByID(ctx, subjectID)
		if err != nil {
			return 0, err
		}
		if err := s.authorizeShareView(ctx, viewerID, comment.UserID); err != nil {
			return 0, err
		}
		return comment.UserID, nil

	default:
		return 0, models.NewValidationError("invalid reaction subject")
	}
}

func (s *ReactionService) authorizeShareView(ctx context.Context, viewerID, ownerID uint) error {
	if viewerID == ownerID {
		return nil
	}
	blocked, err := s.relationshipRepo.IsBlockedEitherDirection(ctx, viewerID, ownerID)
	if err != nil {
		return err
	}
	if blocked {
		return models.NewNotFoundError("shared post")
	}
	return nil
}

func subjectLabel(subject models.ReactionSubject) string {
	switch subject {
	case models.SubjectPost:
		return "post"
	case models.SubjectComment:
		return "comment"
	case models.SubjectSharedPost:
		return "shared post"
	case models.SubjectSharedComment:
		return "comment"
	default:
		return "content"
	}
}
