package service

import (
	"context"

	"commune/internal/models"
	"commune/internal/repository"
)

// CommentService provides comment business logic for posts.
type CommentService struct {
	commentRepo      repository.CommentRepository
	postRepo         repository.PostRepository
	relationshipRepo repository.RelationshipRepository
	groupRepo        repository.GroupRepository
	notifications    *NotificationService
}

// NewCommentService returns a new CommentService.
func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	relationshipRepo repository.RelationshipRepository,
	groupRepo repository.GroupRepository,
	notifications *NotificationService,
) *CommentService {
	return &CommentService{
		commentRepo:      commentRepo,
		postRepo:         postRepo,
		relationshipRepo: relationshipRepo,
		groupRepo:        groupRepo,
		notifications:    notifications,
	}
}

// CreateComment adds a comment to a post. Replies attach to a top-level
// comment; replying to a reply is rejected, so threads stay one level deep.
func (s *CommentService) CreateComment(ctx context.Context, userID, postID uint, parentID *uint, content string) (*models.Comment, error) {
	if content == "" {
		return nil, models.NewValidationError("comment content is required")
	}
	if len(content) > 2000 {
		return nil, models.NewValidationError("comment too long (max 2000 characters)")
	}

	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if err := authorizePostView(ctx, s.relationshipRepo, s.groupRepo, userID, post); err != nil {
		return nil, err
	}

	var parent *models.Comment
	if parentID != nil {
		parent, err = s.commentRepo.GetByID(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != postID {
			return nil, models.NewValidationError("parent comment belongs to a different post")
		}
		if parent.ParentID != nil {
			return nil, models.NewValidationError("replies cannot be nested")
		}
	}

	comment := &models.Comment{
		PostID:   postID,
		UserID:   userID,
		ParentID: parentID,
		Content:  content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	// Replies notify the parent comment's author; top-level comments notify
	// the post owner. Notify already drops self-notifications.
	if s.notifications != nil {
		if parent != nil {
			_ = s.notifications.Notify(ctx, parent.UserID, userID, models.NotifReply, post.ID, "replied to your comment")
		} else {
			_ = s.notifications.Notify(ctx, post.UserID, userID, models.NotifComment, post.ID, "commented on your post")
		}
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

// ListComments returns a post's comments threaded one level deep, oldest
// first at both levels. Hidden comments are included only for the post
// owner.
func (s *CommentService) ListComments(ctx context.Context, viewerID, postID uint) ([]models.Comment, error) {
	post, err := s.postRepo.GetByID(ctx, postID, viewerID)
	if err != nil {
		return nil, err
	}
	if err := authorizePostView(ctx, s.relationshipRepo, s.groupRepo, viewerID, post); err != nil {
		return nil, err
	}

	includeHidden := viewerID == post.UserID
	flat, err := s.commentRepo.ListByPost(ctx, postID, includeHidden)
	if err != nil {
		return nil, err
	}
	return threadComments(flat), nil
}

// DeleteComment removes a comment. The comment author and the post owner may
// both delete.
func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		post, err := s.postRepo.GetByID(ctx, comment.PostID, userID)
		if err != nil {
			return err
		}
		if post.UserID != userID {
			return models.NewPermissionError("only the author or post owner can delete a comment")
		}
	}
	return s.commentRepo.Delete(ctx, commentID)
}

// SetCommentHidden hides or unhides a comment on one of the caller's posts.
// Hiding is moderation by the post owner, not deletion.
func (s *CommentService) SetCommentHidden(ctx context.Context, userID, commentID uint, hidden bool) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	post, err := s.postRepo.GetByID(ctx, comment.PostID, userID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewPermissionError("only the post owner can hide comments")
	}
	return s.commentRepo.SetHidden(ctx, commentID, hidden)
}

// threadComments groups a created_at-ascending flat list into top-level
// comments with their replies attached. Replies whose parent was filtered out
// (hidden) are dropped with it.
func threadComments(flat []models.Comment) []models.Comment {
	top := make([]models.Comment, 0, len(flat))
	index := make(map[uint]int, len(flat))

	for _, c := range flat {
		if c.ParentID == nil {
			top = append(top, c)
			index[c.ID] = len(top) - 1
		}
	}
	for _, c := range flat {
		if c.ParentID == nil {
			continue
		}
		if i, ok := index[*c.ParentID]; ok {
			top[i].Replies = append(top[i].Replies, c)
		}
	}
	return top
}
