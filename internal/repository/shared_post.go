package repository

import (
	"context"
	"errors"

	"commune/internal/models"

	"gorm.io/gorm"
)

// SharedPostRepository defines the interface for shared post data operations.
type SharedPostRepository interface {
	Create(ctx context.Context, share *models.SharedPost) error
	GetByID(ctx context.Context, id uint) (*models.SharedPost, error)
	Delete(ctx context.Context, id uint) error
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.SharedPost, error)
	ListFeedCandidates(ctx context.Context, viewerID uint, blockedIDs []uint, limit, offset int) ([]*models.SharedPost, error)

	CreateComment(ctx context.Context, comment *models.SharedPostComment) error
	GetCommentByID(ctx context.Context, id uint) (*models.SharedPostComment, error)
	DeleteComment(ctx context.Context, id uint) error
	ListComments(ctx context.Context, sharedPostID uint, limit, offset int) ([]models.SharedPostComment, error)
}

type sharedPostRepository struct {
	db *gorm.DB
}

// NewSharedPostRepository creates a new shared post repository.
func NewSharedPostRepository(db *gorm.DB) SharedPostRepository {
	return &sharedPostRepository{db: db}
}

// applyShareDetails adds count subqueries for the share's own thread.
func (r *sharedPostRepository) applyShareDetails(db *gorm.DB) *gorm.DB {
	return db.Select("shared_posts.*, " +
		"(SELECT COUNT(*) FROM shared_post_comments WHERE shared_post_comments.shared_post_id = shared_posts.id AND shared_post_comments.deleted_at IS NULL) as comment_count, " +
		"(SELECT COUNT(*) FROM reactions WHERE reactions.subject_type = 'shared_post' AND reactions.subject_id = shared_posts.id) as reaction_count")
}

func (r *sharedPostRepository) Create(ctx context.Context, share *models.SharedPost) error {
	if err := r.db.WithContext(ctx).Create(share).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *sharedPostRepository) GetByID(ctx context.Context, id uint) (*models.SharedPost, error) {
	var share models.SharedPost
	err := r.applyShareDetails(r.db.WithContext(ctx)).
		Preload("User").
		Preload("User.Profile").
		Preload("OriginalPost").
		Preload("OriginalPost.User").
		Preload("OriginalPost.User.Profile").
		Preload("OriginalPost.Media").
		First(&share, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("shared post")
		}
		return nil, models.NewInternalError(err)
	}
	return &share, nil
}

func (r *sharedPostRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.SharedPost{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *sharedPostRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.SharedPost, error) {
	var shares []*models.SharedPost
	err := r.applyShareDetails(r.db.WithContext(ctx)).
		Preload("User").
		Preload("User.Profile").
		Preload("OriginalPost").
		Preload("OriginalPost.User").
		Preload("OriginalPost.User.Profile").
		Preload("OriginalPost.Media").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&shares).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return shares, nil
}

// ListFeedCandidates returns shares for the feed in reverse chronological
// order. Shares are filtered on blocks only; the original post's visibility
// stays with the original author's audience choice at share time.
func (r *sharedPostRepository) ListFeedCandidates(ctx context.Context, viewerID uint, blockedIDs []uint, limit, offset int) ([]*models.SharedPost, error) {
	var shares []*models.SharedPost
	db := r.applyShareDetails(r.db.WithContext(ctx)).
		Preload("User").
		Preload("User.Profile").
		Preload("OriginalPost").
		Preload("OriginalPost.User").
		Preload("OriginalPost.User.Profile").
		Preload("OriginalPost.Media")

	if len(blockedIDs) > 0 {
		db = db.Where("shared_posts.user_id NOT IN ?", blockedIDs).
			Where("NOT EXISTS (SELECT 1 FROM posts p WHERE p.id = shared_posts.original_post_id AND p.user_id IN ?)", blockedIDs)
	}

	err := db.Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&shares).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return shares, nil
}

func (r *sharedPostRepository) CreateComment(ctx context.Context, comment *models.SharedPostComment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *sharedPostRepository) GetCommentByID(ctx context.Context, id uint) (*models.SharedPostComment, error) {
	var comment models.SharedPostComment
	if err := r.db.WithContext(ctx).Preload("User").Preload("User.Profile").First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("comment")
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

func (r *sharedPostRepository) DeleteComment(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.SharedPostComment{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *sharedPostRepository) ListComments(ctx context.Context, sharedPostID uint, limit, offset int) ([]models.SharedPostComment, error) {
	var comments []models.SharedPostComment
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("User.Profile").
		Where("shared_post_id = ?", sharedPostID).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}
