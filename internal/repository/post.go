// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"commune/internal/cache"
	"commune/internal/models"

	"gorm.io/gorm"
)

// FeedSort selects the feed ordering mode.
const (
	SortChronological = "chronological"
	SortRelevant      = "relevant"
)

// PostRepository defines the interface for post data operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	ListByUser(ctx context.Context, userID uint, viewerID uint, limit, offset int) ([]*models.Post, error)
	ListByGroup(ctx context.Context, groupID uint, viewerID uint, limit, offset int) ([]*models.Post, error)
	ListFeedCandidates(ctx context.Context, viewerID uint, friendIDs, blockedIDs []uint, sort string, limit, offset int) ([]*models.Post, error)
	IncrementViewCount(ctx context.Context, id uint) error
	IncrementClickCount(ctx context.Context, id uint) error

	Save(ctx context.Context, userID, postID uint) error
	Unsave(ctx context.Context, userID, postID uint) error
	IsSaved(ctx context.Context, userID, postID uint) (bool, error)
	ListSaved(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// applyPostDetails adds subqueries to fetch counts and the viewer's own
// reaction in a single query.
func (r *postRepository) applyPostDetails(db *gorm.DB, viewerID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL AND comments.is_hidden = FALSE) as comment_count, " +
		"(SELECT COUNT(*) FROM reactions WHERE reactions.subject_type = 'post' AND reactions.subject_id = posts.id) as reaction_count"

	if viewerID != 0 {
		return db.Select(selectQuery+
			", (SELECT type FROM reactions WHERE reactions.subject_type = 'post' AND reactions.subject_id = posts.id AND reactions.user_id = ?) as viewer_reaction",
			viewerID)
	}
	return db.Select(selectQuery + ", NULL as viewer_reaction")
}

func (r *postRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error) {
	var post models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), viewerID).
		Preload("User").
		Preload("User.Profile").
		Preload("Media", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("post")
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

func (r *postRepository) ListByUser(ctx context.Context, userID uint, viewerID uint, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), viewerID).
		Preload("User").
		Preload("User.Profile").
		Preload("Media").
		Where("user_id = ? AND group_id IS NULL", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListByGroup(ctx context.Context, groupID uint, viewerID uint, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), viewerID).
		Preload("User").
		Preload("User.Profile").
		Preload("Media").
		Where("group_id = ?", groupID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// ListFeedCandidates returns posts visible to the viewer: their own, public
// posts, and friends-only posts from friends. Blocked authors (either
// direction) and group-scoped posts are excluded; group content surfaces on
// the group page instead.
func (r *postRepository) ListFeedCandidates(ctx context.Context, viewerID uint, friendIDs, blockedIDs []uint, sort string, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post

	db := r.applyFeedRanking(r.db.WithContext(ctx), viewerID, friendIDs).
		Preload("User").
		Preload("User.Profile").
		Preload("Media").
		Where("group_id IS NULL")

	if len(blockedIDs) > 0 {
		db = db.Where("posts.user_id NOT IN ?", blockedIDs)
	}

	if len(friendIDs) > 0 {
		db = db.Where("posts.visibility = ? OR posts.user_id = ? OR (posts.visibility = ? AND posts.user_id IN ?)",
			models.VisibilityPublic, viewerID, models.VisibilityFriends, friendIDs)
	} else {
		db = db.Where("posts.visibility = ? OR posts.user_id = ?", models.VisibilityPublic, viewerID)
	}

	switch sort {
	case SortRelevant:
		db = db.Order("ranking DESC, created_at DESC, id DESC")
	default:
		db = db.Order("created_at DESC, id DESC")
	}

	if err := db.Limit(limit).Offset(offset).Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// applyFeedRanking extends applyPostDetails with the ranking expression:
// a flat friend bonus plus comment and reaction engagement, comments weighted
// double.
func (r *postRepository) applyFeedRanking(db *gorm.DB, viewerID uint, friendIDs []uint) *gorm.DB {
	const counts = "(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL AND comments.is_hidden = FALSE) as comment_count, " +
		"(SELECT COUNT(*) FROM reactions WHERE reactions.subject_type = 'post' AND reactions.subject_id = posts.id) as reaction_count"

	const engagement = "(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL AND comments.is_hidden = FALSE) * 2 + " +
		"(SELECT COUNT(*) FROM reactions WHERE reactions.subject_type = 'post' AND reactions.subject_id = posts.id)"

	viewerReaction := ", NULL as viewer_reaction"
	args := []interface{}{}
	if viewerID != 0 {
		viewerReaction = ", (SELECT type FROM reactions WHERE reactions.subject_type = 'post' AND reactions.subject_id = posts.id AND reactions.user_id = ?) as viewer_reaction"
		args = append(args, viewerID)
	}

	if len(friendIDs) > 0 {
		query := "posts.*, " + counts +
			", (CASE WHEN posts.user_id IN ? THEN 50 ELSE 0 END) + " + engagement + " as ranking" +
			viewerReaction
		return db.Select(query, append([]interface{}{friendIDs}, args...)...)
	}

	query := "posts.*, " + counts + ", " + engagement + " as ranking" + viewerReaction
	return db.Select(query, args...)
}

func (r *postRepository) IncrementViewCount(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) IncrementClickCount(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("click_count", gorm.Expr("click_count + 1")).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) Save(ctx context.Context, userID, postID uint) error {
	// ON CONFLICT keeps repeated saves idempotent under races.
	if err := r.db.WithContext(ctx).Exec(
		`INSERT INTO saved_posts (user_id, post_id, created_at)
		 VALUES (?, ?, NOW())
		 ON CONFLICT (user_id, post_id) DO NOTHING`,
		userID, postID,
	).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) Unsave(ctx context.Context, userID, postID uint) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.SavedPost{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("saved post")
	}
	return nil
}

func (r *postRepository) IsSaved(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SavedPost{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *postRepository) ListSaved(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), userID).
		Preload("User").
		Preload("User.Profile").
		Preload("Media").
		Joins("JOIN saved_posts sp ON sp.post_id = posts.id").
		Where("sp.user_id = ?", userID).
		Order("sp.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}
