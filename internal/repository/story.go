package repository

import (
	"context"
	"errors"
	"time"

	"commune/internal/models"

	"gorm.io/gorm"
)

// StoryRepository defines the interface for story data operations.
type StoryRepository interface {
	Create(ctx context.Context, story *models.Story) error
	GetByID(ctx context.Context, id uint) (*models.Story, error)
	Delete(ctx context.Context, id uint) error
	// ListActive returns unexpired stories by authors the viewer is not
	// blocked against; visibility filtering happens in the service, which
	// knows the viewer's friend and follower sets.
	ListActive(ctx context.Context, now time.Time, blockedIDs []uint) ([]models.Story, error)
	ListActiveByUser(ctx context.Context, userID uint, now time.Time) ([]models.Story, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)

	AddView(ctx context.Context, storyID, viewerID uint) error
	ListViews(ctx context.Context, storyID uint) ([]models.StoryView, error)
	React(ctx context.Context, storyID, userID uint, reactionType models.ReactionType) error
	RemoveReaction(ctx context.Context, storyID, userID uint) error
}

type storyRepository struct {
	db *gorm.DB
}

// NewStoryRepository creates a new story repository.
func NewStoryRepository(db *gorm.DB) StoryRepository {
	return &storyRepository{db: db}
}

func (r *storyRepository) applyStoryDetails(db *gorm.DB) *gorm.DB {
	return db.Select("stories.*, " +
		"(SELECT COUNT(*) FROM story_views WHERE story_views.story_id = stories.id) as view_count, " +
		"(SELECT COUNT(*) FROM story_reactions WHERE story_reactions.story_id = stories.id) as reaction_count")
}

func (r *storyRepository) Create(ctx context.Context, story *models.Story) error {
	if story.ExpiresAt.IsZero() {
		story.ExpiresAt = time.Now().UTC().Add(models.StoryLifetime)
	}
	if err := r.db.WithContext(ctx).Create(story).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *storyRepository) GetByID(ctx context.Context, id uint) (*models.Story, error) {
	var story models.Story
	err := r.applyStoryDetails(r.db.WithContext(ctx)).
		Preload("User").
		Preload("User.Profile").
		First(&story, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("story")
		}
		return nil, models.NewInternalError(err)
	}
	return &story, nil
}

func (r *storyRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Story{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *storyRepository) ListActive(ctx context.Context, now time.Time, blockedIDs []uint) ([]models.Story, error) {
	var stories []models.Story
	db := r.applyStoryDetails(r.db.WithContext(ctx)).
		Preload("User").
		Preload("User.Profile").
		Where("expires_at > ?", now)
	if len(blockedIDs) > 0 {
		db = db.Where("user_id NOT IN ?", blockedIDs)
	}
	if err := db.Order("created_at DESC").Find(&stories).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return stories, nil
}

func (r *storyRepository) ListActiveByUser(ctx context.Context, userID uint, now time.Time) ([]models.Story, error) {
	var stories []models.Story
	err := r.applyStoryDetails(r.db.WithContext(ctx)).
		Preload("User").
		Preload("User.Profile").
		Where("user_id = ? AND expires_at > ?", userID, now).
		Order("created_at ASC").
		Find(&stories).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return stories, nil
}

// DeleteExpired hard-deletes stories past their expiry, for the background
// sweeper. Views and reactions cascade at the database level.
func (r *storyRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&models.Story{})
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *storyRepository) AddView(ctx context.Context, storyID, viewerID uint) error {
	// Repeat views are idempotent.
	if err := r.db.WithContext(ctx).Exec(
		`INSERT INTO story_views (story_id, viewer_id, created_at)
		 VALUES (?, ?, NOW())
		 ON CONFLICT (story_id, viewer_id) DO NOTHING`,
		storyID, viewerID,
	).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *storyRepository) ListViews(ctx context.Context, storyID uint) ([]models.StoryView, error) {
	var views []models.StoryView
	if err := r.db.WithContext(ctx).
		Preload("Viewer").
		Preload("Viewer.Profile").
		Where("story_id = ?", storyID).
		Order("created_at ASC").
		Find(&views).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return views, nil
}

func (r *storyRepository) React(ctx context.Context, storyID, userID uint, reactionType models.ReactionType) error {
	if err := r.db.WithContext(ctx).Exec(
		`INSERT INTO story_reactions (story_id, user_id, type, created_at)
		 VALUES (?, ?, ?, NOW())
		 ON CONFLICT (story_id, user_id) DO UPDATE SET type = EXCLUDED.type`,
		storyID, userID, reactionType,
	).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *storyRepository) RemoveReaction(ctx context.Context, storyID, userID uint) error {
	res := r.db.WithContext(ctx).
		Where("story_id = ? AND user_id = ?", storyID, userID).
		Delete(&models.StoryReaction{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("reaction")
	}
	return nil
}
