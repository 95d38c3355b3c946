package repository

import (
	"context"
	"errors"

	"commune/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ToggleOutcome names the state transition a reaction toggle performed.
type ToggleOutcome string

const (
	ToggleCreated ToggleOutcome = "created"
	ToggleUpdated ToggleOutcome = "updated"
	ToggleRemoved ToggleOutcome = "removed"
)

// ReactionRepository defines the interface for reaction data operations.
type ReactionRepository interface {
	// Toggle applies the reaction state machine atomically: no existing
	// reaction creates one, the same type removes it, a different type
	// updates it in place.
	Toggle(ctx context.Context, userID uint, subject models.ReactionSubject, subjectID uint, reactionType models.ReactionType) (ToggleOutcome, *models.Reaction, error)
	Get(ctx context.Context, userID uint, subject models.ReactionSubject, subjectID uint) (*models.Reaction, error)
	ListBySubject(ctx context.Context, subject models.ReactionSubject, subjectID uint, limit, offset int) ([]models.Reaction, error)
	CountBySubject(ctx context.Context, subject models.ReactionSubject, subjectID uint) (int64, error)
}

type reactionRepository struct {
	db *gorm.DB
}

// NewReactionRepository creates a new reaction repository.
func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

func (r *reactionRepository) Toggle(ctx context.Context, userID uint, subject models.ReactionSubject, subjectID uint, reactionType models.ReactionType) (ToggleOutcome, *models.Reaction, error) {
	var outcome ToggleOutcome
	var reaction models.Reaction

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Reaction
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND subject_type = ? AND subject_id = ?", userID, subject, subjectID).
			First(&existing).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			reaction = models.Reaction{
				UserID:      userID,
				SubjectType: subject,
				SubjectID:   subjectID,
				Type:        reactionType,
			}
			if err := tx.Create(&reaction).Error; err != nil {
				if isUniqueConstraintError(err) {
					// Lost a race with a concurrent toggle; treat as a
					// no-op removal so the caller does not double-notify.
					outcome = ToggleRemoved
					return nil
				}
				return err
			}
			outcome = ToggleCreated
			return nil

		case err != nil:
			return err

		case existing.Type == reactionType:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			outcome = ToggleRemoved
			return nil

		default:
			existing.Type = reactionType
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			reaction = existing
			outcome = ToggleUpdated
			return nil
		}
	})
	if err != nil {
		return "", nil, models.NewInternalError(err)
	}
	if outcome == ToggleRemoved {
		return outcome, nil, nil
	}
	return outcome, &reaction, nil
}

func (r *reactionRepository) Get(ctx context.Context, userID uint, subject models.ReactionSubject, subjectID uint) (*models.Reaction, error) {
	var reaction models.Reaction
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND subject_type = ? AND subject_id = ?", userID, subject, subjectID).
		First(&reaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &reaction, nil
}

func (r *reactionRepository) ListBySubject(ctx context.Context, subject models.ReactionSubject, subjectID uint, limit, offset int) ([]models.Reaction, error) {
	var reactions []models.Reaction
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("User.Profile").
		Where("subject_type = ? AND subject_id = ?", subject, subjectID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&reactions).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return reactions, nil
}

func (r *reactionRepository) CountBySubject(ctx context.Context, subject models.ReactionSubject, subjectID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Reaction{}).
		Where("subject_type = ? AND subject_id = ?", subject, subjectID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
