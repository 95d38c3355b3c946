package repository

import (
	"context"
	"errors"

	"commune/internal/cache"
	"commune/internal/models"

	"gorm.io/gorm"
)

// GroupRepository defines the interface for group and membership data
// operations.
type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id uint) (*models.Group, error)
	Update(ctx context.Context, group *models.Group) error
	Delete(ctx context.Context, id uint) error
	// Search matches group names case-insensitively. Secret groups are
	// excluded unless the searcher is a member.
	Search(ctx context.Context, query string, searcherID uint, limit, offset int) ([]models.Group, error)
	ListByMember(ctx context.Context, userID uint) ([]models.Group, error)

	CreateMembership(ctx context.Context, membership *models.GroupMembership) error
	GetMembership(ctx context.Context, groupID, userID uint) (*models.GroupMembership, error)
	GetMembershipByID(ctx context.Context, id uint) (*models.GroupMembership, error)
	UpdateMembership(ctx context.Context, membership *models.GroupMembership) error
	DeleteMembership(ctx context.Context, groupID, userID uint) error
	ListMembers(ctx context.Context, groupID uint, limit, offset int) ([]models.GroupMembership, error)
	ListPendingRequests(ctx context.Context, groupID uint) ([]models.GroupMembership, error)
	CountAdmins(ctx context.Context, groupID uint) (int64, error)
}

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository creates a new group repository.
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) applyGroupDetails(db *gorm.DB) *gorm.DB {
	return db.Select("groups.*, " +
		"(SELECT COUNT(*) FROM group_memberships gm WHERE gm.group_id = groups.id AND gm.status = 'approved') as member_count")
}

func (r *groupRepository) Create(ctx context.Context, group *models.Group) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		// The creator joins as an approved admin in the same transaction.
		return tx.Create(&models.GroupMembership{
			GroupID: group.ID,
			UserID:  group.CreatorID,
			Role:    models.RoleAdmin,
			Status:  models.MembershipApproved,
		}).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *groupRepository) GetByID(ctx context.Context, id uint) (*models.Group, error) {
	var group models.Group
	err := cache.Aside(ctx, cache.GroupKey(id), &group, cache.GroupTTL, func() error {
		err := r.applyGroupDetails(r.db.WithContext(ctx)).
			Preload("Creator").
			Preload("Creator.Profile").
			First(&group, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("group")
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepository) Update(ctx context.Context, group *models.Group) error {
	if err := r.db.WithContext(ctx).Save(group).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateGroup(ctx, group.ID)
	return nil
}

func (r *groupRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Group{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateGroup(ctx, id)
	return nil
}

func (r *groupRepository) Search(ctx context.Context, query string, searcherID uint, limit, offset int) ([]models.Group, error) {
	var groups []models.Group
	err := r.applyGroupDetails(r.db.WithContext(ctx)).
		Where("groups.name ILIKE ?", "%"+query+"%").
		Where(`groups.privacy <> 'secret' OR EXISTS (
			SELECT 1 FROM group_memberships gm
			WHERE gm.group_id = groups.id AND gm.user_id = ? AND gm.status = 'approved')`, searcherID).
		Order("member_count DESC, groups.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&groups).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return groups, nil
}

func (r *groupRepository) ListByMember(ctx context.Context, userID uint) ([]models.Group, error) {
	var groups []models.Group
	err := r.applyGroupDetails(r.db.WithContext(ctx)).
		Joins("JOIN group_memberships m ON m.group_id = groups.id").
		Where("m.user_id = ? AND m.status = 'approved'", userID).
		Order("groups.name ASC").
		Find(&groups).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return groups, nil
}

func (r *groupRepository) CreateMembership(ctx context.Context, membership *models.GroupMembership) error {
	if err := r.db.WithContext(ctx).Create(membership).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("membership already exists")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateGroup(ctx, membership.GroupID)
	return nil
}

func (r *groupRepository) GetMembershipByID(ctx context.Context, id uint) (*models.GroupMembership, error) {
	var m models.GroupMembership
	err := r.db.WithContext(ctx).First(&m, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("membership request")
		}
		return nil, models.NewInternalError(err)
	}
	return &m, nil
}

func (r *groupRepository) GetMembership(ctx context.Context, groupID, userID uint) (*models.GroupMembership, error) {
	var m models.GroupMembership
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &m, nil
}

func (r *groupRepository) UpdateMembership(ctx context.Context, membership *models.GroupMembership) error {
	if err := r.db.WithContext(ctx).Save(membership).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateGroup(ctx, membership.GroupID)
	return nil
}

func (r *groupRepository) DeleteMembership(ctx context.Context, groupID, userID uint) error {
	res := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.GroupMembership{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("membership")
	}
	cache.InvalidateGroup(ctx, groupID)
	return nil
}

func (r *groupRepository) ListMembers(ctx context.Context, groupID uint, limit, offset int) ([]models.GroupMembership, error) {
	var members []models.GroupMembership
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("User.Profile").
		Where("group_id = ? AND status = 'approved'", groupID).
		Order("role ASC, created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&members).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return members, nil
}

func (r *groupRepository) ListPendingRequests(ctx context.Context, groupID uint) ([]models.GroupMembership, error) {
	var pending []models.GroupMembership
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("User.Profile").
		Where("group_id = ? AND status = 'pending'", groupID).
		Order("created_at ASC").
		Find(&pending).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return pending, nil
}

// CountAdmins guards against removing or demoting the last admin.
func (r *groupRepository) CountAdmins(ctx context.Context, groupID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.GroupMembership{}).
		Where("group_id = ? AND role = 'admin' AND status = 'approved'", groupID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
