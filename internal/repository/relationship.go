package repository

import (
	"context"
	"errors"

	"commune/internal/cache"
	"commune/internal/models"

	"gorm.io/gorm"
)

// RelationshipRepository is the single store for friend edges, follower
// edges, and blocks. A friend edge is mutual once accepted regardless of
// which side requested it; follower edges are one-way.
type RelationshipRepository interface {
	CreateConnection(ctx context.Context, conn *models.Connection) error
	GetConnection(ctx context.Context, requesterID, targetID uint, connType models.ConnectionType) (*models.Connection, error)
	GetFriendEdge(ctx context.Context, userID1, userID2 uint) (*models.Connection, error)
	GetConnectionByID(ctx context.Context, id uint) (*models.Connection, error)
	UpdateStatus(ctx context.Context, connectionID uint, status models.ConnectionStatus) error
	DeleteConnection(ctx context.Context, connectionID uint) error
	RemoveFriendEdge(ctx context.Context, userID1, userID2 uint) error
	RemoveFollowEdge(ctx context.Context, followerID, followeeID uint) error

	IsFriend(ctx context.Context, userID1, userID2 uint) (bool, error)
	IsFollower(ctx context.Context, followerID, followeeID uint) (bool, error)
	FriendIDs(ctx context.Context, userID uint) ([]uint, error)
	FollowingIDs(ctx context.Context, userID uint) ([]uint, error)
	GetFriends(ctx context.Context, userID uint) ([]models.User, error)
	GetFollowers(ctx context.Context, userID uint) ([]models.User, error)
	GetFollowing(ctx context.Context, userID uint) ([]models.User, error)
	GetPendingRequests(ctx context.Context, userID uint) ([]models.Connection, error)
	GetSentRequests(ctx context.Context, userID uint) ([]models.Connection, error)

	Block(ctx context.Context, blockerID, blockedID uint) error
	Unblock(ctx context.Context, blockerID, blockedID uint) error
	IsBlockedEitherDirection(ctx context.Context, userID1, userID2 uint) (bool, error)
	BlockedIDs(ctx context.Context, userID uint) ([]uint, error)
	GetBlockedUsers(ctx context.Context, blockerID uint) ([]models.UserBlock, error)
}

type relationshipRepository struct {
	db *gorm.DB
}

// NewRelationshipRepository creates a new relationship repository.
func NewRelationshipRepository(db *gorm.DB) RelationshipRepository {
	return &relationshipRepository{db: db}
}

func (r *relationshipRepository) CreateConnection(ctx context.Context, conn *models.Connection) error {
	if err := r.db.WithContext(ctx).Create(conn).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("connection already exists")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateRelations(ctx, conn.RequesterID, conn.TargetID)
	return nil
}

func (r *relationshipRepository) GetConnection(ctx context.Context, requesterID, targetID uint, connType models.ConnectionType) (*models.Connection, error) {
	var conn models.Connection
	if err := r.db.WithContext(ctx).
		Where("requester_id = ? AND target_id = ? AND type = ?", requesterID, targetID, connType).
		First(&conn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &conn, nil
}

func (r *relationshipRepository) GetFriendEdge(ctx context.Context, userID1, userID2 uint) (*models.Connection, error) {
	var conn models.Connection
	if err := r.db.WithContext(ctx).
		Where("type = ? AND ((requester_id = ? AND target_id = ?) OR (requester_id = ? AND target_id = ?))",
			models.ConnectionFriend, userID1, userID2, userID2, userID1).
		Preload("Requester").
		Preload("Target").
		First(&conn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &conn, nil
}

func (r *relationshipRepository) GetConnectionByID(ctx context.Context, id uint) (*models.Connection, error) {
	var conn models.Connection
	if err := r.db.WithContext(ctx).Preload("Requester").Preload("Target").First(&conn, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("connection")
		}
		return nil, models.NewInternalError(err)
	}
	return &conn, nil
}

func (r *relationshipRepository) UpdateStatus(ctx context.Context, connectionID uint, status models.ConnectionStatus) error {
	var conn models.Connection
	if err := r.db.WithContext(ctx).
		Select("requester_id", "target_id").
		First(&conn, connectionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("connection")
		}
		return models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Connection{}).
		Where("id = ?", connectionID).
		Update("status", status).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateRelations(ctx, conn.RequesterID, conn.TargetID)
	return nil
}

func (r *relationshipRepository) DeleteConnection(ctx context.Context, connectionID uint) error {
	var conn models.Connection
	if err := r.db.WithContext(ctx).
		Select("requester_id", "target_id").
		First(&conn, connectionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Delete(&models.Connection{}, connectionID).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateRelations(ctx, conn.RequesterID, conn.TargetID)
	return nil
}

func (r *relationshipRepository) RemoveFriendEdge(ctx context.Context, userID1, userID2 uint) error {
	if err := r.db.WithContext(ctx).
		Where("type = ? AND ((requester_id = ? AND target_id = ?) OR (requester_id = ? AND target_id = ?))",
			models.ConnectionFriend, userID1, userID2, userID2, userID1).
		Delete(&models.Connection{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateRelations(ctx, userID1, userID2)
	return nil
}

func (r *relationshipRepository) RemoveFollowEdge(ctx context.Context, followerID, followeeID uint) error {
	if err := r.db.WithContext(ctx).
		Where("type = ? AND requester_id = ? AND target_id = ?",
			models.ConnectionFollower, followerID, followeeID).
		Delete(&models.Connection{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateRelations(ctx, followerID, followeeID)
	return nil
}

func (r *relationshipRepository) IsFriend(ctx context.Context, userID1, userID2 uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Connection{}).
		Where("type = ? AND status = ? AND ((requester_id = ? AND target_id = ?) OR (requester_id = ? AND target_id = ?))",
			models.ConnectionFriend, models.ConnectionAccepted, userID1, userID2, userID2, userID1).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *relationshipRepository) IsFollower(ctx context.Context, followerID, followeeID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Connection{}).
		Where("type = ? AND status = ? AND requester_id = ? AND target_id = ?",
			models.ConnectionFollower, models.ConnectionAccepted, followerID, followeeID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *relationshipRepository) FriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	key := cache.FriendIDsKey(userID)
	err := cache.Aside(ctx, key, &ids, cache.RelationTTL, func() error {
		if err := r.db.WithContext(ctx).
			Model(&models.Connection{}).
			Select("CASE WHEN requester_id = ? THEN target_id ELSE requester_id END", userID).
			Where("type = ? AND status = ? AND (requester_id = ? OR target_id = ?)",
				models.ConnectionFriend, models.ConnectionAccepted, userID, userID).
			Scan(&ids).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// FollowingIDs returns the IDs of every user the given user follows with an
// accepted edge.
func (r *relationshipRepository) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	key := cache.FollowingIDsKey(userID)
	err := cache.Aside(ctx, key, &ids, cache.RelationTTL, func() error {
		if err := r.db.WithContext(ctx).
			Model(&models.Connection{}).
			Select("target_id").
			Where("type = ? AND status = ? AND requester_id = ?",
				models.ConnectionFollower, models.ConnectionAccepted, userID).
			Scan(&ids).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *relationshipRepository) GetFriends(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Table("users").
		Preload("Profile").
		Joins("JOIN connections c ON (users.id = c.requester_id OR users.id = c.target_id)").
		Where("c.type = ? AND c.status = ? AND (c.requester_id = ? OR c.target_id = ?) AND users.id != ?",
			models.ConnectionFriend, models.ConnectionAccepted, userID, userID, userID).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *relationshipRepository) GetFollowers(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Table("users").
		Preload("Profile").
		Joins("JOIN connections c ON users.id = c.requester_id").
		Where("c.type = ? AND c.status = ? AND c.target_id = ?",
			models.ConnectionFollower, models.ConnectionAccepted, userID).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *relationshipRepository) GetFollowing(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Table("users").
		Preload("Profile").
		Joins("JOIN connections c ON users.id = c.target_id").
		Where("c.type = ? AND c.status = ? AND c.requester_id = ?",
			models.ConnectionFollower, models.ConnectionAccepted, userID).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *relationshipRepository) GetPendingRequests(ctx context.Context, userID uint) ([]models.Connection, error) {
	var conns []models.Connection
	if err := r.db.WithContext(ctx).
		Where("target_id = ? AND type = ? AND status = ?", userID, models.ConnectionFriend, models.ConnectionPending).
		Preload("Requester").
		Preload("Requester.Profile").
		Find(&conns).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return conns, nil
}

func (r *relationshipRepository) GetSentRequests(ctx context.Context, userID uint) ([]models.Connection, error) {
	var conns []models.Connection
	if err := r.db.WithContext(ctx).
		Where("requester_id = ? AND type = ? AND status = ?", userID, models.ConnectionFriend, models.ConnectionPending).
		Preload("Target").
		Preload("Target.Profile").
		Find(&conns).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return conns, nil
}

func (r *relationshipRepository) Block(ctx context.Context, blockerID, blockedID uint) error {
	// ON CONFLICT resolves races between two concurrent block calls; a zero
	// row count means the pair was already blocked.
	res := r.db.WithContext(ctx).Exec(
		`INSERT INTO user_blocks (blocker_id, blocked_id, created_at)
		 VALUES (?, ?, NOW())
		 ON CONFLICT (blocker_id, blocked_id) DO NOTHING`,
		blockerID, blockedID,
	)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewConflictError("user is already blocked")
	}
	cache.InvalidateRelations(ctx, blockerID, blockedID)
	return nil
}

func (r *relationshipRepository) Unblock(ctx context.Context, blockerID, blockedID uint) error {
	res := r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&models.UserBlock{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewConflictError("user is not blocked")
	}
	cache.InvalidateRelations(ctx, blockerID, blockedID)
	return nil
}

func (r *relationshipRepository) IsBlockedEitherDirection(ctx context.Context, userID1, userID2 uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.UserBlock{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)",
			userID1, userID2, userID2, userID1).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// BlockedIDs returns every user the given user blocks or is blocked by.
// Feed composition excludes both directions in one pass.
func (r *relationshipRepository) BlockedIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	key := cache.BlockedIDsKey(userID)
	err := cache.Aside(ctx, key, &ids, cache.RelationTTL, func() error {
		if err := r.db.WithContext(ctx).
			Model(&models.UserBlock{}).
			Select("CASE WHEN blocker_id = ? THEN blocked_id ELSE blocker_id END", userID).
			Where("blocker_id = ? OR blocked_id = ?", userID, userID).
			Scan(&ids).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *relationshipRepository) GetBlockedUsers(ctx context.Context, blockerID uint) ([]models.UserBlock, error) {
	var blocks []models.UserBlock
	if err := r.db.WithContext(ctx).
		Where("blocker_id = ?", blockerID).
		Preload("Blocked").
		Preload("Blocked.Profile").
		Find(&blocks).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return blocks, nil
}
