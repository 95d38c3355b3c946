package service

import (
	"context"
	"time"

	"commune/internal/models"
	"commune/internal/privacy"
	"commune/internal/repository"
)

// RelationshipService provides friend, follower and block business logic.
type RelationshipService struct {
	relationshipRepo repository.RelationshipRepository
	userRepo         repository.UserRepository
	notifications    *NotificationService
	now              func() time.Time
}

// NewRelationshipService returns a new RelationshipService.
func NewRelationshipService(
	relationshipRepo repository.RelationshipRepository,
	userRepo repository.UserRepository,
	notifications *NotificationService,
) *RelationshipService {
	return &RelationshipService{
		relationshipRepo: relationshipRepo,
		userRepo:         userRepo,
		notifications:    notifications,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// SendFriendRequest creates a pending friend edge toward targetID. A block in
// either direction surfaces as not-found so the requester cannot confirm the
// block exists.
func (s *RelationshipService) SendFriendRequest(ctx context.Context, userID, targetID uint) (*models.Connection, error) {
	if userID == targetID {
		return nil, models.NewValidationError("cannot send a friend request to yourself")
	}

	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	blocked, err := s.relationshipRepo.IsBlockedEitherDirection(ctx, userID, targetID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, models.NewNotFoundError("user")
	}

	existing, err := s.relationshipRepo.GetFriendEdge(ctx, userID, targetID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		switch existing.Status {
		case models.ConnectionAccepted:
			return nil, models.NewConflictError("already friends")
		case models.ConnectionPending:
			if existing.RequesterID == userID {
				return nil, models.NewConflictError("friend request already sent")
			}
			return nil, models.NewConflictError("this user already sent you a friend request")
		}
	}

	conn := &models.Connection{
		RequesterID: userID,
		TargetID:    targetID,
		Type:        models.ConnectionFriend,
		Status:      models.ConnectionPending,
	}
	if err := s.relationshipRepo.CreateConnection(ctx, conn); err != nil {
		return nil, err
	}

	if s.notifications != nil {
		actor, actorErr := s.userRepo.GetByID(ctx, userID)
		message := "sent you a friend request"
		if actorErr == nil {
			message = actor.Username + " sent you a friend request"
		}
		_ = s.notifications.Notify(ctx, target.ID, userID, models.NotifFriendRequest, conn.ID, message)
	}

	return conn, nil
}

// RespondToRequest accepts or declines a pending friend request. Only the
// target of the request may respond. Declined requests are deleted so the
// requester can try again later.
func (s *RelationshipService) RespondToRequest(ctx context.Context, userID, requestID uint, status models.ConnectionStatus) (*models.Connection, error) {
	if status != models.ConnectionAccepted && status != models.ConnectionDeclined {
		return nil, models.NewValidationError("status must be accepted or declined")
	}

	conn, err := s.relationshipRepo.GetConnectionByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if conn.TargetID != userID {
		return nil, models.NewPermissionError("only the request target can respond")
	}
	if conn.Type != models.ConnectionFriend {
		return nil, models.NewValidationError("only friend requests can be responded to")
	}
	if conn.Status != models.ConnectionPending {
		return nil, models.NewConflictError("request is not pending")
	}

	if status == models.ConnectionDeclined {
		if err := s.relationshipRepo.DeleteConnection(ctx, requestID); err != nil {
			return nil, err
		}
		conn.Status = models.ConnectionDeclined
		return conn, nil
	}

	if err := s.relationshipRepo.UpdateStatus(ctx, requestID, models.ConnectionAccepted); err != nil {
		return nil, err
	}
	conn.Status = models.ConnectionAccepted

	if s.notifications != nil {
		actor, actorErr := s.userRepo.GetByID(ctx, userID)
		message := "accepted your friend request"
		if actorErr == nil {
			message = actor.Username + " accepted your friend request"
		}
		_ = s.notifications.Notify(ctx, conn.RequesterID, userID, models.NotifFriendAccept, conn.ID, message)
	}

	return conn, nil
}

// RemoveFriend deletes the accepted friend edge between the two users,
// whichever direction it was created in.
func (s *RelationshipService) RemoveFriend(ctx context.Context, userID, targetID uint) error {
	friends, err := s.relationshipRepo.IsFriend(ctx, userID, targetID)
	if err != nil {
		return err
	}
	if !friends {
		return models.NewNotFoundError("friendship")
	}
	return s.relationshipRepo.RemoveFriendEdge(ctx, userID, targetID)
}

// Follow creates an auto-accepted follower edge userID -> targetID. Being
// friends already implies following, so it conflicts; a block in either
// direction is a permission failure.
func (s *RelationshipService) Follow(ctx context.Context, userID, targetID uint) (*models.Connection, error) {
	if userID == targetID {
		return nil, models.NewValidationError("cannot follow yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return nil, err
	}

	blocked, err := s.relationshipRepo.IsBlockedEitherDirection(ctx, userID, targetID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, models.NewPermissionError("cannot follow this user")
	}

	friends, err := s.relationshipRepo.IsFriend(ctx, userID, targetID)
	if err != nil {
		return nil, err
	}
	if friends {
		return nil, models.NewConflictError("already friends")
	}

	following, err := s.relationshipRepo.IsFollower(ctx, userID, targetID)
	if err != nil {
		return nil, err
	}
	if following {
		return nil, models.NewConflictError("already following")
	}

	conn := &models.Connection{
		RequesterID: userID,
		TargetID:    targetID,
		Type:        models.ConnectionFollower,
		Status:      models.ConnectionAccepted,
	}
	if err := s.relationshipRepo.CreateConnection(ctx, conn); err != nil {
		return nil, err
	}
	return conn, nil
}

// Unfollow removes the follower edge userID -> targetID.
func (s *RelationshipService) Unfollow(ctx context.Context, userID, targetID uint) error {
	following, err := s.relationshipRepo.IsFollower(ctx, userID, targetID)
	if err != nil {
		return err
	}
	if !following {
		friends, ferr := s.relationshipRepo.IsFriend(ctx, userID, targetID)
		if ferr != nil {
			return ferr
		}
		if friends {
			return models.NewPermissionError("friendships must be removed, not unfollowed")
		}
		return models.NewNotFoundError("follow")
	}
	return s.relationshipRepo.RemoveFollowEdge(ctx, userID, targetID)
}

// ReceivedRequest is a pending inbound friend request with the sender
// disclosed per the time-decay rule.
type ReceivedRequest struct {
	ID            uint                `json:"id"`
	CreatedAt     time.Time           `json:"created_at"`
	Requester     *models.User        `json:"requester,omitempty"`
	RequesterMin  *models.UserSummary `json:"requester_minimal,omitempty"`
	DaysRemaining *int                `json:"days_remaining,omitempty"`
}

// ReceivedRequests lists pending inbound friend requests. Senders with a
// private profile are fully disclosed for the first seven days, then degrade
// to the minimal field set with days_remaining reported as zero.
func (s *RelationshipService) ReceivedRequests(ctx context.Context, userID uint) ([]ReceivedRequest, error) {
	pending, err := s.relationshipRepo.GetPendingRequests(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]ReceivedRequest, 0, len(pending))
	for _, conn := range pending {
		item := ReceivedRequest{ID: conn.ID, CreatedAt: conn.CreatedAt}

		policy := models.VisibilityPublic
		if conn.Requester != nil && conn.Requester.Profile != nil {
			policy = conn.Requester.Profile.Visibility
		}
		full, daysRemaining := privacy.RequestDisclosure(policy, conn.CreatedAt, now, false)
		item.DaysRemaining = daysRemaining
		if full {
			item.Requester = conn.Requester
		} else if conn.Requester != nil {
			min := conn.Requester.Summary()
			item.RequesterMin = &min
		}
		out = append(out, item)
	}
	return out, nil
}

// SentRequests lists pending friend requests the user has sent.
func (s *RelationshipService) SentRequests(ctx context.Context, userID uint) ([]models.Connection, error) {
	return s.relationshipRepo.GetSentRequests(ctx, userID)
}

// Friends lists accepted friends.
func (s *RelationshipService) Friends(ctx context.Context, userID uint) ([]models.User, error) {
	return s.relationshipRepo.GetFriends(ctx, userID)
}

// Followers lists accounts following userID.
func (s *RelationshipService) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	return s.relationshipRepo.GetFollowers(ctx, userID)
}

// Following lists accounts userID follows.
func (s *RelationshipService) Following(ctx context.Context, userID uint) ([]models.User, error) {
	return s.relationshipRepo.GetFollowing(ctx, userID)
}

// Block creates a directed block row. Existing connections are deliberately
// left in place; the block only affects visibility filtering from now on.
func (s *RelationshipService) Block(ctx context.Context, blockerID, blockedID uint) error {
	if blockerID == blockedID {
		return models.NewValidationError("cannot block yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, blockedID); err != nil {
		return err
	}
	return s.relationshipRepo.Block(ctx, blockerID, blockedID)
}

// Unblock removes the directed block row.
func (s *RelationshipService) Unblock(ctx context.Context, blockerID, blockedID uint) error {
	return s.relationshipRepo.Unblock(ctx, blockerID, blockedID)
}

// BlockedUsers lists the accounts blockerID has blocked.
func (s *RelationshipService) BlockedUsers(ctx context.Context, blockerID uint) ([]models.UserBlock, error) {
	return s.relationshipRepo.GetBlockedUsers(ctx, blockerID)
}
