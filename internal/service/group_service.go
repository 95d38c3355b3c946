package service

import (
	"context"
	"fmt"

	"commune/internal/models"
	"commune/internal/repository"
)

// GroupService provides group and membership business logic.
type GroupService struct {
	groupRepo     repository.GroupRepository
	postRepo      repository.PostRepository
	notifications *NotificationService
}

// NewGroupService returns a new GroupService.
func NewGroupService(groupRepo repository.GroupRepository, postRepo repository.PostRepository, notifications *NotificationService) *GroupService {
	return &GroupService{
		groupRepo:     groupRepo,
		postRepo:      postRepo,
		notifications: notifications,
	}
}

// CreateGroupInput carries a group creation request.
type CreateGroupInput struct {
	CreatorID   uint
	Name        string
	Description string
	CoverURL    string
	Privacy     models.GroupPrivacy
}

// CreateGroup makes a group with the creator as its first approved admin.
func (s *GroupService) CreateGroup(ctx context.Context, in CreateGroupInput) (*models.Group, error) {
	if in.Name == "" {
		return nil, models.NewValidationError("group name is required")
	}
	if len(in.Name) > 100 {
		return nil, models.NewValidationError("group name too long (max 100 characters)")
	}
	if len(in.Description) > 1000 {
		return nil, models.NewValidationError("description too long (max 1000 characters)")
	}
	if in.Privacy == "" {
		in.Privacy = models.GroupPublic
	}
	if !in.Privacy.Valid() {
		return nil, models.NewValidationError("invalid group privacy")
	}

	group := &models.Group{
		CreatorID:   in.CreatorID,
		Name:        in.Name,
		Description: in.Description,
		CoverURL:    in.CoverURL,
		Privacy:     in.Privacy,
	}
	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, err
	}
	return s.groupRepo.GetByID(ctx, group.ID)
}

// GetGroup returns a group. Secret groups exist only for their members.
func (s *GroupService) GetGroup(ctx context.Context, viewerID, groupID uint) (*models.Group, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.Privacy == models.GroupSecret {
		if _, err := s.requireApprovedMember(ctx, groupID, viewerID); err != nil {
			return nil, models.NewNotFoundError("group")
		}
	}
	return group, nil
}

// UpdateGroupInput carries the editable group fields, all optional.
type UpdateGroupInput struct {
	Name        *string              `json:"name"`
	Description *string              `json:"description"`
	CoverURL    *string              `json:"cover_url"`
	Privacy     *models.GroupPrivacy `json:"privacy"`
}

// UpdateGroup edits a group's details. Admins only.
func (s *GroupService) UpdateGroup(ctx context.Context, userID, groupID uint, in UpdateGroupInput) (*models.Group, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAdmin(ctx, groupID, userID); err != nil {
		return nil, err
	}

	if in.Name != nil {
		if *in.Name == "" || len(*in.Name) > 100 {
			return nil, models.NewValidationError("group name must be 1-100 characters")
		}
		group.Name = *in.Name
	}
	if in.Description != nil {
		if len(*in.Description) > 1000 {
			return nil, models.NewValidationError("description too long (max 1000 characters)")
		}
		group.Description = *in.Description
	}
	if in.CoverURL != nil {
		group.CoverURL = *in.CoverURL
	}
	if in.Privacy != nil {
		if !in.Privacy.Valid() {
			return nil, models.NewValidationError("invalid group privacy")
		}
		group.Privacy = *in.Privacy
	}

	if err := s.groupRepo.Update(ctx, group); err != nil {
		return nil, err
	}
	return s.groupRepo.GetByID(ctx, groupID)
}

// DeleteGroup removes a group and its memberships. Creator only.
func (s *GroupService) DeleteGroup(ctx context.Context, userID, groupID uint) error {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if group.CreatorID != userID {
		return models.NewPermissionError("only the creator can delete a group")
	}
	return s.groupRepo.Delete(ctx, groupID)
}

// Search finds groups by name. Secret groups stay invisible to non-members.
func (s *GroupService) Search(ctx context.Context, searcherID uint, query string, limit, offset int) ([]models.Group, error) {
	if query == "" {
		return nil, models.NewValidationError("search query is required")
	}
	return s.groupRepo.Search(ctx, query, searcherID, limit, offset)
}

// ListMyGroups returns the groups the caller belongs to.
func (s *GroupService) ListMyGroups(ctx context.Context, userID uint) ([]models.Group, error) {
	return s.groupRepo.ListByMember(ctx, userID)
}

// Join requests membership. Public groups approve immediately; private and
// secret groups queue a pending request and notify the creator.
func (s *GroupService) Join(ctx context.Context, userID, groupID uint) (*models.GroupMembership, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	existing, err := s.groupRepo.GetMembership(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		switch existing.Status {
		case models.MembershipApproved:
			return nil, models.NewConflictError("already a member")
		case models.MembershipPending:
			return nil, models.NewConflictError("membership request already pending")
		case models.MembershipRejected:
			// A rejected request may be retried; reset it to pending below.
			existing.Status = models.MembershipPending
			if group.Privacy == models.GroupPublic {
				existing.Status = models.MembershipApproved
			}
			if err := s.groupRepo.UpdateMembership(ctx, existing); err != nil {
				return nil, err
			}
			return existing, nil
		}
	}

	status := models.MembershipPending
	if group.Privacy == models.GroupPublic {
		status = models.MembershipApproved
	}
	membership := &models.GroupMembership{
		GroupID: groupID,
		UserID:  userID,
		Role:    models.RoleMember,
		Status:  status,
	}
	if err := s.groupRepo.CreateMembership(ctx, membership); err != nil {
		return nil, err
	}

	if status == models.MembershipPending && s.notifications != nil {
		message := fmt.Sprintf("requested to join %s", group.Name)
		_ = s.notifications.Notify(ctx, group.CreatorID, userID, models.NotifGroupUpdate, group.ID, message)
	}
	return membership, nil
}

// Leave removes the caller's membership. The last admin cannot leave.
func (s *GroupService) Leave(ctx context.Context, userID, groupID uint) error {
	membership, err := s.groupRepo.GetMembership(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if membership == nil {
		return models.NewNotFoundError("membership")
	}
	if membership.Role == models.RoleAdmin && membership.Status == models.MembershipApproved {
		admins, err := s.groupRepo.CountAdmins(ctx, groupID)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return models.NewConflictError("the last admin cannot leave the group")
		}
	}
	return s.groupRepo.DeleteMembership(ctx, groupID, userID)
}

// ApproveRequest approves a pending membership. Admins only.
func (s *GroupService) ApproveRequest(ctx context.Context, adminID, groupID, userID uint) error {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if err := s.requireAdmin(ctx, groupID, adminID); err != nil {
		return err
	}
	membership, err := s.groupRepo.GetMembership(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if membership == nil || membership.Status != models.MembershipPending {
		return models.NewNotFoundError("membership request")
	}

	membership.Status = models.MembershipApproved
	if err := s.groupRepo.UpdateMembership(ctx, membership); err != nil {
		return err
	}
	if s.notifications != nil {
		message := fmt.Sprintf("approved your request to join %s", group.Name)
		_ = s.notifications.Notify(ctx, userID, adminID, models.NotifGroupUpdate, group.ID, message)
	}
	return nil
}

// RejectRequest rejects a pending membership. Admins only.
func (s *GroupService) RejectRequest(ctx context.Context, adminID, groupID, userID uint) error {
	if _, err := s.groupRepo.GetByID(ctx, groupID); err != nil {
		return err
	}
	if err := s.requireAdmin(ctx, groupID, adminID); err != nil {
		return err
	}
	membership, err := s.groupRepo.GetMembership(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if membership == nil || membership.Status != models.MembershipPending {
		return models.NewNotFoundError("membership request")
	}
	membership.Status = models.MembershipRejected
	return s.groupRepo.UpdateMembership(ctx, membership)
}

// RemoveMember kicks an approved member. Admins only; admins cannot kick the
// creator or drop the last admin.
func (s *GroupService) RemoveMember(ctx context.Context, adminID, groupID, userID uint) error {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if err := s.requireAdmin(ctx, groupID, adminID); err != nil {
		return err
	}
	if userID == group.CreatorID {
		return models.NewPermissionError("the creator cannot be removed")
	}
	membership, err := s.groupRepo.GetMembership(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if membership == nil {
		return models.NewNotFoundError("membership")
	}
	if membership.Role == models.RoleAdmin && membership.Status == models.MembershipApproved {
		admins, err := s.groupRepo.CountAdmins(ctx, groupID)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return models.NewConflictError("the last admin cannot be removed")
		}
	}
	return s.groupRepo.DeleteMembership(ctx, groupID, userID)
}

// PromoteMember grants admin to an approved member. Admins only.
func (s *GroupService) PromoteMember(ctx context.Context, adminID, groupID, userID uint) error {
	if _, err := s.groupRepo.GetByID(ctx, groupID); err != nil {
		return err
	}
	if err := s.requireAdmin(ctx, groupID, adminID); err != nil {
		return err
	}
	membership, err := s.groupRepo.GetMembership(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if membership == nil || membership.Status != models.MembershipApproved {
		return models.NewNotFoundError("membership")
	}
	if membership.Role == models.RoleAdmin {
		return models.NewConflictError("already an admin")
	}
	membership.Role = models.RoleAdmin
	return s.groupRepo.UpdateMembership(ctx, membership)
}

// ListMembers returns a group's approved members. Secret groups show their
// roster only to members.
func (s *GroupService) ListMembers(ctx context.Context, viewerID, groupID uint, limit, offset int) ([]models.GroupMembership, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.Privacy == models.GroupSecret {
		if _, err := s.requireApprovedMember(ctx, groupID, viewerID); err != nil {
			return nil, models.NewNotFoundError("group")
		}
	}
	return s.groupRepo.ListMembers(ctx, groupID, limit, offset)
}

// ListPendingRequests returns a group's pending join requests. Admins only.
func (s *GroupService) ListPendingRequests(ctx context.Context, adminID, groupID uint) ([]models.GroupMembership, error) {
	if _, err := s.groupRepo.GetByID(ctx, groupID); err != nil {
		return nil, err
	}
	if err := s.requireAdmin(ctx, groupID, adminID); err != nil {
		return nil, err
	}
	return s.groupRepo.ListPendingRequests(ctx, groupID)
}

// ListGroupPosts returns a group's posts. Non-public groups require an
// approved membership.
func (s *GroupService) ListGroupPosts(ctx context.Context, viewerID, groupID uint, limit, offset int) ([]*models.Post, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.Privacy != models.GroupPublic {
		if _, err := s.requireApprovedMember(ctx, groupID, viewerID); err != nil {
			if group.Privacy == models.GroupSecret {
				return nil, models.NewNotFoundError("group")
			}
			return nil, err
		}
	}
	return s.postRepo.ListByGroup(ctx, groupID, viewerID, limit, offset)
}

func (s *GroupService) requireApprovedMember(ctx context.Context, groupID, userID uint) (*models.GroupMembership, error) {
	membership, err := s.groupRepo.GetMembership(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if membership == nil || membership.Status != models.MembershipApproved {
		return nil, models.NewPermissionError("must be a group member")
	}
	return membership, nil
}

func (s *GroupService) requireAdmin(ctx context.Context, groupID, userID uint) error {
	membership, err := s.requireApprovedMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if membership.Role != models.RoleAdmin {
		return models.NewPermissionError("admin role required")
	}
	return nil
}
