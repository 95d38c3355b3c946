package server

import (
	"context"

	"commune/internal/models"
	"commune/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateGroup handles POST /api/groups
func (s *Server) CreateGroup(c *fiber.Ctx) error {
	var req struct {
		Name        string              `json:"name"`
		Description string              `json:"description"`
		CoverURL    string              `json:"cover_url"`
		Privacy     models.GroupPrivacy `json:"privacy"`
	}
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	group, err := s.groupService.CreateGroup(c.Context(), service.CreateGroupInput{
		CreatorID:   currentUserID(c),
		Name:        req.Name,
		Description: req.Description,
		CoverURL:    req.CoverURL,
		Privacy:     req.Privacy,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(group)
}

// GetGroup handles GET /api/groups/:id
func (s *Server) GetGroup(c *fiber.Ctx) error {
	groupID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	group, err := s.groupService.GetGroup(c.Context(), currentUserID(c), groupID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(group)
}

// UpdateGroup handles PUT /api/groups/:id
func (s *Server) UpdateGroup(c *fiber.Ctx) error {
	groupID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req service.UpdateGroupInput
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	group, err := s.groupService.UpdateGroup(c.Context(), currentUserID(c), groupID, req)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(group)
}

// DeleteGroup handles DELETE /api/groups/:id
func (s *Server) DeleteGroup(c *fiber.Ctx) error {
	groupID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.groupService.DeleteGroup(c.Context(), currentUserID(c), groupID); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SearchGroups handles GET /api/groups/search?q=
func (s *Server) SearchGroups(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	groups, err := s.groupService.Search(c.Context(), currentUserID(c), c.Query("q"), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"groups": groups})
}

// GetMyGroups handles GET /api/groups/mine
func (s *Server) GetMyGroups(c *fiber.Ctx) error {
	groups, err := s.groupService.ListMyGroups(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"groups": groups})
}

// JoinGroup handles POST /api/groups/:id/join
func (s *Server) JoinGroup(c *fiber.Ctx) error {
	groupID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	membership, err := s.groupService.Join(c.Context(), currentUserID(c), groupID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(membership)
}

// LeaveGroup handles POST /api/groups/:id/leave
func (s *Server) LeaveGroup(c *fiber.Ctx) error {
	groupID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.groupService.Leave(c.Context(), currentUserID(c), groupID); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ApproveMembership handles POST /api/groups/memberships/:membershipId/approve
func (s *Server) ApproveMembership(c *fiber.Ctx) error {
	return s.resolveMembershipRequest(c, s.groupService.ApproveRequest)
}

// RejectMembership handles POST /api/groups/memberships/:membershipId/reject
func (s *Server) RejectMembership(c *fiber.Ctx) error {
	return s.resolveMembershipRequest(c, s.groupService.RejectRequest)
}

// resolveMembershipRequest looks up the membership row so approve/reject
// can be keyed by membership ID rather than a (group, user) pair.
func (s *Server) resolveMembershipRequest(c *fiber.Ctx, decide func(ctx context.Context, adminID, groupID, userID uint) error) error {
	membershipID, err := s.parseID(c, "membershipId")
	if err != nil {
		return nil
	}

	membership, err := s.groupRepo.GetMembershipByID(c.Context(), membershipID)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	if err := decide(c.Context(), currentUserID(c), membership.GroupID, membership.UserID); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveGroupMember handles DELETE /api/groups/:id/members/:userId
func (s *Server) RemoveGroupMember(c *fiber.Ctx) error {
	groupID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	if err := s.groupService.RemoveMember(c.Context(), currentUserID(c), groupID, userID); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PromoteGroupMember handles POST /api/groups/:id/members/:userId/promote
func (s *Server) PromoteGroupMember(c *fiber.Ctx) error {
	groupID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	if err := s.groupService.PromoteMember(c.Context(), currentUserID(c), groupID, userID); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetGroupMembers handles GET /api/groups/:id/members
func (s *Server) GetGroupMembers(c *fiber.Ctx) error {
	groupID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	p := parsePagination(c, 50)
	members, err := s.groupService.ListMembers(c.Context(), currentUserID(c), groupID, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"members": members})
}

// GetGroupPendingRequests handles GET /api/groups/:id/requests
func (s *Server) GetGroupPendingRequests(c *fiber.Ctx) error {
	groupID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	requests, err := s.groupService.ListPendingRequests(c.Context(), currentUserID(c), groupID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"requests": requests})
}

// GetGroupPosts handles GET /api/groups/:id/posts
func (s *Server) GetGroupPosts(c *fiber.Ctx) error {
	groupID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	p := parsePagination(c, 20)
	posts, err := s.groupService.ListGroupPosts(c.Context(), currentUserID(c), groupID, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}
