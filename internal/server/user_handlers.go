package server

import (
	"commune/internal/models"
	"commune/internal/privacy"
	"commune/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetMe(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req service.UpdateProfileInput
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.UpdateProfile(c.Context(), currentUserID(c), req)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(user)
}

// DeleteMyAccount handles DELETE /api/users/me
func (s *Server) DeleteMyAccount(c *fiber.Ctx) error {
	if err := s.userService.DeleteAccount(c.Context(), currentUserID(c)); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SearchUsers handles GET /api/users/search?q=
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	users, err := s.userService.Search(c.Context(), currentUserID(c), c.Query("q"), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// GetUserProfile handles GET /api/users/:username
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	view, err := s.userService.ViewProfile(c.Context(), currentUserID(c), c.Params("username"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(view)
}

// GetUserPosts handles GET /api/users/:username/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	viewerID := currentUserID(c)
	subject, tier, err := s.userService.ResolveSubject(c.Context(), viewerID, c.Params("username"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	// Minimal disclosure shows who the user is, not what they post.
	if tier != privacy.TierFull {
		return c.JSON(fiber.Map{"posts": []models.Post{}})
	}

	p := parsePagination(c, 20)
	posts, err := s.postService.ListUserPosts(c.Context(), viewerID, subject.ID, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// GetUserStories handles GET /api/users/:username/stories
func (s *Server) GetUserStories(c *fiber.Ctx) error {
	viewerID := currentUserID(c)
	subject, _, err := s.userService.ResolveSubject(c.Context(), viewerID, c.Params("username"))
	if err != nil {
		return models.RespondWithError(c, err)
	}

	stories, err := s.storyService.ListUserStories(c.Context(), viewerID, subject.ID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"stories": stories})
}

// GetUserShares handles GET /api/users/:id/shared
func (s *Server) GetUserShares(c *fiber.Ctx) error {
	subjectID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	p := parsePagination(c, 20)
	shares, err := s.postService.ListUserShares(c.Context(), currentUserID(c), subjectID, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"shared_posts": shares})
}

// BlockUser handles POST /api/users/blocks
func (s *Server) BlockUser(c *fiber.Ctx) error {
	var req struct {
		UserID uint `json:"user_id"`
	}
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	if err := s.relationshipService.Block(c.Context(), currentUserID(c), req.UserID); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusCreated)
}

// UnblockUser handles DELETE /api/users/blocks/:userId
func (s *Server) UnblockUser(c *fiber.Ctx) error {
	blockedID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	if err := s.relationshipService.Unblock(c.Context(), currentUserID(c), blockedID); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetBlockedUsers handles GET /api/users/blocks
func (s *Server) GetBlockedUsers(c *fiber.Ctx) error {
	blocks, err := s.relationshipService.BlockedUsers(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"blocks": blocks})
}
