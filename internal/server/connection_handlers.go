package server

import (
	"commune/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SendFriendRequest handles POST /api/connections/requests
func (s *Server) SendFriendRequest(c *fiber.Ctx) error {
	var req struct {
		TargetID       uint   `json:"target_id"`
		ConnectionType string `json:"connection_type"`
	}
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}
	if req.ConnectionType != "" && req.ConnectionType != string(models.ConnectionFriend) {
		return models.RespondWithError(c,
			models.NewValidationError("only friend requests are created here; use /connections/follow"))
	}

	conn, err := s.relationshipService.SendFriendRequest(c.Context(), currentUserID(c), req.TargetID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(conn)
}

// RespondToFriendRequest handles POST /api/connections/requests/:requestId/respond
func (s *Server) RespondToFriendRequest(c *fiber.Ctx) error {
	requestID, err := s.parseID(c, "requestId")
	if err != nil {
		return nil
	}

	var req struct {
		Status models.ConnectionStatus `json:"status"`
	}
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	conn, err := s.relationshipService.RespondToRequest(c.Context(), currentUserID(c), requestID, req.Status)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(conn)
}

// GetReceivedRequests handles GET /api/connections/requests/received
func (s *Server) GetReceivedRequests(c *fiber.Ctx) error {
	requests, err := s.relationshipService.ReceivedRequests(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"requests": requests})
}

// GetSentRequests handles GET /api/connections/requests/sent
func (s *Server) GetSentRequests(c *fiber.Ctx) error {
	requests, err := s.relationshipService.SentRequests(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"requests": requests})
}

// GetFriends handles GET /api/connections/friends
func (s *Server) GetFriends(c *fiber.Ctx) error {
	friends, err := s.relationshipService.Friends(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"friends": friends})
}

// RemoveFriend handles DELETE /api/connections/friends/:userId
func (s *Server) RemoveFriend(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	if err := s.relationshipService.RemoveFriend(c.Context(), currentUserID(c), targetID); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Follow handles POST /api/connections/follow
func (s *Server) Follow(c *fiber.Ctx) error {
	var req struct {
		TargetID uint `json:"target_id"`
	}
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	conn, err := s.relationshipService.Follow(c.Context(), currentUserID(c), req.TargetID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(conn)
}

// Unfollow handles POST /api/connections/unfollow
func (s *Server) Unfollow(c *fiber.Ctx) error {
	var req struct {
		TargetID uint `json:"target_id"`
	}
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	if err := s.relationshipService.Unfollow(c.Context(), currentUserID(c), req.TargetID); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetFollowers handles GET /api/connections/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	followers, err := s.relationshipService.Followers(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"followers": followers})
}

// GetFollowing handles GET /api/connections/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	following, err := s.relationshipService.Following(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"following": following})
}
