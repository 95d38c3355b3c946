package server

import (
	"commune/internal/models"
	"commune/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// ReactToPost handles POST /api/posts/:id/react
func (s *Server) ReactToPost(c *fiber.Ctx) error {
	return s.toggleReaction(c, "id", models.SubjectPost)
}

// ReactToComment handles POST /api/comments/:commentId/react
func (s *Server) ReactToComment(c *fiber.Ctx) error {
	return s.toggleReaction(c, "commentId", models.SubjectComment)
}

// ReactToSharedPost handles POST /api/shared/:sharedPostId/react
func (s *Server) ReactToSharedPost(c *fiber.Ctx) error {
	return s.toggleReaction(c, "sharedPostId", models.SubjectSharedPost)
}

// ReactToSharedComment handles POST /api/shared/comments/:commentId/react
func (s *Server) ReactToSharedComment(c *fiber.Ctx) error {
	return s.toggleReaction(c, "commentId", models.SubjectSharedComment)
}

func (s *Server) toggleReaction(c *fiber.Ctx, param string, subject models.ReactionSubject) error {
	subjectID, err := s.parseID(c, param)
	if err != nil {
		return nil
	}

	var req struct {
		Type models.ReactionType `json:"type"`
	}
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	result, err := s.reactionService.Toggle(c.Context(), currentUserID(c), subject, subjectID, req.Type)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	if result.Outcome == repository.ToggleRemoved {
		return c.JSON(fiber.Map{"outcome": result.Outcome})
	}
	return c.JSON(fiber.Map{"outcome": result.Outcome, "reaction": result.Reaction})
}

// GetPostReactions handles GET /api/posts/:id/reactions
func (s *Server) GetPostReactions(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	p := parsePagination(c, 50)
	reactions, err := s.reactionService.List(c.Context(), currentUserID(c), models.SubjectPost, postID, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"reactions": reactions})
}
