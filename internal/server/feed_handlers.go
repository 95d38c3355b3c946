package server

import (
	"commune/internal/models"
	"commune/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/feed?sort=chronological|relevant
func (s *Server) GetFeed(c *fiber.Ctx) error {
	userID := currentUserID(c)
	sort := c.Query("sort")

	// Relevance ranking rolls out behind a flag; users outside the
	// cohort fall back to the chronological feed.
	if sort == repository.SortRelevant && !s.featureFlags.Enabled("relevant_feed", userID) {
		sort = repository.SortChronological
	}

	p := parsePagination(c, 20)
	items, err := s.feedService.GetFeed(c.Context(), userID, sort, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"feed": items})
}
