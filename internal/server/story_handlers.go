package server

import (
	"commune/internal/models"
	"commune/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateStory handles POST /api/stories. Accepts multipart form data with an
// optional single "media" file, or a plain JSON body for text-only stories.
func (s *Server) CreateStory(c *fiber.Ctx) error {
	in := service.CreateStoryInput{UserID: currentUserID(c)}

	if form, err := c.MultipartForm(); err == nil && form != nil {
		in.Content = formValue(form, "content")
		in.Visibility = models.Visibility(formValue(form, "visibility"))

		if files := form.File["media"]; len(files) > 0 {
			data, readErr := readMultipartFile(files[0])
			if readErr != nil {
				return models.RespondWithError(c, models.NewValidationError("could not read uploaded file "+files[0].Filename))
			}
			in.Media = &service.MediaUpload{
				Filename: files[0].Filename,
				Type:     mediaTypeForFilename(files[0].Filename),
				Data:     data,
			}
		}
	} else {
		var req struct {
			Content    string            `json:"content"`
			Visibility models.Visibility `json:"visibility"`
		}
		if err := s.parseBody(c, &req); err != nil {
			return nil
		}
		in.Content = req.Content
		in.Visibility = req.Visibility
	}

	story, err := s.storyService.CreateStory(c.Context(), in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(story)
}

// GetStories handles GET /api/stories. Lists unexpired stories the viewer
// is allowed to see.
func (s *Server) GetStories(c *fiber.Ctx) error {
	stories, err := s.storyService.ListActive(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"stories": stories})
}

// ViewStory handles POST /api/stories/:id/view
func (s *Server) ViewStory(c *fiber.Ctx) error {
	storyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.storyService.ViewStory(c.Context(), currentUserID(c), storyID); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetStoryViews handles GET /api/stories/:id/views
func (s *Server) GetStoryViews(c *fiber.Ctx) error {
	storyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	views, err := s.storyService.ListViews(c.Context(), currentUserID(c), storyID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"views": views})
}

// ReactToStory handles POST /api/stories/:id/react
func (s *Server) ReactToStory(c *fiber.Ctx) error {
	storyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Type models.ReactionType `json:"type"`
	}
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	if err := s.storyService.ReactToStory(c.Context(), currentUserID(c), storyID, req.Type); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusCreated)
}

// RemoveStoryReaction handles DELETE /api/stories/:id/react
func (s *Server) RemoveStoryReaction(c *fiber.Ctx) error {
	storyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.storyService.RemoveStoryReaction(c.Context(), currentUserID(c), storyID); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteStory handles DELETE /api/stories/:id
func (s *Server) DeleteStory(c *fiber.Ctx) error {
	storyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.storyService.DeleteStory(c.Context(), currentUserID(c), storyID); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
