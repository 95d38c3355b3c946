package server

import (
	"io"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"

	"commune/internal/models"
	"commune/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts. Accepts multipart form data with an
// optional repeated "media" file field, or a plain JSON body.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	in := service.CreatePostInput{UserID: currentUserID(c)}

	if form, err := c.MultipartForm(); err == nil && form != nil {
		in.Content = formValue(form, "content")
		in.Visibility = models.Visibility(formValue(form, "visibility"))
		if groupRaw := formValue(form, "group_id"); groupRaw != "" {
			groupID, parseErr := strconv.ParseUint(groupRaw, 10, 32)
			if parseErr != nil {
				return models.RespondWithError(c, models.NewValidationError("Invalid group ID"))
			}
			gid := uint(groupID)
			in.GroupID = &gid
		}

		media, err := readMediaUploads(form)
		if err != nil {
			return models.RespondWithError(c, err)
		}
		in.Media = media
	} else {
		var req struct {
			Content    string            `json:"content"`
			Visibility models.Visibility `json:"visibility"`
			GroupID    *uint             `json:"group_id"`
		}
		if err := s.parseBody(c, &req); err != nil {
			return nil
		}
		in.Content = req.Content
		in.Visibility = req.Visibility
		in.GroupID = req.GroupID
	}

	result, err := s.postService.CreatePost(c.Context(), in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), currentUserID(c), postID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), currentUserID(c), postID); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RecordPostClick handles POST /api/posts/:id/click
func (s *Server) RecordPostClick(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.RecordClick(c.Context(), currentUserID(c), postID); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetPostEngagement handles GET /api/posts/:id/engagement
func (s *Server) GetPostEngagement(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	engagement, err := s.postService.GetEngagement(c.Context(), currentUserID(c), postID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(engagement)
}

// SavePost handles POST /api/posts/:id/save
func (s *Server) SavePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.SavePost(c.Context(), currentUserID(c), postID); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusCreated)
}

// UnsavePost handles DELETE /api/posts/:id/save
func (s *Server) UnsavePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.UnsavePost(c.Context(), currentUserID(c), postID); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetSavedPosts handles GET /api/posts/saved
func (s *Server) GetSavedPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	posts, err := s.postService.ListSavedPosts(c.Context(), currentUserID(c), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// SharePost handles POST /api/posts/:id/share
func (s *Server) SharePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		ShareText     string `json:"share_text"`
		ParentShareID *uint  `json:"parent_share_id"`
	}
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	share, err := s.postService.SharePost(c.Context(), currentUserID(c), postID, req.ShareText, req.ParentShareID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(share)
}

// DeleteShare handles DELETE /api/shared/:sharedPostId
func (s *Server) DeleteShare(c *fiber.Ctx) error {
	shareID, err := s.parseID(c, "sharedPostId")
	if err != nil {
		return nil
	}

	if err := s.postService.DeleteShare(c.Context(), currentUserID(c), shareID); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateSharedPostComment handles POST /api/shared/:sharedPostId/comments
func (s *Server) CreateSharedPostComment(c *fiber.Ctx) error {
	shareID, err := s.parseID(c, "sharedPostId")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	comment, err := s.postService.CommentOnShare(c.Context(), currentUserID(c), shareID, req.Content)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetSharedPostComments handles GET /api/shared/:sharedPostId/comments
func (s *Server) GetSharedPostComments(c *fiber.Ctx) error {
	shareID, err := s.parseID(c, "sharedPostId")
	if err != nil {
		return nil
	}

	p := parsePagination(c, 50)
	comments, err := s.postService.ListShareComments(c.Context(), shareID, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"comments": comments})
}

// readMediaUploads pulls every "media" file out of a multipart form.
func readMediaUploads(form *multipart.Form) ([]service.MediaUpload, error) {
	files := form.File["media"]
	uploads := make([]service.MediaUpload, 0, len(files))
	for _, header := range files {
		data, err := readMultipartFile(header)
		if err != nil {
			return nil, models.NewValidationError("could not read uploaded file " + header.Filename)
		}
		uploads = append(uploads, service.MediaUpload{
			Filename: header.Filename,
			Type:     mediaTypeForFilename(header.Filename),
			Data:     data,
		})
	}
	return uploads, nil
}

func readMultipartFile(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func mediaTypeForFilename(name string) models.MediaType {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp4", ".webm", ".mov":
		return models.MediaVideo
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return models.MediaImage
	default:
		return models.MediaType("")
	}
}

func formValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}
