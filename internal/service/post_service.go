package service

import (
	"context"

	"commune/internal/models"
	"commune/internal/observability"
	"commune/internal/repository"
	"commune/internal/storage"
)

// PostService provides post, saved-post and shared-post business logic.
type PostService struct {
	postRepo         repository.PostRepository
	sharedPostRepo   repository.SharedPostRepository
	relationshipRepo repository.RelationshipRepository
	groupRepo        repository.GroupRepository
	uploader         storage.Uploader
	notifications    *NotificationService
}

// NewPostService returns a new PostService.
func NewPostService(
	postRepo repository.PostRepository,
	sharedPostRepo repository.SharedPostRepository,
	relationshipRepo repository.RelationshipRepository,
	groupRepo repository.GroupRepository,
	uploader storage.Uploader,
	notifications *NotificationService,
) *PostService {
	return &PostService{
		postRepo:         postRepo,
		sharedPostRepo:   sharedPostRepo,
		relationshipRepo: relationshipRepo,
		groupRepo:        groupRepo,
		uploader:         uploader,
		notifications:    notifications,
	}
}

// MediaUpload is one attachment in a post creation request.
type MediaUpload struct {
	Filename string
	Type     models.MediaType
	Data     []byte
}

// CreatePostInput carries everything needed to create a post.
type CreatePostInput struct {
	UserID     uint
	Content    string
	Visibility models.Visibility
	GroupID    *uint
	Media      []MediaUpload
}

// CreatePostResult reports the created post plus any media files that failed
// to upload. A failed file is skipped, not fatal.
type CreatePostResult struct {
	Post          *models.Post `json:"post"`
	FailedUploads []string     `json:"failed_uploads,omitempty"`
}

// CreatePost stores the post and uploads its media. Group posts require an
// approved membership.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*CreatePostResult, error) {
	if in.Content == "" && len(in.Media) == 0 {
		return nil, models.NewValidationError("post needs content or media")
	}
	if len(in.Content) > 5000 {
		return nil, models.NewValidationError("content too long (max 5000 characters)")
	}
	if in.Visibility == "" {
		in.Visibility = models.VisibilityPublic
	}
	if !in.Visibility.Valid() {
		return nil, models.NewValidationError("invalid visibility")
	}

	if in.GroupID != nil {
		membership, err := s.groupRepo.GetMembership(ctx, *in.GroupID, in.UserID)
		if err != nil {
			return nil, err
		}
		if membership == nil || membership.Status != models.MembershipApproved {
			return nil, models.NewPermissionError("must be a group member to post")
		}
	}

	post := &models.Post{
		UserID:     in.UserID,
		Content:    in.Content,
		Visibility: in.Visibility,
		GroupID:    in.GroupID,
	}

	var failed []string
	for i, m := range in.Media {
		if !m.Type.Valid() {
			failed = append(failed, m.Filename)
			continue
		}
		url, err := s.uploader.Upload(ctx, m.Data, m.Filename)
		if err != nil {
			observability.LogAsyncOperationError(ctx, "media upload", err, map[string]interface{}{
				"filename": m.Filename,
			})
			failed = append(failed, m.Filename)
			continue
		}
		post.Media = append(post.Media, models.PostMedia{
			URL:        url,
			Type:       m.Type,
			OrderIndex: i,
		})
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return &CreatePostResult{Post: post, FailedUploads: failed}, nil
}

// GetPost returns a post after the visibility check and bumps its view
// counter for non-owners.
func (s *PostService) GetPost(ctx context.Context, viewerID, postID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID, viewerID)
	if err != nil {
		return nil, err
	}
	if err := authorizePostView(ctx, s.relationshipRepo, s.groupRepo, viewerID, post); err != nil {
		return nil, err
	}
	if viewerID != post.UserID {
		if err := s.postRepo.IncrementViewCount(ctx, postID); err != nil {
			observability.LogAsyncOperationError(ctx, "view count increment", err, map[string]interface{}{
				"post_id": postID,
			})
		} else {
			post.ViewCount++
		}
	}
	return post, nil
}

// RecordClick bumps the click counter of a visible post.
func (s *PostService) RecordClick(ctx context.Context, viewerID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, viewerID)
	if err != nil {
		return err
	}
	if err := authorizePostView(ctx, s.relationshipRepo, s.groupRepo, viewerID, post); err != nil {
		return err
	}
	return s.postRepo.IncrementClickCount(ctx, postID)
}

// Engagement summarizes a post's counters for its owner.
type Engagement struct {
	PostID        uint  `json:"post_id"`
	ViewCount     int64 `json:"view_count"`
	ClickCount    int64 `json:"click_count"`
	CommentCount  int64 `json:"comment_count"`
	ReactionCount int64 `json:"reaction_count"`
}

// GetEngagement returns the counters of one of the caller's own posts.
func (s *PostService) GetEngagement(ctx context.Context, userID, postID uint) (*Engagement, error) {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, models.NewPermissionError("only the owner can read engagement")
	}
	return &Engagement{
		PostID:        post.ID,
		ViewCount:     post.ViewCount,
		ClickCount:    post.ClickCount,
		CommentCount:  post.CommentCount,
		ReactionCount: post.ReactionCount,
	}, nil
}

// DeletePost removes one of the caller's own posts.
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewPermissionError("only the owner can delete a post")
	}
	return s.postRepo.Delete(ctx, postID)
}

// ListUserPosts returns subject's non-group posts filtered to what the viewer
// may see.
func (s *PostService) ListUserPosts(ctx context.Context, viewerID, subjectID uint, limit, offset int) ([]*models.Post, error) {
	posts, err := s.postRepo.ListByUser(ctx, subjectID, viewerID, limit, offset)
	if err != nil {
		return nil, err
	}
	if viewerID == subjectID {
		return posts, nil
	}

	isFriend, err := s.relationshipRepo.IsFriend(ctx, viewerID, subjectID)
	if err != nil {
		return nil, err
	}

	visible := make([]*models.Post, 0, len(posts))
	for _, p := range posts {
		switch p.Visibility {
		case models.VisibilityPublic:
			visible = append(visible, p)
		case models.VisibilityFriends:
			if isFriend {
				visible = append(visible, p)
			}
		}
	}
	return visible, nil
}

// SavePost bookmarks a post for later. Saving content the viewer cannot see
// is rejected the same way viewing it would be.
func (s *PostService) SavePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if err := authorizePostView(ctx, s.relationshipRepo, s.groupRepo, userID, post); err != nil {
		return err
	}
	return s.postRepo.Save(ctx, userID, postID)
}

// UnsavePost removes a bookmark.
func (s *PostService) UnsavePost(ctx context.Context, userID, postID uint) error {
	return s.postRepo.Unsave(ctx, userID, postID)
}

// ListSavedPosts returns the caller's bookmarks, minus posts from authors in
// a block relation with the caller.
func (s *PostService) ListSavedPosts(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	posts, err := s.postRepo.ListSaved(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	blockedIDs, err := s.relationshipRepo.BlockedIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(blockedIDs) == 0 {
		return posts, nil
	}
	blocked := make(map[uint]struct{}, len(blockedIDs))
	for _, id := range blockedIDs {
		blocked[id] = struct{}{}
	}
	visible := make([]*models.Post, 0, len(posts))
	for _, p := range posts {
		if _, ok := blocked[p.UserID]; !ok {
			visible = append(visible, p)
		}
	}
	return visible, nil
}

// SharePost reposts a post. Sharing a shared post unwraps to the original,
// keeping the intermediate share as provenance.
func (s *PostService) SharePost(ctx context.Context, userID, postID uint, shareText string, parentShareID *uint) (*models.SharedPost, error) {
	if len(shareText) > 1000 {
		return nil, models.NewValidationError("share text too long (max 1000 characters)")
	}

	originalID := postID
	if parentShareID != nil {
		parent, err := s.sharedPostRepo.GetByID(ctx, *parentShareID)
		if err != nil {
			return nil, err
		}
		originalID = parent.OriginalPostID
	}

	post, err := s.postRepo.GetByID(ctx, originalID, userID)
	if err != nil {
		return nil, err
	}
	if err := authorizePostView(ctx, s.relationshipRepo, s.groupRepo, userID, post); err != nil {
		return nil, err
	}

	share := &models.SharedPost{
		UserID:         userID,
		OriginalPostID: originalID,
		ParentShareID:  parentShareID,
		ShareText:      shareText,
	}
	if err := s.sharedPostRepo.Create(ctx, share); err != nil {
		return nil, err
	}
	return s.sharedPostRepo.GetByID(ctx, share.ID)
}

// DeleteShare removes one of the caller's own shares.
func (s *PostService) DeleteShare(ctx context.Context, userID, shareID uint) error {
	share, err := s.sharedPostRepo.GetByID(ctx, shareID)
	if err != nil {
		return err
	}
	if share.UserID != userID {
		return models.NewPermissionError("only the sharer can delete a share")
	}
	return s.sharedPostRepo.Delete(ctx, shareID)
}

// ListUserShares returns a user's shares, gated on the block relation.
func (s *PostService) ListUserShares(ctx context.Context, viewerID, subjectID uint, limit, offset int) ([]*models.SharedPost, error) {
	if viewerID != subjectID {
		blocked, err := s.relationshipRepo.IsBlockedEitherDirection(ctx, viewerID, subjectID)
		if err != nil {
			return nil, err
		}
		if blocked {
			return nil, models.NewNotFoundError("user")
		}
	}
	return s.sharedPostRepo.ListByUser(ctx, subjectID, limit, offset)
}

// CommentOnShare adds a flat comment to a shared post and notifies the
// sharer.
func (s *PostService) CommentOnShare(ctx context.Context, userID, shareID uint, content string) (*models.SharedPostComment, error) {
	if content == "" {
		return nil, models.NewValidationError("comment content is required")
	}
	if len(content) > 2000 {
		return nil, models.NewValidationError("comment too long (max 2000 characters)")
	}

	share, err := s.sharedPostRepo.GetByID(ctx, shareID)
	if err != nil {
		return nil, err
	}
	blocked, err := s.relationshipRepo.IsBlockedEitherDirection(ctx, userID, share.UserID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, models.NewNotFoundError("shared post")
	}

	comment := &models.SharedPostComment{
		SharedPostID: shareID,
		UserID:       userID,
		Content:      content,
	}
	if err := s.sharedPostRepo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	if s.notifications != nil {
		_ = s.notifications.Notify(ctx, share.UserID, userID, models.NotifComment, share.ID, "commented on your shared post")
	}
	return s.sharedPostRepo.GetCommentByID(ctx, comment.ID)
}

// ListShareComments lists a shared post's comments, oldest first.
func (s *PostService) ListShareComments(ctx context.Context, shareID uint, limit, offset int) ([]models.SharedPostComment, error) {
	return s.sharedPostRepo.ListComments(ctx, shareID, limit, offset)
}
