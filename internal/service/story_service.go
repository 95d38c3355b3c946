package service

import (
	"context"
	"time"

	"commune/internal/models"
	"commune/internal/observability"
	"commune/internal/repository"
	"commune/internal/storage"
)

// StoryService provides ephemeral story business logic. Stories disappear
// 24 hours after creation; expired rows are reaped by RemoveExpired.
type StoryService struct {
	storyRepo        repository.StoryRepository
	relationshipRepo repository.RelationshipRepository
	uploader         storage.Uploader
	now              func() time.Time
}

// NewStoryService returns a new StoryService.
func NewStoryService(storyRepo repository.StoryRepository, relationshipRepo repository.RelationshipRepository, uploader storage.Uploader) *StoryService {
	return &StoryService{
		storyRepo:        storyRepo,
		relationshipRepo: relationshipRepo,
		uploader:         uploader,
		now:              time.Now,
	}
}

// CreateStoryInput carries a story creation request. Media is optional.
type CreateStoryInput struct {
	UserID     uint
	Content    string
	Visibility models.Visibility
	Media      *MediaUpload
}

// CreateStory stores a story expiring StoryLifetime from now.
func (s *StoryService) CreateStory(ctx context.Context, in CreateStoryInput) (*models.Story, error) {
	if in.Content == "" && in.Media == nil {
		return nil, models.NewValidationError("story needs content or media")
	}
	if len(in.Content) > 500 {
		return nil, models.NewValidationError("content too long (max 500 characters)")
	}
	if in.Visibility == "" {
		in.Visibility = models.VisibilityPublic
	}
	if !in.Visibility.Valid() {
		return nil, models.NewValidationError("invalid visibility")
	}

	story := &models.Story{
		UserID:     in.UserID,
		Content:    in.Content,
		Visibility: in.Visibility,
	}
	if in.Media != nil {
		if !in.Media.Type.Valid() {
			return nil, models.NewValidationError("invalid media type")
		}
		url, err := s.uploader.Upload(ctx, in.Media.Data, in.Media.Filename)
		if err != nil {
			return nil, err
		}
		story.MediaURL = url
		story.MediaType = in.Media.Type
	}

	if err := s.storyRepo.Create(ctx, story); err != nil {
		return nil, err
	}
	return s.storyRepo.GetByID(ctx, story.ID)
}

// ListActive returns unexpired stories the viewer may see: every author in a
// block relation is excluded, and friends-only stories require a friendship
// or an accepted follow of the author. The viewer's own stories always appear.
func (s *StoryService) ListActive(ctx context.Context, viewerID uint) ([]models.Story, error) {
	blockedIDs, err := s.relationshipRepo.BlockedIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	stories, err := s.storyRepo.ListActive(ctx, s.now(), blockedIDs)
	if err != nil {
		return nil, err
	}

	friendIDs, err := s.relationshipRepo.FriendIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	followingIDs, err := s.relationshipRepo.FollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	connected := make(map[uint]struct{}, len(friendIDs)+len(followingIDs))
	for _, id := range friendIDs {
		connected[id] = struct{}{}
	}
	for _, id := range followingIDs {
		connected[id] = struct{}{}
	}

	visible := make([]models.Story, 0, len(stories))
	for _, story := range stories {
		if story.UserID == viewerID {
			visible = append(visible, story)
			continue
		}
		switch story.Visibility {
		case models.VisibilityPublic:
			visible = append(visible, story)
		case models.VisibilityFriends:
			if _, ok := connected[story.UserID]; ok {
				visible = append(visible, story)
			}
		}
	}
	return visible, nil
}

// ListUserStories returns a user's unexpired stories, same gating as
// ListActive.
func (s *StoryService) ListUserStories(ctx context.Context, viewerID, subjectID uint) ([]models.Story, error) {
	if viewerID != subjectID {
		blocked, err := s.relationshipRepo.IsBlockedEitherDirection(ctx, viewerID, subjectID)
		if err != nil {
			return nil, err
		}
		if blocked {
			return nil, models.NewNotFoundError("user")
		}
	}
	stories, err := s.storyRepo.ListActiveByUser(ctx, subjectID, s.now())
	if err != nil {
		return nil, err
	}
	if viewerID == subjectID {
		return stories, nil
	}

	connected, err := s.friendOrFollowing(ctx, viewerID, subjectID)
	if err != nil {
		return nil, err
	}
	visible := make([]models.Story, 0, len(stories))
	for _, story := range stories {
		if story.Visibility == models.VisibilityPublic || (story.Visibility == models.VisibilityFriends && connected) {
			visible = append(visible, story)
		}
	}
	return visible, nil
}

// ViewStory records that the viewer opened the story. Repeat views are
// idempotent; viewing your own story records nothing.
func (s *StoryService) ViewStory(ctx context.Context, viewerID, storyID uint) error {
	story, err := s.getVisible(ctx, viewerID, storyID)
	if err != nil {
		return err
	}
	if story.UserID == viewerID {
		return nil
	}
	return s.storyRepo.AddView(ctx, storyID, viewerID)
}

// ListViews returns who has seen one of the caller's own stories.
func (s *StoryService) ListViews(ctx context.Context, userID, storyID uint) ([]models.StoryView, error) {
	story, err := s.storyRepo.GetByID(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if story.UserID != userID {
		return nil, models.NewPermissionError("only the owner can see story views")
	}
	return s.storyRepo.ListViews(ctx, storyID)
}

// ReactToStory sets the viewer's reaction on a story. Stories accept only
// the love reaction; repeating it is idempotent.
func (s *StoryService) ReactToStory(ctx context.Context, viewerID, storyID uint, reactionType models.ReactionType) error {
	if reactionType != models.ReactionLove {
		return models.NewValidationError("stories only accept the love reaction")
	}
	story, err := s.getVisible(ctx, viewerID, storyID)
	if err != nil {
		return err
	}
	if story.UserID == viewerID {
		return models.NewValidationError("cannot react to your own story")
	}
	return s.storyRepo.React(ctx, storyID, viewerID, reactionType)
}

// RemoveStoryReaction clears the viewer's reaction from a story.
func (s *StoryService) RemoveStoryReaction(ctx context.Context, viewerID, storyID uint) error {
	if _, err := s.getVisible(ctx, viewerID, storyID); err != nil {
		return err
	}
	return s.storyRepo.RemoveReaction(ctx, storyID, viewerID)
}

// DeleteStory removes one of the caller's own unexpired stories. An expired
// story is already gone from the caller's perspective, so deleting it is a
// not-found.
func (s *StoryService) DeleteStory(ctx context.Context, userID, storyID uint) error {
	story, err := s.storyRepo.GetByID(ctx, storyID)
	if err != nil {
		return err
	}
	if story.UserID != userID {
		return models.NewPermissionError("only the owner can delete a story")
	}
	if story.Expired(s.now()) {
		return models.NewNotFoundError("story")
	}
	return s.storyRepo.Delete(ctx, storyID)
}

// RemoveExpired hard-deletes stories past their expiry. Meant to run on a
// timer from the server.
func (s *StoryService) RemoveExpired(ctx context.Context) (int64, error) {
	return s.storyRepo.DeleteExpired(ctx, s.now())
}

// getVisible loads an unexpired story and applies the block and visibility
// gates. Expired stories read as not-found.
func (s *StoryService) getVisible(ctx context.Context, viewerID, storyID uint) (*models.Story, error) {
	story, err := s.storyRepo.GetByID(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if story.Expired(s.now()) {
		return nil, models.NewNotFoundError("story")
	}
	if story.UserID == viewerID {
		return story, nil
	}

	blocked, err := s.relationshipRepo.IsBlockedEitherDirection(ctx, viewerID, story.UserID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, models.NewNotFoundError("story")
	}
	if story.Visibility == models.VisibilityFriends {
		connected, err := s.friendOrFollowing(ctx, viewerID, story.UserID)
		if err != nil {
			return nil, err
		}
		if !connected {
			return nil, models.NewNotFoundError("story")
		}
	}
	return story, nil
}

// friendOrFollowing reports whether the viewer is a friend of the author or
// follows them with an accepted edge. Friends-visibility stories open to both.
func (s *StoryService) friendOrFollowing(ctx context.Context, viewerID, authorID uint) (bool, error) {
	isFriend, err := s.relationshipRepo.IsFriend(ctx, viewerID, authorID)
	if err != nil {
		return false, err
	}
	if isFriend {
		return true, nil
	}
	return s.relationshipRepo.IsFollower(ctx, viewerID, authorID)
}

// StartExpirySweeper reaps expired stories every interval until ctx is done.
func (s *StoryService) StartExpirySweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.RemoveExpired(ctx); err != nil {
					observability.LogAsyncOperationError(ctx, "story expiry sweep", err, nil)
				}
			}
		}
	}()
}
