package service

import (
	"context"
	"testing"

	"commune/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCommentService(commentRepo *commentRepoStub, postRepo *postRepoStub) (*CommentService, *[]models.Notification) {
	notifSvc, captured := captureNotifications()
	return NewCommentService(commentRepo, postRepo, noopRelationshipRepo(), noopGroupRepo(), notifSvc), captured
}

func visiblePostRepo(ownerID uint) *postRepoStub {
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
		return &models.Post{ID: id, UserID: ownerID, Visibility: models.VisibilityPublic}, nil
	}
	return repo
}

func TestCommentService_CreateComment_Validation(t *testing.T) {
	svc, _ := newCommentService(noopCommentRepo(), visiblePostRepo(2))

	_, err := svc.CreateComment(context.Background(), 1, 10, nil, "")
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeValidation, err.(*models.AppError).Code)
}

func TestCommentService_CreateComment_RejectsNestedReply(t *testing.T) {
	grandparent := uint(1)
	commentRepo := noopCommentRepo()
	commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		// The requested parent is itself a reply.
		return &models.Comment{ID: id, PostID: 10, ParentID: &grandparent}, nil
	}

	svc, _ := newCommentService(commentRepo, visiblePostRepo(2))
	parentID := uint(5)
	_, err := svc.CreateComment(context.Background(), 1, 10, &parentID, "reply to a reply")
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeValidation, err.(*models.AppError).Code)
}

func TestCommentService_CreateComment_RejectsCrossPostParent(t *testing.T) {
	commentRepo := noopCommentRepo()
	commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return &models.Comment{ID: id, PostID: 99}, nil
	}

	svc, _ := newCommentService(commentRepo, visiblePostRepo(2))
	parentID := uint(5)
	_, err := svc.CreateComment(context.Background(), 1, 10, &parentID, "hi")
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeValidation, err.(*models.AppError).Code)
}

func TestCommentService_CreateComment_NotifiesPostOwner(t *testing.T) {
	commentRepo := noopCommentRepo()
	commentRepo.createFn = func(_ context.Context, c *models.Comment) error {
		c.ID = 55
		return nil
	}
	commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return &models.Comment{ID: id, PostID: 10}, nil
	}

	svc, captured := newCommentService(commentRepo, visiblePostRepo(2))
	_, err := svc.CreateComment(context.Background(), 1, 10, nil, "first")
	require.NoError(t, err)
	require.Len(t, *captured, 1)
	assert.Equal(t, uint(2), (*captured)[0].UserID)
	assert.Equal(t, models.NotifComment, (*captured)[0].Type)
}

func TestCommentService_CreateComment_ReplyNotifiesParentAuthor(t *testing.T) {
	commentRepo := noopCommentRepo()
	commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		if id == 5 {
			return &models.Comment{ID: 5, PostID: 10, UserID: 3}, nil
		}
		return &models.Comment{ID: id, PostID: 10}, nil
	}

	svc, captured := newCommentService(commentRepo, visiblePostRepo(2))
	parentID := uint(5)
	_, err := svc.CreateComment(context.Background(), 1, 10, &parentID, "good point")
	require.NoError(t, err)
	require.Len(t, *captured, 1)
	assert.Equal(t, uint(3), (*captured)[0].UserID)
	assert.Equal(t, models.NotifReply, (*captured)[0].Type)
}

func TestCommentService_CreateComment_ReplyToOwnCommentIsSilent(t *testing.T) {
	commentRepo := noopCommentRepo()
	commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return &models.Comment{ID: id, PostID: 10, UserID: 3}, nil
	}

	svc, captured := newCommentService(commentRepo, visiblePostRepo(2))
	parentID := uint(5)
	_, err := svc.CreateComment(context.Background(), 3, 10, &parentID, "following up")
	require.NoError(t, err)
	assert.Empty(t, *captured)
}

func TestCommentService_CreateComment_NoSelfNotification(t *testing.T) {
	commentRepo := noopCommentRepo()
	commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return &models.Comment{ID: id, PostID: 10}, nil
	}

	svc, captured := newCommentService(commentRepo, visiblePostRepo(2))
	_, err := svc.CreateComment(context.Background(), 2, 10, nil, "my own post")
	require.NoError(t, err)
	assert.Empty(t, *captured)
}

func TestCommentService_ListComments_Threading(t *testing.T) {
	parent1 := uint(1)
	parent2 := uint(2)
	commentRepo := noopCommentRepo()
	commentRepo.listByPostFn = func(context.Context, uint, bool) ([]models.Comment, error) {
		return []models.Comment{
			{ID: 1, PostID: 10, Content: "first"},
			{ID: 2, PostID: 10, Content: "second"},
			{ID: 3, PostID: 10, ParentID: &parent1, Content: "reply to first"},
			{ID: 4, PostID: 10, ParentID: &parent2, Content: "reply to second"},
			{ID: 5, PostID: 10, ParentID: &parent1, Content: "another reply to first"},
		}, nil
	}

	svc, _ := newCommentService(commentRepo, visiblePostRepo(2))
	comments, err := svc.ListComments(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, uint(1), comments[0].ID)
	require.Len(t, comments[0].Replies, 2)
	assert.Equal(t, uint(3), comments[0].Replies[0].ID)
	assert.Equal(t, uint(5), comments[0].Replies[1].ID)
	require.Len(t, comments[1].Replies, 1)
}

func TestCommentService_ListComments_HiddenOnlyForOwner(t *testing.T) {
	var sawIncludeHidden bool
	commentRepo := noopCommentRepo()
	commentRepo.listByPostFn = func(_ context.Context, _ uint, includeHidden bool) ([]models.Comment, error) {
		sawIncludeHidden = includeHidden
		return nil, nil
	}

	svc, _ := newCommentService(commentRepo, visiblePostRepo(2))

	_, err := svc.ListComments(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.False(t, sawIncludeHidden)

	_, err = svc.ListComments(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.True(t, sawIncludeHidden)
}

func TestCommentService_DeleteComment_Permissions(t *testing.T) {
	commentRepo := noopCommentRepo()
	commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return &models.Comment{ID: id, PostID: 10, UserID: 3}, nil
	}

	t.Run("Author can delete", func(t *testing.T) {
		svc, _ := newCommentService(commentRepo, visiblePostRepo(2))
		assert.NoError(t, svc.DeleteComment(context.Background(), 3, 5))
	})

	t.Run("Post owner can delete", func(t *testing.T) {
		svc, _ := newCommentService(commentRepo, visiblePostRepo(2))
		assert.NoError(t, svc.DeleteComment(context.Background(), 2, 5))
	})

	t.Run("Anyone else cannot", func(t *testing.T) {
		svc, _ := newCommentService(commentRepo, visiblePostRepo(2))
		err := svc.DeleteComment(context.Background(), 4, 5)
		require.Error(t, err)
		assert.Equal(t, models.ErrCodePermissionDenied, err.(*models.AppError).Code)
	})
}

func TestCommentService_SetCommentHidden_PostOwnerOnly(t *testing.T) {
	commentRepo := noopCommentRepo()
	commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return &models.Comment{ID: id, PostID: 10, UserID: 3}, nil
	}

	svc, _ := newCommentService(commentRepo, visiblePostRepo(2))

	err := svc.SetCommentHidden(context.Background(), 3, 5, true)
	require.Error(t, err)
	assert.Equal(t, models.ErrCodePermissionDenied, err.(*models.AppError).Code)

	assert.NoError(t, svc.SetCommentHidden(context.Background(), 2, 5, true))
}
