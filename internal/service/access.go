package service

import (
	"context"

	"commune/internal/models"
	"commune/internal/repository"
)

// authorizePostView applies the block, group and visibility gates for a
// viewer against a post. Failures surface as not-found so a block or a
// private post is indistinguishable from a missing one.
func authorizePostView(ctx context.Context, relationshipRepo repository.RelationshipRepository, groupRepo repository.GroupRepository, viewerID uint, post *models.Post) error {
	if post.UserID == viewerID {
		return nil
	}

	blocked, err := relationshipRepo.IsBlockedEitherDirection(ctx, viewerID, post.UserID)
	if err != nil {
		return err
	}
	if blocked {
		return models.NewNotFoundError("post")
	}

	if post.GroupID != nil {
		group, err := groupRepo.GetByID(ctx, *post.GroupID)
		if err != nil {
			return err
		}
		if group.Privacy != models.GroupPublic {
			membership, err := groupRepo.GetMembership(ctx, *post.GroupID, viewerID)
			if err != nil {
				return err
			}
			if membership == nil || membership.Status != models.MembershipApproved {
				return models.NewNotFoundError("post")
			}
		}
	}

	switch post.Visibility {
	case models.VisibilityPublic:
		return nil
	case models.VisibilityFriends:
		isFriend, err := relationshipRepo.IsFriend(ctx, viewerID, post.UserID)
		if err != nil {
			return err
		}
		if !isFriend {
			return models.NewNotFoundError("post")
		}
		return nil
	default:
		return models.NewNotFoundError("post")
	}
}
