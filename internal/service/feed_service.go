package service

import (
	"context"
	"time"

	"commune/internal/models"
	"commune/internal/observability"
	"commune/internal/repository"
)

// FeedService composes the merged home feed of posts and shared posts.
type FeedService struct {
	postRepo         repository.PostRepository
	sharedPostRepo   repository.SharedPostRepository
	relationshipRepo repository.RelationshipRepository
}

// NewFeedService returns a new FeedService.
func NewFeedService(postRepo repository.PostRepository, sharedPostRepo repository.SharedPostRepository, relationshipRepo repository.RelationshipRepository) *FeedService {
	return &FeedService{
		postRepo:         postRepo,
		sharedPostRepo:   sharedPostRepo,
		relationshipRepo: relationshipRepo,
	}
}

// FeedItem is one entry in the merged feed: a post or a shared post, never
// both.
type FeedItem struct {
	Type       string             `json:"type"`
	Post       *models.Post       `json:"post,omitempty"`
	SharedPost *models.SharedPost `json:"shared_post,omitempty"`
}

const (
	FeedItemPost       = "post"
	FeedItemSharedPost = "shared_post"
)

func (i FeedItem) createdAt() time.Time {
	if i.Post != nil {
		return i.Post.CreatedAt
	}
	return i.SharedPost.CreatedAt
}

func (i FeedItem) id() uint {
	if i.Post != nil {
		return i.Post.ID
	}
	return i.SharedPost.ID
}

// GetFeed builds the viewer's feed. Chronological sort orders everything by
// recency; relevant sort re-ranks posts by engagement plus a friend bonus
// while shared posts stay chronological. Either way the two candidate lists
// are merged on creation time, preserving each list's internal order.
func (s *FeedService) GetFeed(ctx context.Context, viewerID uint, sort string, limit, offset int) ([]FeedItem, error) {
	if viewerID == 0 {
		return nil, models.NewUnauthorizedError("authentication required")
	}
	switch sort {
	case repository.SortChronological, repository.SortRelevant:
	case "":
		sort = repository.SortChronological
	default:
		return nil, models.NewValidationError("invalid sort mode")
	}
	start := time.Now()

	friendIDs, err := s.relationshipRepo.FriendIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	blockedIDs, err := s.relationshipRepo.BlockedIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	posts, err := s.postRepo.ListFeedCandidates(ctx, viewerID, friendIDs, blockedIDs, sort, limit+offset, 0)
	if err != nil {
		return nil, err
	}
	shares, err := s.sharedPostRepo.ListFeedCandidates(ctx, viewerID, blockedIDs, limit+offset, 0)
	if err != nil {
		return nil, err
	}

	feed := mergeFeed(posts, shares)
	if offset >= len(feed) {
		feed = nil
	} else {
		feed = feed[offset:]
	}
	if len(feed) > limit {
		feed = feed[:limit]
	}

	observability.ObserveFeedComposition(sort, start)
	return feed, nil
}

// mergeFeed two-pointer merges the post and share lists on created_at
// descending, ids descending on ties. Each input list's internal order is
// preserved, which is what lets relevant-ranked posts interleave with
// chronological shares.
func mergeFeed(posts []*models.Post, shares []*models.SharedPost) []FeedItem {
	feed := make([]FeedItem, 0, len(posts)+len(shares))
	i, j := 0, 0
	for i < len(posts) && j < len(shares) {
		p := FeedItem{Type: FeedItemPost, Post: posts[i]}
		sh := FeedItem{Type: FeedItemSharedPost, SharedPost: shares[j]}
		if feedItemBefore(p, sh) {
			feed = append(feed, p)
			i++
		} else {
			feed = append(feed, sh)
			j++
		}
	}
	for ; i < len(posts); i++ {
		feed = append(feed, FeedItem{Type: FeedItemPost, Post: posts[i]})
	}
	for ; j < len(shares); j++ {
		feed = append(feed, FeedItem{Type: FeedItemSharedPost, SharedPost: shares[j]})
	}
	return feed
}

func feedItemBefore(a, b FeedItem) bool {
	at, bt := a.createdAt(), b.createdAt()
	if !at.Equal(bt) {
		return at.After(bt)
	}
	return a.id() > b.id()
}
