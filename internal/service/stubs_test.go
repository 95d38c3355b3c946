package service

import (
	"context"
	"time"

	"commune/internal/models"
	"commune/internal/repository"
)

// Function-field stubs for every repository interface. The noop constructors
// return implementations where reads find nothing and writes succeed; tests
// override the fields they care about.

type postRepoStub struct {
	createFn             func(context.Context, *models.Post) error
	getByIDFn            func(context.Context, uint, uint) (*models.Post, error)
	updateFn             func(context.Context, *models.Post) error
	deleteFn             func(context.Context, uint) error
	listByUserFn         func(context.Context, uint, uint, int, int) ([]*models.Post, error)
	listByGroupFn        func(context.Context, uint, uint, int, int) ([]*models.Post, error)
	listFeedCandidatesFn func(context.Context, uint, []uint, []uint, string, int, int) ([]*models.Post, error)
	incrementViewFn      func(context.Context, uint) error
	incrementClickFn     func(context.Context, uint) error
	saveFn               func(context.Context, uint, uint) error
	unsaveFn             func(context.Context, uint, uint) error
	isSavedFn            func(context.Context, uint, uint) (bool, error)
	listSavedFn          func(context.Context, uint, int, int) ([]*models.Post, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id, viewerID)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error { return s.deleteFn(ctx, id) }
func (s *postRepoStub) ListByUser(ctx context.Context, userID, viewerID uint, limit, offset int) ([]*models.Post, error) {
	return s.listByUserFn(ctx, userID, viewerID, limit, offset)
}
func (s *postRepoStub) ListByGroup(ctx context.Context, groupID, viewerID uint, limit, offset int) ([]*models.Post, error) {
	return s.listByGroupFn(ctx, groupID, viewerID, limit, offset)
}
func (s *postRepoStub) ListFeedCandidates(ctx context.Context, viewerID uint, friendIDs, blockedIDs []uint, sort string, limit, offset int) ([]*models.Post, error) {
	return s.listFeedCandidatesFn(ctx, viewerID, friendIDs, blockedIDs, sort, limit, offset)
}
func (s *postRepoStub) IncrementViewCount(ctx context.Context, id uint) error {
	return s.incrementViewFn(ctx, id)
}
func (s *postRepoStub) IncrementClickCount(ctx context.Context, id uint) error {
	return s.incrementClickFn(ctx, id)
}
func (s *postRepoStub) Save(ctx context.Context, userID, postID uint) error {
	return s.saveFn(ctx, userID, postID)
}
func (s *postRepoStub) Unsave(ctx context.Context, userID, postID uint) error {
	return s.unsaveFn(ctx, userID, postID)
}
func (s *postRepoStub) IsSaved(ctx context.Context, userID, postID uint) (bool, error) {
	return s.isSavedFn(ctx, userID, postID)
}
func (s *postRepoStub) ListSaved(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	return s.listSavedFn(ctx, userID, limit, offset)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:  func(context.Context, *models.Post) error { return nil },
		getByIDFn: func(context.Context, uint, uint) (*models.Post, error) { return nil, models.NewNotFoundError("post") },
		updateFn:  func(context.Context, *models.Post) error { return nil },
		deleteFn:  func(context.Context, uint) error { return nil },
		listByUserFn: func(context.Context, uint, uint, int, int) ([]*models.Post, error) {
			return nil, nil
		},
		listByGroupFn: func(context.Context, uint, uint, int, int) ([]*models.Post, error) {
			return nil, nil
		},
		listFeedCandidatesFn: func(context.Context, uint, []uint, []uint, string, int, int) ([]*models.Post, error) {
			return nil, nil
		},
		incrementViewFn:  func(context.Context, uint) error { return nil },
		incrementClickFn: func(context.Context, uint) error { return nil },
		saveFn:           func(context.Context, uint, uint) error { return nil },
		unsaveFn:         func(context.Context, uint, uint) error { return nil },
		isSavedFn:        func(context.Context, uint, uint) (bool, error) { return false, nil },
		listSavedFn:      func(context.Context, uint, int, int) ([]*models.Post, error) { return nil, nil },
	}
}

type sharedPostRepoStub struct {
	createFn             func(context.Context, *models.SharedPost) error
	getByIDFn            func(context.Context, uint) (*models.SharedPost, error)
	deleteFn             func(context.Context, uint) error
	listByUserFn         func(context.Context, uint, int, int) ([]*models.SharedPost, error)
	listFeedCandidatesFn func(context.Context, uint, []uint, int, int) ([]*models.SharedPost, error)
	createCommentFn      func(context.Context, *models.SharedPostComment) error
	getCommentByIDFn     func(context.Context, uint) (*models.SharedPostComment, error)
	deleteCommentFn      func(context.Context, uint) error
	listCommentsFn       func(context.Context, uint, int, int) ([]models.SharedPostComment, error)
}

func (s *sharedPostRepoStub) Create(ctx context.Context, share *models.SharedPost) error {
	return s.createFn(ctx, share)
}
func (s *sharedPostRepoStub) GetByID(ctx context.Context, id uint) (*models.SharedPost, error) {
	return s.getByIDFn(ctx, id)
}
func (s *sharedPostRepoStub) Delete(ctx context.Context, id uint) error { return s.deleteFn(ctx, id) }
func (s *sharedPostRepoStub) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.SharedPost, error) {
	return s.listByUserFn(ctx, userID, limit, offset)
}
func (s *sharedPostRepoStub) ListFeedCandidates(ctx context.Context, viewerID uint, blockedIDs []uint, limit, offset int) ([]*models.SharedPost, error) {
	return s.listFeedCandidatesFn(ctx, viewerID, blockedIDs, limit, offset)
}
func (s *sharedPostRepoStub) CreateComment(ctx context.Context, comment *models.SharedPostComment) error {
	return s.createCommentFn(ctx, comment)
}
func (s *sharedPostRepoStub) GetCommentByID(ctx context.Context, id uint) (*models.SharedPostComment, error) {
	return s.getCommentByIDFn(ctx, id)
}
func (s *sharedPostRepoStub) DeleteComment(ctx context.Context, id uint) error {
	return s.deleteCommentFn(ctx, id)
}
func (s *sharedPostRepoStub) ListComments(ctx context.Context, sharedPostID uint, limit, offset int) ([]models.SharedPostComment, error) {
	return s.listCommentsFn(ctx, sharedPostID, limit, offset)
}

func noopSharedPostRepo() *sharedPostRepoStub {
	return &sharedPostRepoStub{
		createFn: func(context.Context, *models.SharedPost) error { return nil },
		getByIDFn: func(context.Context, uint) (*models.SharedPost, error) {
			return nil, models.NewNotFoundError("shared post")
		},
		deleteFn:     func(context.Context, uint) error { return nil },
		listByUserFn: func(context.Context, uint, int, int) ([]*models.SharedPost, error) { return nil, nil },
		listFeedCandidatesFn: func(context.Context, uint, []uint, int, int) ([]*models.SharedPost, error) {
			return nil, nil
		},
		createCommentFn: func(context.Context, *models.SharedPostComment) error { return nil },
		getCommentByIDFn: func(context.Context, uint) (*models.SharedPostComment, error) {
			return nil, models.NewNotFoundError("comment")
		},
		deleteCommentFn: func(context.Context, uint) error { return nil },
		listCommentsFn:  func(context.Context, uint, int, int) ([]models.SharedPostComment, error) { return nil, nil },
	}
}

type commentRepoStub struct {
	createFn      func(context.Context, *models.Comment) error
	getByIDFn     func(context.Context, uint) (*models.Comment, error)
	updateFn      func(context.Context, *models.Comment) error
	deleteFn      func(context.Context, uint) error
	setHiddenFn   func(context.Context, uint, bool) error
	listByPostFn  func(context.Context, uint, bool) ([]models.Comment, error)
	countByPostFn func(context.Context, uint) (int64, error)
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) Update(ctx context.Context, comment *models.Comment) error {
	return s.updateFn(ctx, comment)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error { return s.deleteFn(ctx, id) }
func (s *commentRepoStub) SetHidden(ctx context.Context, id uint, hidden bool) error {
	return s.setHiddenFn(ctx, id, hidden)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint, includeHidden bool) ([]models.Comment, error) {
	return s.listByPostFn(ctx, postID, includeHidden)
}
func (s *commentRepoStub) CountByPost(ctx context.Context, postID uint) (int64, error) {
	return s.countByPostFn(ctx, postID)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:      func(context.Context, *models.Comment) error { return nil },
		getByIDFn:     func(context.Context, uint) (*models.Comment, error) { return nil, models.NewNotFoundError("comment") },
		updateFn:      func(context.Context, *models.Comment) error { return nil },
		deleteFn:      func(context.Context, uint) error { return nil },
		setHiddenFn:   func(context.Context, uint, bool) error { return nil },
		listByPostFn:  func(context.Context, uint, bool) ([]models.Comment, error) { return nil, nil },
		countByPostFn: func(context.Context, uint) (int64, error) { return 0, nil },
	}
}

type reactionRepoStub struct {
	toggleFn         func(context.Context, uint, models.ReactionSubject, uint, models.ReactionType) (repository.ToggleOutcome, *models.Reaction, error)
	getFn            func(context.Context, uint, models.ReactionSubject, uint) (*models.Reaction, error)
	listBySubjectFn  func(context.Context, models.ReactionSubject, uint, int, int) ([]models.Reaction, error)
	countBySubjectFn func(context.Context, models.ReactionSubject, uint) (int64, error)
}

func (s *reactionRepoStub) Toggle(ctx context.Context, userID uint, subject models.ReactionSubject, subjectID uint, reactionType models.ReactionType) (repository.ToggleOutcome, *models.Reaction, error) {
	return s.toggleFn(ctx, userID, subject, subjectID, reactionType)
}
func (s *reactionRepoStub) Get(ctx context.Context, userID uint, subject models.ReactionSubject, subjectID uint) (*models.Reaction, error) {
	return s.getFn(ctx, userID, subject, subjectID)
}
func (s *reactionRepoStub) ListBySubject(ctx context.Context, subject models.ReactionSubject, subjectID uint, limit, offset int) ([]models.Reaction, error) {
	return s.listBySubjectFn(ctx, subject, subjectID, limit, offset)
}
func (s *reactionRepoStub) CountBySubject(ctx context.Context, subject models.ReactionSubject, subjectID uint) (int64, error) {
	return s.countBySubjectFn(ctx, subject, subjectID)
}

func noopReactionRepo() *reactionRepoStub {
	return &reactionRepoStub{
		toggleFn: func(_ context.Context, userID uint, subject models.ReactionSubject, subjectID uint, reactionType models.ReactionType) (repository.ToggleOutcome, *models.Reaction, error) {
			return repository.ToggleCreated, &models.Reaction{UserID: userID, SubjectType: subject, SubjectID: subjectID, Type: reactionType}, nil
		},
		getFn: func(context.Context, uint, models.ReactionSubject, uint) (*models.Reaction, error) {
			return nil, models.NewNotFoundError("reaction")
		},
		listBySubjectFn: func(context.Context, models.ReactionSubject, uint, int, int) ([]models.Reaction, error) {
			return nil, nil
		},
		countBySubjectFn: func(context.Context, models.ReactionSubject, uint) (int64, error) { return 0, nil },
	}
}

type relationshipRepoStub struct {
	createConnectionFn  func(context.Context, *models.Connection) error
	getConnectionFn     func(context.Context, uint, uint, models.ConnectionType) (*models.Connection, error)
	getFriendEdgeFn     func(context.Context, uint, uint) (*models.Connection, error)
	getConnectionByIDFn func(context.Context, uint) (*models.Connection, error)
	updateStatusFn      func(context.Context, uint, models.ConnectionStatus) error
	deleteConnectionFn  func(context.Context, uint) error
	removeFriendEdgeFn  func(context.Context, uint, uint) error
	removeFollowEdgeFn  func(context.Context, uint, uint) error
	isFriendFn          func(context.Context, uint, uint) (bool, error)
	isFollowerFn        func(context.Context, uint, uint) (bool, error)
	friendIDsFn         func(context.Context, uint) ([]uint, error)
	followingIDsFn      func(context.Context, uint) ([]uint, error)
	getFriendsFn        func(context.Context, uint) ([]models.User, error)
	getFollowersFn      func(context.Context, uint) ([]models.User, error)
	getFollowingFn      func(context.Context, uint) ([]models.User, error)
	getPendingFn        func(context.Context, uint) ([]models.Connection, error)
	getSentFn           func(context.Context, uint) ([]models.Connection, error)
	blockFn             func(context.Context, uint, uint) error
	unblockFn           func(context.Context, uint, uint) error
	isBlockedFn         func(context.Context, uint, uint) (bool, error)
	blockedIDsFn        func(context.Context, uint) ([]uint, error)
	getBlockedUsersFn   func(context.Context, uint) ([]models.UserBlock, error)
}

func (s *relationshipRepoStub) CreateConnection(ctx context.Context, conn *models.Connection) error {
	return s.createConnectionFn(ctx, conn)
}
func (s *relationshipRepoStub) GetConnection(ctx context.Context, requesterID, targetID uint, connType models.ConnectionType) (*models.Connection, error) {
	return s.getConnectionFn(ctx, requesterID, targetID, connType)
}
func (s *relationshipRepoStub) GetFriendEdge(ctx context.Context, userID1, userID2 uint) (*models.Connection, error) {
	return s.getFriendEdgeFn(ctx, userID1, userID2)
}
func (s *relationshipRepoStub) GetConnectionByID(ctx context.Context, id uint) (*models.Connection, error) {
	return s.getConnectionByIDFn(ctx, id)
}
func (s *relationshipRepoStub) UpdateStatus(ctx context.Context, connectionID uint, status models.ConnectionStatus) error {
	return s.updateStatusFn(ctx, connectionID, status)
}
func (s *relationshipRepoStub) DeleteConnection(ctx context.Context, connectionID uint) error {
	return s.deleteConnectionFn(ctx, connectionID)
}
func (s *relationshipRepoStub) RemoveFriendEdge(ctx context.Context, userID1, userID2 uint) error {
	return s.removeFriendEdgeFn(ctx, userID1, userID2)
}
func (s *relationshipRepoStub) RemoveFollowEdge(ctx context.Context, followerID, followeeID uint) error {
	return s.removeFollowEdgeFn(ctx, followerID, followeeID)
}
func (s *relationshipRepoStub) IsFriend(ctx context.Context, userID1, userID2 uint) (bool, error) {
	return s.isFriendFn(ctx, userID1, userID2)
}
func (s *relationshipRepoStub) IsFollower(ctx context.Context, followerID, followeeID uint) (bool, error) {
	return s.isFollowerFn(ctx, followerID, followeeID)
}
func (s *relationshipRepoStub) FriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.friendIDsFn(ctx, userID)
}
func (s *relationshipRepoStub) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.followingIDsFn(ctx, userID)
}
func (s *relationshipRepoStub) GetFriends(ctx context.Context, userID uint) ([]models.User, error) {
	return s.getFriendsFn(ctx, userID)
}
func (s *relationshipRepoStub) GetFollowers(ctx context.Context, userID uint) ([]models.User, error) {
	return s.getFollowersFn(ctx, userID)
}
func (s *relationshipRepoStub) GetFollowing(ctx context.Context, userID uint) ([]models.User, error) {
	return s.getFollowingFn(ctx, userID)
}
func (s *relationshipRepoStub) GetPendingRequests(ctx context.Context, userID uint) ([]models.Connection, error) {
	return s.getPendingFn(ctx, userID)
}
func (s *relationshipRepoStub) GetSentRequests(ctx context.Context, userID uint) ([]models.Connection, error) {
	return s.getSentFn(ctx, userID)
}
func (s *relationshipRepoStub) Block(ctx context.Context, blockerID, blockedID uint) error {
	return s.blockFn(ctx, blockerID, blockedID)
}
func (s *relationshipRepoStub) Unblock(ctx context.Context, blockerID, blockedID uint) error {
	return s.unblockFn(ctx, blockerID, blockedID)
}
func (s *relationshipRepoStub) IsBlockedEitherDirection(ctx context.Context, userID1, userID2 uint) (bool, error) {
	return s.isBlockedFn(ctx, userID1, userID2)
}
func (s *relationshipRepoStub) BlockedIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.blockedIDsFn(ctx, userID)
}
func (s *relationshipRepoStub) GetBlockedUsers(ctx context.Context, blockerID uint) ([]models.UserBlock, error) {
	return s.getBlockedUsersFn(ctx, blockerID)
}

func noopRelationshipRepo() *relationshipRepoStub {
	return &relationshipRepoStub{
		createConnectionFn: func(context.Context, *models.Connection) error { return nil },
		getConnectionFn: func(context.Context, uint, uint, models.ConnectionType) (*models.Connection, error) {
			return nil, nil
		},
		getFriendEdgeFn: func(context.Context, uint, uint) (*models.Connection, error) {
			return nil, nil
		},
		getConnectionByIDFn: func(context.Context, uint) (*models.Connection, error) {
			return nil, models.NewNotFoundError("connection")
		},
		updateStatusFn:     func(context.Context, uint, models.ConnectionStatus) error { return nil },
		deleteConnectionFn: func(context.Context, uint) error { return nil },
		removeFriendEdgeFn: func(context.Context, uint, uint) error { return nil },
		removeFollowEdgeFn: func(context.Context, uint, uint) error { return nil },
		isFriendFn:         func(context.Context, uint, uint) (bool, error) { return false, nil },
		isFollowerFn:       func(context.Context, uint, uint) (bool, error) { return false, nil },
		friendIDsFn:        func(context.Context, uint) ([]uint, error) { return nil, nil },
		followingIDsFn:     func(context.Context, uint) ([]uint, error) { return nil, nil },
		getFriendsFn:       func(context.Context, uint) ([]models.User, error) { return nil, nil },
		getFollowersFn:     func(context.Context, uint) ([]models.User, error) { return nil, nil },
		getFollowingFn:     func(context.Context, uint) ([]models.User, error) { return nil, nil },
		getPendingFn:       func(context.Context, uint) ([]models.Connection, error) { return nil, nil },
		getSentFn:          func(context.Context, uint) ([]models.Connection, error) { return nil, nil },
		blockFn:            func(context.Context, uint, uint) error { return nil },
		unblockFn:          func(context.Context, uint, uint) error { return nil },
		isBlockedFn:        func(context.Context, uint, uint) (bool, error) { return false, nil },
		blockedIDsFn:       func(context.Context, uint) ([]uint, error) { return nil, nil },
		getBlockedUsersFn:  func(context.Context, uint) ([]models.UserBlock, error) { return nil, nil },
	}
}

type storyRepoStub struct {
	createFn           func(context.Context, *models.Story) error
	getByIDFn          func(context.Context, uint) (*models.Story, error)
	deleteFn           func(context.Context, uint) error
	listActiveFn       func(context.Context, time.Time, []uint) ([]models.Story, error)
	listActiveByUserFn func(context.Context, uint, time.Time) ([]models.Story, error)
	deleteExpiredFn    func(context.Context, time.Time) (int64, error)
	addViewFn          func(context.Context, uint, uint) error
	listViewsFn        func(context.Context, uint) ([]models.StoryView, error)
	reactFn            func(context.Context, uint, uint, models.ReactionType) error
	removeReactionFn   func(context.Context, uint, uint) error
}

func (s *storyRepoStub) Create(ctx context.Context, story *models.Story) error {
	return s.createFn(ctx, story)
}
func (s *storyRepoStub) GetByID(ctx context.Context, id uint) (*models.Story, error) {
	return s.getByIDFn(ctx, id)
}
func (s *storyRepoStub) Delete(ctx context.Context, id uint) error { return s.deleteFn(ctx, id) }
func (s *storyRepoStub) ListActive(ctx context.Context, now time.Time, blockedIDs []uint) ([]models.Story, error) {
	return s.listActiveFn(ctx, now, blockedIDs)
}
func (s *storyRepoStub) ListActiveByUser(ctx context.Context, userID uint, now time.Time) ([]models.Story, error) {
	return s.listActiveByUserFn(ctx, userID, now)
}
func (s *storyRepoStub) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return s.deleteExpiredFn(ctx, now)
}
func (s *storyRepoStub) AddView(ctx context.Context, storyID, viewerID uint) error {
	return s.addViewFn(ctx, storyID, viewerID)
}
func (s *storyRepoStub) ListViews(ctx context.Context, storyID uint) ([]models.StoryView, error) {
	return s.listViewsFn(ctx, storyID)
}
func (s *storyRepoStub) React(ctx context.Context, storyID, userID uint, reactionType models.ReactionType) error {
	return s.reactFn(ctx, storyID, userID, reactionType)
}
func (s *storyRepoStub) RemoveReaction(ctx context.Context, storyID, userID uint) error {
	return s.removeReactionFn(ctx, storyID, userID)
}

func noopStoryRepo() *storyRepoStub {
	return &storyRepoStub{
		createFn:           func(context.Context, *models.Story) error { return nil },
		getByIDFn:          func(context.Context, uint) (*models.Story, error) { return nil, models.NewNotFoundError("story") },
		deleteFn:           func(context.Context, uint) error { return nil },
		listActiveFn:       func(context.Context, time.Time, []uint) ([]models.Story, error) { return nil, nil },
		listActiveByUserFn: func(context.Context, uint, time.Time) ([]models.Story, error) { return nil, nil },
		deleteExpiredFn:    func(context.Context, time.Time) (int64, error) { return 0, nil },
		addViewFn:          func(context.Context, uint, uint) error { return nil },
		listViewsFn:        func(context.Context, uint) ([]models.StoryView, error) { return nil, nil },
		reactFn:            func(context.Context, uint, uint, models.ReactionType) error { return nil },
		removeReactionFn:   func(context.Context, uint, uint) error { return nil },
	}
}

type groupRepoStub struct {
	createFn              func(context.Context, *models.Group) error
	getByIDFn             func(context.Context, uint) (*models.Group, error)
	updateFn              func(context.Context, *models.Group) error
	deleteFn              func(context.Context, uint) error
	searchFn              func(context.Context, string, uint, int, int) ([]models.Group, error)
	listByMemberFn        func(context.Context, uint) ([]models.Group, error)
	createMembershipFn    func(context.Context, *models.GroupMembership) error
	getMembershipFn       func(context.Context, uint, uint) (*models.GroupMembership, error)
	getMembershipByIDFn   func(context.Context, uint) (*models.GroupMembership, error)
	updateMembershipFn    func(context.Context, *models.GroupMembership) error
	deleteMembershipFn    func(context.Context, uint, uint) error
	listMembersFn         func(context.Context, uint, int, int) ([]models.GroupMembership, error)
	listPendingRequestsFn func(context.Context, uint) ([]models.GroupMembership, error)
	countAdminsFn         func(context.Context, uint) (int64, error)
}

func (s *groupRepoStub) Create(ctx context.Context, group *models.Group) error {
	return s.createFn(ctx, group)
}
func (s *groupRepoStub) GetByID(ctx context.Context, id uint) (*models.Group, error) {
	return s.getByIDFn(ctx, id)
}
func (s *groupRepoStub) Update(ctx context.Context, group *models.Group) error {
	return s.updateFn(ctx, group)
}
func (s *groupRepoStub) Delete(ctx context.Context, id uint) error { return s.deleteFn(ctx, id) }
func (s *groupRepoStub) Search(ctx context.Context, query string, searcherID uint, limit, offset int) ([]models.Group, error) {
	return s.searchFn(ctx, query, searcherID, limit, offset)
}
func (s *groupRepoStub) ListByMember(ctx context.Context, userID uint) ([]models.Group, error) {
	return s.listByMemberFn(ctx, userID)
}
func (s *groupRepoStub) CreateMembership(ctx context.Context, membership *models.GroupMembership) error {
	return s.createMembershipFn(ctx, membership)
}
func (s *groupRepoStub) GetMembership(ctx context.Context, groupID, userID uint) (*models.GroupMembership, error) {
	return s.getMembershipFn(ctx, groupID, userID)
}
func (s *groupRepoStub) GetMembershipByID(ctx context.Context, id uint) (*models.GroupMembership, error) {
	return s.getMembershipByIDFn(ctx, id)
}
func (s *groupRepoStub) UpdateMembership(ctx context.Context, membership *models.GroupMembership) error {
	return s.updateMembershipFn(ctx, membership)
}
func (s *groupRepoStub) DeleteMembership(ctx context.Context, groupID, userID uint) error {
	return s.deleteMembershipFn(ctx, groupID, userID)
}
func (s *groupRepoStub) ListMembers(ctx context.Context, groupID uint, limit, offset int) ([]models.GroupMembership, error) {
	return s.listMembersFn(ctx, groupID, limit, offset)
}
func (s *groupRepoStub) ListPendingRequests(ctx context.Context, groupID uint) ([]models.GroupMembership, error) {
	return s.listPendingRequestsFn(ctx, groupID)
}
func (s *groupRepoStub) CountAdmins(ctx context.Context, groupID uint) (int64, error) {
	return s.countAdminsFn(ctx, groupID)
}

func noopGroupRepo() *groupRepoStub {
	return &groupRepoStub{
		createFn:       func(context.Context, *models.Group) error { return nil },
		getByIDFn:      func(context.Context, uint) (*models.Group, error) { return nil, models.NewNotFoundError("group") },
		updateFn:       func(context.Context, *models.Group) error { return nil },
		deleteFn:       func(context.Context, uint) error { return nil },
		searchFn:       func(context.Context, string, uint, int, int) ([]models.Group, error) { return nil, nil },
		listByMemberFn: func(context.Context, uint) ([]models.Group, error) { return nil, nil },
		createMembershipFn: func(context.Context, *models.GroupMembership) error { return nil },
		getMembershipFn: func(context.Context, uint, uint) (*models.GroupMembership, error) {
			return nil, nil
		},
		getMembershipByIDFn: func(context.Context, uint) (*models.GroupMembership, error) {
			return nil, models.NewNotFoundError("membership request")
		},
		updateMembershipFn: func(context.Context, *models.GroupMembership) error { return nil },
		deleteMembershipFn: func(context.Context, uint, uint) error { return nil },
		listMembersFn:      func(context.Context, uint, int, int) ([]models.GroupMembership, error) { return nil, nil },
		listPendingRequestsFn: func(context.Context, uint) ([]models.GroupMembership, error) {
			return nil, nil
		},
		countAdminsFn: func(context.Context, uint) (int64, error) { return 1, nil },
	}
}

type notificationRepoStub struct {
	createFn        func(context.Context, *models.Notification) error
	getByIDFn       func(context.Context, uint) (*models.Notification, error)
	listByUserFn    func(context.Context, uint, int, int) ([]models.Notification, error)
	markReadFn      func(context.Context, uint, uint) error
	markAllReadFn   func(context.Context, uint) (int64, error)
	markAllUnreadFn func(context.Context, uint) (int64, error)
	unreadCountFn   func(context.Context, uint) (int64, error)
	deleteFn        func(context.Context, uint, uint) error
}

func (s *notificationRepoStub) Create(ctx context.Context, notification *models.Notification) error {
	return s.createFn(ctx, notification)
}
func (s *notificationRepoStub) GetByID(ctx context.Context, id uint) (*models.Notification, error) {
	return s.getByIDFn(ctx, id)
}
func (s *notificationRepoStub) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Notification, error) {
	return s.listByUserFn(ctx, userID, limit, offset)
}
func (s *notificationRepoStub) MarkRead(ctx context.Context, id, userID uint) error {
	return s.markReadFn(ctx, id, userID)
}
func (s *notificationRepoStub) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	return s.markAllReadFn(ctx, userID)
}
func (s *notificationRepoStub) MarkAllUnread(ctx context.Context, userID uint) (int64, error) {
	return s.markAllUnreadFn(ctx, userID)
}
func (s *notificationRepoStub) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.unreadCountFn(ctx, userID)
}
func (s *notificationRepoStub) Delete(ctx context.Context, id, userID uint) error {
	return s.deleteFn(ctx, id, userID)
}

func noopNotificationRepo() *notificationRepoStub {
	return &notificationRepoStub{
		createFn: func(context.Context, *models.Notification) error { return nil },
		getByIDFn: func(context.Context, uint) (*models.Notification, error) {
			return nil, models.NewNotFoundError("notification")
		},
		listByUserFn:    func(context.Context, uint, int, int) ([]models.Notification, error) { return nil, nil },
		markReadFn:      func(context.Context, uint, uint) error { return nil },
		markAllReadFn:   func(context.Context, uint) (int64, error) { return 0, nil },
		markAllUnreadFn: func(context.Context, uint) (int64, error) { return 0, nil },
		unreadCountFn:   func(context.Context, uint) (int64, error) { return 0, nil },
		deleteFn:        func(context.Context, uint, uint) error { return nil },
	}
}

type userRepoStub struct {
	getByIDFn            func(context.Context, uint) (*models.User, error)
	getByIDWithProfileFn func(context.Context, uint) (*models.User, error)
	getByEmailFn         func(context.Context, string) (*models.User, error)
	getByUsernameFn      func(context.Context, string) (*models.User, error)
	createFn             func(context.Context, *models.User) error
	updateFn             func(context.Context, *models.User) error
	updateProfileFn      func(context.Context, *models.Profile) error
	deleteFn             func(context.Context, uint) error
	deleteAccountFn      func(context.Context, uint) error
	searchFn             func(context.Context, string, []uint, int, int) ([]models.User, error)
	summariesByIDsFn     func(context.Context, []uint) (map[uint]models.UserSummary, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByIDWithProfile(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDWithProfileFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	return s.updateProfileFn(ctx, profile)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error { return s.deleteFn(ctx, id) }
func (s *userRepoStub) DeleteAccount(ctx context.Context, id uint) error {
	return s.deleteAccountFn(ctx, id)
}
func (s *userRepoStub) Search(ctx context.Context, query string, excludeIDs []uint, limit, offset int) ([]models.User, error) {
	return s.searchFn(ctx, query, excludeIDs, limit, offset)
}
func (s *userRepoStub) SummariesByIDs(ctx context.Context, ids []uint) (map[uint]models.UserSummary, error) {
	return s.summariesByIDsFn(ctx, ids)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:            func(context.Context, uint) (*models.User, error) { return nil, models.NewNotFoundError("user") },
		getByIDWithProfileFn: func(context.Context, uint) (*models.User, error) { return nil, models.NewNotFoundError("user") },
		getByEmailFn:         func(context.Context, string) (*models.User, error) { return nil, nil },
		getByUsernameFn:      func(context.Context, string) (*models.User, error) { return nil, nil },
		createFn:             func(context.Context, *models.User) error { return nil },
		updateFn:             func(context.Context, *models.User) error { return nil },
		updateProfileFn:      func(context.Context, *models.Profile) error { return nil },
		deleteFn:             func(context.Context, uint) error { return nil },
		deleteAccountFn:      func(context.Context, uint) error { return nil },
		searchFn:             func(context.Context, string, []uint, int, int) ([]models.User, error) { return nil, nil },
		summariesByIDsFn: func(context.Context, []uint) (map[uint]models.UserSummary, error) {
			return map[uint]models.UserSummary{}, nil
		},
	}
}

// captureNotifications returns a durable-only NotificationService whose
// created rows are appended to the returned slice.
func captureNotifications() (*NotificationService, *[]models.Notification) {
	captured := &[]models.Notification{}
	repo := noopNotificationRepo()
	repo.createFn = func(_ context.Context, n *models.Notification) error {
		*captured = append(*captured, *n)
		return nil
	}
	return NewNotificationService(repo, nil), captured
}

type uploaderStub struct {
	uploadFn func(context.Context, []byte, string) (string, error)
}

func (s *uploaderStub) Upload(ctx context.Context, data []byte, name string) (string, error) {
	return s.uploadFn(ctx, data, name)
}

func noopUploader() *uploaderStub {
	return &uploaderStub{
		uploadFn: func(_ context.Context, _ []byte, name string) (string, error) {
			return "/media/" + name, nil
		},
	}
}
