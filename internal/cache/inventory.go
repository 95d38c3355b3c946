package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	UserKeyPrefix         = "user:%d"
	ProfileKeyPrefix      = "profile:%d:viewer:%d"
	PostKeyPrefix         = "post:%d"
	GroupKeyPrefix        = "group:%d"
	FriendIDsKeyPrefix    = "user:%d:friend_ids"
	FollowingIDsKeyPrefix = "user:%d:following_ids"
	BlockedIDsKeyPrefix   = "user:%d:blocked_ids"
	UnreadCountKeyPrefix  = "user:%d:unread_notifications"
)

const (
	UserTTL        = 5 * time.Minute
	ProfileTTL     = 2 * time.Minute
	PostTTL        = 30 * time.Minute
	GroupTTL       = 10 * time.Minute
	RelationTTL    = 1 * time.Minute
	UnreadCountTTL = 30 * time.Second
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func ProfileKey(subjectID, viewerID uint) string {
	return fmt.Sprintf(ProfileKeyPrefix, subjectID, viewerID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func GroupKey(groupID uint) string {
	return fmt.Sprintf(GroupKeyPrefix, groupID)
}

func FriendIDsKey(userID uint) string {
	return fmt.Sprintf(FriendIDsKeyPrefix, userID)
}

func FollowingIDsKey(userID uint) string {
	return fmt.Sprintf(FollowingIDsKeyPrefix, userID)
}

func BlockedIDsKey(userID uint) string {
	return fmt.Sprintf(BlockedIDsKeyPrefix, userID)
}

func UnreadCountKey(userID uint) string {
	return fmt.Sprintf(UnreadCountKeyPrefix, userID)
}

// GetJSON reads a cached JSON value into dest. Returns false on miss or when
// the cache is unavailable.
func GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if client == nil {
		return false
	}
	raw, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// SetJSON stores a JSON-encoded value with a TTL. Failures are ignored; the
// cache is strictly an optimization.
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	client.Set(ctx, key, raw, ttl)
}

// Aside implements the cache-aside pattern: read the key, and on a miss call
// fill and store its result. fill errors are returned unchanged; cache errors
// are swallowed.
func Aside(ctx context.Context, key string, dest interface{}, ttl time.Duration, fill func() error) error {
	if GetJSON(ctx, key, dest) {
		return nil
	}
	if err := fill(); err != nil {
		return err
	}
	SetJSON(ctx, key, dest, ttl)
	return nil
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

func InvalidateGroup(ctx context.Context, groupID uint) {
	Invalidate(ctx, GroupKey(groupID))
}

// InvalidateRelations drops the cached edge sets for both sides of a
// relationship change.
func InvalidateRelations(ctx context.Context, userIDs ...uint) {
	if client == nil {
		return
	}
	keys := make([]string, 0, len(userIDs)*3)
	for _, id := range userIDs {
		keys = append(keys, FriendIDsKey(id), FollowingIDsKey(id), BlockedIDsKey(id))
	}
	client.Del(ctx, keys...)
}

// BumpUnreadCount invalidates the cached unread counter after a write.
func BumpUnreadCount(ctx context.Context, userID uint) {
	Invalidate(ctx, UnreadCountKey(userID))
}
