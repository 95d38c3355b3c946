// Package privacy resolves what one user may see of another. It is pure:
// callers supply the relationship facts, the resolver applies policy.
package privacy

import (
	"time"

	"commune/internal/models"
)

// Tier is the disclosure level a viewer gets for a subject's content.
type Tier int

const (
	// TierNotFound hides the subject entirely; callers surface a 404.
	TierNotFound Tier = iota
	// TierMinimal exposes only id, username and avatar.
	TierMinimal
	// TierFull exposes the whole profile and content listing.
	TierFull
)

func (t Tier) String() string {
	switch t {
	case TierFull:
		return "full"
	case TierMinimal:
		return "minimal"
	default:
		return "not_found"
	}
}

// Resolve applies the visibility policy of subject against viewer. Blocks in
// either direction dominate everything, including the subject's own policy.
func Resolve(viewerID, subjectID uint, policy models.Visibility, isBlocked, isFriend bool) Tier {
	if isBlocked {
		return TierNotFound
	}
	if viewerID == subjectID {
		return TierFull
	}
	switch policy {
	case models.VisibilityPublic:
		return TierFull
	case models.VisibilityFriends:
		if isFriend {
			return TierFull
		}
		return TierMinimal
	case models.VisibilityPrivate:
		return TierMinimal
	default:
		// Unknown policies degrade to the most restrictive visible tier.
		return TierMinimal
	}
}

// DisclosureWindow is how long a pending friend request from a private
// profile discloses its sender in full.
const DisclosureWindow = 7

// RequestDisclosure decides how a pending friend request's sender appears to
// its recipient. Private senders decay to minimal after DisclosureWindow whole
// days; public and friends-visible senders, and accepted requests, never decay
// and report no countdown.
func RequestDisclosure(policy models.Visibility, createdAt, now time.Time, accepted bool) (full bool, daysRemaining *int) {
	if accepted || policy != models.VisibilityPrivate {
		return true, nil
	}
	daysElapsed := int(now.Sub(createdAt).Hours() / 24)
	if daysElapsed < 0 {
		daysElapsed = 0
	}
	remaining := DisclosureWindow - daysElapsed
	if remaining < 0 {
		remaining = 0
	}
	return daysElapsed < DisclosureWindow, &remaining
}
