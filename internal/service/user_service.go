package service

import (
	"context"
	"time"

	"commune/internal/models"
	"commune/internal/privacy"
	"commune/internal/repository"
)

// UserService provides profile and account business logic.
type UserService struct {
	userRepo         repository.UserRepository
	relationshipRepo repository.RelationshipRepository
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository, relationshipRepo repository.RelationshipRepository) *UserService {
	return &UserService{userRepo: userRepo, relationshipRepo: relationshipRepo}
}

// ProfileView is a tiered profile payload. Exactly one of Full or Minimal is
// set depending on what the viewer may see.
type ProfileView struct {
	Tier    string          `json:"tier"`
	Full    *models.User    `json:"user,omitempty"`
	Minimal *minimalProfile `json:"minimal,omitempty"`
}

// minimalProfile carries the reduced disclosure set. Bio rides along on the
// profile endpoint; peers of this payload elsewhere omit it.
type minimalProfile struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
	Bio       string `json:"bio,omitempty"`
}

// GetMe returns the viewer's own account with profile.
func (s *UserService) GetMe(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByIDWithProfile(ctx, userID)
}

// UpdateProfileInput carries the mutable profile fields. Nil pointers leave a
// field unchanged so clients can PATCH-style update through PUT.
type UpdateProfileInput struct {
	FullName    *string            `json:"full_name"`
	Bio         *string            `json:"bio"`
	AvatarURL   *string            `json:"avatar_url"`
	CoverURL    *string            `json:"cover_url"`
	Location    *string            `json:"location"`
	Work        *string            `json:"work"`
	Education   *string            `json:"education"`
	DateOfBirth *string            `json:"date_of_birth"`
	Visibility  *models.Visibility `json:"visibility"`
}

// UpdateProfile mutates the caller's own profile.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByIDWithProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Profile == nil {
		user.Profile = &models.Profile{UserID: userID, Visibility: models.VisibilityPublic}
	}

	p := user.Profile
	if in.FullName != nil {
		p.FullName = *in.FullName
	}
	if in.Bio != nil {
		if len(*in.Bio) > 500 {
			return nil, models.NewValidationError("bio too long (max 500 characters)")
		}
		p.Bio = *in.Bio
	}
	if in.AvatarURL != nil {
		p.AvatarURL = *in.AvatarURL
	}
	if in.CoverURL != nil {
		p.CoverURL = *in.CoverURL
	}
	if in.Location != nil {
		p.Location = *in.Location
	}
	if in.Work != nil {
		p.Work = *in.Work
	}
	if in.Education != nil {
		p.Education = *in.Education
	}
	if in.DateOfBirth != nil {
		if *in.DateOfBirth == "" {
			p.DateOfBirth = nil
		} else {
			dob, err := time.Parse("2006-01-02", *in.DateOfBirth)
			if err != nil {
				return nil, models.NewValidationError("date_of_birth must be YYYY-MM-DD")
			}
			p.DateOfBirth = &dob
		}
	}
	if in.Visibility != nil {
		if !in.Visibility.Valid() {
			return nil, models.NewValidationError("invalid profile visibility")
		}
		p.Visibility = *in.Visibility
	}

	if err := s.userRepo.UpdateProfile(ctx, p); err != nil {
		return nil, err
	}
	return user, nil
}

// ViewProfile resolves username's profile for viewerID, applying the privacy
// tier. A block in either direction, like a missing user, is not-found.
func (s *UserService) ViewProfile(ctx context.Context, viewerID uint, username string) (*ProfileView, error) {
	subject, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if subject == nil {
		return nil, models.NewNotFoundError("user")
	}

	tier, err := s.resolveTier(ctx, viewerID, subject)
	if err != nil {
		return nil, err
	}

	switch tier {
	case privacy.TierNotFound:
		return nil, models.NewNotFoundError("user")
	case privacy.TierFull:
		return &ProfileView{Tier: tier.String(), Full: subject}, nil
	default:
		min := &minimalProfile{ID: subject.ID, Username: subject.Username}
		if subject.Profile != nil {
			min.AvatarURL = subject.Profile.AvatarURL
			min.Bio = subject.Profile.Bio
		}
		return &ProfileView{Tier: tier.String(), Minimal: min}, nil
	}
}

// ResolveSubject loads username and computes the viewer's tier without
// shaping a payload, for callers that gate listings on it.
func (s *UserService) ResolveSubject(ctx context.Context, viewerID uint, username string) (*models.User, privacy.Tier, error) {
	subject, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, privacy.TierNotFound, err
	}
	if subject == nil {
		return nil, privacy.TierNotFound, models.NewNotFoundError("user")
	}
	tier, err := s.resolveTier(ctx, viewerID, subject)
	if err != nil {
		return nil, privacy.TierNotFound, err
	}
	if tier == privacy.TierNotFound {
		return nil, tier, models.NewNotFoundError("user")
	}
	return subject, tier, nil
}

func (s *UserService) resolveTier(ctx context.Context, viewerID uint, subject *models.User) (privacy.Tier, error) {
	policy := models.VisibilityPublic
	if subject.Profile != nil {
		policy = subject.Profile.Visibility
	}

	isBlocked := false
	isFriend := false
	if viewerID != subject.ID {
		var err error
		isBlocked, err = s.relationshipRepo.IsBlockedEitherDirection(ctx, viewerID, subject.ID)
		if err != nil {
			return privacy.TierNotFound, err
		}
		if !isBlocked {
			isFriend, err = s.relationshipRepo.IsFriend(ctx, viewerID, subject.ID)
			if err != nil {
				return privacy.TierNotFound, err
			}
		}
	}
	return privacy.Resolve(viewerID, subject.ID, policy, isBlocked, isFriend), nil
}

// Search finds users by username, excluding anyone in a block relation with
// the searcher.
func (s *UserService) Search(ctx context.Context, searcherID uint, query string, limit, offset int) ([]models.User, error) {
	if query == "" {
		return nil, models.NewValidationError("search query is required")
	}
	blockedIDs, err := s.relationshipRepo.BlockedIDs(ctx, searcherID)
	if err != nil {
		return nil, err
	}
	return s.userRepo.Search(ctx, query, blockedIDs, limit, offset)
}

// DeleteAccount removes the caller's account and all owned rows atomically.
func (s *UserService) DeleteAccount(ctx context.Context, userID uint) error {
	return s.userRepo.DeleteAccount(ctx, userID)
}
