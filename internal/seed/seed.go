// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"commune/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	NumGroups   int
	ShouldClean bool
}

// Seeder populates the database with plausible development data.
type Seeder struct {
	db  *gorm.DB
	rng *rand.Rand
}

func NewSeeder(db *gorm.DB) *Seeder {
	//nolint:gosec // Weak random number generator is fine for seeding
	return &Seeder{db: db, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Seed runs the full pipeline: users, relationships, posts, engagement,
// groups, and stories.
func Seed(db *gorm.DB, opts Options) error {
	s := NewSeeder(db)

	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}
	}

	users, err := s.SeedSocialMesh(opts.NumUsers)
	if err != nil {
		return fmt.Errorf("seed users: %w", err)
	}

	if _, err := s.SeedEngagement(users, opts.NumPosts); err != nil {
		return fmt.Errorf("seed engagement: %w", err)
	}

	if _, err := s.SeedGroups(users, opts.NumGroups); err != nil {
		return fmt.Errorf("seed groups: %w", err)
	}

	if err := s.SeedStories(users); err != nil {
		return fmt.Errorf("seed stories: %w", err)
	}

	log.Println("Database seeding completed")
	return nil
}

// ClearAll truncates every seeded table.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	sql := `TRUNCATE TABLE
		reactions, story_reactions, story_views, stories,
		shared_post_comments, shared_posts, saved_posts,
		comments, post_media, posts,
		group_memberships, groups,
		notifications, user_blocks, connections,
		profiles, users
	RESTART IDENTITY CASCADE;`
	return s.db.Exec(sql).Error
}

// SeedSocialMesh creates users with profiles, then wires friendships and
// follower edges between them.
func (s *Seeder) SeedSocialMesh(numUsers int) ([]models.User, error) {
	users, err := s.createUsers(numUsers)
	if err != nil {
		return nil, err
	}
	log.Printf("created %d users", len(users))

	if err := s.createConnections(users); err != nil {
		return nil, err
	}
	return users, nil
}

// SeedEngagement creates posts and attaches comments, reactions, and shares.
func (s *Seeder) SeedEngagement(users []models.User, numPosts int) ([]models.Post, error) {
	if len(users) == 0 || numPosts <= 0 {
		return nil, nil
	}

	posts := make([]models.Post, 0, numPosts)
	for i := 0; i < numPosts; i++ {
		user := users[s.rng.Intn(len(users))]
		post := models.Post{
			UserID:     user.ID,
			Content:    s.paragraph(s.rng.Intn(4) + 1),
			Visibility: s.pickVisibility(),
		}
		if s.rng.Float32() < 0.3 {
			post.Media = []models.PostMedia{{
				Type: models.MediaImage,
				URL:  fmt.Sprintf("https://picsum.photos/seed/%d/800/800", s.rng.Intn(10000)),
			}}
		}
		if err := s.db.Create(&post).Error; err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	log.Printf("created %d posts", len(posts))

	if err := s.createComments(users, posts); err != nil {
		return nil, err
	}
	if err := s.createReactions(users, posts); err != nil {
		return nil, err
	}
	if err := s.createShares(users, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// SeedGroups creates groups with memberships and a few group posts.
func (s *Seeder) SeedGroups(users []models.User, numGroups int) ([]models.Group, error) {
	if len(users) == 0 || numGroups <= 0 {
		return nil, nil
	}

	privacies := []models.GroupPrivacy{models.GroupPublic, models.GroupPublic, models.GroupPrivate, models.GroupSecret}
	groups := make([]models.Group, 0, numGroups)

	for i := 0; i < numGroups; i++ {
		creator := users[s.rng.Intn(len(users))]
		group := models.Group{
			CreatorID:   creator.ID,
			Name:        fmt.Sprintf("%s %s", titleCase(adjectives[s.rng.Intn(len(adjectives))]), titleCase(groupTopics[s.rng.Intn(len(groupTopics))])),
			Description: s.sentence(),
			Privacy:     privacies[s.rng.Intn(len(privacies))],
		}
		if err := s.db.Create(&group).Error; err != nil {
			return nil, err
		}

		memberships := []models.GroupMembership{{
			GroupID: group.ID,
			UserID:  creator.ID,
			Role:    models.RoleAdmin,
			Status:  models.MembershipApproved,
		}}
		for _, u := range s.sample(users, s.rng.Intn(8)+2) {
			if u.ID == creator.ID {
				continue
			}
			memberships = append(memberships, models.GroupMembership{
				GroupID: group.ID,
				UserID:  u.ID,
				Role:    models.RoleMember,
				Status:  models.MembershipApproved,
			})
		}
		if err := s.db.Create(&memberships).Error; err != nil {
			return nil, err
		}

		for j := 0; j < s.rng.Intn(4); j++ {
			member := memberships[s.rng.Intn(len(memberships))]
			post := models.Post{
				UserID:     member.UserID,
				GroupID:    &group.ID,
				Content:    s.paragraph(s.rng.Intn(3) + 1),
				Visibility: models.VisibilityPublic,
			}
			if err := s.db.Create(&post).Error; err != nil {
				return nil, err
			}
		}

		groups = append(groups, group)
	}

	log.Printf("created %d groups", len(groups))
	return groups, nil
}

// SeedStories gives roughly a third of users an active story.
func (s *Seeder) SeedStories(users []models.User) error {
	now := time.Now()
	count := 0
	for _, u := range users {
		if s.rng.Float32() > 0.35 {
			continue
		}
		story := models.Story{
			UserID:     u.ID,
			Content:    s.sentence(),
			Visibility: s.pickVisibility(),
			CreatedAt:  now,
			ExpiresAt:  now.Add(models.StoryLifetime),
		}
		if s.rng.Float32() < 0.5 {
			story.MediaURL = fmt.Sprintf("https://picsum.photos/seed/%d/1080/1920", s.rng.Intn(10000))
			story.MediaType = models.MediaImage
		}
		if err := s.db.Create(&story).Error; err != nil {
			return err
		}
		count++
	}
	log.Printf("created %d stories", count)
	return nil
}

func (s *Seeder) createUsers(count int) ([]models.User, error) {
	users := make([]models.User, 0, count)
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	// A few well-known accounts for manual testing.
	if count >= 3 {
		for _, name := range []string{"alice", "bob", "test"} {
			user := models.User{
				Username: name,
				Email:    fmt.Sprintf("%s@example.com", name),
				Password: string(hashedPassword),
				Profile: &models.Profile{
					Bio:        "One of the first accounts here.",
					AvatarURL:  fmt.Sprintf("https://i.pravatar.cc/150?u=%s", name),
					Visibility: models.VisibilityPublic,
				},
			}
			if err := s.db.Create(&user).Error; err == nil {
				users = append(users, user)
			}
		}
	}

	for i := len(users); i < count; i++ {
		first, last := s.randomName()
		username := fmt.Sprintf("%s%d", s.username(first, last), i)

		user := models.User{
			Username: username,
			Email:    fmt.Sprintf("%s@example.com", username),
			Password: string(hashedPassword),
			Profile: &models.Profile{
				FullName:   first + " " + last,
				Bio:        s.sentence(),
				AvatarURL:  fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username),
				Visibility: s.pickVisibility(),
			},
		}
		if err := s.db.Create(&user).Error; err != nil {
			log.Printf("failed to create user %s: %v", username, err)
			continue
		}
		users = append(users, user)
	}

	return users, nil
}

func (s *Seeder) createConnections(users []models.User) error {
	if len(users) < 2 {
		return nil
	}

	made := 0
	for i := range users {
		friends := s.rng.Intn(6) + 1
		for j := 0; j < friends; j++ {
			other := users[s.rng.Intn(len(users))]
			if other.ID == users[i].ID {
				continue
			}

			status := models.ConnectionAccepted
			if s.rng.Float32() < 0.15 {
				status = models.ConnectionPending
			}
			conn := models.Connection{
				RequesterID: users[i].ID,
				TargetID:    other.ID,
				Type:        models.ConnectionFriend,
				Status:      status,
			}
			// Duplicate edges hit the unique index and are skipped.
			if err := s.db.Create(&conn).Error; err == nil {
				made++
			}

			if s.rng.Float32() < 0.4 {
				follow := models.Connection{
					RequesterID: users[i].ID,
					TargetID:    other.ID,
					Type:        models.ConnectionFollower,
					Status:      models.ConnectionAccepted,
				}
				_ = s.db.Create(&follow).Error
			}
		}
	}

	log.Printf("created %d friend edges", made)
	return nil
}

func (s *Seeder) createComments(users []models.User, posts []models.Post) error {
	for _, post := range posts {
		n := s.rng.Intn(5)
		for i := 0; i < n; i++ {
			comment := models.Comment{
				PostID:  post.ID,
				UserID:  users[s.rng.Intn(len(users))].ID,
				Content: s.sentence(),
			}
			if err := s.db.Create(&comment).Error; err != nil {
				return err
			}

			if s.rng.Float32() < 0.3 {
				reply := models.Comment{
					PostID:   post.ID,
					UserID:   users[s.rng.Intn(len(users))].ID,
					ParentID: &comment.ID,
					Content:  s.sentence(),
				}
				if err := s.db.Create(&reply).Error; err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (s *Seeder) createReactions(users []models.User, posts []models.Post) error {
	types := []models.ReactionType{models.ReactionLike, models.ReactionLike, models.ReactionLove, models.ReactionHaha, models.ReactionSad}
	for _, post := range posts {
		for _, u := range s.sample(users, s.rng.Intn(6)) {
			reaction := models.Reaction{
				UserID:      u.ID,
				SubjectType: models.SubjectPost,
				SubjectID:   post.ID,
				Type:        types[s.rng.Intn(len(types))],
			}
			// One reaction per user and subject; duplicates are skipped.
			_ = s.db.Create(&reaction).Error
		}
	}
	return nil
}

func (s *Seeder) createShares(users []models.User, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	shares := len(posts) / 5
	for i := 0; i < shares; i++ {
		post := posts[s.rng.Intn(len(posts))]
		if post.Visibility != models.VisibilityPublic {
			continue
		}
		share := models.SharedPost{
			UserID:         users[s.rng.Intn(len(users))].ID,
			OriginalPostID: post.ID,
			ShareText:      s.sentence(),
		}
		if err := s.db.Create(&share).Error; err != nil {
			return err
		}
	}
	return nil
}

// sample returns up to n distinct users.
func (s *Seeder) sample(users []models.User, n int) []models.User {
	if n >= len(users) {
		return users
	}
	picked := make([]models.User, 0, n)
	seen := make(map[uint]bool, n)
	for len(picked) < n {
		u := users[s.rng.Intn(len(users))]
		if seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		picked = append(picked, u)
	}
	return picked
}

func (s *Seeder) pickVisibility() models.Visibility {
	switch s.rng.Intn(10) {
	case 0:
		return models.VisibilityPrivate
	case 1, 2:
		return models.VisibilityFriends
	default:
		return models.VisibilityPublic
	}
}
