// Package seed fills a database with demo users, lists, reviews and follows.
// It works against any storage backend through the repository interfaces and
// is intended for development and testing only.
package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"reeltrack/internal/database"
	"reeltrack/internal/models"
	"reeltrack/internal/repository"
	"reeltrack/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "Password123!"

// Options configuration for the seeder
type Options struct {
	NumUsers       int
	CatalogSize    int
	MoviesPerList  int
	ReviewsPerUser int
	FollowsPerUser int
	// Seed makes a run reproducible; zero picks one from the clock.
	Seed int64
	// HashCost overrides the bcrypt cost, mainly for tests.
	HashCost int
}

// Repositories is the storage the seeder writes through.
type Repositories struct {
	Users     repository.UserRepository
	Lists     repository.ListRepository
	Relations repository.RelationRepository
	Reviews   repository.ReviewRepository
}

// Summary counts what a run created.
type Summary struct {
	Users   int
	Lists   int
	Reviews int
	Follows int
}

// Seeder creates demo data. Lists, reviews and follows go through the
// services so seeded data obeys the same rules as API traffic.
type Seeder struct {
	repos     Repositories
	opts      Options
	faker     *gofakeit.Faker
	rng       *rand.Rand
	reviews   *service.ReviewService
	favorites *service.ListService
	watchlist *service.ListService
	social    *service.SocialService
}

// NewSeeder creates a Seeder writing through repos.
func NewSeeder(repos Repositories, opts Options) *Seeder {
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	if opts.CatalogSize <= 0 {
		opts.CatalogSize = 40
	}
	if opts.HashCost == 0 {
		opts.HashCost = bcrypt.DefaultCost
	}

	return &Seeder{
		repos:     repos,
		opts:      opts,
		faker:     gofakeit.New(opts.Seed),
		rng:       rand.New(rand.NewSource(opts.Seed)),
		reviews:   service.NewReviewService(repos.Reviews, repos.Users),
		favorites: service.NewListService(models.ListFavorites, repos.Lists, repos.Users),
		watchlist: service.NewListService(models.ListWatchlist, repos.Lists, repos.Users),
		social:    service.NewSocialService(repos.Users, repos.Relations),
	}
}

// Run seeds users first, then their lists, reviews and follows.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{}

	users, err := s.seedUsers(ctx)
	if err != nil {
		return summary, err
	}
	summary.Users = len(users)
	log.Printf("Created %d users", len(users))

	catalog := s.Catalog(s.opts.CatalogSize)

	for _, u := range users {
		for _, list := range []*service.ListService{s.favorites, s.watchlist} {
			for _, idx := range s.pick(len(catalog), s.opts.MoviesPerList) {
				if _, err := list.AddItem(ctx, u.ID, catalog[idx]); err != nil {
					return summary, fmt.Errorf("seed %s for %s: %w", list.Kind(), u.Username, err)
				}
				summary.Lists++
			}
		}

		for _, idx := range s.pick(len(catalog), s.opts.ReviewsPerUser) {
			_, err := s.reviews.UpsertReview(ctx, service.UpsertReviewInput{
				UserID:     u.ID,
				MovieID:    catalog[idx].MovieID,
				ReviewText: s.faker.Paragraph(1, 3, 12, " "),
				Rating:     s.rng.Intn(models.MaxRating) + models.MinRating,
			})
			if err != nil {
				return summary, fmt.Errorf("seed review for %s: %w", u.Username, err)
			}
			summary.Reviews++
		}
	}
	log.Printf("Created %d list entries and %d reviews", summary.Lists, summary.Reviews)

	for i, u := range users {
		followed := 0
		for _, idx := range s.pick(len(users), s.opts.FollowsPerUser+1) {
			if idx == i || followed == s.opts.FollowsPerUser {
				continue
			}
			followed++
			if err := s.social.Follow(ctx, u.ID, users[idx].ID); err != nil {
				return summary, fmt.Errorf("seed follow %s -> %s: %w", u.Username, users[idx].Username, err)
			}
			summary.Follows++
		}
	}
	log.Printf("Created %d follows", summary.Follows)

	return summary, nil
}

func (s *Seeder) seedUsers(ctx context.Context) ([]*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), s.opts.HashCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, s.opts.NumUsers)
	for i := 0; i < s.opts.NumUsers; i++ {
		username := s.username(i)
		user := &models.User{
			Username: username,
			Email:    strings.ToLower(username) + "@example.com",
			Password: string(hash),
		}
		if err := s.repos.Users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("seed user %s: %w", username, err)
		}
		users = append(users, user)
	}
	return users, nil
}

// username builds a valid, unique handle from a fake one.
func (s *Seeder) username(i int) string {
	base := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, s.faker.Username())
	if len(base) < 3 {
		base = "viewer"
	}
	if len(base) > 20 {
		base = base[:20]
	}
	return base + "_" + strconv.Itoa(i)
}

// Catalog returns n movie snapshots with distinct ids.
func (s *Seeder) Catalog(n int) []models.MovieRef {
	seen := make(map[string]bool, n)
	start := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

	movies := make([]models.MovieRef, 0, n)
	for len(movies) < n {
		id := strconv.Itoa(s.faker.Number(100, 999999))
		if seen[id] {
			continue
		}
		seen[id] = true
		movies = append(movies, models.MovieRef{
			MovieID:     id,
			Title:       title(s.faker.Adjective(), s.faker.Noun()),
			PosterPath:  "/" + s.faker.LetterN(27) + ".jpg",
			ReleaseDate: s.faker.DateRange(start, end).Format("2006-01-02"),
		})
	}
	return movies
}

// pick returns up to k distinct indexes below n.
func (s *Seeder) pick(n, k int) []int {
	if k > n {
		k = n
	}
	if k <= 0 {
		return nil
	}
	return s.rng.Perm(n)[:k]
}

func title(words ...string) string {
	parts := make([]string, 0, len(words)+1)
	parts = append(parts, "The")
	for _, w := range words {
		if w == "" {
			continue
		}
		parts = append(parts, strings.ToUpper(w[:1])+w[1:])
	}
	return strings.Join(parts, " ")
}

// ClearAll deletes every row of the relational schema.
func ClearAll(db *gorm.DB) error {
	all := database.PersistentModels()
	for i := len(all) - 1; i >= 0; i-- {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(all[i]).Error; err != nil {
			return fmt.Errorf("failed to clear %T: %w", all[i], err)
		}
	}
	log.Println("Cleared existing data")
	return nil
}
