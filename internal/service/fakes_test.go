package service

import (
	"context"
	"sort"
	"sync"

	"reeltrack/internal/models"

	"github.com/google/uuid"
)

// memUserRepo is an in-memory UserRepository.
type memUserRepo struct {
	mu       sync.Mutex
	users    map[string]*models.User
	updates  int
	updateFn func(*models.User) error
}

func newMemUserRepo(users ...*models.User) *memUserRepo {
	r := &memUserRepo{users: map[string]*models.User{}}
	for _, u := range users {
		if u.ID == "" {
			u.ID = uuid.NewString()
		}
		r.users[u.ID] = u
	}
	return r
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, models.NewNotFoundError("User", id)
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) find(match func(*models.User) bool) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email }), nil
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Username == username }), nil
}

func (r *memUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *models.User) error {
	if r.updateFn != nil {
		if err := r.updateFn(user); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates++
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) ListByIDs(_ context.Context, ids []string) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.User{}
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

type listKey struct {
	userID string
	kind   models.ListKind
}

// memListRepo is an in-memory ListRepository.
type memListRepo struct {
	mu       sync.Mutex
	items    map[listKey][]models.MovieRef
	appendFn func(models.MovieRef) error
	writes   int
}

func newMemListRepo() *memListRepo {
	return &memListRepo{items: map[listKey][]models.MovieRef{}}
}

func (r *memListRepo) GetItems(_ context.Context, userID string, kind models.ListKind) ([]models.MovieRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.MovieRef{}, r.items[listKey{userID, kind}]...), nil
}

func (r *memListRepo) AppendItem(_ context.Context, userID string, kind models.ListKind, ref models.MovieRef) error {
	if r.appendFn != nil {
		if err := r.appendFn(ref); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	k := listKey{userID, kind}
	if models.ContainsMovie(r.items[k], ref.MovieID) {
		return models.NewConflictError("Movie already in " + string(kind))
	}
	r.writes++
	r.items[k] = append(r.items[k], ref)
	return nil
}

func (r *memListRepo) RemoveItems(_ context.Context, userID string, kind models.ListKind, movieID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := listKey{userID, kind}
	kept := []models.MovieRef{}
	for _, m := range r.items[k] {
		if m.MovieID != movieID {
			kept = append(kept, m)
		}
	}
	r.writes++
	r.items[k] = kept
	return nil
}

type relKey struct {
	ownerID string
	kind    models.RelationKind
}

// memRelationRepo is an in-memory RelationRepository.
type memRelationRepo struct {
	mu     sync.Mutex
	sets   map[relKey][]string
	failOn func(ownerID string, kind models.RelationKind) error
	writes int
}

func newMemRelationRepo() *memRelationRepo {
	return &memRelationRepo{sets: map[relKey][]string{}}
}

func (r *memRelationRepo) GetRelations(_ context.Context, ownerID string, kind models.RelationKind) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.sets[relKey{ownerID, kind}]...), nil
}

func (r *memRelationRepo) AddRelation(_ context.Context, ownerID string, kind models.RelationKind, otherID string) error {
	if r.failOn != nil {
		if err := r.failOn(ownerID, kind); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
	k := relKey{ownerID, kind}
	for _, id := range r.sets[k] {
		if id == otherID {
			return nil
		}
	}
	r.sets[k] = append(r.sets[k], otherID)
	return nil
}

func (r *memRelationRepo) RemoveRelation(_ context.Context, ownerID string, kind models.RelationKind, otherID string) error {
	if r.failOn != nil {
		if err := r.failOn(ownerID, kind); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
	k := relKey{ownerID, kind}
	kept := []string{}
	for _, id := range r.sets[k] {
		if id != otherID {
			kept = append(kept, id)
		}
	}
	r.sets[k] = kept
	return nil
}

// memReviewRepo is an in-memory ReviewRepository.
type memReviewRepo struct {
	mu      sync.Mutex
	reviews map[string]models.Review
}

func newMemReviewRepo() *memReviewRepo {
	return &memReviewRepo{reviews: map[string]models.Review{}}
}

func (r *memReviewRepo) FindByUserAndMovie(_ context.Context, userID, movieID string) (*models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rv := range r.reviews {
		if rv.UserID == userID && rv.MovieID == movieID {
			cp := rv
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memReviewRepo) GetByID(_ context.Context, id string) (*models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rv, ok := r.reviews[id]
	if !ok {
		return nil, models.NewNotFoundError("Review", id)
	}
	return &rv, nil
}

func (r *memReviewRepo) ListByMovie(_ context.Context, movieID string) ([]models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Review{}
	for _, rv := range r.reviews {
		if rv.MovieID == movieID {
			out = append(out, rv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memReviewRepo) Create(_ context.Context, review *models.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	r.reviews[review.ID] = *review
	return nil
}

func (r *memReviewRepo) Update(_ context.Context, review *models.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := r.reviews[review.ID]
	stored.ReviewText = review.ReviewText
	stored.Rating = review.Rating
	r.reviews[review.ID] = stored
	return nil
}

func (r *memReviewRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.reviews, id)
	return nil
}

func (r *memReviewRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reviews)
}
