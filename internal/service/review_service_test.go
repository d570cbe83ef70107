package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"reeltrack/internal/cache"
	"reeltrack/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReviewFixture(t *testing.T) (*ReviewService, *memReviewRepo, *memUserRepo, *models.User) {
	t.Helper()
	user := &models.User{ID: "u1", Username: "viewer", Email: "viewer@example.com"}
	users := newMemUserRepo(user)
	reviews := newMemReviewRepo()
	return NewReviewService(reviews, users), reviews, users, user
}

func TestReviewServiceUpsertTwiceKeepsOneReview(t *testing.T) {
	svc, reviews, users, user := newReviewFixture(t)
	ctx := context.Background()

	first, err := svc.UpsertReview(ctx, UpsertReviewInput{UserID: user.ID, MovieID: "M42", ReviewText: "ok", Rating: 7})
	require.NoError(t, err)
	assert.Equal(t, "viewer@example.com", first.Username)

	list, err := svc.ListReviewsForMovie(ctx, "M42")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "M42", list[0].MovieID)
	assert.Equal(t, 7, list[0].Rating)
	assert.Equal(t, "ok", list[0].ReviewText)

	// The username snapshot survives an email change.
	user.Email = "renamed@example.com"
	require.NoError(t, users.Update(ctx, user))

	second, err := svc.UpsertReview(ctx, UpsertReviewInput{UserID: user.ID, MovieID: "M42", ReviewText: "great", Rating: 9})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
	assert.Equal(t, "viewer@example.com", second.Username)
	assert.Equal(t, 1, reviews.count())

	list, err = svc.ListReviewsForMovie(ctx, "M42")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, 9, list[0].Rating)
	assert.Equal(t, "great", list[0].ReviewText)
}

func TestReviewServiceUpsertValidation(t *testing.T) {
	svc, reviews, _, user := newReviewFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   UpsertReviewInput
	}{
		{"Rating Zero", UpsertReviewInput{MovieID: "m", ReviewText: "t", Rating: 0}},
		{"Rating Eleven", UpsertReviewInput{MovieID: "m", ReviewText: "t", Rating: 11}},
		{"Empty Text", UpsertReviewInput{MovieID: "m", ReviewText: "   ", Rating: 5}},
		{"Empty Movie", UpsertReviewInput{MovieID: "", ReviewText: "t", Rating: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.UserID = user.ID
			_, err := svc.UpsertReview(ctx, tt.in)
			assert.True(t, models.HasCode(err, models.CodeValidation), "got %v", err)
		})
	}
	assert.Equal(t, 0, reviews.count())

	_, err := svc.UpsertReview(ctx, UpsertReviewInput{UserID: user.ID, MovieID: "m", ReviewText: "t", Rating: 1})
	require.NoError(t, err)
	_, err = svc.UpsertReview(ctx, UpsertReviewInput{UserID: user.ID, MovieID: "m2", ReviewText: "t", Rating: 10})
	require.NoError(t, err)
}

func TestReviewServiceUpsertUnknownUser(t *testing.T) {
	svc, _, _, _ := newReviewFixture(t)

	_, err := svc.UpsertReview(context.Background(), UpsertReviewInput{UserID: "ghost", MovieID: "m", ReviewText: "t", Rating: 5})
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestReviewServiceListNewestFirst(t *testing.T) {
	svc, reviews, _, _ := newReviewFixture(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, reviews.Create(ctx, &models.Review{ID: "old", MovieID: "m", UserID: "a", ReviewText: "x", Rating: 3, CreatedAt: base}))
	require.NoError(t, reviews.Create(ctx, &models.Review{ID: "new", MovieID: "m", UserID: "b", ReviewText: "y", Rating: 4, CreatedAt: base.Add(time.Minute)}))

	list, err := svc.ListReviewsForMovie(ctx, "m")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, "old", list[1].ID)

	empty, err := svc.ListReviewsForMovie(ctx, "unreviewed")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = svc.ListReviewsForMovie(ctx, " ")
	assert.True(t, models.HasCode(err, models.CodeValidation))
}

func TestReviewServiceDeleteOwnerOnly(t *testing.T) {
	svc, reviews, _, user := newReviewFixture(t)
	ctx := context.Background()

	review, err := svc.UpsertReview(ctx, UpsertReviewInput{UserID: user.ID, MovieID: "m", ReviewText: "t", Rating: 5})
	require.NoError(t, err)

	err = svc.DeleteReview(ctx, review.ID, "someone-else")
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeForbidden, appErr.Code)
	assert.Equal(t, 1, reviews.count())

	require.NoError(t, svc.DeleteReview(ctx, review.ID, user.ID))
	assert.Equal(t, 0, reviews.count())

	err = svc.DeleteReview(ctx, review.ID, user.ID)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

// interleavedReviewRepo runs afterList once, after ListByMovie has read its rows.
type interleavedReviewRepo struct {
	*memReviewRepo
	afterList func()
}

func (r *interleavedReviewRepo) ListByMovie(ctx context.Context, movieID string) ([]models.Review, error) {
	rows, err := r.memReviewRepo.ListByMovie(ctx, movieID)
	if hook := r.afterList; hook != nil {
		r.afterList = nil
		hook()
	}
	return rows, err
}

func TestReviewServiceListDoesNotCacheRowsReadBeforeAnUpsert(t *testing.T) {
	mr := miniredis.RunT(t)
	cache.InitRedis(mr.Addr())
	t.Cleanup(func() { _ = cache.Close() })

	user := &models.User{ID: "u1", Username: "viewer", Email: "viewer@example.com"}
	reviews := &interleavedReviewRepo{memReviewRepo: newMemReviewRepo()}
	svc := NewReviewService(reviews, newMemUserRepo(user))
	ctx := context.Background()

	_, err := svc.UpsertReview(ctx, UpsertReviewInput{UserID: user.ID, MovieID: "M42", ReviewText: "ok", Rating: 7})
	require.NoError(t, err)

	reviews.afterList = func() {
		_, err := svc.UpsertReview(ctx, UpsertReviewInput{UserID: user.ID, MovieID: "M42", ReviewText: "better", Rating: 9})
		require.NoError(t, err)
	}
	list, err := svc.ListReviewsForMovie(ctx, "M42")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 7, list[0].Rating)

	list, err = svc.ListReviewsForMovie(ctx, "M42")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 9, list[0].Rating)
	assert.Equal(t, "better", list[0].ReviewText)
}
