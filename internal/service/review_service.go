// Package service holds the business logic between the HTTP handlers and the repositories.
package service

import (
	"context"
	"strings"
	"time"

	"reeltrack/internal/cache"
	"reeltrack/internal/models"
	"reeltrack/internal/observability"
	"reeltrack/internal/repository"
	"reeltrack/internal/validation"
)

// ReviewService implements review upsert, listing and owner-only deletion.
type ReviewService struct {
	reviewRepo repository.ReviewRepository
	userRepo   repository.UserRepository
}

// UpsertReviewInput is the caller's review for one movie.
type UpsertReviewInput struct {
	UserID     string `json:"-"`
	MovieID    string `json:"movieId" validate:"required,max=64"`
	ReviewText string `json:"reviewText" validate:"required,max=5000"`
	Rating     int    `json:"rating" validate:"min=1,max=10"`
}

// NewReviewService returns a new ReviewService.
func NewReviewService(reviewRepo repository.ReviewRepository, userRepo repository.UserRepository) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		userRepo:   userRepo,
	}
}

// UpsertReview creates the caller's review of a movie or, when one exists,
// overwrites its text and rating. The username snapshot and createdAt of an
// existing review are kept.
func (s *ReviewService) UpsertReview(ctx context.Context, in UpsertReviewInput) (review *models.Review, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ReviewService", "UpsertReview")
	defer func() { observability.EndSpan(span, err) }()

	in.MovieID = strings.TrimSpace(in.MovieID)
	in.ReviewText = strings.TrimSpace(in.ReviewText)
	if verr := validation.ValidateStruct(&in); verr != nil {
		return nil, models.NewValidationError(verr.Error())
	}

	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	review, err = s.reviewRepo.FindByUserAndMovie(ctx, user.ID, in.MovieID)
	if err != nil {
		return nil, err
	}

	if review != nil {
		review.ReviewText = in.ReviewText
		review.Rating = in.Rating
		if err := s.reviewRepo.Update(ctx, review); err != nil {
			return nil, err
		}
		observability.ReviewUpserts.WithLabelValues("updated").Inc()
	} else {
		review = &models.Review{
			MovieID:    in.MovieID,
			UserID:     user.ID,
			Username:   user.Email,
			ReviewText: in.ReviewText,
			Rating:     in.Rating,
			CreatedAt:  time.Now().UTC(),
		}
		if err := s.reviewRepo.Create(ctx, review); err != nil {
			return nil, err
		}
		observability.ReviewUpserts.WithLabelValues("created").Inc()
	}

	cache.InvalidateMovieReviews(ctx, in.MovieID)
	return review, nil
}

// ListReviewsForMovie returns every review of movieID, newest first.
func (s *ReviewService) ListReviewsForMovie(ctx context.Context, movieID string) (reviews []models.Review, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ReviewService", "ListReviewsForMovie")
	defer func() { observability.EndSpan(span, err) }()

	movieID = strings.TrimSpace(movieID)
	if movieID == "" {
		return nil, models.NewValidationError("movieId is required")
	}

	err = cache.Aside(ctx, cache.MovieReviewsKey(ctx, movieID), &reviews, cache.MovieReviewsTTL, func() error {
		var err error
		reviews, err = s.reviewRepo.ListByMovie(ctx, movieID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return reviews, nil
}

// DeleteReview removes a review owned by callerID.
func (s *ReviewService) DeleteReview(ctx context.Context, reviewID, callerID string) (err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ReviewService", "DeleteReview")
	defer func() { observability.EndSpan(span, err) }()

	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if review.UserID != callerID {
		return models.NewForbiddenError("Not authorized")
	}

	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		return err
	}
	cache.InvalidateMovieReviews(ctx, review.MovieID)
	return nil
}
