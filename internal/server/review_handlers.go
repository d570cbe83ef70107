package server

import (
	"reeltrack/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UpsertReview handles POST /api/reviews/:movieId
// @Summary Create or update a review
// @Description Creates the caller's review of a movie, or overwrites text and rating of the existing one
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param movieId path string true "Movie ID"
// @Param request body object{reviewText=string,rating=int} true "Review"
// @Success 200 {object} models.Review
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /reviews/{movieId} [post]
func (s *Server) UpsertReview(c *fiber.Ctx) error {
	var req struct {
		ReviewText string `json:"reviewText"`
		Rating     int    `json:"rating"`
	}
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	review, err := s.reviewService.UpsertReview(c.UserContext(), service.UpsertReviewInput{
		UserID:     currentUserID(c),
		MovieID:    c.Params("movieId"),
		ReviewText: req.ReviewText,
		Rating:     req.Rating,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(review)
}

// GetMovieReviews handles GET /api/reviews/:movieId
// @Summary List reviews of a movie
// @Description Returns every review of the movie, newest first
// @Tags reviews
// @Produce json
// @Param movieId path string true "Movie ID"
// @Success 200 {array} models.Review
// @Failure 400 {object} models.ErrorResponse
// @Router /reviews/{movieId} [get]
func (s *Server) GetMovieReviews(c *fiber.Ctx) error {
	reviews, err := s.reviewService.ListReviewsForMovie(c.UserContext(), c.Params("movieId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(reviews)
}

// DeleteReview handles DELETE /api/reviews/delete/:reviewId
// @Summary Delete a review
// @Description Deletes a review; only its author may do so
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Param reviewId path string true "Review ID"
// @Success 200 {object} object{msg=string}
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /reviews/delete/{reviewId} [delete]
func (s *Server) DeleteReview(c *fiber.Ctx) error {
	if err := s.reviewService.DeleteReview(c.UserContext(), c.Params("reviewId"), currentUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"msg": "Review deleted"})
}
