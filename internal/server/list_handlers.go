package server

import (
	"reeltrack/internal/models"
	"reeltrack/internal/service"

	"github.com/gofiber/fiber/v2"
)

// movieRefRequest is the body of a list add.
type movieRefRequest struct {
	MovieID     looseString `json:"movieId"`
	Title       string      `json:"title"`
	PosterPath  string      `json:"posterPath"`
	ReleaseDate string      `json:"releaseDate"`
}

func (r movieRefRequest) ref() models.MovieRef {
	return models.MovieRef{
		MovieID:     r.MovieID.String(),
		Title:       r.Title,
		PosterPath:  r.PosterPath,
		ReleaseDate: r.ReleaseDate,
	}
}

// AddListItem handles POST /api/user/favorites and POST /api/user/watchlist
// @Summary Add a movie to a list
// @Description Appends a movie snapshot; a movie already in the list is rejected
// @Tags lists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.MovieRef true "Movie"
// @Success 200 {array} models.MovieRef
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /user/favorites [post]
// @Router /user/watchlist [post]
func (s *Server) AddListItem(svc *service.ListService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req movieRefRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, err)
		}

		items, err := svc.AddItem(c.UserContext(), currentUserID(c), req.ref())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(items)
	}
}

// GetListItems handles GET /api/user/favorites and GET /api/user/watchlist
// @Summary Get a list
// @Tags lists
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.MovieRef
// @Failure 404 {object} models.ErrorResponse
// @Router /user/favorites [get]
// @Router /user/watchlist [get]
func (s *Server) GetListItems(svc *service.ListService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.ListItems(c.UserContext(), currentUserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(items)
	}
}

// RemoveListItem handles DELETE /api/user/favorites/:movieId and DELETE /api/user/watchlist/:movieId
// @Summary Remove a movie from a list
// @Description Removing a movie that is not in the list is not an error
// @Tags lists
// @Produce json
// @Security BearerAuth
// @Param movieId path string true "Movie ID"
// @Success 200 {array} models.MovieRef
// @Failure 404 {object} models.ErrorResponse
// @Router /user/favorites/{movieId} [delete]
// @Router /user/watchlist/{movieId} [delete]
func (s *Server) RemoveListItem(svc *service.ListService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.RemoveItem(c.UserContext(), currentUserID(c), c.Params("movieId"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(items)
	}
}
