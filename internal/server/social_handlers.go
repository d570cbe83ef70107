package server

import (
	"github.com/gofiber/fiber/v2"
)

// Follow handles POST /api/user/follow/:id
// @Summary Follow a user
// @Description Following someone already followed is a no-op
// @Tags social
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /user/follow/{id} [post]
func (s *Server) Follow(c *fiber.Ctx) error {
	if err := s.socialService.Follow(c.UserContext(), currentUserID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Followed successfully"})
}

// Unfollow handles POST /api/user/unfollow/:id
// @Summary Unfollow a user
// @Description Unfollowing someone not followed is a no-op
// @Tags social
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /user/unfollow/{id} [post]
func (s *Server) Unfollow(c *fiber.Ctx) error {
	if err := s.socialService.Unfollow(c.UserContext(), currentUserID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Unfollowed successfully"})
}

// GetFollowers handles GET /api/user/:id/followers
// @Summary List followers
// @Tags social
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {array} models.UserSummary
// @Failure 404 {object} models.ErrorResponse
// @Router /user/{id}/followers [get]
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	users, err := s.socialService.Followers(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// GetFollowing handles GET /api/user/:id/following
// @Summary List followed users
// @Tags social
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {array} models.UserSummary
// @Failure 404 {object} models.ErrorResponse
// @Router /user/{id}/following [get]
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	users, err := s.socialService.Following(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}
