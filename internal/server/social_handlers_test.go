package server

import (
	"net/http"
	"testing"

	"reeltrack/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSocial_FollowUnfollow(t *testing.T) {
	env := newTestEnv(t)
	alice, aliceToken := env.createUser(t, "alice")
	bob, _ := env.createUser(t, "bob")

	for i := 0; i < 2; i++ {
		var resp map[string]string
		status := env.doJSON(t, fiber.MethodPost, "/api/user/follow/"+bob.ID, aliceToken, nil, &resp)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Followed successfully", resp["message"])
	}

	var followers []models.UserSummary
	status := env.doJSON(t, fiber.MethodGet, "/api/user/"+bob.ID+"/followers", aliceToken, nil, &followers)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []models.UserSummary{{ID: alice.ID, Username: "alice"}}, followers)

	var following []models.UserSummary
	env.doJSON(t, fiber.MethodGet, "/api/user/"+alice.ID+"/following", aliceToken, nil, &following)
	assert.Equal(t, []models.UserSummary{{ID: bob.ID, Username: "bob"}}, following)

	var profile models.User
	env.doJSON(t, fiber.MethodGet, "/api/user/profile", aliceToken, nil, &profile)
	assert.Equal(t, []string{bob.ID}, profile.Following)
	assert.Empty(t, profile.Followers)

	var resp map[string]string
	status = env.doJSON(t, fiber.MethodPost, "/api/user/unfollow/"+bob.ID, aliceToken, nil, &resp)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Unfollowed successfully", resp["message"])

	env.doJSON(t, fiber.MethodGet, "/api/user/"+bob.ID+"/followers", aliceToken, nil, &followers)
	assert.Empty(t, followers)
	env.doJSON(t, fiber.MethodGet, "/api/user/"+alice.ID+"/following", aliceToken, nil, &following)
	assert.Empty(t, following)

	// unfollowing again is a no-op
	status, _ = env.do(t, fiber.MethodPost, "/api/user/unfollow/"+bob.ID, aliceToken, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestSocial_SelfFollowRejected(t *testing.T) {
	env := newTestEnv(t)
	alice, token := env.createUser(t, "alice")

	status, raw := env.do(t, fiber.MethodPost, "/api/user/follow/"+alice.ID, token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, models.CodeValidation, errorCode(t, raw))

	status, _ = env.do(t, fiber.MethodPost, "/api/user/unfollow/"+alice.ID, token, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	var followers []models.UserSummary
	env.doJSON(t, fiber.MethodGet, "/api/user/"+alice.ID+"/followers", token, nil, &followers)
	assert.Empty(t, followers)
}

func TestSocial_UnknownTarget(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "alice")

	status, raw := env.do(t, fiber.MethodPost, "/api/user/follow/no-such-user", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, models.CodeNotFound, errorCode(t, raw))

	status, _ = env.do(t, fiber.MethodGet, "/api/user/no-such-user/followers", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}
