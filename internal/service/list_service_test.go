package service

import (
	"context"
	"errors"
	"testing"

	"reeltrack/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newListFixture(t *testing.T) (*ListService, *ListService, *memListRepo, *models.User) {
	t.Helper()
	user := &models.User{ID: "u1", Username: "viewer", Email: "viewer@example.com"}
	users := newMemUserRepo(user)
	lists := newMemListRepo()
	return NewListService(models.ListFavorites, lists, users), NewListService(models.ListWatchlist, lists, users), lists, user
}

func TestListServiceAddDuplicateIsConflict(t *testing.T) {
	favorites, _, lists, user := newListFixture(t)
	ctx := context.Background()

	items, err := favorites.AddItem(ctx, user.ID, models.MovieRef{MovieID: "M1", Title: "One"})
	require.NoError(t, err)
	require.Len(t, items, 1)

	_, err = favorites.AddItem(ctx, user.ID, models.MovieRef{MovieID: "M1", Title: "One again"})
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeConflict, appErr.Code)
	assert.Equal(t, "Movie already in favorites", appErr.Message)

	items, err = favorites.ListItems(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, "One", items[0].Title)
	assert.Equal(t, 1, lists.writes)
}

func TestListServiceStorageConflictPropagates(t *testing.T) {
	favorites, _, lists, user := newListFixture(t)
	lists.appendFn = func(models.MovieRef) error {
		return models.NewConflictError("Movie already in favorites")
	}

	_, err := favorites.AddItem(context.Background(), user.ID, models.MovieRef{MovieID: "M1"})
	assert.True(t, models.HasCode(err, models.CodeConflict))
}

func TestListServiceKeepsInsertionOrder(t *testing.T) {
	_, watchlist, _, user := newListFixture(t)
	ctx := context.Background()

	for _, id := range []string{"c", "a", "b"} {
		_, err := watchlist.AddItem(ctx, user.ID, models.MovieRef{MovieID: id})
		require.NoError(t, err)
	}
	items, err := watchlist.ListItems(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "c", items[0].MovieID)
	assert.Equal(t, "a", items[1].MovieID)
	assert.Equal(t, "b", items[2].MovieID)
}

func TestListServiceRemoveIsIdempotent(t *testing.T) {
	favorites, _, _, user := newListFixture(t)
	ctx := context.Background()

	_, err := favorites.AddItem(ctx, user.ID, models.MovieRef{MovieID: "M1"})
	require.NoError(t, err)

	items, err := favorites.RemoveItem(ctx, user.ID, "M1")
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = favorites.RemoveItem(ctx, user.ID, "M1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestListServiceListsAreIndependent(t *testing.T) {
	favorites, watchlist, _, user := newListFixture(t)
	ctx := context.Background()

	_, err := favorites.AddItem(ctx, user.ID, models.MovieRef{MovieID: "M1"})
	require.NoError(t, err)
	_, err = watchlist.AddItem(ctx, user.ID, models.MovieRef{MovieID: "M1"})
	require.NoError(t, err)

	favs, err := favorites.RemoveItem(ctx, user.ID, "M1")
	require.NoError(t, err)
	assert.Empty(t, favs)

	watch, err := watchlist.ListItems(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, watch, 1)
	assert.Equal(t, "M1", watch[0].MovieID)
}

func TestListServiceValidationAndMissingUser(t *testing.T) {
	favorites, _, lists, user := newListFixture(t)
	ctx := context.Background()

	_, err := favorites.AddItem(ctx, user.ID, models.MovieRef{MovieID: "  "})
	assert.True(t, models.HasCode(err, models.CodeValidation))

	_, err = favorites.AddItem(ctx, "ghost", models.MovieRef{MovieID: "M1"})
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	_, err = favorites.ListItems(ctx, "ghost")
	assert.True(t, models.HasCode(err, models.CodeNotFound))
	assert.Equal(t, 0, lists.writes)
}

func TestListServiceRemoveTrimsMovieID(t *testing.T) {
	favorites, _, lists, user := newListFixture(t)
	ctx := context.Background()

	_, err := favorites.AddItem(ctx, user.ID, models.MovieRef{MovieID: " M1 "})
	require.NoError(t, err)

	items, err := favorites.RemoveItem(ctx, user.ID, "\tM1 ")
	require.NoError(t, err)
	assert.Empty(t, items)

	writes := lists.writes
	_, err = favorites.RemoveItem(ctx, user.ID, "   ")
	assert.True(t, models.HasCode(err, models.CodeValidation))
	assert.Equal(t, writes, lists.writes)
}

func TestNewListServiceRejectsUnknownKind(t *testing.T) {
	lists, users := newMemListRepo(), newMemUserRepo()
	assert.PanicsWithValue(t, `service: unknown list kind "seen"`, func() {
		NewListService(models.ListKind("seen"), lists, users)
	})
	assert.NotPanics(t, func() {
		NewListService(models.ListWatchlist, lists, users)
	})
}
