package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"reeltrack/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewListRepository(db)
	ctx := context.Background()
	userID := "user-1"

	require.NoError(t, repo.AppendItem(ctx, userID, models.ListFavorites, models.MovieRef{MovieID: "m1", Title: "First"}))
	require.NoError(t, repo.AppendItem(ctx, userID, models.ListFavorites, models.MovieRef{MovieID: "m2", Title: "Second"}))
	require.NoError(t, repo.AppendItem(ctx, userID, models.ListWatchlist, models.MovieRef{MovieID: "m1"}))

	t.Run("GetItems keeps insertion order per list", func(t *testing.T) {
		favs, err := repo.GetItems(ctx, userID, models.ListFavorites)
		require.NoError(t, err)
		require.Len(t, favs, 2)
		assert.Equal(t, "m1", favs[0].MovieID)
		assert.Equal(t, "First", favs[0].Title)
		assert.Equal(t, "m2", favs[1].MovieID)

		watch, err := repo.GetItems(ctx, userID, models.ListWatchlist)
		require.NoError(t, err)
		assert.Len(t, watch, 1)
	})

	t.Run("AppendItem duplicate is Conflict", func(t *testing.T) {
		err := repo.AppendItem(ctx, userID, models.ListFavorites, models.MovieRef{MovieID: "m1"})
		assert.True(t, models.HasCode(err, models.CodeConflict))

		favs, err := repo.GetItems(ctx, userID, models.ListFavorites)
		require.NoError(t, err)
		assert.Len(t, favs, 2)
	})

	t.Run("RemoveItems is idempotent and scoped to one list", func(t *testing.T) {
		require.NoError(t, repo.RemoveItems(ctx, userID, models.ListFavorites, "m1"))
		require.NoError(t, repo.RemoveItems(ctx, userID, models.ListFavorites, "m1"))

		favs, err := repo.GetItems(ctx, userID, models.ListFavorites)
		require.NoError(t, err)
		require.Len(t, favs, 1)
		assert.Equal(t, "m2", favs[0].MovieID)

		watch, err := repo.GetItems(ctx, userID, models.ListWatchlist)
		require.NoError(t, err)
		assert.Len(t, watch, 1)
	})

	t.Run("GetItems on empty list returns empty slice", func(t *testing.T) {
		items, err := repo.GetItems(ctx, "nobody", models.ListWatchlist)
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})
}

func TestListRepository_PostgresUniqueViolationIsConflict(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewListRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "list_entries"`)).
		WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "idx_list_entries_member" (SQLSTATE 23505)`))
	mock.ExpectRollback()

	err := repo.AppendItem(context.Background(), "u1", models.ListWatchlist, models.MovieRef{MovieID: "m9"})

	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeConflict, appErr.Code)
	assert.Equal(t, "Movie already in watchlist", appErr.Message)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListRepository_GetItemsQueryShape(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewListRepository(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "kind", "movie_id", "title"}).
		AddRow(1, "u1", "favorites", "m1", "One")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "list_entries" WHERE user_id = $1 AND kind = $2 ORDER BY id ASC`)).
		WithArgs("u1", "favorites").
		WillReturnRows(rows)

	items, err := repo.GetItems(context.Background(), "u1", models.ListFavorites)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "One", items[0].Title)
	require.NoError(t, mock.ExpectationsWereMet())
}
