package seed

import (
	"context"
	"testing"

	"reeltrack/internal/database"
	"reeltrack/internal/models"
	"reeltrack/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	return db
}

func gormRepos(db *gorm.DB) Repositories {
	return Repositories{
		Users:     repository.NewUserRepository(db),
		Lists:     repository.NewListRepository(db),
		Relations: repository.NewRelationRepository(db),
		Reviews:   repository.NewReviewRepository(db),
	}
}

func TestSeeder_Run(t *testing.T) {
	db := setupDB(t)
	s := NewSeeder(gormRepos(db), Options{
		NumUsers:       5,
		CatalogSize:    10,
		MoviesPerList:  3,
		ReviewsPerUser: 2,
		FollowsPerUser: 2,
		Seed:           42,
		HashCost:       bcrypt.MinCost,
	})

	summary, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Users)
	assert.Equal(t, 5*3*2, summary.Lists)
	assert.Equal(t, 5*2, summary.Reviews)
	assert.Equal(t, 5*2, summary.Follows)

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.EqualValues(t, 5, users)

	var reviews int64
	require.NoError(t, db.Model(&models.Review{}).Count(&reviews).Error)
	assert.EqualValues(t, 10, reviews)

	// each follow is stored on both sides
	var relations int64
	require.NoError(t, db.Model(&models.Relation{}).Count(&relations).Error)
	assert.EqualValues(t, 20, relations)
}

func TestSeeder_UsersCanLogIn(t *testing.T) {
	db := setupDB(t)
	s := NewSeeder(gormRepos(db), Options{NumUsers: 2, Seed: 7, HashCost: bcrypt.MinCost})

	_, err := s.Run(context.Background())
	require.NoError(t, err)

	var user models.User
	require.NoError(t, db.First(&user).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(DefaultPassword)))
	assert.Contains(t, user.Email, "@example.com")
}

func TestCatalog_DistinctIDs(t *testing.T) {
	s := NewSeeder(Repositories{}, Options{Seed: 1})
	movies := s.Catalog(50)
	require.Len(t, movies, 50)

	seen := map[string]bool{}
	for _, m := range movies {
		assert.False(t, seen[m.MovieID], "duplicate id %s", m.MovieID)
		seen[m.MovieID] = true
		assert.NotEmpty(t, m.Title)
		assert.Len(t, m.ReleaseDate, len("2006-01-02"))
	}
}

func TestClearAll(t *testing.T) {
	db := setupDB(t)
	s := NewSeeder(gormRepos(db), Options{NumUsers: 3, MoviesPerList: 1, ReviewsPerUser: 1, FollowsPerUser: 1, Seed: 3, HashCost: bcrypt.MinCost})
	_, err := s.Run(context.Background())
	require.NoError(t, err)

	require.NoError(t, ClearAll(db))

	for _, m := range database.PersistentModels() {
		var n int64
		require.NoError(t, db.Model(m).Count(&n).Error)
		assert.Zero(t, n, "%T not cleared", m)
	}
}
