package mongostore

import (
	"context"
	"errors"

	"reeltrack/internal/models"
	"reeltrack/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type listRepository struct {
	coll *mongo.Collection
}

// NewListRepository returns a ListRepository over the embedded favorites and watchlist arrays.
func NewListRepository(s *Store) repository.ListRepository {
	return &listRepository{coll: s.Collection(usersCollection)}
}

func (r *listRepository) GetItems(ctx context.Context, userID string, kind models.ListKind) ([]models.MovieRef, error) {
	opts := options.FindOne().SetProjection(bson.M{string(kind): 1})

	var user models.User
	if err := r.coll.FindOne(ctx, bson.M{"_id": userID}, opts).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return []models.MovieRef{}, nil
		}
		return nil, models.NewInternalError(err)
	}

	items := user.Favorites
	if kind == models.ListWatchlist {
		items = user.Watchlist
	}
	if items == nil {
		items = []models.MovieRef{}
	}
	return items, nil
}

// AppendItem pushes ref only if no element of the array carries the same movieId,
// so concurrent duplicate adds cannot both succeed.
func (r *listRepository) AppendItem(ctx context.Context, userID string, kind models.ListKind, ref models.MovieRef) error {
	field := string(kind)
	filter := bson.M{
		"_id":              userID,
		field + ".movieId": bson.M{"$ne": ref.MovieID},
	}
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$push": bson.M{field: ref}})
	if err != nil {
		return models.NewInternalError(err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": userID})
	if err != nil {
		return models.NewInternalError(err)
	}
	if n == 0 {
		return models.NewNotFoundError("User", userID)
	}
	return models.NewConflictError("Movie already in " + field)
}

func (r *listRepository) RemoveItems(ctx context.Context, userID string, kind models.ListKind, movieID string) error {
	update := bson.M{"$pull": bson.M{string(kind): bson.M{"movieId": movieID}}}
	if _, err := r.coll.UpdateOne(ctx, bson.M{"_id": userID}, update); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
