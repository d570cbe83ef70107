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

type relationRepository struct {
	coll *mongo.Collection
}

// NewRelationRepository returns a RelationRepository over the embedded followers and following arrays.
func NewRelationRepository(s *Store) repository.RelationRepository {
	return &relationRepository{coll: s.Collection(usersCollection)}
}

func (r *relationRepository) GetRelations(ctx context.Context, ownerID string, kind models.RelationKind) ([]string, error) {
	opts := options.FindOne().SetProjection(bson.M{string(kind): 1})

	var user models.User
	if err := r.coll.FindOne(ctx, bson.M{"_id": ownerID}, opts).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return []string{}, nil
		}
		return nil, models.NewInternalError(err)
	}

	ids := user.Followers
	if kind == models.RelationFollowing {
		ids = user.Following
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func (r *relationRepository) AddRelation(ctx context.Context, ownerID string, kind models.RelationKind, otherID string) error {
	update := bson.M{"$addToSet": bson.M{string(kind): otherID}}
	if _, err := r.coll.UpdateOne(ctx, bson.M{"_id": ownerID}, update); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *relationRepository) RemoveRelation(ctx context.Context, ownerID string, kind models.RelationKind, otherID string) error {
	update := bson.M{"$pull": bson.M{string(kind): otherID}}
	if _, err := r.coll.UpdateOne(ctx, bson.M{"_id": ownerID}, update); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
