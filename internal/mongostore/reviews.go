package mongostore

import (
	"context"
	"errors"
	"time"

	"reeltrack/internal/models"
	"reeltrack/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type reviewRepository struct {
	coll *mongo.Collection
}

// NewReviewRepository returns a ReviewRepository over the reviews collection.
func NewReviewRepository(s *Store) repository.ReviewRepository {
	return &reviewRepository{coll: s.Collection(reviewsCollection)}
}

func (r *reviewRepository) FindByUserAndMovie(ctx context.Context, userID, movieID string) (*models.Review, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	var review models.Review
	err := r.coll.FindOne(ctx, bson.M{"userId": userID, "movieId": movieID}, opts).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &review, nil
}

func (r *reviewRepository) GetByID(ctx context.Context, id string) (*models.Review, error) {
	var review models.Review
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&review); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.NewNotFoundError("Review", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &review, nil
}

func (r *reviewRepository) ListByMovie(ctx context.Context, movieID string) ([]models.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.coll.Find(ctx, bson.M{"movieId": movieID}, opts)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	reviews := []models.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, models.NewInternalError(err)
	}
	return reviews, nil
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}
	if _, err := r.coll.InsertOne(ctx, review); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *reviewRepository) Update(ctx context.Context, review *models.Review) error {
	update := bson.M{"$set": bson.M{
		"reviewText": review.ReviewText,
		"rating":     review.Rating,
	}}
	if _, err := r.coll.UpdateOne(ctx, bson.M{"_id": review.ID}, update); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *reviewRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
