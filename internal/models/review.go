package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// MinRating is the lowest accepted star rating.
	MinRating = 1
	// MaxRating is the highest accepted star rating.
	MaxRating = 10
)

// Review is a user's rating and text for one movie. There is at most one per
// (UserID, MovieID); Username is the owner's email at creation time.
type Review struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id" bson:"_id"`
	MovieID    string    `gorm:"not null;index:idx_reviews_user_movie;index:idx_reviews_movie_created" json:"movieId" bson:"movieId"`
	UserID     string    `gorm:"type:varchar(36);not null;index:idx_reviews_user_movie" json:"userId" bson:"userId"`
	Username   string    `json:"username" bson:"username"`
	ReviewText string    `gorm:"type:text;not null" json:"reviewText" bson:"reviewText"`
	Rating     int       `gorm:"not null" json:"rating" bson:"rating"`
	CreatedAt  time.Time `gorm:"index:idx_reviews_movie_created" json:"createdAt" bson:"createdAt"`
}

// TableName specifies the table name for GORM
func (Review) TableName() string {
	return "reviews"
}

// BeforeCreate assigns a UUID when the caller did not.
func (r *Review) BeforeCreate(_ *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
