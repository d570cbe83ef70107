// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a registered account with its movie lists and social graph.
// The list and relation fields are embedded in the MongoDB document; the
// relational store keeps them in list_entries and user_relations.
type User struct {
	ID        string     `gorm:"primaryKey;type:varchar(36)" json:"id" bson:"_id"`
	Username  string     `gorm:"uniqueIndex;not null" json:"username" bson:"username"`
	Email     string     `gorm:"uniqueIndex;not null" json:"email" bson:"email"`
	Password  string     `gorm:"not null" json:"-" bson:"password"`
	Favorites []MovieRef `gorm:"-" json:"favorites" bson:"favorites"`
	Watchlist []MovieRef `gorm:"-" json:"watchlist" bson:"watchlist"`
	Followers []string   `gorm:"-" json:"followers" bson:"followers"`
	Following []string   `gorm:"-" json:"following" bson:"following"`
	CreatedAt time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// FillEmptyCollections replaces nil lists and follow sets with empty ones so
// they serialize as [] rather than null.
func (u *User) FillEmptyCollections() {
	if u.Favorites == nil {
		u.Favorites = []MovieRef{}
	}
	if u.Watchlist == nil {
		u.Watchlist = []MovieRef{}
	}
	if u.Followers == nil {
		u.Followers = []string{}
	}
	if u.Following == nil {
		u.Following = []string{}
	}
}

// BeforeCreate assigns a UUID when the caller did not.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// UserSummary is the public view of a user in follower/following listings.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Summary returns the public view of u.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username}
}
