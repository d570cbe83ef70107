package models

import "time"

// RelationKind selects one of a user's two reference sets.
type RelationKind string

const (
	// RelationFollowers holds the users following the owner.
	RelationFollowers RelationKind = "followers"
	// RelationFollowing holds the users the owner follows.
	RelationFollowing RelationKind = "following"
)

// Relation is one member of a user's followers or following set.
type Relation struct {
	ID        uint         `gorm:"primaryKey"`
	OwnerID   string       `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_relations_member"`
	Kind      RelationKind `gorm:"type:varchar(16);not null;uniqueIndex:idx_user_relations_member"`
	OtherID   string       `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_relations_member"`
	CreatedAt time.Time
}

// TableName specifies the table name for GORM
func (Relation) TableName() string {
	return "user_relations"
}
