package models

import "time"

// ListKind selects one of a user's movie lists.
type ListKind string

const (
	// ListFavorites is the user's favorites list.
	ListFavorites ListKind = "favorites"
	// ListWatchlist is the user's watchlist.
	ListWatchlist ListKind = "watchlist"
)

// Valid reports whether k names a known list.
func (k ListKind) Valid() bool {
	return k == ListFavorites || k == ListWatchlist
}

// MovieRef is a denormalized snapshot of a catalog movie, captured when it
// is added to a list and never refreshed.
type MovieRef struct {
	MovieID     string `json:"movieId" bson:"movieId" validate:"required,max=64"`
	Title       string `json:"title" bson:"title" validate:"max=300"`
	PosterPath  string `json:"posterPath" bson:"posterPath" validate:"max=500"`
	ReleaseDate string `json:"releaseDate" bson:"releaseDate" validate:"max=32"`
}

// ListEntry is the relational row behind one MovieRef in a user's list.
// Insertion order follows the auto-increment ID.
type ListEntry struct {
	ID          uint     `gorm:"primaryKey"`
	UserID      string   `gorm:"type:varchar(36);not null;uniqueIndex:idx_list_entries_member"`
	Kind        ListKind `gorm:"type:varchar(16);not null;uniqueIndex:idx_list_entries_member"`
	MovieID     string   `gorm:"not null;uniqueIndex:idx_list_entries_member"`
	Title       string
	PosterPath  string
	ReleaseDate string
	CreatedAt   time.Time
}

// TableName specifies the table name for GORM
func (ListEntry) TableName() string {
	return "list_entries"
}

// Ref converts the row back into its value type.
func (e ListEntry) Ref() MovieRef {
	return MovieRef{
		MovieID:     e.MovieID,
		Title:       e.Title,
		PosterPath:  e.PosterPath,
		ReleaseDate: e.ReleaseDate,
	}
}

// ContainsMovie reports whether refs already holds movieID.
func ContainsMovie(refs []MovieRef, movieID string) bool {
	for _, r := range refs {
		if r.MovieID == movieID {
			return true
		}
	}
	return false
}
