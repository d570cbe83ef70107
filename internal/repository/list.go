package repository

import (
	"context"

	"reeltrack/internal/models"
	"reeltrack/internal/observability"

	"gorm.io/gorm"
)

// ListRepository persists the ordered favorites and watchlist of each user.
type ListRepository interface {
	GetItems(ctx context.Context, userID string, kind models.ListKind) ([]models.MovieRef, error)
	// AppendItem returns a Conflict error when movieID is already in the list.
	AppendItem(ctx context.Context, userID string, kind models.ListKind, ref models.MovieRef) error
	RemoveItems(ctx context.Context, userID string, kind models.ListKind, movieID string) error
}

type listRepository struct {
	db *gorm.DB
}

// NewListRepository returns a GORM-backed ListRepository.
func NewListRepository(db *gorm.DB) ListRepository {
	return &listRepository{db: db}
}

func (r *listRepository) GetItems(ctx context.Context, userID string, kind models.ListKind) ([]models.MovieRef, error) {
	defer observability.TrackQuery("get_items", "list_entries")()

	var entries []models.ListEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND kind = ?", userID, kind).
		Order("id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	refs := make([]models.MovieRef, 0, len(entries))
	for _, e := range entries {
		refs = append(refs, e.Ref())
	}
	return refs, nil
}

func (r *listRepository) AppendItem(ctx context.Context, userID string, kind models.ListKind, ref models.MovieRef) error {
	entry := models.ListEntry{
		UserID:      userID,
		Kind:        kind,
		MovieID:     ref.MovieID,
		Title:       ref.Title,
		PosterPath:  ref.PosterPath,
		ReleaseDate: ref.ReleaseDate,
	}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Movie already in " + string(kind))
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *listRepository) RemoveItems(ctx context.Context, userID string, kind models.ListKind, movieID string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND kind = ? AND movie_id = ?", userID, kind, movieID).
		Delete(&models.ListEntry{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
