package repository

import (
	"context"

	"reeltrack/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RelationRepository persists each user's followers and following sets.
type RelationRepository interface {
	GetRelations(ctx context.Context, ownerID string, kind models.RelationKind) ([]string, error)
	// AddRelation is a no-op when otherID is already in the set.
	AddRelation(ctx context.Context, ownerID string, kind models.RelationKind, otherID string) error
	RemoveRelation(ctx context.Context, ownerID string, kind models.RelationKind, otherID string) error
}

type relationRepository struct {
	db *gorm.DB
}

// NewRelationRepository returns a GORM-backed RelationRepository.
func NewRelationRepository(db *gorm.DB) RelationRepository {
	return &relationRepository{db: db}
}

func (r *relationRepository) GetRelations(ctx context.Context, ownerID string, kind models.RelationKind) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).
		Model(&models.Relation{}).
		Where("owner_id = ? AND kind = ?", ownerID, kind).
		Order("id ASC").
		Pluck("other_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *relationRepository) AddRelation(ctx context.Context, ownerID string, kind models.RelationKind, otherID string) error {
	rel := models.Relation{OwnerID: ownerID, Kind: kind, OtherID: otherID}
	// OnConflict keeps the set free of duplicates without a prior read
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rel).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *relationRepository) RemoveRelation(ctx context.Context, ownerID string, kind models.RelationKind, otherID string) error {
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND kind = ? AND other_id = ?", ownerID, kind, otherID).
		Delete(&models.Relation{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
