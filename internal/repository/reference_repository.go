package repository

import (
	"context"

	"github.com/ethioshop/ethioshop-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReferenceRepository holds the seed reference data: categories and
// pickup/shipping locations.
type ReferenceRepository interface {
	UpsertCategories(ctx context.Context, categories []model.Category) error
	UpsertLocations(ctx context.Context, locations []model.Location) error
	ListCategories(ctx context.Context) ([]model.Category, error)
	ListLocations(ctx context.Context) ([]model.Location, error)
	SetDB(db *gorm.DB)
}

type referenceRepository struct {
	db *gorm.DB
}

func NewReferenceRepository(db *gorm.DB) ReferenceRepository {
	return &referenceRepository{db: db}
}

func (r *referenceRepository) UpsertCategories(ctx context.Context, categories []model.Category) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	if len(categories) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"display_name", "icon"}),
		}).
		Create(&categories).Error
}

func (r *referenceRepository) UpsertLocations(ctx context.Context, locations []model.Location) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	if len(locations) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).
		Create(&locations).Error
}

func (r *referenceRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Category
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *referenceRepository) ListLocations(ctx context.Context) ([]model.Location, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Location
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *referenceRepository) SetDB(db *gorm.DB) {
	r.db = db
}
