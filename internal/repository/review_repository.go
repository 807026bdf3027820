package repository

import (
	"context"

	"github.com/ethioshop/ethioshop-backend/internal/model"
	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(ctx context.Context, rv *model.Review) error
	FindByOrderAndReviewer(ctx context.Context, orderID uint64, reviewerUID string) (*model.Review, error)
	ListByProduct(ctx context.Context, productID uint64, limit int) ([]model.Review, error)
	AverageRating(ctx context.Context, productID uint64) (float64, int64, error)
	SetDB(db *gorm.DB)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, rv *model.Review) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(rv).Error
}

func (r *reviewRepository) FindByOrderAndReviewer(ctx context.Context, orderID uint64, reviewerUID string) (*model.Review, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var rv model.Review
	if err := r.db.WithContext(ctx).
		Where("order_id = ? AND reviewer_uid = ?", orderID, reviewerUID).
		First(&rv).Error; err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *reviewRepository) ListByProduct(ctx context.Context, productID uint64, limit int) ([]model.Review, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var list []model.Review
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *reviewRepository) AverageRating(ctx context.Context, productID uint64) (float64, int64, error) {
	if r.db == nil {
		return 0, 0, ErrDBNotReady
	}
	var row struct {
		Avg   float64
		Count int64
	}
	if err := r.db.WithContext(ctx).
		Model(&model.Review{}).
		Select("COALESCE(AVG(rating),0) AS avg, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Scan(&row).Error; err != nil {
		return 0, 0, err
	}
	return row.Avg, row.Count, nil
}

func (r *reviewRepository) SetDB(db *gorm.DB) {
	r.db = db
}
