package repository

import (
	"context"

	"github.com/ethioshop/ethioshop-backend/internal/model"
	"gorm.io/gorm"
)

type ProductFilter struct {
	CategorySlug string
	Location     string
	Query        string
	SellerUID    string
}

type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	Update(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id uint64) (*model.Product, error)
	List(ctx context.Context, filter ProductFilter, limit, offset int) ([]model.Product, int64, error)
	AddImage(ctx context.Context, img *model.ProductImage) error
	ListImages(ctx context.Context, productID uint64) ([]model.ProductImage, error)
	SetDB(db *gorm.DB)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepository) Update(ctx context.Context, p *model.Product) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productRepository) FindByID(ctx context.Context, id uint64) (*model.Product, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var p model.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) List(ctx context.Context, filter ProductFilter, limit, offset int) ([]model.Product, int64, error) {
	if r.db == nil {
		return nil, 0, ErrDBNotReady
	}
	q := r.db.WithContext(ctx).Model(&model.Product{})
	if filter.SellerUID != "" {
		q = q.Where("seller_uid = ?", filter.SellerUID)
	} else {
		q = q.Where("status = ?", model.ProductStatusActive)
	}
	if filter.CategorySlug != "" {
		q = q.Where("category_slug = ?", filter.CategorySlug)
	}
	if filter.Location != "" {
		q = q.Where("location = ?", filter.Location)
	}
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		q = q.Where("title LIKE ? OR description LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var products []model.Product
	if err := q.Order("created_at desc").Limit(limit).Offset(offset).Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *productRepository) AddImage(ctx context.Context, img *model.ProductImage) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(img).Error
}

func (r *productRepository) ListImages(ctx context.Context, productID uint64) ([]model.ProductImage, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var imgs []model.ProductImage
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id ASC").
		Find(&imgs).Error; err != nil {
		return nil, err
	}
	return imgs, nil
}

func (r *productRepository) SetDB(db *gorm.DB) {
	r.db = db
}
