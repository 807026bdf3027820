package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ethioshop/ethioshop-backend/internal/model"
	"github.com/ethioshop/ethioshop-backend/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not found")
var ErrForbidden = errors.New("forbidden")

type ProductService interface {
	Create(ctx context.Context, sellerUID, sellerName, title, description string, price decimal.Decimal, categorySlug, location string, imageURL *string) (*model.Product, error)
	Update(ctx context.Context, id uint64, sellerUID string, title, description *string, price *decimal.Decimal, status *model.ProductStatus) (*model.Product, error)
	Get(ctx context.Context, id uint64) (*model.Product, error)
	List(ctx context.Context, filter repository.ProductFilter, limit, offset int) ([]model.Product, int64, error)
	AddImage(ctx context.Context, productID uint64, sellerUID, imageURL string) (*model.ProductImage, error)
	ListImages(ctx context.Context, productID uint64) ([]model.ProductImage, error)
}

type productService struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) ProductService {
	return &productService{repo: repo}
}

func (s *productService) Create(ctx context.Context, sellerUID, sellerName, title, description string, price decimal.Decimal, categorySlug, location string, imageURL *string) (*model.Product, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	categorySlug = strings.TrimSpace(categorySlug)
	if sellerUID == "" {
		return nil, errors.New("seller is required")
	}
	if title == "" || len(title) > 120 {
		return nil, errors.New("invalid title")
	}
	if description == "" {
		return nil, errors.New("invalid description")
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("price must be positive")
	}
	if categorySlug == "" {
		return nil, errors.New("category is required")
	}
	if imageURL != nil && strings.HasPrefix(strings.TrimSpace(*imageURL), "data:") {
		return nil, errors.New("imageUrl must be a URL, not data URI")
	}

	p := &model.Product{
		SellerUID:    sellerUID,
		SellerName:   sellerName,
		Title:        title,
		Description:  description,
		Price:        price,
		CategorySlug: categorySlug,
		Location:     strings.TrimSpace(location),
		ImageURL:     imageURL,
		Status:       model.ProductStatusActive,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *productService) Update(ctx context.Context, id uint64, sellerUID string, title, description *string, price *decimal.Decimal, status *model.ProductStatus) (*model.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if p.SellerUID != sellerUID {
		return nil, ErrForbidden
	}
	if title != nil {
		t := strings.TrimSpace(*title)
		if t == "" || len(t) > 120 {
			return nil, errors.New("invalid title")
		}
		p.Title = t
	}
	if description != nil {
		d := strings.TrimSpace(*description)
		if d == "" {
			return nil, errors.New("invalid description")
		}
		p.Description = d
	}
	if price != nil {
		if price.LessThanOrEqual(decimal.Zero) {
			return nil, errors.New("price must be positive")
		}
		p.Price = *price
	}
	if status != nil {
		switch *status {
		case model.ProductStatusActive, model.ProductStatusSold, model.ProductStatusHidden:
			p.Status = *status
		default:
			return nil, errors.New("invalid status")
		}
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *productService) Get(ctx context.Context, id uint64) (*model.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *productService) List(ctx context.Context, filter repository.ProductFilter, limit, offset int) ([]model.Product, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	filter.Query = strings.TrimSpace(filter.Query)
	filter.CategorySlug = strings.TrimSpace(filter.CategorySlug)
	filter.Location = strings.TrimSpace(filter.Location)
	return s.repo.List(ctx, filter, limit, offset)
}

func (s *productService) AddImage(ctx context.Context, productID uint64, sellerUID, imageURL string) (*model.ProductImage, error) {
	p, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if p.SellerUID != sellerUID {
		return nil, ErrForbidden
	}
	img := &model.ProductImage{ProductID: productID, ImageURL: imageURL}
	if err := s.repo.AddImage(ctx, img); err != nil {
		return nil, err
	}
	if p.ImageURL == nil {
		p.ImageURL = &img.ImageURL
		_ = s.repo.Update(ctx, p)
	}
	return img, nil
}

func (s *productService) ListImages(ctx context.Context, productID uint64) ([]model.ProductImage, error) {
	return s.repo.ListImages(ctx, productID)
}
