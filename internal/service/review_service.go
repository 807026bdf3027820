package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethioshop/ethioshop-backend/internal/model"
	"github.com/ethioshop/ethioshop-backend/internal/repository"
	"gorm.io/gorm"
)

var ErrOrderNotDelivered = errors.New("order_not_delivered")
var ErrAlreadyReviewed = errors.New("already_reviewed")

type ProductRating struct {
	Average float64
	Count   int64
}

type ReviewService interface {
	Create(ctx context.Context, orderID uint64, reviewerUID string, productID uint64, rating int, comment string) (*model.Review, error)
	ListByProduct(ctx context.Context, productID uint64, limit int) ([]model.Review, *ProductRating, error)
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	orderRepo  repository.OrderRepository
	notify     NotificationService
}

func NewReviewService(reviewRepo repository.ReviewRepository, orderRepo repository.OrderRepository, notify NotificationService) ReviewService {
	return &reviewService{reviewRepo: reviewRepo, orderRepo: orderRepo, notify: notify}
}

func (s *reviewService) Create(ctx context.Context, orderID uint64, reviewerUID string, productID uint64, rating int, comment string) (*model.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, errors.New("rating must be between 1 and 5")
	}
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if o.BuyerUID != reviewerUID {
		return nil, ErrForbidden
	}
	if o.Status != model.OrderStatusDelivered {
		return nil, ErrOrderNotDelivered
	}

	if productID == 0 && len(o.Items) > 0 {
		productID = o.Items[0].ProductID
	}
	found := false
	for _, it := range o.Items {
		if it.ProductID == productID {
			found = true
			break
		}
	}
	if !found {
		return nil, errors.New("product is not part of this order")
	}

	if existing, err := s.reviewRepo.FindByOrderAndReviewer(ctx, orderID, reviewerUID); err == nil && existing != nil {
		return nil, ErrAlreadyReviewed
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	rv := &model.Review{
		ProductID:   productID,
		OrderID:     orderID,
		ReviewerUID: reviewerUID,
		Rating:      rating,
		Comment:     comment,
	}
	if err := s.reviewRepo.Create(ctx, rv); err != nil {
		return nil, err
	}
	s.notify.Notify(ctx, o.SellerUID, "new_review", "New Review",
		fmt.Sprintf("Your product received a %d-star review", rating), &orderID, &productID, nil)
	return rv, nil
}

func (s *reviewService) ListByProduct(ctx context.Context, productID uint64, limit int) ([]model.Review, *ProductRating, error) {
	list, err := s.reviewRepo.ListByProduct(ctx, productID, limit)
	if err != nil {
		return nil, nil, err
	}
	avg, cnt, err := s.reviewRepo.AverageRating(ctx, productID)
	if err != nil {
		return list, nil, err
	}
	return list, &ProductRating{Average: avg, Count: cnt}, nil
}
