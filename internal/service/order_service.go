package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethioshop/ethioshop-backend/internal/model"
	"github.com/ethioshop/ethioshop-backend/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateOrderItemInput struct {
	ProductID uint64
	Quantity  int
}

type CreateOrderInput struct {
	Items          []CreateOrderItemInput
	DeliveryMethod model.DeliveryMethod
	Address        string
	RecipientName  string
}

type OrderService interface {
	Create(ctx context.Context, buyerUID, buyerName string, in CreateOrderInput) (*model.Order, error)
	Get(ctx context.Context, id uint64, uid string) (*model.Order, error)
	ListByBuyer(ctx context.Context, buyerUID string) ([]model.Order, error)
	ListBySeller(ctx context.Context, sellerUID string) ([]model.Order, error)
	MarkShipped(ctx context.Context, id uint64, sellerUID string) (*model.Order, error)
	MarkDelivered(ctx context.Context, id uint64, buyerUID string) (*model.Order, error)
	Cancel(ctx context.Context, id uint64, buyerUID string) (*model.Order, error)
}

type orderService struct {
	orderRepo    repository.OrderRepository
	productRepo  repository.ProductRepository
	userRepo     repository.UserRepository
	escrow       EscrowService
	notify       NotificationService
	shippingFlat decimal.Decimal
}

func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, userRepo repository.UserRepository, escrow EscrowService, notify NotificationService, shippingFlat decimal.Decimal) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		userRepo:     userRepo,
		escrow:       escrow,
		notify:       notify,
		shippingFlat: shippingFlat,
	}
}

func (s *orderService) Create(ctx context.Context, buyerUID, buyerName string, in CreateOrderInput) (*model.Order, error) {
	if buyerUID == "" {
		return nil, errors.New("buyer is required")
	}
	if len(in.Items) == 0 {
		return nil, errors.New("order must contain at least one item")
	}
	switch in.DeliveryMethod {
	case model.DeliveryMethodPickup:
	case model.DeliveryMethodShipping:
		if strings.TrimSpace(in.Address) == "" {
			return nil, errors.New("address is required for shipping")
		}
	default:
		return nil, errors.New("invalid delivery method")
	}

	var (
		sellerUID  string
		sellerName string
		items      []model.OrderItem
		total      = decimal.Zero
	)
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return nil, errors.New("quantity must be positive")
		}
		p, err := s.productRepo.FindByID(ctx, it.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		if p.Status != model.ProductStatusActive {
			return nil, fmt.Errorf("product %d is not available", p.ID)
		}
		if p.Price.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("product %d has no valid price", p.ID)
		}
		if p.SellerUID == buyerUID {
			return nil, errors.New("cannot buy your own product")
		}
		if sellerUID == "" {
			sellerUID = p.SellerUID
			sellerName = p.SellerName
		} else if sellerUID != p.SellerUID {
			return nil, errors.New("all items must belong to one seller")
		}
		items = append(items, model.OrderItem{
			ProductID:    p.ID,
			Title:        p.Title,
			Quantity:     it.Quantity,
			UnitPrice:    p.Price,
			ThumbnailURL: p.ImageURL,
		})
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	shipping := decimal.Zero
	if in.DeliveryMethod == model.DeliveryMethodShipping {
		shipping = s.shippingFlat
	}

	o := &model.Order{
		BuyerUID:       buyerUID,
		BuyerName:      buyerName,
		SellerUID:      sellerUID,
		SellerName:     sellerName,
		Items:          items,
		TotalAmount:    total.Add(shipping),
		ShippingCost:   shipping,
		DeliveryMethod: in.DeliveryMethod,
		Address:        strings.TrimSpace(in.Address),
		RecipientName:  strings.TrimSpace(in.RecipientName),
		Status:         model.OrderStatusPending,
		PaymentStatus:  model.PaymentStatusPending,
	}

	// Snapshot the seller's payout profile so escrow release keeps working
	// even if the profile changes before delivery. A seller with no profile
	// row yet is fine (escrow falls back to the live profile later), but a
	// failed lookup must not silently produce an empty snapshot.
	seller, err := s.userRepo.FindByUID(ctx, sellerUID)
	switch {
	case err == nil:
		o.SellerBankAccountName = seller.BankAccountName
		o.SellerBankAccountNumber = seller.BankAccountNumber
		o.SellerBankCode = seller.BankCode
		if o.SellerName == "" {
			o.SellerName = seller.DisplayName
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, err
	}

	if err := s.orderRepo.Create(ctx, o); err != nil {
		return nil, err
	}
	s.notify.Notify(ctx, sellerUID, "new_order", "New Order",
		fmt.Sprintf("%s placed an order for %s ETB", displayOrFallback(buyerName, "A buyer"), o.TotalAmount.StringFixed(2)),
		&o.ID, nil, nil)
	return o, nil
}

func (s *orderService) Get(ctx context.Context, id uint64, uid string) (*model.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if uid != "" && uid != o.BuyerUID && uid != o.SellerUID {
		return nil, ErrForbidden
	}
	return o, nil
}

func (s *orderService) ListByBuyer(ctx context.Context, buyerUID string) ([]model.Order, error) {
	if buyerUID == "" {
		return nil, errors.New("buyer is required")
	}
	return s.orderRepo.ListByBuyer(ctx, buyerUID)
}

func (s *orderService) ListBySeller(ctx context.Context, sellerUID string) ([]model.Order, error) {
	if sellerUID == "" {
		return nil, errors.New("seller is required")
	}
	return s.orderRepo.ListBySeller(ctx, sellerUID)
}

func (s *orderService) MarkShipped(ctx context.Context, id uint64, sellerUID string) (*model.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if o.SellerUID != sellerUID {
		return nil, ErrForbidden
	}
	if o.Status == model.OrderStatusShipped {
		return o, nil
	}
	if o.Status != model.OrderStatusConfirmed {
		return nil, errors.New("order is not ready to ship")
	}
	now := time.Now()
	o.Status = model.OrderStatusShipped
	o.ShippedAt = &now
	if err := s.orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}
	s.notify.Notify(ctx, o.BuyerUID, "order_shipped", "Order Shipped",
		fmt.Sprintf("Your order #%d is on its way", o.ID), &o.ID, nil, nil)
	return o, nil
}

func (s *orderService) MarkDelivered(ctx context.Context, id uint64, buyerUID string) (*model.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if o.BuyerUID != buyerUID {
		return nil, ErrForbidden
	}
	if o.Status != model.OrderStatusDelivered {
		if o.Status != model.OrderStatusShipped {
			return nil, errors.New("order has not been shipped")
		}
		now := time.Now()
		o.Status = model.OrderStatusDelivered
		o.DeliveredAt = &now
		if err := s.orderRepo.Update(ctx, o); err != nil {
			return nil, err
		}
	}
	// The writer that produced the delivered+paid transition triggers the
	// payout; release failures are logged there and never fail this call.
	if o.PaymentStatus == model.PaymentStatusPaid && !o.EscrowReleased {
		s.escrow.Release(ctx, o.ID)
		if refreshed, err := s.orderRepo.FindByID(ctx, o.ID); err == nil {
			o = refreshed
		}
	}
	return o, nil
}

func (s *orderService) Cancel(ctx context.Context, id uint64, buyerUID string) (*model.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if o.BuyerUID != buyerUID {
		return nil, ErrForbidden
	}
	if o.Status != model.OrderStatusPending || o.PaymentStatus != model.PaymentStatusPending {
		return nil, errors.New("cannot cancel after payment has started")
	}
	now := time.Now()
	o.Status = model.OrderStatusCancelled
	o.CancelledAt = &now
	if err := s.orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}
	s.notify.Notify(ctx, o.SellerUID, "order_cancelled", "Order Cancelled",
		fmt.Sprintf("Order #%d was cancelled by the buyer", o.ID), &o.ID, nil, nil)
	return o, nil
}

func displayOrFallback(name, fallback string) string {
	if strings.TrimSpace(name) == "" {
		return fallback
	}
	return name
}
