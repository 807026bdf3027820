package repository

import (
	"context"
	"time"

	"github.com/ethioshop/ethioshop-backend/internal/model"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) error
	FindByID(ctx context.Context, id uint64) (*model.Order, error)
	Update(ctx context.Context, o *model.Order) error
	ListByBuyer(ctx context.Context, buyerUID string) ([]model.Order, error)
	ListBySeller(ctx context.Context, sellerUID string) ([]model.Order, error)
	// CASPaymentStatus flips payment_status from -> to in one statement and
	// reports how many rows changed; zero means the guard lost the race.
	CASPaymentStatus(ctx context.Context, id uint64, from, to model.PaymentStatus) (int64, error)
	SetSessionRef(ctx context.Context, id uint64, sessionRef string) error
	MarkPaid(ctx context.Context, id uint64, transactionID string) error
	MarkEscrowReleasedIfDue(ctx context.Context, id uint64, transferID string) (int64, error)
	SetDB(db *gorm.DB)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, o *model.Order) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepository) FindByID(ctx context.Context, id uint64) (*model.Order, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var o model.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) Update(ctx context.Context, o *model.Order) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Omit("Items").Save(o).Error
}

func (r *orderRepository) ListByBuyer(ctx context.Context, buyerUID string) ([]model.Order, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("buyer_uid = ?", buyerUID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepository) ListBySeller(ctx context.Context, sellerUID string) ([]model.Order, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("seller_uid = ?", sellerUID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepository) CASPaymentStatus(ctx context.Context, id uint64, from, to model.PaymentStatus) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND payment_status = ?", id, from).
		Update("payment_status", to)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *orderRepository) SetSessionRef(ctx context.Context, id uint64, sessionRef string) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", id).
		Update("session_ref", sessionRef).Error
}

func (r *orderRepository) MarkPaid(ctx context.Context, id uint64, transactionID string) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"payment_status": model.PaymentStatusPaid,
			"status":         model.OrderStatusConfirmed,
			"transaction_id": transactionID,
		}).Error
}

func (r *orderRepository) MarkEscrowReleasedIfDue(ctx context.Context, id uint64, transferID string) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND status = ? AND payment_status = ? AND escrow_released = ?",
			id, model.OrderStatusDelivered, model.PaymentStatusPaid, false).
		Updates(map[string]interface{}{
			"escrow_released": true,
			"transfer_id":     transferID,
			"updated_at":      time.Now(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *orderRepository) SetDB(db *gorm.DB) {
	r.db = db
}
