package repository

import (
	"context"

	"github.com/ethioshop/ethioshop-backend/internal/model"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, p *model.Payment) error
	FindByTxRef(ctx context.Context, txRef string) (*model.Payment, error)
	FindSuccessfulByOrder(ctx context.Context, orderID uint64) (*model.Payment, error)
	// MarkSucceededIfPending is the webhook idempotency guard: the UPDATE only
	// matches while status is still pending, so a redelivered event changes
	// nothing and reports zero rows.
	MarkSucceededIfPending(ctx context.Context, txRef, transactionID, providerMeta string) (int64, error)
	SetDB(db *gorm.DB)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, p *model.Payment) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *paymentRepository) FindByTxRef(ctx context.Context, txRef string) (*model.Payment, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var p model.Payment
	if err := r.db.WithContext(ctx).First(&p, "tx_ref = ?", txRef).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepository) FindSuccessfulByOrder(ctx context.Context, orderID uint64) (*model.Payment, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var p model.Payment
	if err := r.db.WithContext(ctx).
		Where("order_id = ? AND status = ?", orderID, model.PaymentRecordStatusSuccess).
		Order("updated_at DESC").
		First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepository) MarkSucceededIfPending(ctx context.Context, txRef, transactionID, providerMeta string) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	res := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("tx_ref = ? AND status = ?", txRef, model.PaymentRecordStatusPending).
		Updates(map[string]interface{}{
			"status":         model.PaymentRecordStatusSuccess,
			"transaction_id": transactionID,
			"provider_meta":  providerMeta,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *paymentRepository) SetDB(db *gorm.DB) {
	r.db = db
}
