package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentRecordStatus string

const (
	PaymentRecordStatusPending   PaymentRecordStatus = "pending"
	PaymentRecordStatusSuccess   PaymentRecordStatus = "success"
	PaymentRecordStatusFailed    PaymentRecordStatus = "failed"
	PaymentRecordStatusCancelled PaymentRecordStatus = "cancelled"
)

// Payment is one gateway checkout session. TxRef is the transaction
// reference shared with Chapa, so the webhook can address the row directly.
type Payment struct {
	TxRef         string              `gorm:"column:tx_ref;primaryKey;size:128"`
	OrderID       uint64              `gorm:"column:order_id;index;not null"`
	BuyerUID      string              `gorm:"column:buyer_uid;size:128;index;not null"`
	Provider      string              `gorm:"size:32;not null"`
	Status        PaymentRecordStatus `gorm:"size:32;not null;index"`
	Amount        decimal.Decimal     `gorm:"type:decimal(12,2);not null"`
	Currency      string              `gorm:"size:8;not null"`
	CheckoutURL   string              `gorm:"column:checkout_url;size:512"`
	TransactionID string              `gorm:"column:transaction_id;size:128"`
	ProviderMeta  string              `gorm:"column:provider_meta;type:text"`
	CreatedAt     time.Time           `gorm:"autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"autoUpdateTime"`
}

func (Payment) TableName() string {
	return "payments"
}
