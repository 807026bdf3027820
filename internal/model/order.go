package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	// PaymentStatusInitiated marks a checkout session in flight so a second
	// session cannot be opened for the same order.
	PaymentStatusInitiated PaymentStatus = "initiated"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

type DeliveryMethod string

const (
	DeliveryMethodPickup   DeliveryMethod = "pickup"
	DeliveryMethodShipping DeliveryMethod = "shipping"
)

type Order struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement"`
	BuyerUID   string `gorm:"column:buyer_uid;size:128;index;not null"`
	BuyerName  string `gorm:"column:buyer_name;size:120"`
	SellerUID  string `gorm:"column:seller_uid;size:128;index;not null"`
	SellerName string `gorm:"column:seller_name;size:120"`

	Items []OrderItem `gorm:"foreignKey:OrderID"`

	TotalAmount    decimal.Decimal `gorm:"column:total_amount;type:decimal(12,2);not null"`
	ShippingCost   decimal.Decimal `gorm:"column:shipping_cost;type:decimal(12,2);not null"`
	DeliveryMethod DeliveryMethod  `gorm:"column:delivery_method;size:32;not null"`
	Address        string          `gorm:"type:text"`
	RecipientName  string          `gorm:"column:recipient_name;size:120"`

	Status        OrderStatus   `gorm:"column:status;size:32;not null;index"`
	PaymentStatus PaymentStatus `gorm:"column:payment_status;size:32;not null;index"`

	SessionRef    string `gorm:"column:session_ref;size:128;index"`
	TransactionID string `gorm:"column:transaction_id;size:128"`
	TransferID    string `gorm:"column:transfer_id;size:128"`

	EscrowReleased bool `gorm:"column:escrow_released;not null;default:false"`

	// Seller payout details copied at intake so release does not depend on
	// the profile staying unchanged between purchase and delivery.
	SellerBankAccountName   string `gorm:"column:seller_bank_account_name;size:120"`
	SellerBankAccountNumber string `gorm:"column:seller_bank_account_number;size:64"`
	SellerBankCode          string `gorm:"column:seller_bank_code;size:16"`

	CancelledAt *time.Time `gorm:"column:cancelled_at"`
	ShippedAt   *time.Time `gorm:"column:shipped_at"`
	DeliveredAt *time.Time `gorm:"column:delivered_at"`
	CreatedAt   time.Time  `gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime"`
}

func (Order) TableName() string {
	return "orders"
}

func (o *Order) HasSellerPayoutDetails() bool {
	return o.SellerBankAccountName != "" && o.SellerBankAccountNumber != "" && o.SellerBankCode != ""
}

type OrderItem struct {
	ID           uint64          `gorm:"primaryKey;autoIncrement"`
	OrderID      uint64          `gorm:"column:order_id;index;not null"`
	ProductID    uint64          `gorm:"column:product_id;index;not null"`
	Title        string          `gorm:"size:120;not null"`
	Quantity     int             `gorm:"not null"`
	UnitPrice    decimal.Decimal `gorm:"column:unit_price;type:decimal(12,2);not null"`
	ThumbnailURL *string         `gorm:"column:thumbnail_url;size:512"`
	CreatedAt    time.Time       `gorm:"autoCreateTime"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
