package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	ProductStatusActive ProductStatus = "active"
	ProductStatusSold   ProductStatus = "sold"
	ProductStatusHidden ProductStatus = "hidden"
)

type Product struct {
	ID           uint64          `gorm:"primaryKey;autoIncrement"`
	SellerUID    string          `gorm:"column:seller_uid;size:128;index;not null"`
	SellerName   string          `gorm:"column:seller_name;size:120"`
	Title        string          `gorm:"size:120;not null"`
	Description  string          `gorm:"type:text;not null"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CategorySlug string          `gorm:"column:category_slug;size:120;index"`
	Location     string          `gorm:"size:120;index"`
	ImageURL     *string         `gorm:"size:512"`
	Status       ProductStatus   `gorm:"size:32;not null;default:active"`
	CreatedAt    time.Time       `gorm:"autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime"`
}

func (Product) TableName() string {
	return "products"
}
