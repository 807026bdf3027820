package model

import "time"

type Review struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID   uint64    `gorm:"column:product_id;index;not null" json:"productId"`
	OrderID     uint64    `gorm:"column:order_id;uniqueIndex:uk_reviews_order_reviewer;not null" json:"orderId"`
	ReviewerUID string    `gorm:"column:reviewer_uid;size:128;uniqueIndex:uk_reviews_order_reviewer;not null" json:"reviewerUid"`
	Rating      int       `gorm:"not null" json:"rating"`
	Comment     string    `gorm:"type:text" json:"comment"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Review) TableName() string {
	return "reviews"
}
