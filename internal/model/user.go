package model

import "time"

type User struct {
	UID         string  `gorm:"column:uid;primaryKey;size:128" json:"uid"`
	DisplayName string  `gorm:"column:display_name;size:120" json:"displayName"`
	Email       string  `gorm:"column:email;size:255;index" json:"email"`
	Phone       string  `gorm:"column:phone;size:32" json:"phone"`
	PhotoURL    *string `gorm:"column:photo_url;size:512" json:"photoUrl,omitempty"`
	FCMToken    string  `gorm:"column:fcm_token;size:512" json:"-"`

	// Seller payout profile; escrow release refuses to run without it.
	BankAccountName   string `gorm:"column:bank_account_name;size:120" json:"bankAccountName"`
	BankAccountNumber string `gorm:"column:bank_account_number;size:64" json:"bankAccountNumber"`
	BankCode          string `gorm:"column:bank_code;size:16" json:"bankCode"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) HasPayoutProfile() bool {
	return u.BankAccountName != "" && u.BankAccountNumber != "" && u.BankCode != ""
}
