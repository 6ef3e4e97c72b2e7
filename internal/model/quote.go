package model

import (
	"time"
)

type Quote struct {
	ID              string    `gorm:"type:varchar(64);primaryKey"`
	RequestID       string    `gorm:"type:varchar(64);not null;index:idx_request" json:"request_id"`
	SellerCompanyID string    `gorm:"type:varchar(64);not null;index:idx_seller" json:"seller_company_id"`
	PriceCents      int64     `gorm:"not null;default:0" json:"price_cents"`
	Currency        string    `gorm:"type:varchar(8);default:'CNY'" json:"currency"`
	Status          int8      `gorm:"not null;default:0" json:"status"` // 0:待处理, 1:已接受, 2:已拒绝
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Seller Company `gorm:"foreignKey:SellerCompanyID;references:ID"`
}

func (Quote) TableName() string {
	return "quotes"
}
