package model

import (
	"time"
)

type PurchaseRequest struct {
	ID             string    `gorm:"type:varchar(64);primaryKey"`
	BuyerCompanyID string    `gorm:"type:varchar(64);not null;index:idx_buyer" json:"buyer_company_id"`
	Title          string    `gorm:"type:varchar(255);not null" json:"title"`
	Category       string    `gorm:"type:varchar(100)" json:"category"`
	Status         int8      `gorm:"not null;default:0" json:"status"` // 0:开放, 1:已关闭, 2:已成交
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// 关联关系
	Buyer  Company `gorm:"foreignKey:BuyerCompanyID;references:ID"`
	Quotes []Quote `gorm:"foreignKey:RequestID;references:ID"`
}

func (PurchaseRequest) TableName() string {
	return "purchase_requests"
}
