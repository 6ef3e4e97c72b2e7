package model

import (
	"time"
)

// DeliveryOrder 由订单域通过 canal 同步过来，本服务只读。
type DeliveryOrder struct {
	ID              string    `gorm:"type:varchar(64);primaryKey"`
	QuoteID         string    `gorm:"type:varchar(64);not null" json:"quote_id"`
	BuyerCompanyID  string    `gorm:"type:varchar(64);not null" json:"buyer_company_id"`
	SellerCompanyID string    `gorm:"type:varchar(64);not null" json:"seller_company_id"`
	Status          int8      `gorm:"not null;default:0" json:"status"`
	AssignedAt      time.Time `json:"assigned_at"`
}

func (DeliveryOrder) TableName() string {
	return "delivery_orders"
}
