package model

import (
	"time"
)

type Company struct {
	ID        string `gorm:"type:varchar(64);primaryKey"`
	Name      string `gorm:"type:varchar(255);not null"`
	AvatarURL string `gorm:"type:varchar(512)" json:"avatar_url"`
	Industry  string `gorm:"type:varchar(100);index:idx_industry" json:"industry"`
	Region    string `gorm:"type:varchar(100)" json:"region"`
	Verified  bool   `gorm:"type:tinyint(1);default:0" json:"verified"`
	IsDeleted bool   `gorm:"type:tinyint(1);not null;default:0" json:"is_deleted"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Company) TableName() string {
	return "companies"
}
