package es

import "time"

// CompanyES 对应 company_index 的文档结构
type CompanyES struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url"`
	Industry  string    `json:"industry"`
	Region    string    `json:"region"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}
