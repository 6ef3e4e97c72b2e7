package dto

// SearchCompanyReq 公司搜索请求
type SearchCompanyReq struct {
	Query    string `form:"query" binding:"required"`
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=20"`
}

// CompanyDTO 公司简要信息
type CompanyDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	Industry  string `json:"industry,omitempty"`
	Region    string `json:"region,omitempty"`
	Verified  bool   `json:"verified"`
}
