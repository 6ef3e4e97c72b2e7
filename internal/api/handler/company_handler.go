package handler

import (
	"Procura/internal/api/dto"
	"Procura/internal/pkg/response"
	"Procura/internal/service"

	"github.com/gin-gonic/gin"
)

type CompanyHandler struct {
	companyService service.CompanyService
}

func NewCompanyHandler(companyService service.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

// Search 公司搜索
func (s *CompanyHandler) Search(c *gin.Context) {
	var req dto.SearchCompanyReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, err)
		return
	}

	res, err := s.companyService.SearchCompanies(c, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetSimpleInfo 公司简要信息
func (s *CompanyHandler) GetSimpleInfo(c *gin.Context) {
	res, err := s.companyService.GetCompanySimpleInfo(c, c.Param("company_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if res == nil {
		response.Error(c, service.ErrCompanyNotFound)
		return
	}
	response.Success(c, res)
}
