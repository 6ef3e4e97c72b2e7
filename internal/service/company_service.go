package service

import (
	"Procura/internal/api/dto"
	"Procura/internal/pkg/consts"
	"Procura/internal/pkg/es"
	"Procura/internal/pkg/redis"
	"Procura/internal/repository"
	"context"
	log "log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/jinzhu/copier"
)

const companyCacheTTL = 10 * time.Minute

// CompanyService 公司目录服务接口定义
type CompanyService interface {
	SearchCompanies(ctx context.Context, req *dto.SearchCompanyReq) ([]*dto.CompanyDTO, error)
	GetCompanySimpleInfo(ctx context.Context, id string) (*dto.CompanyDTO, error)
}

type companyServiceImpl struct {
	companyRepo   repository.CompanyRepo
	companyESRepo es.CompanyRepo
}

func NewCompanyService(companyRepo repository.CompanyRepo, companyESRepo es.CompanyRepo) CompanyService {
	return &companyServiceImpl{
		companyRepo:   companyRepo,
		companyESRepo: companyESRepo,
	}
}

// SearchCompanies 公司搜索，走 Elasticsearch
func (s *companyServiceImpl) SearchCompanies(ctx context.Context, req *dto.SearchCompanyReq) ([]*dto.CompanyDTO, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 50 {
		req.PageSize = 20
	}

	from := (req.Page - 1) * req.PageSize
	hits, err := s.companyESRepo.SearchCompanies(ctx, req.Query, from, req.PageSize)
	if err != nil {
		return nil, err
	}

	list := make([]*dto.CompanyDTO, 0, len(hits))
	for _, hit := range hits {
		item := &dto.CompanyDTO{}
		if err := copier.Copy(item, hit); err != nil {
			return nil, err
		}
		list = append(list, item)
	}
	return list, nil
}

// GetCompanySimpleInfo 公司简要信息，带 Redis 旁路缓存
func (s *companyServiceImpl) GetCompanySimpleInfo(ctx context.Context, id string) (*dto.CompanyDTO, error) {
	cacheKey := consts.CompanySimpleInfoKey + id

	if cached, err := redis.GetValue(ctx, cacheKey); err == nil && cached != "" {
		info := &dto.CompanyDTO{}
		if err := json.Unmarshal([]byte(cached), info); err == nil {
			return info, nil
		}
	}

	company, err := s.companyRepo.GetCompanyById(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, nil
	}

	info := &dto.CompanyDTO{}
	if err := copier.Copy(info, company); err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(info); err == nil {
		if err := redis.SetWithExpiration(ctx, cacheKey, string(raw), companyCacheTTL); err != nil {
			log.WarnContext(ctx, "公司信息缓存写入失败", "id", id, "err", err)
		}
	}

	return info, nil
}
