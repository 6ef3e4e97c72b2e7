package repository

import (
	"Procura/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

type CompanyRepo interface {
	GetCompanyById(ctx context.Context, id string) (*model.Company, error)
	GetCompanyByIds(ctx context.Context, ids []string) ([]*model.Company, error)
	UpsertCompany(ctx context.Context, company *model.Company) error
	DeleteCompany(ctx context.Context, id string) error
}

type CompanyRepoImpl struct {
	db *gorm.DB
}

func NewCompanyRepo(db *gorm.DB) CompanyRepo {
	return &CompanyRepoImpl{db: db}
}

func (s *CompanyRepoImpl) GetCompanyById(ctx context.Context, id string) (*model.Company, error) {
	company := &model.Company{}
	result := s.db.WithContext(ctx).
		Where("id = ? AND is_deleted = 0", id).
		First(company)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return company, nil
}

func (s *CompanyRepoImpl) GetCompanyByIds(ctx context.Context, ids []string) ([]*model.Company, error) {
	companies := make([]*model.Company, 0)
	result := s.db.WithContext(ctx).
		Where("id IN ? AND is_deleted = 0", ids).
		Find(&companies)
	if result.Error != nil {
		return nil, result.Error
	}
	return companies, nil
}

func (s *CompanyRepoImpl) UpsertCompany(ctx context.Context, company *model.Company) error {
	return s.db.WithContext(ctx).Save(company).Error
}

func (s *CompanyRepoImpl) DeleteCompany(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).
		Model(&model.Company{}).
		Where("id = ?", id).
		Update("is_deleted", true).Error
}
