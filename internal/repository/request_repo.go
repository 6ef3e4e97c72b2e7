package repository

import (
	"Procura/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

type RequestRepo interface {
	GetRequestById(ctx context.Context, id string) (*model.PurchaseRequest, error)
	GetQuoteById(ctx context.Context, id string) (*model.Quote, error)
	GetQuotesByRequestId(ctx context.Context, requestID string) ([]*model.Quote, error)
}

type RequestRepoImpl struct {
	db *gorm.DB
}

func NewRequestRepo(db *gorm.DB) RequestRepo {
	return &RequestRepoImpl{db: db}
}

func (s *RequestRepoImpl) GetRequestById(ctx context.Context, id string) (*model.PurchaseRequest, error) {
	request := &model.PurchaseRequest{}
	result := s.db.WithContext(ctx).
		Preload("Buyer").
		First(request, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return request, nil
}

func (s *RequestRepoImpl) GetQuoteById(ctx context.Context, id string) (*model.Quote, error) {
	quote := &model.Quote{}
	result := s.db.WithContext(ctx).
		Preload("Seller").
		First(quote, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return quote, nil
}

func (s *RequestRepoImpl) GetQuotesByRequestId(ctx context.Context, requestID string) ([]*model.Quote, error) {
	quotes := make([]*model.Quote, 0)
	result := s.db.WithContext(ctx).
		Preload("Seller").
		Where("request_id = ?", requestID).
		Order("created_at DESC").
		Find(&quotes)
	if result.Error != nil {
		return nil, result.Error
	}
	return quotes, nil
}
