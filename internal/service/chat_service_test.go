package service

import (
	"context"
	"testing"
	"time"

	"Procura/internal/chat"
	"Procura/internal/model"

	"github.com/stretchr/testify/require"
)

type stubRequestRepo struct {
	requests map[string]*model.PurchaseRequest
	quotes   map[string][]*model.Quote
}

func (s *stubRequestRepo) GetRequestById(_ context.Context, id string) (*model.PurchaseRequest, error) {
	return s.requests[id], nil
}

func (s *stubRequestRepo) GetQuoteById(_ context.Context, id string) (*model.Quote, error) {
	for _, list := range s.quotes {
		for _, quote := range list {
			if quote.ID == id {
				return quote, nil
			}
		}
	}
	return nil, nil
}

func (s *stubRequestRepo) GetQuotesByRequestId(_ context.Context, requestID string) ([]*model.Quote, error) {
	return s.quotes[requestID], nil
}

func Test_GetRequestQuotes(t *testing.T) {
	r := require.New(t)

	created := time.Date(2026, 2, 1, 10, 0, 0, 0, time.Local)
	repo := &stubRequestRepo{
		requests: map[string]*model.PurchaseRequest{
			"req1": {ID: "req1", BuyerCompanyID: "buyer1", Title: "采购不锈钢板材"},
		},
		quotes: map[string][]*model.Quote{
			"req1": {
				{
					ID:              "q1",
					RequestID:       "req1",
					SellerCompanyID: "seller1",
					PriceCents:      125000,
					Currency:        "CNY",
					CreatedAt:       created,
					Seller:          model.Company{ID: "seller1", Name: "卖家公司", Region: "华东", Verified: true},
				},
			},
		},
	}
	svc := NewChatService(nil, nil, repo, nil)

	list, err := svc.GetRequestQuotes(context.Background(), chat.Identity{ID: "buyer1"}, "req1")
	r.NoError(err)
	r.Len(list, 1)
	r.Equal("q1", list[0].QuoteID)
	r.Equal(int64(125000), list[0].PriceCents)
	r.Equal(created, list[0].CreatedAt)
	r.Equal("卖家公司", list[0].Seller.Name)
	r.True(list[0].Seller.Verified)
}

func Test_GetRequestQuotes_Guards(t *testing.T) {
	r := require.New(t)

	repo := &stubRequestRepo{requests: map[string]*model.PurchaseRequest{}, quotes: map[string][]*model.Quote{}}
	svc := NewChatService(nil, nil, repo, nil)

	_, err := svc.GetRequestQuotes(context.Background(), chat.Identity{}, "req1")
	r.ErrorIs(err, chat.ErrNotSignedIn)

	_, err = svc.GetRequestQuotes(context.Background(), chat.Identity{ID: "buyer1"}, "")
	r.ErrorIs(err, ErrParamInvalid)

	_, err = svc.GetRequestQuotes(context.Background(), chat.Identity{ID: "buyer1"}, "req-missing")
	r.ErrorIs(err, ErrRequestNotFound)
}
