package kafka

import (
	"Procura/internal/model"
	"Procura/internal/pkg/es"
	"context"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/require"
)

type memESRepo struct {
	docs map[string]*es.CompanyES
}

func (r *memESRepo) SearchCompanies(context.Context, string, int, int) ([]*es.CompanyES, error) {
	return nil, nil
}

func (r *memESRepo) IndexCompany(_ context.Context, company *es.CompanyES, _ int64) error {
	r.docs[company.ID] = company
	return nil
}

func (r *memESRepo) DeleteCompany(_ context.Context, id string) error {
	delete(r.docs, id)
	return nil
}

func companyMsg(eventType, isDeleted string) *sarama.ConsumerMessage {
	return &sarama.ConsumerMessage{Value: []byte(`{
		"table": "companies",
		"type": "` + eventType + `",
		"ts": 1700000000001,
		"data": [{"id": "c1", "name": "宏达五金", "industry": "五金", "region": "华东", "verified": "1", "is_deleted": "` + isDeleted + `", "created_at": "2026-01-02 09:00:00"}]
	}`)}
}

func Test_CompanyHandler_Syncs_DB_And_Index(t *testing.T) {
	r := require.New(t)

	esRepo := &memESRepo{docs: map[string]*es.CompanyES{}}
	dbRepo := &memCompanyRepo{companies: map[string]*model.Company{}}
	h := NewCompanyHandler(esRepo, dbRepo)

	r.NoError(h.logic(context.Background(), companyMsg(INSERT, "0")))

	// 变更先落本地读模型，再进搜索索引
	company, err := dbRepo.GetCompanyById(context.Background(), "c1")
	r.NoError(err)
	r.NotNil(company)
	r.Equal("宏达五金", company.Name)
	r.True(company.Verified)

	doc := esRepo.docs["c1"]
	r.NotNil(doc)
	r.Equal("五金", doc.Industry)

	// 软删除同时下线两处
	r.NoError(h.logic(context.Background(), companyMsg(UPDATE, "1")))
	company, err = dbRepo.GetCompanyById(context.Background(), "c1")
	r.NoError(err)
	r.Nil(company)
	r.Nil(esRepo.docs["c1"])
}
