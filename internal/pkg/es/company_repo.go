package es

import (
	"context"
	"errors"
	log "log/slog"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/versiontype"
	"github.com/goccy/go-json"
)

const MaxSearchDepth = 400

type CompanyRepo interface {
	SearchCompanies(ctx context.Context, queryText string, from, size int) ([]*CompanyES, error)
	IndexCompany(ctx context.Context, company *CompanyES, version int64) error
	DeleteCompany(ctx context.Context, id string) error
}

type CompanyRepoImpl struct {
	client *elasticsearch.TypedClient
}

func NewCompanyRepo(client *elasticsearch.TypedClient) CompanyRepo {
	return &CompanyRepoImpl{client: client}
}

func (s *CompanyRepoImpl) SearchCompanies(ctx context.Context, queryText string, from, size int) ([]*CompanyES, error) {
	if from >= MaxSearchDepth {
		return []*CompanyES{}, nil
	}

	boolQuery := &types.BoolQuery{
		Must: []types.Query{{
			MultiMatch: &types.MultiMatchQuery{
				Query:  queryText,
				Fields: []string{"name^3", "industry", "region"},
			},
		}},
	}

	resp, err := s.client.Search().
		Index(CompanyIndex).
		Query(&types.Query{Bool: boolQuery}).
		From(from).
		Size(size).
		Do(ctx)
	if err != nil {
		return nil, err
	}

	companies := make([]*CompanyES, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		company := &CompanyES{}
		if err := json.Unmarshal(hit.Source_, company); err != nil {
			log.Warn("Failed to unmarshal company document", "err", err)
			continue
		}
		companies = append(companies, company)
	}

	return companies, nil
}

func (s *CompanyRepoImpl) IndexCompany(ctx context.Context, company *CompanyES, version int64) error {
	_, err := s.client.Index(CompanyIndex).
		Id(company.ID).
		Document(company).
		Version(strconv.FormatInt(version, 10)).
		VersionType(versiontype.External).
		Do(ctx)

	if err != nil {
		var e *types.ElasticsearchError
		if errors.As(err, &e) {
			if e.Status == ConflictCode {
				log.Warn("Version conflict detected, skipping old data",
					"company_id", company.ID,
					"version", version)
				return nil
			}
		}
		return err
	}

	return nil
}

func (s *CompanyRepoImpl) DeleteCompany(ctx context.Context, id string) error {
	_, err := s.client.Delete(CompanyIndex, id).Do(ctx)
	if err != nil {
		var e *types.ElasticsearchError
		if errors.As(err, &e) {
			if e.Status == NotFoundCode {
				log.Warn("Company already deleted or not found in ES", "id", id)
				return nil
			}
		}
		return err
	}
	return nil
}
