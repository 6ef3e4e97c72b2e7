package kafka

import (
	"Procura/internal/model"
	"Procura/internal/pkg/es"
	"Procura/internal/repository"
	"context"
	"fmt"
	log "log/slog"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"
)

// CompanyHandler 消费 canal 同步的公司表变更，同时维护本地读模型和搜索索引
type CompanyHandler struct {
	companyESRepo es.CompanyRepo
	companyDBRepo repository.CompanyRepo
}

func NewCompanyHandler(companyESRepo es.CompanyRepo, companyDBRepo repository.CompanyRepo) *CompanyHandler {
	return &CompanyHandler{
		companyESRepo: companyESRepo,
		companyDBRepo: companyDBRepo,
	}
}

func (s *CompanyHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("company consumer setup")
	return nil
}

func (s *CompanyHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("company consumer cleanup")
	return nil
}

func (s *CompanyHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-company consume claim")
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("topic-company process batch error", "err", err)
		return err
	}
	log.Info("topic-company consume claim end")
	return nil
}

func (s *CompanyHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	canalMsg, err := ToCanalMessage(msg, "companies")
	if err != nil {
		return err
	}

	row := canalMsg.Data[0]
	id := StrToString(row["id"])
	if id == "" {
		return fmt.Errorf("company canal message missing id")
	}

	if canalMsg.Type == DELETE || StrToBool(row["is_deleted"]) {
		if err := s.companyDBRepo.DeleteCompany(ctx, id); err != nil {
			return errors.Wrap(err, "下线公司读模型失败")
		}
		return s.companyESRepo.DeleteCompany(ctx, id)
	}

	company := &model.Company{
		ID:        id,
		Name:      StrToString(row["name"]),
		AvatarURL: StrToString(row["avatar_url"]),
		Industry:  StrToString(row["industry"]),
		Region:    StrToString(row["region"]),
		Verified:  StrToBool(row["verified"]),
		CreatedAt: StrToTime(row["created_at"]),
	}
	if err := s.companyDBRepo.UpsertCompany(ctx, company); err != nil {
		return errors.Wrap(err, "更新公司读模型失败")
	}

	doc := &es.CompanyES{
		ID:        company.ID,
		Name:      company.Name,
		AvatarURL: company.AvatarURL,
		Industry:  company.Industry,
		Region:    company.Region,
		Verified:  company.Verified,
		CreatedAt: company.CreatedAt,
	}

	return s.companyESRepo.IndexCompany(ctx, doc, canalMsg.TS)
}
