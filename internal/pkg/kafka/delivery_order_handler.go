package kafka

import (
	"Procura/internal/chat"
	"Procura/internal/model"
	"Procura/internal/repository"
	"context"
	"fmt"
	log "log/slog"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"
)

// DeliveryOrderHandler 消费订单指派事件，为每个订单开一条履约会话。
// 会话 ID 由订单号推导，重复投递会命中存储层去重。
type DeliveryOrderHandler struct {
	store       chat.Store
	companyRepo repository.CompanyRepo
}

func NewDeliveryOrderHandler(store chat.Store, companyRepo repository.CompanyRepo) *DeliveryOrderHandler {
	return &DeliveryOrderHandler{
		store:       store,
		companyRepo: companyRepo,
	}
}

func (s *DeliveryOrderHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("delivery order consumer setup")
	return nil
}

func (s *DeliveryOrderHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("delivery order consumer cleanup")
	return nil
}

func (s *DeliveryOrderHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-delivery-order consume claim")
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("topic-delivery-order process batch error", "err", err)
		return err
	}
	log.Info("topic-delivery-order consume claim end")
	return nil
}

func (s *DeliveryOrderHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	canalMsg, err := ToCanalMessage(msg, "delivery_orders")
	if err != nil {
		return err
	}
	if canalMsg.Type != INSERT {
		return nil
	}

	row := canalMsg.Data[0]
	orderID := StrToString(row["id"])
	buyerID := StrToString(row["buyer_company_id"])
	sellerID := StrToString(row["seller_company_id"])
	if orderID == "" || buyerID == "" || sellerID == "" {
		return fmt.Errorf("delivery order canal message missing fields: order=%q", orderID)
	}

	buyer, seller := s.lookupParticipants(ctx, buyerID, sellerID)
	conv := &chat.Conversation{
		ID:   chat.DeliveryPrefix + orderID,
		Type: chat.TypeDelivery,
		Participants: []chat.Participant{
			participantOf(buyer, buyerID, chat.RoleBuyer),
			participantOf(seller, sellerID, chat.RoleSeller),
		},
		UnreadCount: map[string]int{},
	}

	id, err := s.store.CreateConversation(ctx, conv)
	if err != nil {
		return errors.Wrap(err, "创建履约会话失败")
	}

	log.Info("Delivery conversation ready", "conversation_id", id, "order_id", orderID)
	return nil
}

// lookupParticipants 一次性批量查出买卖双方公司，查询失败只降级不中断
func (s *DeliveryOrderHandler) lookupParticipants(ctx context.Context, buyerID, sellerID string) (buyer, seller *model.Company) {
	companies, err := s.companyRepo.GetCompanyByIds(ctx, []string{buyerID, sellerID})
	if err != nil {
		log.Warn("Company lookup failed, using bare participants", "buyer_id", buyerID, "seller_id", sellerID, "err", err)
		return nil, nil
	}
	for _, company := range companies {
		switch company.ID {
		case buyerID:
			buyer = company
		case sellerID:
			seller = company
		}
	}
	return buyer, seller
}

// participantOf 补全公司展示信息，查不到时退化为仅含 ID 的条目
func participantOf(company *model.Company, companyID, role string) chat.Participant {
	if company == nil {
		return chat.Participant{UserID: companyID, Role: role}
	}
	return chat.Participant{
		UserID:    company.ID,
		Name:      company.Name,
		AvatarURL: company.AvatarURL,
		Role:      role,
	}
}
