package kafka

import (
	"Procura/internal/chat"
	"Procura/internal/model"
	"context"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/require"
)

// memConvStore 仅覆盖消费者用到的建会话语义，按 _id 去重
type memConvStore struct {
	conversations map[string]*chat.Conversation
	creates       int
}

func newMemConvStore() *memConvStore {
	return &memConvStore{conversations: map[string]*chat.Conversation{}}
}

var _ chat.Store = (*memConvStore)(nil)

func (s *memConvStore) CreateConversation(_ context.Context, conv *chat.Conversation) (string, error) {
	s.creates++
	if existing, ok := s.conversations[conv.ID]; ok {
		return existing.ID, nil
	}
	s.conversations[conv.ID] = conv
	return conv.ID, nil
}

func (s *memConvStore) GetConversations(context.Context, string) ([]*chat.Conversation, error) {
	return nil, nil
}

func (s *memConvStore) SubscribeConversations(context.Context, string, func([]*chat.Conversation)) (chat.Unsubscribe, error) {
	return func() {}, nil
}

func (s *memConvStore) GetMessages(context.Context, string) ([]*chat.Message, error) {
	return nil, nil
}

func (s *memConvStore) GetDeliveryMessages(context.Context, string) ([]*chat.Message, error) {
	return nil, nil
}

func (s *memConvStore) SubscribeMessages(context.Context, string, func([]*chat.Message)) (chat.Unsubscribe, error) {
	return func() {}, nil
}

func (s *memConvStore) SubscribeDeliveryMessages(context.Context, string, func([]*chat.Message)) (chat.Unsubscribe, error) {
	return func() {}, nil
}

func (s *memConvStore) SendMessage(context.Context, string, string, string) error { return nil }

func (s *memConvStore) SendDeliveryMessage(context.Context, string, string, string) error { return nil }

func (s *memConvStore) MarkMessagesAsRead(context.Context, string, string) error { return nil }

func (s *memConvStore) MarkDeliveryMessagesAsRead(context.Context, string, string) error { return nil }

type memCompanyRepo struct {
	companies map[string]*model.Company
}

func (r *memCompanyRepo) GetCompanyById(_ context.Context, id string) (*model.Company, error) {
	return r.companies[id], nil
}

func (r *memCompanyRepo) GetCompanyByIds(_ context.Context, ids []string) ([]*model.Company, error) {
	out := make([]*model.Company, 0, len(ids))
	for _, id := range ids {
		if company, ok := r.companies[id]; ok {
			out = append(out, company)
		}
	}
	return out, nil
}

func (r *memCompanyRepo) UpsertCompany(_ context.Context, company *model.Company) error {
	r.companies[company.ID] = company
	return nil
}

func (r *memCompanyRepo) DeleteCompany(_ context.Context, id string) error {
	delete(r.companies, id)
	return nil
}

func deliveryOrderMsg(orderID string) *sarama.ConsumerMessage {
	return &sarama.ConsumerMessage{Value: []byte(`{
		"table": "delivery_orders",
		"type": "INSERT",
		"ts": 1700000000000,
		"data": [{"id": "` + orderID + `", "buyer_company_id": "buyer1", "seller_company_id": "seller1"}]
	}`)}
}

func Test_DeliveryOrderHandler_Redelivery_Is_Idempotent(t *testing.T) {
	r := require.New(t)

	store := newMemConvStore()
	repo := &memCompanyRepo{companies: map[string]*model.Company{
		"buyer1":  {ID: "buyer1", Name: "买家公司", AvatarURL: "https://cdn/b.png"},
		"seller1": {ID: "seller1", Name: "卖家公司"},
	}}
	h := NewDeliveryOrderHandler(store, repo)

	r.NoError(h.logic(context.Background(), deliveryOrderMsg("order-7")))

	// Kafka 重投同一条指派事件不得报错，否则分区会被无限重试卡死
	r.NoError(h.logic(context.Background(), deliveryOrderMsg("order-7")))

	r.Equal(2, store.creates)
	r.Len(store.conversations, 1)

	conv := store.conversations[chat.DeliveryPrefix+"order-7"]
	r.NotNil(conv)
	r.Equal(chat.TypeDelivery, conv.Type)
	r.Equal("买家公司", conv.Participant("buyer1").Name)
	r.Equal(chat.RoleSeller, conv.Participant("seller1").Role)
}

func Test_DeliveryOrderHandler_Missing_Company_Degrades(t *testing.T) {
	r := require.New(t)

	store := newMemConvStore()
	h := NewDeliveryOrderHandler(store, &memCompanyRepo{companies: map[string]*model.Company{}})

	r.NoError(h.logic(context.Background(), deliveryOrderMsg("order-8")))

	conv := store.conversations[chat.DeliveryPrefix+"order-8"]
	r.NotNil(conv)
	// 公司查不到时退化为仅含 ID 的参与者，指派事件照常落会话
	r.Equal("", conv.Participant("buyer1").Name)
	r.Equal(chat.RoleBuyer, conv.Participant("buyer1").Role)
}
