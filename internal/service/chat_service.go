package service

import (
	"Procura/internal/api/dto"
	"Procura/internal/chat"
	"Procura/internal/model"
	"Procura/internal/pkg/consts"
	"Procura/internal/pkg/identity"
	"Procura/internal/repository"
	"context"
	log "log/slog"
	"strings"
)

// ChatService 会话服务接口定义
type ChatService interface {
	GetConversationList(ctx context.Context, user chat.Identity) ([]*dto.ConversationDTO, error)
	ResolveConversation(ctx context.Context, user chat.Identity, req *dto.ResolveConversationReq) (string, error)
	GetMessages(ctx context.Context, user chat.Identity, conversationID string) ([]*dto.MessageDTO, error)
	SendMessage(ctx context.Context, user chat.Identity, req *dto.SendMessageReq) error
	MarkAsRead(ctx context.Context, user chat.Identity, conversationID string) error
	GetUnreadSummary(ctx context.Context, user chat.Identity) (*dto.UnreadSummaryDTO, error)
	GetRequestQuotes(ctx context.Context, user chat.Identity, requestID string) ([]*dto.QuoteDTO, error)
}

type chatServiceImpl struct {
	store       chat.Store
	companySvc  CompanyService
	requestRepo repository.RequestRepo
	identitySvc identity.Client
}

func NewChatService(store chat.Store, companySvc CompanyService, requestRepo repository.RequestRepo, identitySvc identity.Client) ChatService {
	return &chatServiceImpl{
		store:       store,
		companySvc:  companySvc,
		requestRepo: requestRepo,
		identitySvc: identitySvc,
	}
}

// GetConversationList 当前用户可见的会话列表，按可见性规则过滤
func (s *chatServiceImpl) GetConversationList(ctx context.Context, user chat.Identity) ([]*dto.ConversationDTO, error) {
	if user.ID == "" {
		return nil, chat.ErrNotSignedIn
	}

	convs, err := s.store.GetConversations(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	visible := chat.FilterVisible(convs, user.ID)
	list := make([]*dto.ConversationDTO, 0, len(visible))
	for _, conv := range visible {
		list = append(list, ToConversationDTO(conv, user.ID))
	}
	return list, nil
}

// ResolveConversation 复用已有的直聊会话，没有则建一条新的。
// 关联的采购需求与报价先过一遍一致性校验，脏引用不落库。
func (s *chatServiceImpl) ResolveConversation(ctx context.Context, user chat.Identity, req *dto.ResolveConversationReq) (string, error) {
	if user.ID == "" {
		return "", chat.ErrNotSignedIn
	}

	company, err := s.companySvc.GetCompanySimpleInfo(ctx, req.CompanyID)
	if err != nil {
		return "", err
	}
	if company == nil {
		return "", ErrCompanyNotFound
	}

	if err := s.checkLinkage(ctx, req.RequestID, req.QuoteID); err != nil {
		return "", err
	}

	// 参与者快照落库前用身份服务的最新展示信息替换凭证里的旧值
	if fresh, err := s.identitySvc.GetIdentity(ctx, user.ID); err == nil {
		user.Name = fresh.Name
		user.AvatarURL = fresh.AvatarURL
	} else {
		log.WarnContext(ctx, "拉取身份信息失败，沿用凭证快照", "userID", user.ID, "err", err)
	}

	syncer := chat.NewSynchronizer(s.store, user)
	syncer.LoadInitial(ctx)
	resolver := chat.NewResolver(s.store, syncer)

	return resolver.ResolveOrCreate(ctx, user, chat.Company{
		ID:        company.ID,
		Name:      company.Name,
		AvatarURL: company.AvatarURL,
	}, req.RequestID, req.QuoteID)
}

func (s *chatServiceImpl) checkLinkage(ctx context.Context, requestID, quoteID string) error {
	if requestID != "" {
		request, err := s.requestRepo.GetRequestById(ctx, requestID)
		if err != nil {
			return err
		}
		if request == nil {
			return ErrRequestNotFound
		}
	}
	if quoteID != "" {
		quote, err := s.requestRepo.GetQuoteById(ctx, quoteID)
		if err != nil {
			return err
		}
		if quote == nil {
			return ErrQuoteNotFound
		}
		if requestID != "" && quote.RequestID != requestID {
			return ErrQuoteMismatch
		}
	}
	return nil
}

// GetRequestQuotes 列出采购需求下的报价，买家据此从报价发起会话
func (s *chatServiceImpl) GetRequestQuotes(ctx context.Context, user chat.Identity, requestID string) ([]*dto.QuoteDTO, error) {
	if user.ID == "" {
		return nil, chat.ErrNotSignedIn
	}
	if requestID == "" {
		return nil, ErrParamInvalid
	}

	request, err := s.requestRepo.GetRequestById(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, ErrRequestNotFound
	}

	quotes, err := s.requestRepo.GetQuotesByRequestId(ctx, requestID)
	if err != nil {
		return nil, err
	}

	list := make([]*dto.QuoteDTO, 0, len(quotes))
	for _, quote := range quotes {
		list = append(list, ToQuoteDTO(quote))
	}
	return list, nil
}

// GetMessages 拉取会话消息，配送会话走独立集合
func (s *chatServiceImpl) GetMessages(ctx context.Context, user chat.Identity, conversationID string) ([]*dto.MessageDTO, error) {
	conv, err := s.findConversation(ctx, user, conversationID)
	if err != nil {
		return nil, err
	}

	var msgs []*chat.Message
	if conv.IsDelivery() {
		msgs, err = s.store.GetDeliveryMessages(ctx, conv.OrderID())
	} else {
		msgs, err = s.store.GetMessages(ctx, conv.ID)
	}
	if err != nil {
		return nil, err
	}

	list := make([]*dto.MessageDTO, 0, len(msgs))
	for _, m := range msgs {
		list = append(list, ToMessageDTO(m))
	}
	return list, nil
}

// SendMessage 发送消息
func (s *chatServiceImpl) SendMessage(ctx context.Context, user chat.Identity, req *dto.SendMessageReq) error {
	text := strings.TrimSpace(req.Content)
	if text == "" {
		return chat.ErrEmptyMessage
	}

	conv, err := s.findConversation(ctx, user, req.ConversationID)
	if err != nil {
		return err
	}

	if conv.IsDelivery() {
		return s.store.SendDeliveryMessage(ctx, conv.OrderID(), user.ID, text)
	}
	return s.store.SendMessage(ctx, conv.ID, user.ID, text)
}

// MarkAsRead 标记会话内所有消息已读
func (s *chatServiceImpl) MarkAsRead(ctx context.Context, user chat.Identity, conversationID string) error {
	conv, err := s.findConversation(ctx, user, conversationID)
	if err != nil {
		return err
	}

	if conv.IsDelivery() {
		return s.store.MarkDeliveryMessagesAsRead(ctx, conv.OrderID(), user.ID)
	}
	return s.store.MarkMessagesAsRead(ctx, conv.ID, user.ID)
}

// GetUnreadSummary 未读角标：全量与配送会话各记一份
func (s *chatServiceImpl) GetUnreadSummary(ctx context.Context, user chat.Identity) (*dto.UnreadSummaryDTO, error) {
	if user.ID == "" {
		return nil, chat.ErrNotSignedIn
	}

	convs, err := s.store.GetConversations(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	visible := chat.FilterVisible(convs, user.ID)

	return &dto.UnreadSummaryDTO{
		Total:    chat.TotalUnread(visible, user.ID),
		Delivery: chat.DeliveryUnread(visible, user.ID),
	}, nil
}

func (s *chatServiceImpl) findConversation(ctx context.Context, user chat.Identity, conversationID string) (*chat.Conversation, error) {
	if user.ID == "" {
		return nil, chat.ErrNotSignedIn
	}
	if conversationID == "" {
		return nil, chat.ErrNoConversation
	}

	convs, err := s.store.GetConversations(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	for _, conv := range chat.FilterVisible(convs, user.ID) {
		if conv.ID == conversationID {
			return conv, nil
		}
	}
	return nil, chat.ErrNotParticipant
}

func ToConversationDTO(conv *chat.Conversation, userID string) *dto.ConversationDTO {
	participants := make([]dto.ParticipantDTO, 0, len(conv.Participants))
	for _, p := range conv.Participants {
		item := dto.ParticipantDTO{
			UserID:    p.UserID,
			Name:      p.Name,
			AvatarURL: p.AvatarURL,
			Role:      p.Role,
		}
		// 历史数据可能缺展示信息，补默认占位
		if item.Name == "" {
			item.Name = consts.DefaultInitials
		}
		if item.AvatarURL == "" {
			item.AvatarURL = consts.DefaultAvatarURL
		}
		participants = append(participants, item)
	}

	d := &dto.ConversationDTO{
		ConversationID: conv.ID,
		Type:           conv.Type,
		Participants:   participants,
		RequestID:      conv.RequestID,
		QuoteID:        conv.QuoteID,
		LastActivity:   conv.LastActivity,
		UnreadCount:    conv.Unread(userID),
	}
	if conv.LastMessage != nil {
		d.LastMsgContent = conv.LastMessage.Content
		d.LastSenderID = conv.LastMessage.SenderID
	}
	return d
}

func ToQuoteDTO(q *model.Quote) *dto.QuoteDTO {
	return &dto.QuoteDTO{
		QuoteID:    q.ID,
		RequestID:  q.RequestID,
		PriceCents: q.PriceCents,
		Currency:   q.Currency,
		Status:     q.Status,
		CreatedAt:  q.CreatedAt,
		Seller: dto.CompanyDTO{
			ID:        q.Seller.ID,
			Name:      q.Seller.Name,
			AvatarURL: q.Seller.AvatarURL,
			Industry:  q.Seller.Industry,
			Region:    q.Seller.Region,
			Verified:  q.Seller.Verified,
		},
	}
}

func ToMessageDTO(m *chat.Message) *dto.MessageDTO {
	return &dto.MessageDTO{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Content:        m.Content,
		Status:         m.Status,
		SentAt:         chat.NormalizeTimestamp(m.Timestamp),
	}
}
