package dto

import "time"

// ResolveConversationReq 打开与某公司的会话，没有则创建
type ResolveConversationReq struct {
	CompanyID string `json:"company_id" binding:"required"`
	RequestID string `json:"request_id"`
	QuoteID   string `json:"quote_id"`
}

// SendMessageReq 发送消息请求体
type SendMessageReq struct {
	ConversationID string `json:"conversation_id"`
	Content        string `json:"content"`
}

// MarkAsReadReq 标记为已读请求
type MarkAsReadReq struct {
	ConversationID string `json:"conversation_id" binding:"required"`
}

// QuoteDTO 采购需求下的报价列表项，供买家从报价发起会话
type QuoteDTO struct {
	QuoteID    string     `json:"quote_id"`
	RequestID  string     `json:"request_id"`
	PriceCents int64      `json:"price_cents"`
	Currency   string     `json:"currency"`
	Status     int8       `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	Seller     CompanyDTO `json:"seller"`
}

// ParticipantDTO 会话参与者
type ParticipantDTO struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Role      string `json:"role"`
}

// ConversationDTO 会话列表项响应
type ConversationDTO struct {
	ConversationID string           `json:"conversation_id"`
	Type           string           `json:"type"`
	Participants   []ParticipantDTO `json:"participants"`
	RequestID      string           `json:"request_id,omitempty"`
	QuoteID        string           `json:"quote_id,omitempty"`
	LastActivity   time.Time        `json:"last_activity"`
	LastMsgContent string           `json:"last_msg_content,omitempty"`
	LastSenderID   string           `json:"last_sender_id,omitempty"`
	UnreadCount    int              `json:"unread_count"`
}

// MessageDTO 消息明细响应
type MessageDTO struct {
	ID             string    `json:"id,omitempty"`
	ConversationID string    `json:"conversation_id,omitempty"`
	SenderID       string    `json:"sender_id"`
	Content        string    `json:"content"`
	Status         string    `json:"status"`
	SentAt         time.Time `json:"sent_at"`
}

// UnreadSummaryDTO 未读角标
type UnreadSummaryDTO struct {
	Total    int `json:"total"`
	Delivery int `json:"delivery"`
}
