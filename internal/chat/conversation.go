package chat

import (
	"strings"
	"time"
)

// 会话类型
const (
	TypeDirect   = "direct"
	TypeDelivery = "delivery"
)

// 参与者角色
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
)

// DeliveryPrefix 配送会话 ID 前缀，完整形态为 "delivery-" + 订单 ID
const DeliveryPrefix = "delivery-"

// Identity 当前登录用户身份，由外部鉴权层解析后显式传入各组件
type Identity struct {
	ID        string
	Name      string
	AvatarURL string
}

// Participant 会话参与者
type Participant struct {
	UserID    string `bson:"user_id" json:"userId"`
	Name      string `bson:"name" json:"name"`
	AvatarURL string `bson:"avatar_url,omitempty" json:"avatarUrl,omitempty"`
	Role      string `bson:"role" json:"role"` // buyer / seller
}

// LastMessage 会话列表预览用的冗余快照
type LastMessage struct {
	SenderID string `bson:"sender_id" json:"senderId"`
	Content  string `bson:"content" json:"content"`
}

// Conversation 会话文档
type Conversation struct {
	ID           string         `bson:"_id" json:"id"`
	Type         string         `bson:"type" json:"type"` // direct / delivery
	PeerKey      string         `bson:"peer_key,omitempty" json:"-"`
	Participants []Participant  `bson:"participants" json:"participants"`
	RequestID    string         `bson:"request_id,omitempty" json:"requestId,omitempty"`
	QuoteID      string         `bson:"quote_id,omitempty" json:"quoteId,omitempty"`
	LastActivity time.Time      `bson:"last_activity" json:"lastActivity"`
	UnreadCount  map[string]int `bson:"unread_count" json:"unreadCount"`
	LastMessage  *LastMessage   `bson:"last_message,omitempty" json:"lastMessage,omitempty"`
}

// Participant 按用户 ID 查找参与者条目
func (c *Conversation) Participant(userID string) *Participant {
	for i := range c.Participants {
		if c.Participants[i].UserID == userID {
			return &c.Participants[i]
		}
	}
	return nil
}

// HasParticipant 判断用户是否在参与者列表中
func (c *Conversation) HasParticipant(userID string) bool {
	return c.Participant(userID) != nil
}

// IsDelivery 配送会话判定：依据 ID 形态或 type 字段，两者任一命中即走配送链路
func (c *Conversation) IsDelivery() bool {
	return strings.HasPrefix(c.ID, DeliveryPrefix) || c.Type == TypeDelivery
}

// OrderID 从配送会话 ID 中剥离出订单 ID
func (c *Conversation) OrderID() string {
	return strings.TrimPrefix(c.ID, DeliveryPrefix)
}

// Unread 当前用户的未读数，缺省键视为 0
func (c *Conversation) Unread(userID string) int {
	if c.UnreadCount == nil {
		return 0
	}
	return c.UnreadCount[userID]
}

// PeerKey 生成无序参与者对的唯一键，存储层以此做去重约束
func PeerKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "_" + b
}
