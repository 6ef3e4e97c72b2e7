package chat

import "time"

// 消息状态
const (
	StatusSent = "sent"
	StatusRead = "read"
)

// Message 消息文档
//
// Timestamp 保留存储层的原始值：历史数据中同时存在毫秒时间戳、
// ISO-8601 字符串与裸 "HH:MM" 三种形态，展示前统一经
// NormalizeTimestamp 归一到 SentAt。
type Message struct {
	ID             string `bson:"_id,omitempty" json:"id"`
	ConversationID string `bson:"conversation_id,omitempty" json:"conversationId,omitempty"`
	OrderID        string `bson:"order_id,omitempty" json:"orderId,omitempty"`
	SenderID       string `bson:"sender_id" json:"senderId"`
	Content        string `bson:"content" json:"content"`
	Timestamp      any    `bson:"timestamp" json:"timestamp"`
	Status         string `bson:"status" json:"status"` // sent / read

	// SentAt 归一化后的发送时间，载入时填充，不落库
	SentAt time.Time `bson:"-" json:"sentAt"`
}
