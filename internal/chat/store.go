package chat

import "context"

// Unsubscribe 取消订阅句柄，视图卸载或切换会话时调用恰好一次
type Unsubscribe func()

// Store 会话存储外部协作者。
//
// 所有 Subscribe 方法在订阅建立后立即推送一次全量快照，之后每次
// 写入（发消息、标记已读、建会话）都会再次推送受影响集合的全量，
// 本地视图不做增量合并。写入返回仅代表存储已接受，对本端视图的
// 影响以订阅回环送达为准。
type Store interface {
	GetConversations(ctx context.Context, userID string) ([]*Conversation, error)
	SubscribeConversations(ctx context.Context, userID string, onChange func([]*Conversation)) (Unsubscribe, error)

	GetMessages(ctx context.Context, conversationID string) ([]*Message, error)
	GetDeliveryMessages(ctx context.Context, orderID string) ([]*Message, error)
	SubscribeMessages(ctx context.Context, conversationID string, onChange func([]*Message)) (Unsubscribe, error)
	SubscribeDeliveryMessages(ctx context.Context, orderID string, onChange func([]*Message)) (Unsubscribe, error)

	SendMessage(ctx context.Context, conversationID, senderID, content string) error
	SendDeliveryMessage(ctx context.Context, orderID, senderID, content string) error
	MarkMessagesAsRead(ctx context.Context, conversationID, userID string) error
	MarkDeliveryMessagesAsRead(ctx context.Context, orderID, userID string) error

	// CreateConversation 创建会话；命中 peer_key 或 _id 唯一约束时返回已存在会话的 ID
	CreateConversation(ctx context.Context, conv *Conversation) (string, error)
}
