package chatstore

import (
	"Procura/internal/chat"
	"Procura/internal/pkg/consts"
	"Procura/internal/pkg/redis"
	"context"
	log "log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store chat.Store 的 MongoDB 实现，变更通知走 Redis 发布订阅。
//
// 写入落库后向受影响频道发布失效通知，订阅方收到通知即重新拉取
// 全量集合并整体下发，本端不做增量合并。已读标记只在实际发生
// 变更时发布，避免订阅方自动标已读引起的推送回环。
type Store struct {
	conversations *mongo.Collection
	messages      *mongo.Collection
	delivery      *mongo.Collection
}

var _ chat.Store = (*Store)(nil)

func NewStore(db *mongo.Database) *Store {
	return &Store{
		conversations: db.Collection("conversations"),
		messages:      db.Collection("messages"),
		delivery:      db.Collection("delivery_messages"),
	}
}

// EnsureIndexes 建立运行前置索引。
// peer_key 唯一约束是会话去重的最终兜底：客户端重查之外，
// 两端同时创建时后写方会命中约束并解析到已存在会话。
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.conversations.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "peer_key", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"peer_key": bson.M{"$type": "string"}}),
		},
		{Keys: bson.D{{Key: "participants.user_id", Value: 1}}},
	})
	if err != nil {
		return errors.Wrap(err, "创建会话索引失败")
	}

	if _, err = s.messages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "conversation_id", Value: 1}, {Key: "_id", Value: 1}},
	}); err != nil {
		return errors.Wrap(err, "创建消息索引失败")
	}

	if _, err = s.delivery.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "order_id", Value: 1}, {Key: "_id", Value: 1}},
	}); err != nil {
		return errors.Wrap(err, "创建配送消息索引失败")
	}
	return nil
}

// GetConversations 拉取用户参与的全部会话
func (s *Store) GetConversations(ctx context.Context, userID string) ([]*chat.Conversation, error) {
	cursor, err := s.conversations.Find(ctx, bson.M{"participants.user_id": userID})
	if err != nil {
		return nil, errors.Wrap(err, "查询会话失败")
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var convs []*chat.Conversation
	if err := cursor.All(ctx, &convs); err != nil {
		return nil, errors.Wrap(err, "解析会话失败")
	}
	return convs, nil
}

// SubscribeConversations 订阅用户会话列表。
// 建立后立即推送一次全量，之后每收到一次失效通知重新拉取全量下发。
func (s *Store) SubscribeConversations(ctx context.Context, userID string, onChange func([]*chat.Conversation)) (chat.Unsubscribe, error) {
	pubsub := redis.Subscribe(ctx, consts.ChatConversationsKey+userID)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, errors.Wrap(err, "订阅会话频道失败")
	}

	deliver := func() {
		readCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		convs, err := s.GetConversations(readCtx, userID)
		if err != nil {
			log.Error("会话快照拉取失败", "userID", userID, "err", err)
			return
		}
		onChange(convs)
	}

	deliver()

	go func() {
		for range pubsub.Channel() {
			deliver()
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			_ = pubsub.Close()
		})
	}, nil
}

// GetMessages 拉取直聊会话的全部消息，按写入顺序升序
func (s *Store) GetMessages(ctx context.Context, conversationID string) ([]*chat.Message, error) {
	return s.findMessages(ctx, s.messages, bson.M{"conversation_id": conversationID})
}

// GetDeliveryMessages 拉取配送会话的全部消息，键是订单 ID
func (s *Store) GetDeliveryMessages(ctx context.Context, orderID string) ([]*chat.Message, error) {
	return s.findMessages(ctx, s.delivery, bson.M{"order_id": orderID})
}

func (s *Store) findMessages(ctx context.Context, col *mongo.Collection, filter bson.M) ([]*chat.Message, error) {
	cursor, err := col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "查询消息失败")
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var msgs []*chat.Message
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, errors.Wrap(err, "解析消息失败")
	}
	return msgs, nil
}

// SubscribeMessages 订阅直聊会话的消息流
func (s *Store) SubscribeMessages(ctx context.Context, conversationID string, onChange func([]*chat.Message)) (chat.Unsubscribe, error) {
	return s.subscribeMessages(ctx, consts.ChatMessagesKey+conversationID, func(readCtx context.Context) ([]*chat.Message, error) {
		return s.GetMessages(readCtx, conversationID)
	}, onChange)
}

// SubscribeDeliveryMessages 订阅配送会话的消息流
func (s *Store) SubscribeDeliveryMessages(ctx context.Context, orderID string, onChange func([]*chat.Message)) (chat.Unsubscribe, error) {
	return s.subscribeMessages(ctx, consts.ChatDeliveryMessagesKey+orderID, func(readCtx context.Context) ([]*chat.Message, error) {
		return s.GetDeliveryMessages(readCtx, orderID)
	}, onChange)
}

func (s *Store) subscribeMessages(ctx context.Context, channel string, read func(context.Context) ([]*chat.Message, error), onChange func([]*chat.Message)) (chat.Unsubscribe, error) {
	pubsub := redis.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, errors.Wrap(err, "订阅消息频道失败")
	}

	deliver := func() {
		readCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		msgs, err := read(readCtx)
		if err != nil {
			log.Error("消息快照拉取失败", "channel", channel, "err", err)
			return
		}
		onChange(msgs)
	}

	deliver()

	go func() {
		for range pubsub.Channel() {
			deliver()
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			_ = pubsub.Close()
		})
	}, nil
}

// SendMessage 追加一条直聊消息并更新会话侧冗余字段
func (s *Store) SendMessage(ctx context.Context, conversationID, senderID, content string) error {
	conv, err := s.getConversation(ctx, conversationID)
	if err != nil {
		return err
	}

	doc := bson.M{
		"conversation_id": conversationID,
		"sender_id":       senderID,
		"content":         content,
		"timestamp":       time.Now().UnixMilli(),
		"status":          chat.StatusSent,
	}
	if _, err := s.messages.InsertOne(ctx, doc); err != nil {
		return errors.Wrap(err, "写入消息失败")
	}

	if err := s.bumpConversation(ctx, conv, senderID, content); err != nil {
		return err
	}

	s.notifyMessages(consts.ChatMessagesKey + conversationID)
	s.notifyParticipants(conv)
	return nil
}

// SendDeliveryMessage 追加一条配送消息，会话 ID 由订单 ID 派生
func (s *Store) SendDeliveryMessage(ctx context.Context, orderID, senderID, content string) error {
	conv, err := s.getConversation(ctx, chat.DeliveryPrefix+orderID)
	if err != nil {
		return err
	}

	doc := bson.M{
		"order_id":  orderID,
		"sender_id": senderID,
		"content":   content,
		"timestamp": time.Now().UnixMilli(),
		"status":    chat.StatusSent,
	}
	if _, err := s.delivery.InsertOne(ctx, doc); err != nil {
		return errors.Wrap(err, "写入配送消息失败")
	}

	if err := s.bumpConversation(ctx, conv, senderID, content); err != nil {
		return err
	}

	s.notifyMessages(consts.ChatDeliveryMessagesKey + orderID)
	s.notifyParticipants(conv)
	return nil
}

// bumpConversation 发消息的会话侧副作用：刷新活跃时间与预览，
// 除发送者外所有参与者未读 +1
func (s *Store) bumpConversation(ctx context.Context, conv *chat.Conversation, senderID, content string) error {
	inc := bson.M{}
	for _, p := range conv.Participants {
		if p.UserID != senderID {
			inc["unread_count."+p.UserID] = 1
		}
	}

	update := bson.M{
		"$set": bson.M{
			"last_activity": time.Now(),
			"last_message":  bson.M{"sender_id": senderID, "content": content},
		},
	}
	if len(inc) > 0 {
		update["$inc"] = inc
	}

	if _, err := s.conversations.UpdateByID(ctx, conv.ID, update); err != nil {
		return errors.Wrap(err, "更新会话预览失败")
	}
	return nil
}

// MarkMessagesAsRead 清零用户未读并翻转消息状态，无变更不发通知
func (s *Store) MarkMessagesAsRead(ctx context.Context, conversationID, userID string) error {
	changed, err := s.markRead(ctx, s.messages, bson.M{"conversation_id": conversationID}, conversationID, userID)
	if err != nil {
		return err
	}
	if changed {
		s.notifyMessages(consts.ChatMessagesKey + conversationID)
		if conv, err := s.getConversation(ctx, conversationID); err == nil {
			s.notifyParticipants(conv)
		}
	}
	return nil
}

// MarkDeliveryMessagesAsRead 配送会话的已读标记
func (s *Store) MarkDeliveryMessagesAsRead(ctx context.Context, orderID, userID string) error {
	convID := chat.DeliveryPrefix + orderID
	changed, err := s.markRead(ctx, s.delivery, bson.M{"order_id": orderID}, convID, userID)
	if err != nil {
		return err
	}
	if changed {
		s.notifyMessages(consts.ChatDeliveryMessagesKey + orderID)
		if conv, err := s.getConversation(ctx, convID); err == nil {
			s.notifyParticipants(conv)
		}
	}
	return nil
}

func (s *Store) markRead(ctx context.Context, col *mongo.Collection, msgFilter bson.M, conversationID, userID string) (bool, error) {
	res, err := s.conversations.UpdateOne(ctx,
		bson.M{"_id": conversationID, "unread_count." + userID: bson.M{"$gt": 0}},
		bson.M{"$set": bson.M{"unread_count." + userID: 0}},
	)
	if err != nil {
		return false, errors.Wrap(err, "清零未读失败")
	}
	changed := res.ModifiedCount > 0

	msgFilter["sender_id"] = bson.M{"$ne": userID}
	msgFilter["status"] = bson.M{"$ne": chat.StatusRead}
	msgRes, err := col.UpdateMany(ctx, msgFilter, bson.M{"$set": bson.M{"status": chat.StatusRead}})
	if err != nil {
		return changed, errors.Wrap(err, "更新消息状态失败")
	}
	return changed || msgRes.ModifiedCount > 0, nil
}

// CreateConversation 创建会话，命中唯一约束时返回已存在会话的 ID。
// 直连会话按 peer_key 去重，履约会话的 _id 由订单号确定，重复写入按 _id 去重
func (s *Store) CreateConversation(ctx context.Context, conv *chat.Conversation) (string, error) {
	_, err := s.conversations.InsertOne(ctx, conv)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			var existing chat.Conversation
			if conv.PeerKey != "" {
				if ferr := s.conversations.FindOne(ctx, bson.M{"peer_key": conv.PeerKey}).Decode(&existing); ferr == nil {
					return existing.ID, nil
				}
			}
			if ferr := s.conversations.FindOne(ctx, bson.M{"_id": conv.ID}).Decode(&existing); ferr == nil {
				return existing.ID, nil
			}
		}
		return "", errors.Wrap(err, "创建会话失败")
	}

	s.notifyParticipants(conv)
	return conv.ID, nil
}

func (s *Store) getConversation(ctx context.Context, id string) (*chat.Conversation, error) {
	var conv chat.Conversation
	if err := s.conversations.FindOne(ctx, bson.M{"_id": id}).Decode(&conv); err != nil {
		return nil, errors.Wrap(err, "会话不存在")
	}
	return &conv, nil
}

// notifyParticipants 向每个参与者的会话频道发布失效通知
func (s *Store) notifyParticipants(conv *chat.Conversation) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for _, p := range conv.Participants {
		if err := redis.Publish(ctx, consts.ChatConversationsKey+p.UserID, conv.ID); err != nil {
			log.Warn("会话变更通知发布失败", "userID", p.UserID, "err", err)
		}
	}
}

func (s *Store) notifyMessages(channel string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := redis.Publish(ctx, channel, "1"); err != nil {
		log.Warn("消息变更通知发布失败", "channel", channel, "err", err)
	}
}
