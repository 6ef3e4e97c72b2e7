package chatstore

import (
	"Procura/internal/chat"
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
)

// CalibrateUnread 以消息状态为准重算每个参与者的未读计数。
// 计数器走 $inc 维护，进程中断或重复投递会留下漂移，这里定期校准。
// 返回被修正的会话数。
func (s *Store) CalibrateUnread(ctx context.Context) (int64, error) {
	cursor, err := s.conversations.Find(ctx, bson.M{})
	if err != nil {
		return 0, errors.Wrap(err, "遍历会话失败")
	}
	defer cursor.Close(ctx)

	var fixed int64
	for cursor.Next(ctx) {
		var conv chat.Conversation
		if err := cursor.Decode(&conv); err != nil {
			return fixed, errors.Wrap(err, "解码会话失败")
		}

		changed, err := s.calibrateConversation(ctx, &conv)
		if err != nil {
			return fixed, err
		}
		if changed {
			fixed++
			s.notifyParticipants(&conv)
		}
	}

	return fixed, errors.Wrap(cursor.Err(), "遍历会话失败")
}

func (s *Store) calibrateConversation(ctx context.Context, conv *chat.Conversation) (bool, error) {
	col := s.messages
	msgFilter := bson.M{"conversation_id": conv.ID}
	if conv.IsDelivery() {
		col = s.delivery
		msgFilter = bson.M{"order_id": conv.OrderID()}
	}

	set := bson.M{}
	for _, p := range conv.Participants {
		filter := bson.M{
			"status":    chat.StatusSent,
			"sender_id": bson.M{"$ne": p.UserID},
		}
		for k, v := range msgFilter {
			filter[k] = v
		}

		actual, err := col.CountDocuments(ctx, filter)
		if err != nil {
			return false, errors.Wrap(err, "统计未读消息失败")
		}
		if int(actual) != conv.Unread(p.UserID) {
			set["unread_count."+p.UserID] = actual
		}
	}

	if len(set) == 0 {
		return false, nil
	}

	if _, err := s.conversations.UpdateByID(ctx, conv.ID, bson.M{"$set": set}); err != nil {
		return false, errors.Wrap(err, "修正未读计数失败")
	}
	return true, nil
}
