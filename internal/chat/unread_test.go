package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_Unread_Increments_For_Receivers_Only(t *testing.T) {
	req := require.New(t)

	store := newFakeStore()
	conv := directConv("c1",
		Participant{UserID: "u1", Role: RoleBuyer},
		Participant{UserID: "comp1", Role: RoleSeller},
	)
	store.put(conv)

	// A 发一条，除 A 外每个参与者未读恰好 +1
	req.NoError(store.SendMessage(context.Background(), "c1", "u1", "在吗"))
	req.Equal(0, conv.Unread("u1"))
	req.Equal(1, conv.Unread("comp1"))

	req.NoError(store.SendMessage(context.Background(), "c1", "u1", "有货吗"))
	req.Equal(2, conv.Unread("comp1"))

	// B 标记已读只清自己的计数
	req.NoError(store.MarkMessagesAsRead(context.Background(), "c1", "comp1"))
	req.Equal(0, conv.Unread("comp1"))
	req.Equal(0, conv.Unread("u1"))
}

func Test_Unread_Badges_Aggregate_By_Type(t *testing.T) {
	req := require.New(t)

	direct := directConv("c1", Participant{UserID: "u1", Role: RoleBuyer}, Participant{UserID: "comp1", Role: RoleSeller})
	direct.UnreadCount = map[string]int{"u1": 2}

	delivery := &Conversation{
		ID:           "delivery-o1",
		Type:         TypeDelivery,
		Participants: []Participant{{UserID: "u1", Role: RoleBuyer}, {UserID: "courier1"}},
		UnreadCount:  map[string]int{"u1": 3},
	}

	// 未读键缺省视为 0
	zero := directConv("c2", Participant{UserID: "u1", Role: RoleBuyer}, Participant{UserID: "comp2", Role: RoleSeller})
	zero.UnreadCount = nil

	convs := []*Conversation{direct, delivery, zero}
	req.Equal(5, TotalUnread(convs, "u1"))
	req.Equal(3, DeliveryUnread(convs, "u1"))
	req.Equal(0, TotalUnread(convs, "stranger"))
}

func Test_Tracker_Recomputes_On_Push(t *testing.T) {
	req := require.New(t)

	store := newFakeStore()
	conv := directConv("c1", Participant{UserID: "u1", Role: RoleBuyer}, Participant{UserID: "comp1", Role: RoleSeller})
	store.put(conv)

	sync := NewSynchronizer(store, Identity{ID: "u1"})
	tracker := &Tracker{}
	unsub := sync.Subscribe(context.Background(), func(convs []*Conversation) {
		tracker.Recompute(convs, "u1")
	})
	defer unsub()

	req.Equal(0, tracker.Total())

	// 对方发消息，角标随推送重算
	req.NoError(store.SendMessage(context.Background(), "c1", "comp1", "您好"))
	req.Equal(1, tracker.Total())
	req.Equal(0, tracker.Delivery())

	req.NoError(store.MarkMessagesAsRead(context.Background(), "c1", "u1"))
	req.Equal(0, tracker.Total())
}

func Test_Delivery_Unread_Roundtrip(t *testing.T) {
	req := require.New(t)

	store := newFakeStore()
	conv := &Conversation{
		ID:           "delivery-o7",
		Type:         TypeDelivery,
		Participants: []Participant{{UserID: "u1", Role: RoleBuyer}, {UserID: "courier1"}},
		UnreadCount:  map[string]int{},
		LastActivity: time.Now(),
	}
	store.put(conv)

	req.NoError(store.SendDeliveryMessage(context.Background(), "o7", "courier1", "已送达"))
	req.Equal(1, conv.Unread("u1"))

	req.NoError(store.MarkDeliveryMessagesAsRead(context.Background(), "o7", "u1"))
	req.Equal(0, conv.Unread("u1"))
}
