package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_ResolveOrCreate_First_Contact(t *testing.T) {
	req := require.New(t)

	store := newFakeStore()
	sync := NewSynchronizer(store, Identity{ID: "u1", Name: "买家一号"})
	unsub := sync.Subscribe(context.Background(), func([]*Conversation) {})
	defer unsub()

	r := NewResolver(store, sync)
	id, err := r.ResolveOrCreate(context.Background(), Identity{ID: "u1", Name: "买家一号"}, Company{ID: "comp1", Name: "某公司"}, "", "")
	req.NoError(err)
	req.NotEmpty(id)

	// 新建会话形态：两名参与者、direct、未读空表
	convs := sync.Snapshot()
	req.Len(convs, 1)
	conv := convs[0]
	req.Equal(id, conv.ID)
	req.Equal(TypeDirect, conv.Type)
	req.Len(conv.Participants, 2)
	req.Equal(RoleBuyer, conv.Participant("u1").Role)
	req.Equal(RoleSeller, conv.Participant("comp1").Role)
	req.Empty(conv.UnreadCount)
}

func Test_ResolveOrCreate_Reuses_Existing(t *testing.T) {
	req := require.New(t)

	store := newFakeStore()
	sync := NewSynchronizer(store, Identity{ID: "u1"})
	unsub := sync.Subscribe(context.Background(), func([]*Conversation) {})
	defer unsub()

	r := NewResolver(store, sync)
	me := Identity{ID: "u1"}
	comp := Company{ID: "comp1", Name: "某公司"}

	first, err := r.ResolveOrCreate(context.Background(), me, comp, "", "")
	req.NoError(err)

	// 推送回环完成后二次解析必须命中同一会话，不再写入
	second, err := r.ResolveOrCreate(context.Background(), me, comp, "", "")
	req.NoError(err)
	req.Equal(first, second)
	req.Len(sync.Snapshot(), 1)
}

func Test_ResolveOrCreate_Store_Level_Dedup(t *testing.T) {
	req := require.New(t)

	store := newFakeStore()
	syncA := NewSynchronizer(store, Identity{ID: "u1"})
	unsubA := syncA.Subscribe(context.Background(), func([]*Conversation) {})
	defer unsubA()

	// B 端同步器从未订阅，本地快照陈旧，模拟两端近乎同时发起创建
	syncB := NewSynchronizer(store, Identity{ID: "u1"})

	me := Identity{ID: "u1"}
	comp := Company{ID: "comp1"}

	first, err := NewResolver(store, syncA).ResolveOrCreate(context.Background(), me, comp, "", "")
	req.NoError(err)

	second, err := NewResolver(store, syncB).ResolveOrCreate(context.Background(), me, comp, "", "")
	req.NoError(err)

	// peer_key 唯一约束兜底：后写方解析到已存在会话
	req.Equal(first, second)
}

func Test_CreateConversation_Repeated_Delivery_Order(t *testing.T) {
	req := require.New(t)

	store := newFakeStore()
	conv := &Conversation{
		ID:   DeliveryPrefix + "order-9",
		Type: TypeDelivery,
		Participants: []Participant{
			{UserID: "buyer1", Name: "买家一号", Role: RoleBuyer},
			{UserID: "seller1", Name: "卖家一号", Role:RoleSeller},
		},
		UnreadCount: map[string]int{},
	}

	first, err := store.CreateConversation(context.Background(), conv)
	req.NoError(err)
	req.Equal(DeliveryPrefix+"order-9", first)

	// 履约会话没有 peer_key，重复写入只能按 _id 去重；
	// 消费者重投不得报错，也不得覆盖已有会话
	again := &Conversation{
		ID:   DeliveryPrefix + "order-9",
		Type: TypeDelivery,
		Participants: []Participant{
			{UserID: "buyer1", Role: RoleBuyer},
			{UserID: "seller1", Role: RoleSeller},
		},
		UnreadCount: map[string]int{},
	}
	second, err := store.CreateConversation(context.Background(), again)
	req.NoError(err)
	req.Equal(first, second)

	req.Len(store.conversations, 1)
	req.Equal("买家一号", store.conversations[first].Participant("buyer1").Name)
}

func Test_ResolveOrCreate_Rejects_Anonymous(t *testing.T) {
	req := require.New(t)

	store := newFakeStore()
	r := NewResolver(store, NewSynchronizer(store, Identity{}))

	_, err := r.ResolveOrCreate(context.Background(), Identity{}, Company{ID: "comp1"}, "", "")
	req.ErrorIs(err, ErrNotSignedIn)
	req.Empty(store.conversations)
}
