package chat

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// fakeStore 内存版 Store，行为对齐 chatstore 的写入语义：
// 发消息累加未读并刷新预览，标记已读仅在实际发生变更时推送，
// peer_key 命中时复用已存在会话。
type fakeStore struct {
	mu            sync.Mutex
	conversations map[string]*Conversation
	byPeerKey     map[string]string
	messages      map[string][]*Message // conversationID -> 消息
	delivery      map[string][]*Message // orderID -> 消息

	convSubs map[int]func([]*Conversation)
	msgSubs  map[int]msgSub
	nextSub  int
	nextMsg  int

	failReads bool
}

type msgSub struct {
	key      string
	delivery bool
	onChange func([]*Message)
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		conversations: make(map[string]*Conversation),
		byPeerKey:     make(map[string]string),
		messages:      make(map[string][]*Message),
		delivery:      make(map[string][]*Message),
		convSubs:      make(map[int]func([]*Conversation)),
		msgSubs:       make(map[int]msgSub),
	}
}

func (f *fakeStore) put(conv *Conversation) {
	f.mu.Lock()
	f.conversations[conv.ID] = conv
	if conv.PeerKey != "" {
		f.byPeerKey[conv.PeerKey] = conv.ID
	}
	f.mu.Unlock()
}

func (f *fakeStore) putMessage(convID string, m *Message) {
	f.mu.Lock()
	f.messages[convID] = append(f.messages[convID], m)
	f.mu.Unlock()
}

func (f *fakeStore) putDeliveryMessage(orderID string, m *Message) {
	f.mu.Lock()
	f.delivery[orderID] = append(f.delivery[orderID], m)
	f.mu.Unlock()
}

func (f *fakeStore) GetConversations(_ context.Context, userID string) ([]*Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failReads {
		return nil, fmt.Errorf("storage unavailable")
	}
	var res []*Conversation
	for _, c := range f.conversations {
		if c.HasParticipant(userID) {
			res = append(res, c)
		}
	}
	return res, nil
}

func (f *fakeStore) SubscribeConversations(ctx context.Context, userID string, onChange func([]*Conversation)) (Unsubscribe, error) {
	f.mu.Lock()
	if f.failReads {
		f.mu.Unlock()
		return nil, fmt.Errorf("storage unavailable")
	}
	id := f.nextSub
	f.nextSub++
	wrapped := func([]*Conversation) {
		snapshot, _ := f.GetConversations(ctx, userID)
		onChange(snapshot)
	}
	f.convSubs[id] = wrapped
	f.mu.Unlock()

	wrapped(nil)
	return func() {
		f.mu.Lock()
		delete(f.convSubs, id)
		f.mu.Unlock()
	}, nil
}

func (f *fakeStore) GetMessages(_ context.Context, conversationID string) ([]*Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyMessages(f.messages[conversationID]), nil
}

func (f *fakeStore) GetDeliveryMessages(_ context.Context, orderID string) ([]*Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyMessages(f.delivery[orderID]), nil
}

func (f *fakeStore) SubscribeMessages(_ context.Context, conversationID string, onChange func([]*Message)) (Unsubscribe, error) {
	return f.subscribeMsgs(conversationID, false, onChange)
}

func (f *fakeStore) SubscribeDeliveryMessages(_ context.Context, orderID string, onChange func([]*Message)) (Unsubscribe, error) {
	return f.subscribeMsgs(orderID, true, onChange)
}

func (f *fakeStore) subscribeMsgs(key string, delivery bool, onChange func([]*Message)) (Unsubscribe, error) {
	f.mu.Lock()
	id := f.nextMsg
	f.nextMsg++
	f.msgSubs[id] = msgSub{key: key, delivery: delivery, onChange: onChange}
	src := f.messages[key]
	if delivery {
		src = f.delivery[key]
	}
	initial := copyMessages(src)
	f.mu.Unlock()

	onChange(initial)
	return func() {
		f.mu.Lock()
		delete(f.msgSubs, id)
		f.mu.Unlock()
	}, nil
}

func (f *fakeStore) SendMessage(_ context.Context, conversationID, senderID, content string) error {
	f.mu.Lock()
	conv := f.conversations[conversationID]
	if conv == nil {
		f.mu.Unlock()
		return fmt.Errorf("conversation not found")
	}
	m := &Message{
		ID:             fmt.Sprintf("m%d", len(f.messages[conversationID])+1),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		Timestamp:      time.Now().UnixMilli(),
		Status:         StatusSent,
	}
	f.messages[conversationID] = append(f.messages[conversationID], m)
	f.bumpLocked(conv, senderID, content)
	f.mu.Unlock()

	f.pushMessages(conversationID, false)
	f.pushConversations()
	return nil
}

func (f *fakeStore) SendDeliveryMessage(_ context.Context, orderID, senderID, content string) error {
	convID := DeliveryPrefix + orderID
	f.mu.Lock()
	conv := f.conversations[convID]
	if conv == nil {
		f.mu.Unlock()
		return fmt.Errorf("conversation not found")
	}
	m := &Message{
		ID:        fmt.Sprintf("d%d", len(f.delivery[orderID])+1),
		OrderID:   orderID,
		SenderID:  senderID,
		Content:   content,
		Timestamp: time.Now().UnixMilli(),
		Status:    StatusSent,
	}
	f.delivery[orderID] = append(f.delivery[orderID], m)
	f.bumpLocked(conv, senderID, content)
	f.mu.Unlock()

	f.pushMessages(orderID, true)
	f.pushConversations()
	return nil
}

// bumpLocked 发消息的会话侧副作用：刷新活跃时间与预览，
// 除发送者外所有参与者未读 +1
func (f *fakeStore) bumpLocked(conv *Conversation, senderID, content string) {
	conv.LastActivity = time.Now()
	conv.LastMessage = &LastMessage{SenderID: senderID, Content: content}
	if conv.UnreadCount == nil {
		conv.UnreadCount = map[string]int{}
	}
	for _, p := range conv.Participants {
		if p.UserID != senderID {
			conv.UnreadCount[p.UserID]++
		}
	}
}

func (f *fakeStore) MarkMessagesAsRead(_ context.Context, conversationID, userID string) error {
	if f.mark(conversationID, conversationID, false, userID) {
		f.pushMessages(conversationID, false)
		f.pushConversations()
	}
	return nil
}

func (f *fakeStore) MarkDeliveryMessagesAsRead(_ context.Context, orderID, userID string) error {
	if f.mark(DeliveryPrefix+orderID, orderID, true, userID) {
		f.pushMessages(orderID, true)
		f.pushConversations()
	}
	return nil
}

func (f *fakeStore) mark(convID, key string, delivery bool, userID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.messages[key]
	if delivery {
		msgs = f.delivery[key]
	}
	changed := false
	if conv := f.conversations[convID]; conv != nil && conv.UnreadCount[userID] != 0 {
		conv.UnreadCount[userID] = 0
		changed = true
	}
	for _, m := range msgs {
		if m.SenderID != userID && m.Status != StatusRead {
			m.Status = StatusRead
			changed = true
		}
	}
	return changed
}

func (f *fakeStore) CreateConversation(_ context.Context, conv *Conversation) (string, error) {
	f.mu.Lock()
	if existing, ok := f.byPeerKey[conv.PeerKey]; ok && conv.PeerKey != "" {
		f.mu.Unlock()
		return existing, nil
	}
	if existing, ok := f.conversations[conv.ID]; ok {
		f.mu.Unlock()
		return existing.ID, nil
	}
	f.conversations[conv.ID] = conv
	if conv.PeerKey != "" {
		f.byPeerKey[conv.PeerKey] = conv.ID
	}
	f.mu.Unlock()

	f.pushConversations()
	return conv.ID, nil
}

func (f *fakeStore) pushConversations() {
	f.mu.Lock()
	subs := make([]func([]*Conversation), 0, len(f.convSubs))
	for _, fn := range f.convSubs {
		subs = append(subs, fn)
	}
	f.mu.Unlock()
	for _, fn := range subs {
		fn(nil)
	}
}

func (f *fakeStore) pushMessages(key string, delivery bool) {
	f.mu.Lock()
	var targets []msgSub
	for _, s := range f.msgSubs {
		if s.key == key && s.delivery == delivery {
			targets = append(targets, s)
		}
	}
	src := f.messages[key]
	if delivery {
		src = f.delivery[key]
	}
	snapshot := copyMessages(src)
	f.mu.Unlock()

	for _, s := range targets {
		s.onChange(snapshot)
	}
}

// copyMessages 推送副本，订阅方与存储互不共享可变状态
func copyMessages(src []*Message) []*Message {
	res := make([]*Message, 0, len(src))
	for _, m := range src {
		cp := *m
		res = append(res, &cp)
	}
	return res
}
