package chat

import (
	"context"
	log "log/slog"
	"strings"
	"sync"
	"time"
)

// State 消息通道状态机
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateEmpty
	StateUnsubscribed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateEmpty:
		return "empty"
	case StateUnsubscribed:
		return "unsubscribed"
	default:
		return "idle"
	}
}

// Snapshot 推送给上层的通道快照
type Snapshot struct {
	State    State
	Messages []*Message

	// Waiting 买家已发言且卖家尚未回复。派生值，每次推送重算，
	// 不缓存：卖家首条回复到达时必须立即清除
	Waiting bool
}

// Channel 单个选中会话的消息通道。
//
// Open 时按会话 ID 形态路由到直聊或配送消息流（两者键不同，
// 分别是 conversationID 与 orderID），载入与每次推送时自动标记
// 已读。发送不做本地回显，消息列表以订阅回环送达为准。
type Channel struct {
	store Store
	user  Identity

	mu       sync.Mutex
	conv     *Conversation
	orderID  string
	delivery bool
	state    State
	messages []*Message
	waiting  bool
	onUpdate func(Snapshot)
	unsub    Unsubscribe

	closeOnce sync.Once
}

func NewChannel(store Store, user Identity) *Channel {
	return &Channel{store: store, user: user, state: StateIdle}
}

// Open 打开会话的消息流。
// 订阅失败降级为持续 Loading 加日志，不向调用方抛错。
func (c *Channel) Open(ctx context.Context, conv *Conversation, onUpdate func(Snapshot)) {
	c.mu.Lock()
	c.conv = conv
	c.delivery = conv.IsDelivery()
	c.orderID = strings.TrimPrefix(conv.ID, DeliveryPrefix)
	c.state = StateLoading
	c.messages = nil
	c.waiting = false
	c.onUpdate = onUpdate
	c.mu.Unlock()

	onUpdate(Snapshot{State: StateLoading})

	var unsub Unsubscribe
	var err error
	if c.delivery {
		unsub, err = c.store.SubscribeDeliveryMessages(ctx, c.orderID, c.apply)
	} else {
		unsub, err = c.store.SubscribeMessages(ctx, conv.ID, c.apply)
	}
	if err != nil {
		log.ErrorContext(ctx, "订阅消息流失败", "conversationID", conv.ID, "err", err)
		return
	}

	c.mu.Lock()
	if c.state == StateUnsubscribed {
		// Open 进行中通道已被关闭
		c.mu.Unlock()
		unsub()
		return
	}
	c.unsub = unsub
	c.mu.Unlock()
}

// apply 消化一次全量消息推送
func (c *Channel) apply(msgs []*Message) {
	c.mu.Lock()
	if c.state == StateUnsubscribed {
		c.mu.Unlock()
		return
	}

	// 仅保留当前用户或真实参与者发出的消息，防御存储侧迁移或
	// 故障残留的跨租户记录
	kept := make([]*Message, 0, len(msgs))
	for _, m := range msgs {
		if m.SenderID == c.user.ID || c.conv.HasParticipant(m.SenderID) {
			m.SentAt = NormalizeTimestamp(m.Timestamp)
			kept = append(kept, m)
		}
	}

	c.messages = kept
	if len(kept) == 0 {
		c.state = StateEmpty
	} else {
		c.state = StateReady
	}
	c.waiting = waitingForSeller(c.conv, kept)

	cb := c.onUpdate
	snap := Snapshot{State: c.state, Messages: kept, Waiting: c.waiting}
	c.mu.Unlock()

	if cb != nil {
		cb(snap)
	}

	// 已读标记即发即弃，失败不阻塞消息展示
	go c.markRead()
}

// Send 发送消息。
// 内容去空格后非空、会话已选中、发送者经重新校验仍是参与者，
// 三者缺一不可；参与者身份在发送时重查，不信任选中态。
func (c *Channel) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	c.mu.Lock()
	conv := c.conv
	delivery := c.delivery
	orderID := c.orderID
	state := c.state
	c.mu.Unlock()

	if conv == nil || state == StateUnsubscribed {
		return ErrNoConversation
	}
	if !conv.HasParticipant(c.user.ID) {
		return ErrNotParticipant
	}

	if delivery {
		return c.store.SendDeliveryMessage(ctx, orderID, c.user.ID, text)
	}
	return c.store.SendMessage(ctx, conv.ID, c.user.ID, text)
}

// MarkRead 将当前用户在此会话的未读数清零，即发即弃
func (c *Channel) MarkRead() {
	go c.markRead()
}

func (c *Channel) markRead() {
	c.mu.Lock()
	conv := c.conv
	delivery := c.delivery
	orderID := c.orderID
	c.mu.Unlock()

	if conv == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var err error
	if delivery {
		err = c.store.MarkDeliveryMessagesAsRead(ctx, orderID, c.user.ID)
	} else {
		err = c.store.MarkMessagesAsRead(ctx, conv.ID, c.user.ID)
	}
	if err != nil {
		log.Warn("标记已读失败", "conversationID", conv.ID, "err", err)
	}
}

// Close 关闭通道并退订，可安全重复调用，实际退订仅执行一次
func (c *Channel) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.state = StateUnsubscribed
		unsub := c.unsub
		c.unsub = nil
		c.onUpdate = nil
		c.mu.Unlock()

		if unsub != nil {
			unsub()
		}
	})
}

// State 当前状态
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Waiting 当前等待回复标记
func (c *Channel) Waiting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.waiting
}

// Messages 当前消息列表
func (c *Channel) Messages() []*Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	res := make([]*Message, len(c.messages))
	copy(res, c.messages)
	return res
}

// waitingForSeller 等待回复判定：会话存在 seller 参与者、消息非空、
// 且没有任何一条消息出自 seller
func waitingForSeller(conv *Conversation, msgs []*Message) bool {
	if len(msgs) == 0 {
		return false
	}

	sellers := make(map[string]struct{})
	for _, p := range conv.Participants {
		if p.Role == RoleSeller {
			sellers[p.UserID] = struct{}{}
		}
	}
	if len(sellers) == 0 {
		return false
	}

	for _, m := range msgs {
		if _, ok := sellers[m.SenderID]; ok {
			return false
		}
	}
	return true
}
