package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Company 对手方公司信息
type Company struct {
	ID        string
	Name      string
	AvatarURL string
}

// Resolver 会话解析/创建器：给定目标公司，命中已有会话则复用，
// 否则原子创建，避免重复建会话。
type Resolver struct {
	store Store
	sync  *Synchronizer

	// 本地串行化并发创建；真正的兜底是存储层 peer_key 唯一约束，
	// 两端同时写时后写方会解析到已存在会话
	mu sync.Mutex
}

func NewResolver(store Store, sync *Synchronizer) *Resolver {
	return &Resolver{store: store, sync: sync}
}

// ResolveOrCreate 解析或创建与目标公司的直聊会话，返回会话 ID。
//
// 每次调用都基于同步器的最新可见列表重查，而不是调用方早先持有的
// 快照；requestID/quoteID 仅在新建时写入关联字段。
func (r *Resolver) ResolveOrCreate(ctx context.Context, current Identity, counterparty Company, requestID, quoteID string) (string, error) {
	if current.ID == "" {
		return "", ErrNotSignedIn
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.sync.Snapshot() {
		if c.Type == TypeDirect && c.HasParticipant(counterparty.ID) {
			return c.ID, nil
		}
	}

	conv := &Conversation{
		ID:      uuid.NewString(),
		Type:    TypeDirect,
		PeerKey: PeerKey(current.ID, counterparty.ID),
		Participants: []Participant{
			{UserID: current.ID, Name: current.Name, AvatarURL: current.AvatarURL, Role: RoleBuyer},
			{UserID: counterparty.ID, Name: counterparty.Name, AvatarURL: counterparty.AvatarURL, Role: RoleSeller},
		},
		RequestID:    requestID,
		QuoteID:      quoteID,
		LastActivity: time.Now(),
		UnreadCount:  map[string]int{},
	}

	return r.store.CreateConversation(ctx, conv)
}
