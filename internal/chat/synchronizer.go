package chat

import (
	"context"
	log "log/slog"
	"sync"
)

// Synchronizer 维护当前用户会话列表的权威内存视图。
//
// 首次全量拉取与订阅推送走同一条过滤链路：每次推送都对整个快照
// 重新执行可见性判定，而不是信任本地缓存做增量合并，保证归属字段
// 变更（如请求改派）的会话被重新评估。推送处理是列表的唯一写入方，
// 其余组件只读快照。
type Synchronizer struct {
	store Store
	user  Identity

	mu            sync.RWMutex
	conversations []*Conversation

	// 深链目标公司：会话在初次拉取或后续推送中出现时触发一次回调，
	// 覆盖"提示先到、会话后建"的竞态
	targetCompanyID string
	onFound         func(conversationID string)
}

func NewSynchronizer(store Store, user Identity) *Synchronizer {
	return &Synchronizer{store: store, user: user}
}

// SetTargetCompany 注册深链目标公司及命中回调
func (s *Synchronizer) SetTargetCompany(companyID string, onFound func(conversationID string)) {
	s.mu.Lock()
	s.targetCompanyID = companyID
	s.onFound = onFound
	s.mu.Unlock()
}

// LoadInitial 全量拉取并过滤。
// 未登录或存储读取异常时降级为空列表并记录日志，绝不向上抛错。
func (s *Synchronizer) LoadInitial(ctx context.Context) []*Conversation {
	if s.user.ID == "" {
		return []*Conversation{}
	}

	convs, err := s.store.GetConversations(ctx, s.user.ID)
	if err != nil {
		log.ErrorContext(ctx, "拉取会话列表失败", "userID", s.user.ID, "err", err)
		return []*Conversation{}
	}

	visible := FilterVisible(convs, s.user.ID)
	s.replace(visible)
	return visible
}

// Subscribe 建立长订阅。
// 每次上游推送都对整个快照重新过滤后回调 onUpdate；订阅失败降级为
// 空列表加日志，返回的句柄恒可安全调用。
func (s *Synchronizer) Subscribe(ctx context.Context, onUpdate func([]*Conversation)) Unsubscribe {
	if s.user.ID == "" {
		onUpdate([]*Conversation{})
		return func() {}
	}

	unsub, err := s.store.SubscribeConversations(ctx, s.user.ID, func(snapshot []*Conversation) {
		visible := FilterVisible(snapshot, s.user.ID)
		s.replace(visible)
		onUpdate(visible)
	})
	if err != nil {
		log.ErrorContext(ctx, "订阅会话列表失败", "userID", s.user.ID, "err", err)
		onUpdate([]*Conversation{})
		return func() {}
	}
	return unsub
}

// Snapshot 当前可见会话列表的副本
func (s *Synchronizer) Snapshot() []*Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]*Conversation, len(s.conversations))
	copy(res, s.conversations)
	return res
}

func (s *Synchronizer) replace(visible []*Conversation) {
	s.mu.Lock()
	s.conversations = visible

	var hit func(string)
	var hitID string
	if s.targetCompanyID != "" {
		for _, c := range visible {
			if c.HasParticipant(s.targetCompanyID) {
				hit = s.onFound
				hitID = c.ID
				s.targetCompanyID = ""
				s.onFound = nil
				break
			}
		}
	}
	s.mu.Unlock()

	if hit != nil {
		hit(hitID)
	}
}
