package chat

import "sync"

// TotalUnread 全部可见会话的未读总数
func TotalUnread(convs []*Conversation, userID string) int {
	total := 0
	for _, c := range convs {
		total += c.Unread(userID)
	}
	return total
}

// DeliveryUnread 配送会话未读数，二级角标用
func DeliveryUnread(convs []*Conversation, userID string) int {
	total := 0
	for _, c := range convs {
		if c.IsDelivery() {
			total += c.Unread(userID)
		}
	}
	return total
}

// Tracker 角标跟踪器。
// 纯派生，无独立存储：每次同步器推送后重算，不走定时器。
type Tracker struct {
	mu       sync.RWMutex
	total    int
	delivery int
}

// Recompute 依据最新快照重算两个角标
func (t *Tracker) Recompute(convs []*Conversation, userID string) {
	total := TotalUnread(convs, userID)
	delivery := DeliveryUnread(convs, userID)

	t.mu.Lock()
	t.total = total
	t.delivery = delivery
	t.mu.Unlock()
}

// Total 聚合角标
func (t *Tracker) Total() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.total
}

// Delivery 配送角标
func (t *Tracker) Delivery() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.delivery
}
