package chat

// IsRequestOwnerOK 校验关联采购请求/报价的会话对用户是否开放。
//
// 未关联请求或报价的会话不做额外限制。关联后，用户的参与者条目
// 必须持有 buyer 或 seller 角色：buyer 是请求的归属方，seller 是
// 报价的对手公司；角色缺失或非法的条目（例如迁移残留的脏记录）
// 不得借同一会话 ID 看到他人的订单上下文。
func IsRequestOwnerOK(c *Conversation, userID string) bool {
	if c.RequestID == "" && c.QuoteID == "" {
		return true
	}
	p := c.Participant(userID)
	if p == nil {
		return false
	}
	return p.Role == RoleBuyer || p.Role == RoleSeller
}

// IsVisible 会话可见性判定：必须在参与者列表中，且通过归属校验。
// 首次全量拉取与后续每次订阅推送使用同一判定，避免结果依赖取数路径。
func IsVisible(c *Conversation, userID string) bool {
	if c == nil || userID == "" {
		return false
	}
	if !c.HasParticipant(userID) {
		return false
	}
	return IsRequestOwnerOK(c, userID)
}

// FilterVisible 对整个快照重新过滤，返回用户可见的会话
func FilterVisible(convs []*Conversation, userID string) []*Conversation {
	res := make([]*Conversation, 0, len(convs))
	for _, c := range convs {
		if IsVisible(c, userID) {
			res = append(res, c)
		}
	}
	return res
}
