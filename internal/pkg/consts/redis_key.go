package consts

const (
	// ChatConversationsKey 用户会话列表变更通知频道，后接用户 ID
	ChatConversationsKey = "chat:conversations:"
	// ChatMessagesKey 直聊消息变更通知频道，后接会话 ID
	ChatMessagesKey = "chat:messages:"
	// ChatDeliveryMessagesKey 配送消息变更通知频道，后接订单 ID
	ChatDeliveryMessagesKey = "chat:delivery:"

	CompanySimpleInfoKey = "company:simple:info:"
)

const (
	CalibrationLock = "chat:calibration:lock"
)
