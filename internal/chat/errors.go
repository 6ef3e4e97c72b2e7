package chat

import "errors"

var (
	ErrNotSignedIn    = errors.New("未登录")
	ErrEmptyMessage   = errors.New("消息内容不能为空")
	ErrNoConversation = errors.New("未选择会话")
	ErrNotParticipant = errors.New("不是会话成员")
)
