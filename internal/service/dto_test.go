package service

import (
	"testing"
	"time"

	"Procura/internal/chat"
	"Procura/internal/pkg/consts"

	"github.com/stretchr/testify/require"
)

func Test_ToConversationDTO(t *testing.T) {
	r := require.New(t)

	conv := &chat.Conversation{
		ID:   "conv-1",
		Type: chat.TypeDirect,
		Participants: []chat.Participant{
			{UserID: "buyer-1", Name: "宏达五金", AvatarURL: "https://cdn.example.com/a.png", Role: chat.RoleBuyer},
			{UserID: "seller-1", Role: chat.RoleSeller},
		},
		RequestID:    "req-1",
		LastActivity: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		UnreadCount:  map[string]int{"buyer-1": 3},
		LastMessage:  &chat.LastMessage{SenderID: "seller-1", Content: "已发货"},
	}

	d := ToConversationDTO(conv, "buyer-1")
	r.Equal("conv-1", d.ConversationID)
	r.Equal(3, d.UnreadCount)
	r.Equal("已发货", d.LastMsgContent)
	r.Equal("seller-1", d.LastSenderID)
	r.Len(d.Participants, 2)

	// 展示信息缺失时补默认占位
	r.Equal(consts.DefaultInitials, d.Participants[1].Name)
	r.Equal(consts.DefaultAvatarURL, d.Participants[1].AvatarURL)
	r.Equal("宏达五金", d.Participants[0].Name)

	// 对端视角计数独立
	r.Zero(ToConversationDTO(conv, "seller-1").UnreadCount)
}

func Test_ToMessageDTO_NormalizesTimestamp(t *testing.T) {
	r := require.New(t)

	d := ToMessageDTO(&chat.Message{
		ID:        "m1",
		SenderID:  "buyer-1",
		Content:   "报价多少",
		Status:    chat.StatusSent,
		Timestamp: int64(1767225600000),
	})

	r.Equal(time.UnixMilli(1767225600000), d.SentAt)
	r.Equal(chat.StatusSent, d.Status)
}
