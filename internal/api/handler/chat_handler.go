package handler

import (
	"Procura/internal/api/dto"
	"Procura/internal/chat"
	"Procura/internal/pkg/response"
	"Procura/internal/service"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatService service.ChatService
}

func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// currentIdentity 从 Context 中取出中间件解析的当前用户身份
func currentIdentity(c *gin.Context) chat.Identity {
	return chat.Identity{
		ID:        c.GetString("user_id"),
		Name:      c.GetString("user_name"),
		AvatarURL: c.GetString("avatar_url"),
	}
}

// GetConversationList 获取会话列表
func (s *ChatHandler) GetConversationList(c *gin.Context) {
	res, err := s.chatService.GetConversationList(c, currentIdentity(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// ResolveConversation 打开与某公司的会话，没有则创建
func (s *ChatHandler) ResolveConversation(c *gin.Context) {
	var req dto.ResolveConversationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	id, err := s.chatService.ResolveConversation(c, currentIdentity(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"conversation_id": id})
}

// GetMessages 获取会话消息
func (s *ChatHandler) GetMessages(c *gin.Context) {
	conversationID := c.Param("conversation_id")

	res, err := s.chatService.GetMessages(c, currentIdentity(c), conversationID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// SendMessage 发送消息接口
func (s *ChatHandler) SendMessage(c *gin.Context) {
	var req dto.SendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	if err := s.chatService.SendMessage(c, currentIdentity(c), &req); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// MarkAsRead 标记已读接口
func (s *ChatHandler) MarkAsRead(c *gin.Context) {
	var req dto.MarkAsReadReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	if err := s.chatService.MarkAsRead(c, currentIdentity(c), req.ConversationID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// GetRequestQuotes 获取采购需求下的报价列表
func (s *ChatHandler) GetRequestQuotes(c *gin.Context) {
	requestID := c.Param("request_id")

	res, err := s.chatService.GetRequestQuotes(c, currentIdentity(c), requestID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetUnreadSummary 获取未读角标
func (s *ChatHandler) GetUnreadSummary(c *gin.Context) {
	res, err := s.chatService.GetUnreadSummary(c, currentIdentity(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
