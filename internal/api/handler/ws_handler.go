package handler

import (
	"Procura/internal/api/dto"
	"Procura/internal/chat"
	"Procura/internal/pkg/response"
	"Procura/internal/pkg/security"
	"Procura/internal/service"
	"context"
	log "log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WsHandler struct {
	store chat.Store
}

func NewWsHandler(store chat.Store) *WsHandler {
	return &WsHandler{store: store}
}

// wsCommand 客户端指令
type wsCommand struct {
	Action         string `json:"action"` // open / send / mark_read / close_channel / watch_company
	ConversationID string `json:"conversation_id,omitempty"`
	Content        string `json:"content,omitempty"`
	CompanyID      string `json:"company_id,omitempty"`
}

// wsFrame 服务端推送帧
type wsFrame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// wsSession 单条连接的会话宿主：会话列表订阅、未读角标与当前
// 选中会话的消息通道都挂在这里，连接断开时整体回收。
type wsSession struct {
	conn  *websocket.Conn
	store chat.Store
	user  chat.Identity

	tracker chat.Tracker

	mu      sync.Mutex
	channel *chat.Channel

	out  chan []byte
	done chan struct{}
	once sync.Once
}

// Connect 建立 WebSocket 连接
func (s *WsHandler) Connect(c *gin.Context) {
	// 鉴权
	token := c.Query("token")
	if token == "" {
		response.Error(c, service.UnauthorizedError)
		return
	}
	claims, err := security.ValidateToken(token)
	if err != nil {
		log.Warn("WS 鉴权失败", "err", err)
		response.Error(c, service.UnauthorizedError)
		return
	}

	// 升级 Websocket
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WS 协议升级失败", "err", err)
		return
	}

	session := &wsSession{
		conn:  conn,
		store: s.store,
		user: chat.Identity{
			ID:        claims.UserID,
			Name:      claims.Name,
			AvatarURL: claims.AvatarURL,
		},
		out:  make(chan []byte, 64),
		done: make(chan struct{}),
	}
	session.run(c.Request.Context())
}

func (s *wsSession) run(ctx context.Context) {
	defer func() {
		_ = s.conn.Close()
	}()

	syncer := chat.NewSynchronizer(s.store, s.user)
	unsub := syncer.Subscribe(ctx, s.onConversations)
	defer unsub()
	defer s.closeChannel()

	log.Info("用户 WS 连接已建立", "userID", s.user.ID)

	// 写循环：串行化所有出站帧
	go s.writeLoop()

	// 读循环：客户端指令
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			s.stop()
			log.Info("用户 WS 连接已断开", "userID", s.user.ID)
			return
		}

		var cmd wsCommand
		if err := json.Unmarshal(raw, &cmd); err != nil {
			s.sendError("指令格式错误")
			continue
		}
		s.handle(ctx, syncer, &cmd)

		select {
		case <-s.done:
			return
		default:
		}
	}
}

func (s *wsSession) handle(ctx context.Context, syncer *chat.Synchronizer, cmd *wsCommand) {
	switch cmd.Action {
	case "open":
		s.openChannel(ctx, syncer, cmd.ConversationID)
	case "send":
		s.mu.Lock()
		channel := s.channel
		s.mu.Unlock()
		if channel == nil {
			s.sendError(chat.ErrNoConversation.Error())
			return
		}
		if err := channel.Send(ctx, cmd.Content); err != nil {
			s.sendError(err.Error())
		}
	case "mark_read":
		s.mu.Lock()
		channel := s.channel
		s.mu.Unlock()
		if channel != nil {
			channel.MarkRead()
		}
	case "close_channel":
		s.closeChannel()
	case "watch_company":
		// 搜索到目标公司后等它的会话在列表中出现
		syncer.SetTargetCompany(cmd.CompanyID, func(conversationID string) {
			s.push("resolved", gin.H{"conversation_id": conversationID})
		})
	default:
		s.sendError("未知指令: " + cmd.Action)
	}
}

// onConversations 会话列表推送：重算角标并整体下发
func (s *wsSession) onConversations(convs []*chat.Conversation) {
	s.tracker.Recompute(convs, s.user.ID)

	list := make([]*dto.ConversationDTO, 0, len(convs))
	for _, conv := range convs {
		list = append(list, service.ToConversationDTO(conv, s.user.ID))
	}

	s.push("conversations", list)
	s.push("unread", &dto.UnreadSummaryDTO{
		Total:    s.tracker.Total(),
		Delivery: s.tracker.Delivery(),
	})
}

func (s *wsSession) openChannel(ctx context.Context, syncer *chat.Synchronizer, conversationID string) {
	var target *chat.Conversation
	for _, conv := range syncer.Snapshot() {
		if conv.ID == conversationID {
			target = conv
			break
		}
	}
	if target == nil {
		s.sendError(chat.ErrNotParticipant.Error())
		return
	}

	s.closeChannel()

	channel := chat.NewChannel(s.store, s.user)
	s.mu.Lock()
	s.channel = channel
	s.mu.Unlock()

	channel.Open(ctx, target, s.onChannelUpdate)
}

func (s *wsSession) onChannelUpdate(snap chat.Snapshot) {
	msgs := make([]*dto.MessageDTO, 0, len(snap.Messages))
	for _, m := range snap.Messages {
		msgs = append(msgs, service.ToMessageDTO(m))
	}

	s.push("channel", gin.H{
		"state":    snap.State.String(),
		"waiting":  snap.Waiting,
		"messages": msgs,
	})
}

func (s *wsSession) closeChannel() {
	s.mu.Lock()
	channel := s.channel
	s.channel = nil
	s.mu.Unlock()
	if channel != nil {
		channel.Close()
	}
}

func (s *wsSession) push(frameType string, data interface{}) {
	raw, err := json.Marshal(wsFrame{Type: frameType, Data: data})
	if err != nil {
		log.Error("WS 帧序列化失败", "type", frameType, "err", err)
		return
	}
	select {
	case s.out <- raw:
	case <-s.done:
	default:
		// 出站缓冲打满说明客户端已经跟不上，断开让其重连
		log.Warn("WS 出站缓冲已满，关闭连接", "userID", s.user.ID)
		s.stop()
	}
}

func (s *wsSession) sendError(message string) {
	s.push("error", gin.H{"message": message})
}

func (s *wsSession) writeLoop() {
	for {
		select {
		case raw := <-s.out:
			_ = s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := s.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				log.Error("WS 推送失败", "userID", s.user.ID, "err", err)
				s.stop()
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *wsSession) stop() {
	s.once.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}
