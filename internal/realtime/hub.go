package realtime

import (
	"sync"
	"time"

	"github.com/dejay09121/Noteapp/internal/domain"
	pkgapp "github.com/dejay09121/Noteapp/pkg/app"
	"github.com/dejay09121/Noteapp/pkg/code"
	"github.com/dejay09121/Noteapp/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/lxzan/gws"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const (
	DefaultPingInterval = 25 * time.Second
	DefaultPingWait     = 40 * time.Second
)

var connections = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "noteapp",
	Subsystem: "realtime",
	Name:      "authorized_connections",
	Help:      "WebSocket connections that passed authorization.",
})

// HubConfig WebSocket 服务端配置
type HubConfig struct {
	GWSOption    gws.ServerOption
	PingInterval time.Duration
	PingWait     time.Duration
}

// AuthFunc 校验 Token 并返回用户
type AuthFunc func(token string) (*pkgapp.UserEntity, error)

type hubClient struct {
	conn *gws.Conn
	user *pkgapp.UserEntity
	done chan struct{}
	once sync.Once
}

func (c *hubClient) stop() {
	c.once.Do(func() { close(c.done) })
}

// Hub 向已认证的连接推送所属用户的笔记变更
// 连接建立后须先发送 "Authorization|<token>"，或在握手请求中携带 token
type Hub struct {
	config *HubConfig
	auth   AuthFunc
	logger *zap.Logger
	up     *gws.Upgrader

	mu      sync.Mutex
	clients map[*gws.Conn]*hubClient
	users   map[string]map[*gws.Conn]*hubClient
}

// NewHub 创建 Hub
func NewHub(c HubConfig, auth AuthFunc, lg *zap.Logger) *Hub {
	if c.PingInterval == 0 {
		c.PingInterval = DefaultPingInterval
	}
	if c.PingWait == 0 {
		c.PingWait = DefaultPingWait
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	h := &Hub{
		config:  &c,
		auth:    auth,
		logger:  lg,
		clients: make(map[*gws.Conn]*hubClient),
		users:   make(map[string]map[*gws.Conn]*hubClient),
	}
	h.up = gws.NewUpgrader(h, &h.config.GWSOption)
	return h
}

// Run gin 路由处理函数
func (h *Hub) Run() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := pkgapp.TokenFromRequest(c)
		socket, err := h.up.Upgrade(c.Writer, c.Request)
		if err != nil {
			h.logger.Error("websocket upgrade failed", zap.Error(err))
			return
		}
		client := &hubClient{conn: socket, done: make(chan struct{})}
		h.mu.Lock()
		h.clients[socket] = client
		h.mu.Unlock()

		if token != "" {
			h.authorize(client, token)
		}
		go socket.ReadLoop()
	}
}

// Broadcast 推送变更给该 owner 的全部连接
func (h *Hub) Broadcast(change domain.NoteChange) {
	h.mu.Lock()
	targets := make([]*gws.Conn, 0, len(h.users[change.OwnerID]))
	for conn := range h.users[change.OwnerID] {
		targets = append(targets, conn)
	}
	h.mu.Unlock()
	if len(targets) == 0 {
		return
	}

	payload, err := Encode(TypeNoteChanged, change)
	if err != nil {
		h.logger.Error("encode note change failed", zap.Error(err))
		return
	}
	b := gws.NewBroadcaster(gws.OpcodeText, payload)
	defer b.Close()
	for _, conn := range targets {
		_ = b.Broadcast(conn)
	}
	h.logger.Debug("note change broadcast",
		zap.String(logger.FieldUID, change.OwnerID),
		zap.String(logger.FieldAction, string(change.Action)),
		zap.Int(logger.FieldCount, len(targets)))
}

// Online 某用户的已认证连接数
func (h *Hub) Online(uid string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.users[uid])
}

// Total 全部已认证连接数
func (h *Hub) Total() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, conns := range h.users {
		n += len(conns)
	}
	return n
}

func (h *Hub) reply(conn *gws.Conn, frameType string, c *code.Code) {
	payload, err := Encode(frameType, pkgapp.Res{Code: c.Code(), Status: c.Status(), Message: c.Msg()})
	if err != nil {
		return
	}
	_ = conn.WriteMessage(gws.OpcodeText, payload)
}

func (h *Hub) authorize(c *hubClient, token string) {
	user, err := h.auth(token)
	if err != nil || user == nil {
		h.logger.Warn("websocket authorization failed", zap.Error(err))
		h.reply(c.conn, TypeAuthorization, code.ErrorInvalidUserAuthToken)
		c.conn.WriteClose(1000, []byte("AuthorizationFailed"))
		return
	}

	h.mu.Lock()
	if c.user != nil {
		delete(h.users[c.user.UID], c.conn)
	} else {
		connections.Inc()
	}
	c.user = user
	if h.users[user.UID] == nil {
		h.users[user.UID] = make(map[*gws.Conn]*hubClient)
	}
	h.users[user.UID][c.conn] = c
	count := len(h.users[user.UID])
	h.mu.Unlock()

	h.reply(c.conn, TypeAuthorization, code.Success)
	h.logger.Info("websocket user enters", zap.String(logger.FieldUID, user.UID), zap.Int(logger.FieldCount, count))
	go h.pingLoop(c)
}

func (h *Hub) pingLoop(c *hubClient) {
	ticker := time.NewTicker(h.config.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if err := c.conn.WritePing(nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) OnOpen(conn *gws.Conn) {
	_ = conn.SetDeadline(time.Now().Add(h.config.PingWait))
}

func (h *Hub) OnClose(conn *gws.Conn, err error) {
	h.mu.Lock()
	c := h.clients[conn]
	delete(h.clients, conn)
	if c != nil && c.user != nil {
		delete(h.users[c.user.UID], conn)
		if len(h.users[c.user.UID]) == 0 {
			delete(h.users, c.user.UID)
		}
		connections.Dec()
	}
	h.mu.Unlock()

	if c != nil {
		c.stop()
		if c.user != nil {
			h.logger.Info("websocket user leave", zap.String(logger.FieldUID, c.user.UID))
		}
	}
}

func (h *Hub) OnPing(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(h.config.PingWait))
	_ = socket.WritePong(nil)
}

func (h *Hub) OnPong(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(h.config.PingWait))
}

func (h *Hub) OnMessage(conn *gws.Conn, message *gws.Message) {
	defer message.Close()
	if message.Opcode != gws.OpcodeText {
		return
	}
	_ = conn.SetDeadline(time.Now().Add(h.config.PingWait))

	text := message.Data.String()
	if text == "close" {
		conn.WriteClose(1000, []byte("ClientClose"))
		return
	}

	h.mu.Lock()
	c := h.clients[conn]
	h.mu.Unlock()
	if c == nil {
		return
	}

	frame, err := Decode(text)
	if err != nil {
		h.logger.Warn("websocket illegal message", zap.Error(err))
		return
	}
	switch frame.Type {
	case TypeAuthorization:
		h.authorize(c, string(frame.Data))
	default:
		if c.user == nil {
			h.reply(conn, TypeError, code.ErrorNotUserAuthToken)
			return
		}
		h.logger.Debug("websocket message ignored", zap.String("type", frame.Type))
	}
}
