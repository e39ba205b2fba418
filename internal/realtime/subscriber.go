package realtime

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dejay09121/Noteapp/internal/domain"
	pkgapp "github.com/dejay09121/Noteapp/pkg/app"
	"github.com/dejay09121/Noteapp/pkg/logger"

	"github.com/lxzan/gws"
	"go.uber.org/zap"
)

// SubscriberConfig WebSocket 订阅端配置
type SubscriberConfig struct {
	// URL 形如 ws://host:port/api/notes/ws
	URL string
	// Token 返回当前登录 Token
	Token func() string
	// ReconnectMin / ReconnectMax 断线重连退避区间
	ReconnectMin time.Duration
	ReconnectMax time.Duration
}

// Subscriber 通过 WebSocket 订阅服务端的笔记变更，实现 domain.ChangeSource
// 断线重连成功后补发一次变更通知，确保断线期间的修改会被刷新
type Subscriber struct {
	config SubscriberConfig
	logger *zap.Logger
}

// NewSubscriber 创建订阅端
func NewSubscriber(c SubscriberConfig, lg *zap.Logger) *Subscriber {
	if c.ReconnectMin == 0 {
		c.ReconnectMin = time.Second
	}
	if c.ReconnectMax == 0 {
		c.ReconnectMax = 30 * time.Second
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Subscriber{config: c, logger: lg}
}

type subscription struct {
	ownerID  string
	onChange func(domain.NoteChange)
	logger   *zap.Logger

	mu   sync.Mutex
	conn *gws.Conn
}

var (
	errUnauthorized = errors.New("websocket authorization rejected")
	errAuthTimeout  = errors.New("websocket authorization timeout")
)

type subscriberHandler struct {
	gws.BuiltinEventHandler
	sub    *subscription
	authed chan bool
	closed chan struct{}
}

func (h *subscriberHandler) OnClose(socket *gws.Conn, err error) {
	close(h.closed)
}

func (h *subscriberHandler) OnPing(socket *gws.Conn, payload []byte) {
	_ = socket.WritePong(payload)
}

func (h *subscriberHandler) OnMessage(socket *gws.Conn, message *gws.Message) {
	defer message.Close()
	frame, err := Decode(message.Data.String())
	if err != nil {
		return
	}
	switch frame.Type {
	case TypeAuthorization:
		var res pkgapp.Res
		ok := frame.Bind(&res) == nil && res.Status
		select {
		case h.authed <- ok:
		default:
		}
	case TypeNoteChanged:
		var change domain.NoteChange
		if err := frame.Bind(&change); err != nil {
			h.sub.logger.Warn("decode note change failed", zap.Error(err))
			return
		}
		if change.OwnerID != h.sub.ownerID {
			return
		}
		h.sub.onChange(change)
	}
}

// Subscribe 建立订阅，返回的 unsubscribe 可重复调用
func (s *Subscriber) Subscribe(ctx context.Context, ownerID string, onChange func(domain.NoteChange)) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	sub := &subscription{ownerID: ownerID, onChange: onChange, logger: s.logger}

	closed, err := s.dial(ctx, sub)
	if err != nil {
		cancel()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.loop(ctx, sub, closed)
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			sub.mu.Lock()
			c := sub.conn
			sub.mu.Unlock()
			if c != nil {
				c.WriteClose(1000, []byte("unsubscribe"))
			}
			<-done
		})
	}, nil
}

func (s *Subscriber) loop(ctx context.Context, sub *subscription, closed <-chan struct{}) {
	backoff := s.config.ReconnectMin
	for {
		select {
		case <-ctx.Done():
			return
		case <-closed:
		}
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn("note change subscription lost, reconnecting", zap.String(logger.FieldUID, sub.ownerID))

		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			next, err := s.dial(ctx, sub)
			if err == nil {
				closed = next
				backoff = s.config.ReconnectMin
				break
			}
			s.logger.Debug("reconnect failed", zap.Error(err), zap.Duration("backoff", backoff))
			backoff *= 2
			if backoff > s.config.ReconnectMax {
				backoff = s.config.ReconnectMax
			}
		}
		// 断线期间的变更无法回放，以一次通知触发全量刷新
		sub.onChange(domain.NoteChange{OwnerID: sub.ownerID, At: time.Now()})
	}
}

// dial 建立连接并等待认证结果，返回连接关闭信号
func (s *Subscriber) dial(ctx context.Context, sub *subscription) (<-chan struct{}, error) {
	token := ""
	if s.config.Token != nil {
		token = s.config.Token()
	}
	handler := &subscriberHandler{sub: sub, authed: make(chan bool, 1), closed: make(chan struct{})}
	conn, _, err := gws.NewClient(handler, &gws.ClientOption{
		Addr:          s.config.URL,
		RequestHeader: http.Header{"token": []string{token}},
	})
	if err != nil {
		return nil, err
	}

	sub.mu.Lock()
	sub.conn = conn
	sub.mu.Unlock()

	// Token 已随握手发送，这里只等待服务端的认证结果
	go conn.ReadLoop()
	select {
	case ok := <-handler.authed:
		if !ok {
			conn.WriteClose(1000, nil)
			return nil, errUnauthorized
		}
	case <-time.After(10 * time.Second):
		conn.WriteClose(1000, nil)
		return nil, errAuthTimeout
	case <-ctx.Done():
		conn.WriteClose(1000, nil)
		return nil, ctx.Err()
	}
	return handler.closed, nil
}

// WebsocketURL 由 HTTP 服务地址推导 WebSocket 地址
func WebsocketURL(serverURL, path string) string {
	u := strings.TrimRight(serverURL, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + path
}
