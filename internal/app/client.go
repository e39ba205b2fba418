package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/dejay09121/Noteapp/internal/dao"
	"github.com/dejay09121/Noteapp/internal/domain"
	"github.com/dejay09121/Noteapp/internal/realtime"
	"github.com/dejay09121/Noteapp/internal/remote"
	"github.com/dejay09121/Noteapp/internal/service"
	pkgapp "github.com/dejay09121/Noteapp/pkg/app"
	"github.com/dejay09121/Noteapp/pkg/code"
	"github.com/dejay09121/Noteapp/pkg/storage"
	"github.com/dejay09121/Noteapp/pkg/workerpool"

	"go.uber.org/zap"
)

// Client 客户端容器：会话、同步控制器、视图依赖与媒体上传
type Client struct {
	config *AppConfig
	logger *zap.Logger

	Session *service.TokenSession
	Remote  domain.NoteRemote
	Changes domain.ChangeSource
	Sync    service.SyncService
	Media   service.MediaService
	// HTTP 仅在 remote 模式下非空
	HTTP *remote.Client

	pool    *workerpool.Pool
	server  *App
	errMu   sync.Mutex
	onError func(error)
}

// ClientOption 客户端容器选项
type ClientOption func(*Client)

// WithErrorHandler 后台刷新失败时回调
func WithErrorHandler(fn func(error)) ClientOption {
	return func(c *Client) {
		c.onError = fn
	}
}

// NewClient 按 client.mode 组装客户端
// remote 模式通过 HTTP 与 WebSocket 访问服务端；embedded 模式在进程内直接使用数据库与 Broker
func NewClient(cfg *AppConfig, lg *zap.Logger, opts ...ClientOption) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	if err := code.SetGlobalDefaultLang(cfg.Client.Lang); err != nil {
		lg.Warn("unsupported client language", zap.String("lang", cfg.Client.Lang))
	}

	c := &Client{config: cfg, logger: lg}
	for _, opt := range opts {
		opt(c)
	}

	switch cfg.Client.Mode {
	case ModeEmbedded:
		db, err := dao.NewDBEngine(cfg.DaoConfig())
		if err != nil {
			return nil, err
		}
		server, err := NewApp(cfg, lg, db)
		if err != nil {
			_ = closeDB(db)
			return nil, err
		}
		c.server = server
		c.Session = service.NewTokenSession(cfg.Client.Token, server.TokenManager.Parse)
		c.Remote = server.NoteService
		c.Changes = server.Broker
	case ModeRemote, "":
		c.Session = service.NewTokenSession(cfg.Client.Token, nil)
		c.HTTP = remote.New(remote.Config{
			ServerURL: cfg.Client.ServerURL,
			Timeout:   cfg.GetClientTimeout(),
			Token:     c.Session.Token,
			Lang:      cfg.Client.Lang,
		}, lg)
		c.Remote = c.HTTP
		c.Changes = realtime.NewSubscriber(realtime.SubscriberConfig{
			URL:          realtime.WebsocketURL(cfg.Client.ServerURL, cfg.Realtime.Path),
			Token:        c.Session.Token,
			ReconnectMin: durationOr(cfg.Realtime.ReconnectMin, 0),
			ReconnectMax: durationOr(cfg.Realtime.ReconnectMax, 0),
		}, lg)
	default:
		return nil, fmt.Errorf("unsupported client mode: %s", cfg.Client.Mode)
	}

	wpConfig := cfg.GetWorkerPoolConfig()
	c.pool = workerpool.New(&wpConfig, lg)

	validator, err := pkgapp.NewValidator()
	if err != nil {
		return nil, err
	}
	c.Sync, err = service.NewSyncService(service.SyncDeps{
		Remote:    c.Remote,
		Changes:   c.Changes,
		Session:   c.Session,
		Validator: validator,
		Pool:      c.pool,
		Logger:    lg,
		OnError:   c.reportError,
	})
	if err != nil {
		return nil, err
	}

	c.Media = service.NewMediaService(c.mediaStore(), lg)
	return c, nil
}

func (c *Client) mediaStore() domain.MediaStore {
	if c.server != nil && c.server.Media != nil {
		return c.server.Media
	}
	if !c.config.Storage.IsEnabled {
		return nil
	}
	st, err := storage.NewClient(&c.config.Storage, c.logger)
	if err != nil {
		c.logger.Warn("media storage disabled", zap.String("type", c.config.Storage.Type), zap.Error(err))
		return nil
	}
	return st
}

func (c *Client) reportError(err error) {
	c.errMu.Lock()
	fn := c.onError
	c.errMu.Unlock()
	if fn != nil {
		fn(err)
		return
	}
	c.logger.Warn("background refresh failed", zap.Error(err))
}

// SetErrorHandler 替换后台刷新失败回调
func (c *Client) SetErrorHandler(fn func(error)) {
	c.errMu.Lock()
	c.onError = fn
	c.errMu.Unlock()
}

// Config 获取应用配置
func (c *Client) Config() *AppConfig {
	return c.config
}

// Logger 获取日志器
func (c *Client) Logger() *zap.Logger {
	return c.logger
}

// Close 停止同步、关闭 Worker Pool 与内嵌数据库
func (c *Client) Close(ctx context.Context) error {
	if err := c.Sync.Stop(ctx); err != nil {
		c.logger.Warn("sync stop error", zap.Error(err))
	}
	if err := c.pool.Shutdown(ctx); err != nil {
		c.logger.Warn("worker pool shutdown error", zap.Error(err))
	}
	if c.server != nil {
		return c.server.Shutdown(ctx)
	}
	return nil
}
