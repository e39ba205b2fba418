// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dejay09121/Noteapp/internal/dao"
	"github.com/dejay09121/Noteapp/internal/domain"
	"github.com/dejay09121/Noteapp/internal/realtime"
	"github.com/dejay09121/Noteapp/internal/service"
	"github.com/dejay09121/Noteapp/internal/upgrade"
	pkgapp "github.com/dejay09121/Noteapp/pkg/app"
	"github.com/dejay09121/Noteapp/pkg/storage"
	"github.com/dejay09121/Noteapp/pkg/writequeue"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

// App 服务端应用容器
type App struct {
	config *AppConfig
	logger *zap.Logger

	DB  *gorm.DB
	Dao *dao.Dao

	writeQueue *writequeue.Manager

	NoteRepo     domain.NoteRepository
	Broker       *realtime.Broker
	Hub          *realtime.Hub
	NoteService  service.NoteService
	TokenManager pkgapp.TokenManager
	Validator    *pkgapp.Validator
	// Media 未启用存储时为 nil
	Media storage.Storager

	StartTime time.Time

	shutdownOnce sync.Once
	unsubscribe  func()
}

// NewApp 创建服务端应用容器
func NewApp(cfg *AppConfig, logger *zap.Logger, db *gorm.DB) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	a := &App{
		config:    cfg,
		logger:    logger,
		DB:        db,
		StartTime: time.Now(),
	}

	dbConfig := cfg.DaoConfig()
	a.Dao = dao.New(db, context.Background(), dao.WithConfig(&dbConfig), dao.WithLogger(logger))
	if err := a.Dao.Migrate(); err != nil {
		return nil, err
	}
	if dbConfig.AutoMigrate {
		if err := upgrade.Execute(context.Background(), db, logger, Version); err != nil {
			return nil, fmt.Errorf("upgrade.Execute: %w", err)
		}
	}

	v, err := pkgapp.NewValidator()
	if err != nil {
		return nil, err
	}
	a.Validator = v

	a.TokenManager = pkgapp.NewTokenManager(pkgapp.TokenConfig{
		SecretKey: cfg.Security.AuthTokenKey,
		Expiry:    cfg.GetTokenExpiry(),
	})

	wqConfig := cfg.GetWriteQueueConfig()
	a.writeQueue = writequeue.New(&wqConfig, logger)

	a.NoteRepo = dao.NewNoteRepository(a.Dao)
	a.Broker = realtime.NewBroker()
	a.NoteService = service.NewNoteService(a.NoteRepo, a.Broker, logger, service.WithWriteQueue(a.writeQueue))

	a.Hub = realtime.NewHub(realtime.HubConfig{
		PingInterval: durationOr(cfg.Realtime.PingInterval, realtime.DefaultPingInterval),
		PingWait:     durationOr(cfg.Realtime.PingWait, realtime.DefaultPingWait),
	}, a.TokenManager.Parse, logger)
	a.unsubscribe = a.Broker.SubscribeAll(a.Hub.Broadcast)

	if cfg.Storage.IsEnabled {
		st, err := storage.NewClient(&cfg.Storage, logger)
		if err != nil {
			logger.Warn("media storage disabled", zap.String("type", cfg.Storage.Type), zap.Error(err))
		} else {
			a.Media = st
		}
	}

	logger.Info("App container initialized successfully",
		zap.String("database", cfg.Database.Type),
		zap.Int("writeQueueCapacity", wqConfig.QueueCapacity))
	return a, nil
}

// Config 获取应用配置
func (a *App) Config() *AppConfig {
	return a.config
}

// Logger 获取日志器
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// WriteQueueCount 当前活跃的 owner 写队列数
func (a *App) WriteQueueCount() int {
	return a.writeQueue.QueueCount()
}

// Version 获取版本信息
func (a *App) Version() pkgapp.VersionInfo {
	return VersionInfo()
}

// Shutdown 依次关闭变更推送、写队列与数据库
func (a *App) Shutdown(ctx context.Context) error {
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
	}

	var err error
	a.shutdownOnce.Do(func() {
		a.logger.Info("App container shutting down...")
		if a.unsubscribe != nil {
			a.unsubscribe()
		}
		if e := a.writeQueue.Shutdown(ctx); e != nil {
			a.logger.Warn("write queue shutdown error", zap.Error(e))
			err = e
		}
		if e := closeDB(a.DB); e != nil {
			err = e
		} else {
			a.logger.Info("Database connection closed")
		}
	})
	return err
}

func closeDB(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
