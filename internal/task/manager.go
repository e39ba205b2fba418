package task

import (
	"context"

	"github.com/dejay09121/Noteapp/internal/app"

	"go.uber.org/zap"
)

// statsSpec 服务端统计日志间隔
const statsSpec = "@every 10m"

// Manager 任务管理器,负责创建和管理所有任务
type Manager struct {
	scheduler *Scheduler
	logger    *zap.Logger
}

// NewManager 创建任务管理器
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		scheduler: NewScheduler(logger),
		logger:    logger,
	}
}

// RegisterClientTasks 注册客户端任务
func (m *Manager) RegisterClientTasks(c *app.Client) error {
	poll, err := NewPollRefreshTask(c.Sync, c.Config().Client.PollSpec)
	if err != nil {
		m.logger.Warn("failed to create poll refresh task", zap.Error(err))
		return err
	}
	if poll == nil {
		m.logger.Info("poll refresh task is disabled (poll-spec not configured)")
		return nil
	}
	m.scheduler.AddTask(poll)
	return nil
}

// RegisterServerTasks 注册服务端任务
func (m *Manager) RegisterServerTasks(a *app.App) error {
	stats, err := NewQueueStatsTask(m.logger, a.WriteQueueCount, a.Hub.Total, statsSpec)
	if err != nil {
		return err
	}
	m.scheduler.AddTask(stats)
	return nil
}

// Start 启动所有已注册的任务
func (m *Manager) Start(ctx context.Context) {
	m.scheduler.Start(ctx)
}

// Stop 停止所有任务
func (m *Manager) Stop() {
	m.scheduler.Stop()
}
