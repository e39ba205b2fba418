// Package task 后台定时任务
package task

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Task 定义任务接口
type Task interface {
	Name() string                  // 任务名称
	Run(ctx context.Context) error // 执行任务
	Schedule() cron.Schedule       // 执行计划，nil 表示只在启动时执行
	IsStartupRun() bool            // 是否立即执行一次
}

// specParser 标准五段表达式，另支持 @every 1m、@hourly 等描述符
var specParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSpec 解析 cron 表达式
func ParseSpec(spec string) (cron.Schedule, error) {
	return specParser.Parse(spec)
}

// Scheduler 任务调度器
type Scheduler struct {
	logger *zap.Logger
	tasks  []Task

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler 创建任务调度器
func NewScheduler(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{logger: logger}
}

// AddTask 添加任务
func (s *Scheduler) AddTask(task Task) {
	s.tasks = append(s.tasks, task)
}

// Start 启动所有任务，重复调用无效
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	if len(s.tasks) == 0 {
		s.logger.Info("no tasks to schedule")
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.logger.Info("tasks starting", zap.Int("count", len(s.tasks)))
	for _, task := range s.tasks {
		s.wg.Add(1)
		go s.loop(ctx, task)
	}
}

// Stop 取消全部任务并等待退出
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, task Task) {
	defer s.wg.Done()

	if task.IsStartupRun() {
		s.run(ctx, task, "startupRun")
	}

	schedule := task.Schedule()
	if schedule == nil {
		return
	}

	for {
		next := schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-timer.C:
			s.run(ctx, task, "loopRun")
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("task stopped", zap.String("name", task.Name()))
			return
		}
	}
}

// run 执行一次任务，panic 只记录日志
func (s *Scheduler) run(ctx context.Context, task Task, mode string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("task panic",
				zap.String("name", task.Name()),
				zap.String("mode", mode),
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
	}()
	s.logger.Debug("task running", zap.String("name", task.Name()), zap.String("mode", mode))
	if err := task.Run(ctx); err != nil {
		s.logger.Warn("task running error",
			zap.String("name", task.Name()),
			zap.String("mode", mode),
			zap.Error(err))
	}
}
