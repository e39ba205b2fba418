// Package workerpool 固定数量 worker 的任务池
// 用于承接变更通知触发的刷新，避免每条通知各起一个 goroutine
package workerpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	// ErrWorkerPoolFull 任务队列已满
	ErrWorkerPoolFull = errors.New("worker pool queue is full")
	// ErrWorkerPoolClosed Worker Pool 已关闭
	ErrWorkerPoolClosed = errors.New("worker pool is closed")
)

// Config Worker Pool 配置
type Config struct {
	// MaxWorkers 并发 worker 数量，默认 4
	MaxWorkers int
	// QueueSize 任务队列大小，默认 64
	QueueSize int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{MaxWorkers: 4, QueueSize: 64}
}

type task struct {
	ctx  context.Context
	fn   func(context.Context) error
	done chan error
}

// Pool Worker Pool
type Pool struct {
	config Config
	logger *zap.Logger

	tasks chan task
	wg    sync.WaitGroup

	active atomic.Int64
	failed atomic.Int64

	mu     sync.RWMutex
	closed bool
}

// New 创建并启动 Worker Pool，cfg 为 nil 时使用默认配置
func New(cfg *Config, logger *zap.Logger) *Pool {
	c := DefaultConfig()
	if cfg != nil {
		if cfg.MaxWorkers > 0 {
			c.MaxWorkers = cfg.MaxWorkers
		}
		if cfg.QueueSize > 0 {
			c.QueueSize = cfg.QueueSize
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Pool{
		config: c,
		logger: logger,
		tasks:  make(chan task, c.QueueSize),
	}
	for i := 0; i < c.MaxWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	p.logger.Debug("worker pool started",
		zap.Int("maxWorkers", c.MaxWorkers),
		zap.Int("queueSize", c.QueueSize))
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for t := range p.tasks {
		p.run(t)
	}
}

func (p *Pool) run(t task) {
	p.active.Add(1)
	defer p.active.Add(-1)

	var err error
	if cerr := t.ctx.Err(); cerr != nil {
		err = cerr
	} else {
		err = t.fn(t.ctx)
	}
	if err != nil {
		p.failed.Add(1)
		if t.done == nil {
			p.logger.Warn("worker pool task failed", zap.Error(err))
		}
	}
	if t.done != nil {
		t.done <- err
	}
}

func (p *Pool) enqueue(t task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrWorkerPoolClosed
	}
	select {
	case p.tasks <- t:
		return nil
	default:
		return ErrWorkerPoolFull
	}
}

// Submit 提交任务并等待其完成
func (p *Pool) Submit(ctx context.Context, fn func(context.Context) error) error {
	done := make(chan error, 1)
	if err := p.enqueue(task{ctx: ctx, fn: fn, done: done}); err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SubmitAsync 提交任务后立即返回，任务错误只记录日志
func (p *Pool) SubmitAsync(ctx context.Context, fn func(context.Context) error) error {
	return p.enqueue(task{ctx: ctx, fn: fn})
}

// ActiveCount 正在执行的任务数
func (p *Pool) ActiveCount() int64 {
	return p.active.Load()
}

// FailedCount 累计失败任务数
func (p *Pool) FailedCount() int64 {
	return p.failed.Load()
}

// Shutdown 停止接收新任务，等待已入队任务执行完毕
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		p.logger.Debug("worker pool shutdown completed")
		return nil
	case <-ctx.Done():
		p.logger.Warn("worker pool shutdown timeout", zap.Int64("active", p.active.Load()))
		return ctx.Err()
	}
}
