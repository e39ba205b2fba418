// Package writequeue 按 owner 串行化写操作
// 同一 owner 的写入按 FIFO 顺序执行，SQLite 下避免 "database is locked"
package writequeue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrWriteQueueFull owner 写队列已满
	ErrWriteQueueFull = errors.New("write queue is full")
	// ErrWriteQueueClosed 管理器已关闭
	ErrWriteQueueClosed = errors.New("write queue is closed")
	// ErrWriteTimeout 写操作超时
	ErrWriteTimeout = errors.New("write operation timeout")
)

// Config 写队列配置
type Config struct {
	// QueueCapacity 每个 owner 的队列容量，默认 100
	QueueCapacity int
	// WriteTimeout 等待单个写操作的超时，默认 30 秒
	WriteTimeout time.Duration
	// IdleTimeout 空闲队列回收时间，默认 10 分钟
	IdleTimeout time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		QueueCapacity: 100,
		WriteTimeout:  30 * time.Second,
		IdleTimeout:   10 * time.Minute,
	}
}

type writeOp struct {
	ctx    context.Context
	fn     func() error
	result chan error
}

type ownerQueue struct {
	owner    string
	ch       chan writeOp
	lastUsed atomic.Int64
	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

func (q *ownerQueue) stop() {
	q.stopOnce.Do(func() { close(q.stopCh) })
}

// Manager 管理所有 owner 的写队列
type Manager struct {
	config Config
	logger *zap.Logger

	mu     sync.Mutex
	queues map[string]*ownerQueue
	closed bool

	ctx       context.Context
	cancel    context.CancelFunc
	cleanupWg sync.WaitGroup
}

// New 创建写队列管理器，cfg 为 nil 时使用默认配置
func New(cfg *Config, logger *zap.Logger) *Manager {
	c := DefaultConfig()
	if cfg != nil {
		if cfg.QueueCapacity > 0 {
			c.QueueCapacity = cfg.QueueCapacity
		}
		if cfg.WriteTimeout > 0 {
			c.WriteTimeout = cfg.WriteTimeout
		}
		if cfg.IdleTimeout > 0 {
			c.IdleTimeout = cfg.IdleTimeout
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		config: c,
		logger: logger,
		queues: make(map[string]*ownerQueue),
		ctx:    ctx,
		cancel: cancel,
	}
	m.cleanupWg.Add(1)
	go m.cleanupIdleQueues()

	m.logger.Debug("write queue manager started",
		zap.Int("queueCapacity", c.QueueCapacity),
		zap.Duration("writeTimeout", c.WriteTimeout),
		zap.Duration("idleTimeout", c.IdleTimeout))
	return m
}

// Execute 在 owner 的队列上执行 fn 并等待结果
func (m *Manager) Execute(ctx context.Context, owner string, fn func() error) error {
	queue, err := m.queue(owner)
	if err != nil {
		return err
	}

	op := writeOp{ctx: ctx, fn: fn, result: make(chan error, 1)}
	select {
	case queue.ch <- op:
	default:
		return ErrWriteQueueFull
	}

	timer := time.NewTimer(m.config.WriteTimeout)
	defer timer.Stop()
	select {
	case err := <-op.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrWriteTimeout
	case <-m.ctx.Done():
		return ErrWriteQueueClosed
	}
}

func (m *Manager) queue(owner string) (*ownerQueue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrWriteQueueClosed
	}
	if q, ok := m.queues[owner]; ok {
		q.lastUsed.Store(time.Now().UnixNano())
		return q, nil
	}
	q := &ownerQueue{
		owner:  owner,
		ch:     make(chan writeOp, m.config.QueueCapacity),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
	q.lastUsed.Store(time.Now().UnixNano())
	m.queues[owner] = q
	go m.worker(q)

	m.logger.Debug("created write queue", zap.String("owner", owner))
	return q, nil
}

func (m *Manager) worker(q *ownerQueue) {
	defer close(q.done)
	for {
		select {
		case <-q.stopCh:
			m.drain(q)
			return
		case op := <-q.ch:
			m.execute(q, op)
		}
	}
}

func (m *Manager) execute(q *ownerQueue, op writeOp) {
	q.lastUsed.Store(time.Now().UnixNano())
	if err := op.ctx.Err(); err != nil {
		op.result <- err
		return
	}
	op.result <- op.fn()
}

func (m *Manager) drain(q *ownerQueue) {
	for {
		select {
		case op := <-q.ch:
			m.execute(q, op)
		default:
			return
		}
	}
}

func (m *Manager) cleanupIdleQueues() {
	defer m.cleanupWg.Done()
	ticker := time.NewTicker(m.config.IdleTimeout / 2)
	defer ticker.Stop()
	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.doCleanup()
		}
	}
}

// doCleanup 回收空闲且为空的队列
func (m *Manager) doCleanup() {
	threshold := time.Now().Add(-m.config.IdleTimeout).UnixNano()
	m.mu.Lock()
	defer m.mu.Unlock()
	for owner, q := range m.queues {
		if q.lastUsed.Load() < threshold && len(q.ch) == 0 {
			q.stop()
			delete(m.queues, owner)
			m.logger.Debug("cleaning up idle write queue", zap.String("owner", owner))
		}
	}
}

// Shutdown 停止接收新写入，执行完已排队的写操作
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	queues := make([]*ownerQueue, 0, len(m.queues))
	for _, q := range m.queues {
		q.stop()
		queues = append(queues, q)
	}
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		for _, q := range queues {
			<-q.done
		}
		close(done)
	}()

	defer func() {
		m.cancel()
		m.cleanupWg.Wait()
	}()
	select {
	case <-done:
		m.logger.Info("write queue manager shutdown completed")
		return nil
	case <-ctx.Done():
		m.logger.Warn("write queue manager shutdown timeout, forcing cancellation")
		return ctx.Err()
	}
}

// QueueCount 当前活跃队列数量
func (m *Manager) QueueCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queues)
}
