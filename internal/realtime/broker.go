package realtime

import (
	"context"
	"sync"

	"github.com/dejay09121/Noteapp/internal/domain"
)

// Broker 进程内变更广播，同时实现 domain.ChangeSource 与 domain.ChangePublisher
// Callbacks run on the publishing goroutine and must not block.
type Broker struct {
	mu     sync.RWMutex
	nextID uint64
	owners map[string]map[uint64]func(domain.NoteChange)
	all    map[uint64]func(domain.NoteChange)
}

func NewBroker() *Broker {
	return &Broker{
		owners: make(map[string]map[uint64]func(domain.NoteChange)),
		all:    make(map[uint64]func(domain.NoteChange)),
	}
}

// Subscribe 订阅某个 owner 的变更，ctx 结束时自动取消
func (b *Broker) Subscribe(ctx context.Context, ownerID string, onChange func(domain.NoteChange)) (func(), error) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	if b.owners[ownerID] == nil {
		b.owners[ownerID] = make(map[uint64]func(domain.NoteChange))
	}
	b.owners[ownerID][id] = onChange
	b.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.owners[ownerID], id)
			if len(b.owners[ownerID]) == 0 {
				delete(b.owners, ownerID)
			}
			b.mu.Unlock()
		})
	}
	if ctx != nil && ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			unsubscribe()
		}()
	}
	return unsubscribe, nil
}

// SubscribeAll 订阅全部 owner 的变更，用于 WebSocket 转发
func (b *Broker) SubscribeAll(onChange func(domain.NoteChange)) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.all[id] = onChange
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.all, id)
			b.mu.Unlock()
		})
	}
}

// Publish 投递变更
func (b *Broker) Publish(change domain.NoteChange) {
	b.mu.RLock()
	fns := make([]func(domain.NoteChange), 0, len(b.owners[change.OwnerID])+len(b.all))
	for _, fn := range b.owners[change.OwnerID] {
		fns = append(fns, fn)
	}
	for _, fn := range b.all {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(change)
	}
}

// Subscribers 当前 owner 的订阅数
func (b *Broker) Subscribers(ownerID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.owners[ownerID])
}
