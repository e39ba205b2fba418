// Package domain 定义领域模型和接口
package domain

import (
	"context"
	"io"
)

// NoteRepository 笔记仓储接口，由数据库实现，所有操作按 owner 隔离
type NoteRepository interface {
	// ListByOwner 获取 owner 的全部笔记，按 created_at 倒序
	ListByOwner(ctx context.Context, ownerID string) ([]*Note, error)

	// Create 创建笔记，ID 与 CreatedAt 由仓储分配
	Create(ctx context.Context, note *Note) (*Note, error)

	// Update 按 ID 更新可编辑字段
	Update(ctx context.Context, ownerID, id string, in *NoteInput) (*Note, error)

	// DeleteByIDs 批量删除，返回实际删除条数
	DeleteByIDs(ctx context.Context, ownerID string, ids []string) (int64, error)
}

// NoteRemote 远程笔记存储协作者
// The sync engine only reaches the remote store through this contract.
type NoteRemote interface {
	List(ctx context.Context, ownerID string) ([]*Note, error)
	Insert(ctx context.Context, ownerID string, in *NoteInput) (*Note, error)
	Update(ctx context.Context, ownerID, id string, in *NoteInput) (*Note, error)
	DeleteBatch(ctx context.Context, ownerID string, ids []string) error
}

// ChangeSource 远程变更通知订阅
// onChange 可能在任意 goroutine 上被调用；返回的 unsubscribe 可重复调用
type ChangeSource interface {
	Subscribe(ctx context.Context, ownerID string, onChange func(NoteChange)) (unsubscribe func(), err error)
}

// ChangePublisher 写入成功后发布变更通知
type ChangePublisher interface {
	Publish(change NoteChange)
}

// SessionProvider 解析当前登录用户，未登录时返回 (nil, nil)
type SessionProvider interface {
	CurrentUser(ctx context.Context) (*User, error)
}

// MediaStore 媒体上传协作者
type MediaStore interface {
	SendFile(ctx context.Context, fileKey string, file io.Reader, contentType string) (string, error)
	PublicURL(fileKey string) string
}
