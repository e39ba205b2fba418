// Package domain 定义领域模型和接口
package domain

import (
	"net/url"
	"strings"
	"time"
)

// NoteAction 定义笔记变更类型
type NoteAction string

const (
	NoteActionInsert NoteAction = "insert"
	NoteActionUpdate NoteAction = "update"
	NoteActionDelete NoteAction = "delete"
)

// Note 笔记领域模型
type Note struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	MediaURL  string    `json:"mediaUrl,omitempty"` // 为空表示没有附件
	CreatedAt time.Time `json:"createdAt"`
}

// NoteInput 新建或更新笔记时的可编辑字段
type NoteInput struct {
	Title    string `json:"title" validate:"max=255"`
	Content  string `json:"content" validate:"max=1048576"`
	MediaURL string `json:"mediaUrl" validate:"omitempty,url,max=2048"`
}

// HasMedia 是否带附件
func (n *Note) HasMedia() bool {
	return n.MediaURL != ""
}

// IsVideo 附件是否按视频渲染
func (n *Note) IsVideo() bool {
	return IsVideoURL(n.MediaURL)
}

// IsVideoURL reports whether a media URL ends in .mp4, ignoring case,
// query string and fragment.
func IsVideoURL(mediaURL string) bool {
	p := mediaURL
	if u, err := url.Parse(mediaURL); err == nil && u.Path != "" {
		p = u.Path
	}
	return strings.HasSuffix(strings.ToLower(p), ".mp4")
}

// NoteChange 远端集合变更通知，不携带数据
type NoteChange struct {
	OwnerID string     `json:"ownerId"`
	Action  NoteAction `json:"action"`
	At      time.Time  `json:"at"`
}
