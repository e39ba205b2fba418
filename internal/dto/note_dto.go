// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

import (
	"github.com/dejay09121/Noteapp/internal/domain"
)

// NoteCreateRequest 新建笔记请求
type NoteCreateRequest struct {
	Title    string `json:"title" form:"title" validate:"max=255"`
	Content  string `json:"content" form:"content" validate:"max=1048576"`
	MediaURL string `json:"mediaUrl" form:"mediaUrl" validate:"omitempty,url,max=2048"`
}

// NoteUpdateRequest 更新笔记请求，ID 取自路径参数
type NoteUpdateRequest struct {
	ID       string `json:"-" uri:"id" validate:"required,max=36"`
	Title    string `json:"title" form:"title" validate:"max=255"`
	Content  string `json:"content" form:"content" validate:"max=1048576"`
	MediaURL string `json:"mediaUrl" form:"mediaUrl" validate:"omitempty,url,max=2048"`
}

// NoteDeleteRequest 批量删除请求
type NoteDeleteRequest struct {
	IDs []string `json:"ids" form:"ids" validate:"required,min=1,max=500,dive,required,max=36"`
}

// Input 转为领域层的可编辑字段
func (r *NoteCreateRequest) Input() *domain.NoteInput {
	return &domain.NoteInput{Title: r.Title, Content: r.Content, MediaURL: r.MediaURL}
}

// Input 转为领域层的可编辑字段
func (r *NoteUpdateRequest) Input() *domain.NoteInput {
	return &domain.NoteInput{Title: r.Title, Content: r.Content, MediaURL: r.MediaURL}
}

// HealthDTO 健康检查响应
type HealthDTO struct {
	Status   string  `json:"status"`   // healthy 或 unhealthy
	Version  string  `json:"version"`  // 服务版本号
	Uptime   float64 `json:"uptime"`   // 运行时间（秒）
	Database string  `json:"database"` // connected 或 error
	Online   int     `json:"online"`   // 已认证的实时连接数
}

// SystemInfoDTO 主机与进程状态
type SystemInfoDTO struct {
	Hostname      string    `json:"hostname"`
	OS            string    `json:"os"`
	Platform      string    `json:"platform"`
	KernelVersion string    `json:"kernelVersion"`
	LogicalCores  int       `json:"logicalCores"`
	CPUPercent    []float64 `json:"cpuPercent"`
	MemTotal      uint64    `json:"memTotal"`
	MemUsed       uint64    `json:"memUsed"`
	MemPercent    float64   `json:"memPercent"`
	PID           int32     `json:"pid"`
	ProcessCPU    float64   `json:"processCpu"`
	ProcessMem    float32   `json:"processMem"`
	NumGoroutine  int       `json:"numGoroutine"`
}
