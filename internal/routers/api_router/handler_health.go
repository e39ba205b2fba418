package api_router

import (
	"os"
	"runtime"
	"time"

	"github.com/dejay09121/Noteapp/internal/app"
	"github.com/dejay09121/Noteapp/internal/dto"
	pkgapp "github.com/dejay09121/Noteapp/pkg/app"
	"github.com/dejay09121/Noteapp/pkg/code"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	*Handler
}

// NewHealthHandler 创建健康检查处理器实例
func NewHealthHandler(a *app.App) *HealthHandler {
	return &HealthHandler{Handler: NewHandler(a)}
}

// Check 检查服务与数据库连接
// @Router /api/health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	data := dto.HealthDTO{
		Status:   "healthy",
		Version:  h.App.Version().Version,
		Uptime:   time.Since(h.App.StartTime).Seconds(),
		Database: "connected",
		Online:   h.App.Hub.Total(),
	}

	if err := h.App.DB.WithContext(c.Request.Context()).Exec("SELECT 1").Error; err != nil {
		h.logError(c.Request.Context(), "HealthHandler.Check", err)
		data.Status = "unhealthy"
		data.Database = "error"
		pkgapp.NewResponse(c).ToResponse(code.ErrorServerInternal.WithData(data))
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(data))
}

// SystemInfo 主机与进程状态
// @Router /api/health/system [get]
func (h *HealthHandler) SystemInfo(c *gin.Context) {
	data := dto.SystemInfoDTO{NumGoroutine: runtime.NumGoroutine()}

	if hInfo, err := host.InfoWithContext(c.Request.Context()); err == nil {
		data.Hostname = hInfo.Hostname
		data.OS = hInfo.OS
		data.Platform = hInfo.Platform
		data.KernelVersion = hInfo.KernelVersion
	}
	data.LogicalCores, _ = cpu.Counts(true)
	data.CPUPercent, _ = cpu.Percent(0, false)
	if vMem, err := mem.VirtualMemory(); err == nil {
		data.MemTotal = vMem.Total
		data.MemUsed = vMem.Used
		data.MemPercent = vMem.UsedPercent
	}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		data.PID = p.Pid
		data.ProcessCPU, _ = p.CPUPercent()
		data.ProcessMem, _ = p.MemoryPercent()
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(data))
}
