package task

import (
	"context"

	"github.com/dejay09121/Noteapp/internal/service"

	"github.com/robfig/cron/v3"
)

// PollRefreshTask 兜底轮询：变更通知丢失时仍能追上服务端
type PollRefreshTask struct {
	sync     service.SyncService
	schedule cron.Schedule
}

// NewPollRefreshTask spec 为空时返回 nil, nil
func NewPollRefreshTask(sync service.SyncService, spec string) (*PollRefreshTask, error) {
	if spec == "" {
		return nil, nil
	}
	schedule, err := ParseSpec(spec)
	if err != nil {
		return nil, err
	}
	return &PollRefreshTask{sync: sync, schedule: schedule}, nil
}

func (t *PollRefreshTask) Name() string { return "PollRefresh" }

// Run 刷新本地笔记集合，未登录时静默返回
func (t *PollRefreshTask) Run(ctx context.Context) error {
	return t.sync.RefreshWithTrigger(ctx, service.TriggerPoll)
}

func (t *PollRefreshTask) Schedule() cron.Schedule { return t.schedule }

// IsStartupRun 启动时由 mount 触发刷新，无需重复
func (t *PollRefreshTask) IsStartupRun() bool { return false }
