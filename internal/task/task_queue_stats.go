package task

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// QueueStatsTask 定期记录服务端写队列与在线连接数
type QueueStatsTask struct {
	logger   *zap.Logger
	queues   func() int
	online   func() int
	schedule cron.Schedule
}

// NewQueueStatsTask 创建统计任务
func NewQueueStatsTask(logger *zap.Logger, queues, online func() int, spec string) (*QueueStatsTask, error) {
	schedule, err := ParseSpec(spec)
	if err != nil {
		return nil, err
	}
	return &QueueStatsTask{logger: logger, queues: queues, online: online, schedule: schedule}, nil
}

func (t *QueueStatsTask) Name() string { return "QueueStats" }

func (t *QueueStatsTask) Run(ctx context.Context) error {
	t.logger.Info("server stats",
		zap.Int("writeQueues", t.queues()),
		zap.Int("online", t.online()))
	return nil
}

func (t *QueueStatsTask) Schedule() cron.Schedule { return t.schedule }

func (t *QueueStatsTask) IsStartupRun() bool { return false }
