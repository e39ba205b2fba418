package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dejay09121/Noteapp/internal/service"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countTask struct {
	runs     atomic.Int32
	startup  bool
	schedule cron.Schedule
	panics   bool
}

func (t *countTask) Name() string { return "count" }
func (t *countTask) Run(ctx context.Context) error {
	t.runs.Add(1)
	if t.panics {
		panic("boom")
	}
	return errors.New("ignored")
}
func (t *countTask) Schedule() cron.Schedule { return t.schedule }
func (t *countTask) IsStartupRun() bool      { return t.startup }

func TestScheduler_RunsOnSchedule(t *testing.T) {
	task := &countTask{startup: true, schedule: cron.Every(10 * time.Millisecond), panics: true}
	s := NewScheduler(zap.NewNop())
	s.AddTask(task)
	s.Start(context.Background())
	s.Start(context.Background())

	require.Eventually(t, func() bool { return task.runs.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	s.Stop()
	n := task.runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, n, task.runs.Load())
}

func TestScheduler_StartupOnly(t *testing.T) {
	task := &countTask{startup: true}
	s := NewScheduler(nil)
	s.AddTask(task)
	s.Start(context.Background())
	require.Eventually(t, func() bool { return task.runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	s.Stop()
}

func TestParseSpec(t *testing.T) {
	_, err := ParseSpec("@every 5m")
	assert.NoError(t, err)
	_, err = ParseSpec("*/5 * * * *")
	assert.NoError(t, err)
	_, err = ParseSpec("nope")
	assert.Error(t, err)
}

type fakeSync struct {
	service.SyncService
	triggers chan string
}

func (f *fakeSync) RefreshWithTrigger(ctx context.Context, trigger string) error {
	f.triggers <- trigger
	return nil
}

func TestPollRefreshTask(t *testing.T) {
	task, err := NewPollRefreshTask(&fakeSync{}, "")
	require.NoError(t, err)
	assert.Nil(t, task)

	_, err = NewPollRefreshTask(&fakeSync{}, "every five")
	assert.Error(t, err)

	fs := &fakeSync{triggers: make(chan string, 1)}
	task, err = NewPollRefreshTask(fs, "@every 1m")
	require.NoError(t, err)
	assert.False(t, task.IsStartupRun())
	require.NoError(t, task.Run(context.Background()))
	assert.Equal(t, service.TriggerPoll, <-fs.triggers)
}
