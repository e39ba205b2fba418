package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	refreshApplied = "applied"
	refreshStale   = "stale"
	refreshSkipped = "skipped"
	refreshFailed  = "failed"
)

// 刷新触发来源
const (
	TriggerMount        = "mount"
	TriggerFocus        = "focus"
	TriggerNotification = "notification"
	TriggerPoll         = "poll"
	TriggerWrite        = "write"
	TriggerManual       = "manual"
)

var (
	refreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "noteapp",
		Subsystem: "sync",
		Name:      "refresh_total",
		Help:      "Refresh attempts by trigger and outcome.",
	}, []string{"trigger", "result"})

	refreshDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "noteapp",
		Subsystem: "sync",
		Name:      "refresh_duration_seconds",
		Help:      "Time spent fetching the owner's notes.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"trigger"})

	writeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "noteapp",
		Subsystem: "sync",
		Name:      "write_total",
		Help:      "Write operations by kind and outcome.",
	}, []string{"op", "result"})

	remoteNoteOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "noteapp",
		Subsystem: "store",
		Name:      "note_ops_total",
		Help:      "Note repository operations served by the backend.",
	}, []string{"op", "result"})
)

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
