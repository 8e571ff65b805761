package observability

import (
	"sync/atomic"
	"time"
)

// JobStats are process-local worker counters served on the worker's /stats endpoint.
// Prometheus carries the same signal across processes; these answer "what is this worker doing".
type JobStats struct {
	claimed     atomic.Uint64
	done        atomic.Uint64
	skipped     atomic.Uint64
	rescheduled atomic.Uint64
	failed      atomic.Uint64
	requeued    atomic.Uint64

	runs    atomic.Uint64
	totalNs atomic.Int64
	maxNs   atomic.Int64
}

func NewJobStats() *JobStats {
	return &JobStats{}
}

func (s *JobStats) Claimed() { s.claimed.Add(1) }
func (s *JobStats) Done() { s.done.Add(1) }
func (s *JobStats) Skipped() { s.skipped.Add(1) }
func (s *JobStats) Rescheduled() { s.rescheduled.Add(1) }
func (s *JobStats) Failed() { s.failed.Add(1) }
func (s *JobStats) Requeued(n int64) { s.requeued.Add(uint64(max(n, 0))) }

func (s *JobStats) Observe(d time.Duration) {
	ns := d.Nanoseconds()
	s.runs.Add(1)
	s.totalNs.Add(ns)

	for {
		cur := s.maxNs.Load()
		if ns <= cur || s.maxNs.CompareAndSwap(cur, ns) {
			return
		}
	}
}

type JobStatsSnapshot struct {
	Claimed     uint64 `json:"claimed"`
	Done        uint64 `json:"done"`
	Skipped     uint64 `json:"skipped"`
	Rescheduled uint64 `json:"rescheduled"`
	Failed      uint64 `json:"failed"`
	Requeued    uint64 `json:"requeued"`
	AvgMs       int64  `json:"avgMs"`
	MaxMs       int64  `json:"maxMs"`
}

func (s *JobStats) Snapshot() JobStatsSnapshot {
	runs := s.runs.Load()

	var avg time.Duration
	if runs > 0 {
		avg = time.Duration(s.totalNs.Load() / int64(runs))
	}

	return JobStatsSnapshot{
		Claimed:     s.claimed.Load(),
		Done:        s.done.Load(),
		Skipped:     s.skipped.Load(),
		Rescheduled: s.rescheduled.Load(),
		Failed:      s.failed.Load(),
		Requeued:    s.requeued.Load(),
		AvgMs:       avg.Milliseconds(),
		MaxMs:       time.Duration(s.maxNs.Load()).Milliseconds(),
	}
}
