package observability

import (
	"chat-hub/contract"
	"chat-hub/domain/event"
	"context"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// TrafficStats is the latest snapshot of the broadcast traffic.
type TrafficStats struct {
	Created         uint64    `json:"created"`
	Edited          uint64    `json:"edited"`
	Deleted         uint64    `json:"deleted"`
	Failed          uint64    `json:"failed"`
	EventsPerSecond float64   `json:"eventsPerSecond"`
	AllocMemMb      uint64    `json:"allocMemMb"`
	NumGC           uint32    `json:"numGc"`
	At              time.Time `json:"at"`
}

// Monitor counts every event handed to the next broadcaster and
// refreshes a snapshot on each interval while it runs.
type Monitor struct {
	log      *slog.Logger
	next     contract.IBroadcaster
	interval time.Duration

	created atomic.Uint64
	edited  atomic.Uint64
	deleted atomic.Uint64
	failed  atomic.Uint64
	// events since the last refresh
	window atomic.Uint64

	mu        sync.RWMutex
	latest    TrafficStats
	lastCheck time.Time
}

func NewMonitor(log *slog.Logger, next contract.IBroadcaster, interval time.Duration) *Monitor {
	return &Monitor{log: log, next: next, interval: interval, lastCheck: time.Now()}
}

func (m *Monitor) Broadcast(ctx context.Context, e event.DomainEvent) error {
	switch e.Kind() {
	case event.KindNewMessage:
		m.created.Add(1)
	case event.KindEditedMessage:
		m.edited.Add(1)
	case event.KindDeletedMessage:
		m.deleted.Add(1)
	}
	m.window.Add(1)
	err := m.next.Broadcast(ctx, e)
	if err != nil {
		m.failed.Add(1)
	}
	return err
}

func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.log.Debug("Context done, stopping traffic monitoring")
			return nil
		case now := <-ticker.C:
			m.refresh(now)
		}
	}
}

func (m *Monitor) refresh(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if elapsed := now.Sub(m.lastCheck).Seconds(); elapsed > 0 {
		m.latest.EventsPerSecond = float64(m.window.Swap(0)) / elapsed
	}
	m.lastCheck = now

	m.latest.Created = m.created.Load()
	m.latest.Edited = m.edited.Load()
	m.latest.Deleted = m.deleted.Load()
	m.latest.Failed = m.failed.Load()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	m.latest.AllocMemMb = mem.Alloc / 1024 / 1024
	m.latest.NumGC = mem.NumGC
	m.latest.At = now.UTC()

	m.log.Debug("Traffic stats updated",
		"events_per_second", m.latest.EventsPerSecond,
		"created", m.latest.Created,
		"failed", m.latest.Failed,
		"mem_mb", m.latest.AllocMemMb,
	)
}

// Latest returns the snapshot of the last refresh.
func (m *Monitor) Latest() TrafficStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest
}
