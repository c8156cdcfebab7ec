package observability

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"barkroom/domain/event"
)

// RecentMessageInfo is one row of the debug server's live feed.
type RecentMessageInfo struct {
	Room      string `json:"room"`
	Author    string `json:"author"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// MonitoringStats aggregates all metrics for the debug UI.
type MonitoringStats struct {
	MessagesPosted   uint64 `json:"messages_posted"`
	MessagesCensored uint64 `json:"messages_censored"`
	UsersJoined      uint64 `json:"users_joined"`
	UsersLeft        uint64 `json:"users_left"`

	AllocMemMb    uint64              `json:"alloc_mem_mb"`
	NumGC         uint32              `json:"num_gc"`
	RecentTraffic []RecentMessageInfo `json:"recent_traffic"`
}

// MonitoringManager counts pipeline traffic. It doubles as a permanent event
// sink so it sees every event the fanout delivers.
type MonitoringManager struct {
	mu          sync.RWMutex
	latestStats MonitoringStats

	messagesPosted   uint64
	messagesCensored uint64
	usersJoined      uint64
	usersLeft        uint64
}

func NewMonitoringManager() *MonitoringManager {
	return &MonitoringManager{
		latestStats: MonitoringStats{
			RecentTraffic: make([]RecentMessageInfo, 0),
		},
	}
}

// Consume tallies every event type flowing through the pipeline.
func (mm *MonitoringManager) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.SanitizedMessage:
		atomic.AddUint64(&mm.messagesPosted, 1)
		status := "clean"
		if len(evt.CensoredWords) > 0 {
			atomic.AddUint64(&mm.messagesCensored, 1)
			status = "censored"
		}
		mm.addTraffic(string(evt.RoomName), evt.Author, status)
	case event.UserJoined:
		atomic.AddUint64(&mm.usersJoined, 1)
	case event.UserLeft:
		atomic.AddUint64(&mm.usersLeft, 1)
	}
	return nil
}

func (mm *MonitoringManager) addTraffic(room, author, status string) {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	row := RecentMessageInfo{
		Room:      room,
		Author:    author,
		Status:    status,
		Timestamp: time.Now().Format("15:04:05"),
	}

	mm.latestStats.RecentTraffic = append([]RecentMessageInfo{row}, mm.latestStats.RecentTraffic...)
	if len(mm.latestStats.RecentTraffic) > 20 {
		mm.latestStats.RecentTraffic = mm.latestStats.RecentTraffic[:20]
	}
}

// Stats snapshots the counters plus process memory figures.
func (mm *MonitoringManager) Stats() MonitoringStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	mm.mu.RLock()
	defer mm.mu.RUnlock()

	stats := mm.latestStats
	stats.MessagesPosted = atomic.LoadUint64(&mm.messagesPosted)
	stats.MessagesCensored = atomic.LoadUint64(&mm.messagesCensored)
	stats.UsersJoined = atomic.LoadUint64(&mm.usersJoined)
	stats.UsersLeft = atomic.LoadUint64(&mm.usersLeft)
	stats.AllocMemMb = mem.Alloc / 1024 / 1024
	stats.NumGC = mem.NumGC
	stats.RecentTraffic = append([]RecentMessageInfo(nil), stats.RecentTraffic...)
	return stats
}
