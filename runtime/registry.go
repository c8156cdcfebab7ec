package runtime

import (
	"sync"

	"barkroom/contract"
	"barkroom/domain"
)

// Registry is the process-wide mapping from room name to the group of live
// connections. Groups are created lazily on first join and removed once the
// last member leaves.
type Registry struct {
	mu     sync.RWMutex
	groups map[domain.RoomName]map[string]contract.EventSink
}

func NewRegistry() *Registry {
	return &Registry{
		groups: make(map[domain.RoomName]map[string]contract.EventSink),
	}
}

// Join adds a connection to the room's group, creating the group if absent.
// Idempotent: joining twice with the same connection ID is a set-add.
//
// It returns the group size after the mutation together with a sink snapshot
// taken in the same critical section. The caller broadcasts the join event to
// exactly that snapshot, so two racing joins can never both observe the
// pre-race count.
func (r *Registry) Join(roomName domain.RoomName, connID string, sink contract.EventSink) (int, []contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	group, ok := r.groups[roomName]
	if !ok {
		group = make(map[string]contract.EventSink)
		r.groups[roomName] = group
	}
	group[connID] = sink

	return len(group), snapshot(group)
}

// Leave removes a connection from the room's group if present. The returned
// bool reports whether the connection was actually a member, which lets a
// double disconnect degrade to a no-op without a second leave broadcast.
// Empty groups are deleted so abandoned rooms don't accumulate.
func (r *Registry) Leave(roomName domain.RoomName, connID string) (int, []contract.EventSink, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	group, ok := r.groups[roomName]
	if !ok {
		return 0, nil, false
	}
	if _, member := group[connID]; !member {
		return len(group), nil, false
	}
	delete(group, connID)

	if len(group) == 0 {
		delete(r.groups, roomName)
		return 0, nil, true
	}
	return len(group), snapshot(group), true
}

// Members returns a snapshot of the room's sinks for broadcast fan-out.
// Safe to iterate while other goroutines join and leave.
func (r *Registry) Members(roomName domain.RoomName) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return snapshot(r.groups[roomName])
}

// Count returns the current group size.
func (r *Registry) Count(roomName domain.RoomName) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups[roomName])
}

func snapshot(group map[string]contract.EventSink) []contract.EventSink {
	if len(group) == 0 {
		return nil
	}
	sinks := make([]contract.EventSink, 0, len(group))
	for _, sink := range group {
		sinks = append(sinks, sink)
	}
	return sinks
}
