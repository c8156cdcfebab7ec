package runtime

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"barkroom/domain"
	"barkroom/domain/event"
)

type Sink struct {
}

func (s Sink) Consume(ctx context.Context, e event.DomainEvent) error {
	return nil
}

func TestRegistry_Join_One_Room_One_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connID := uuid.NewString()
	roomName := domain.RoomName("lobby")
	sink := Sink{}

	// Given no connection is joined
	req.Zero(registry.Count(roomName))
	req.Nil(registry.Members(roomName))

	// When a connection joins a room
	count, sinks := registry.Join(roomName, connID, sink)

	// Then the count and the snapshot reflect the addition
	req.Equal(1, count)
	req.Len(sinks, 1)
	req.Contains(sinks, Sink{})

	req.Equal(1, registry.Count(roomName))
	req.Len(registry.Members(roomName), 1)
}

func TestRegistry_Join_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connID := uuid.NewString()
	roomName := domain.RoomName("lobby")

	// When the same connection joins twice
	registry.Join(roomName, connID, Sink{})
	count, sinks := registry.Join(roomName, connID, Sink{})

	// Then the group still holds a single member
	req.Equal(1, count)
	req.Len(sinks, 1)
}

func TestRegistry_Leave_One_Room_One_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connID := uuid.NewString()
	roomName := domain.RoomName("lobby")

	// Given a joined connection
	registry.Join(roomName, connID, Sink{})

	// When the connection leaves
	count, sinks, present := registry.Leave(roomName, connID)

	// Then no member is left and the empty group is removed
	req.True(present)
	req.Zero(count)
	req.Nil(sinks)
	req.Zero(registry.Count(roomName))
	req.Nil(registry.Members(roomName))
}

func TestRegistry_Leave_Absent_Connection_Is_NoOp(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	roomName := domain.RoomName("lobby")
	registry.Join(roomName, uuid.NewString(), Sink{})

	// When an unknown connection leaves (e.g. disconnect fired twice)
	count, _, present := registry.Leave(roomName, uuid.NewString())

	// Then nothing changes
	req.False(present)
	req.Equal(1, count)
	req.Equal(1, registry.Count(roomName))
}

func TestRegistry_Leave_Keeps_Remaining_Members(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	roomName := domain.RoomName("lobby")
	connID1 := uuid.NewString()
	connID2 := uuid.NewString()

	registry.Join(roomName, connID1, Sink{})
	registry.Join(roomName, connID2, Sink{})

	// When one of two connections leaves
	count, sinks, present := registry.Leave(roomName, connID1)

	// Then the remaining member is still in the snapshot
	req.True(present)
	req.Equal(1, count)
	req.Len(sinks, 1)
}

func TestRegistry_Rooms_Are_Isolated(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	registry.Join("lobby", uuid.NewString(), Sink{})
	registry.Join("lobby", uuid.NewString(), Sink{})
	registry.Join("gossip", uuid.NewString(), Sink{})

	req.Equal(2, registry.Count("lobby"))
	req.Equal(1, registry.Count("gossip"))
}

// Each concurrent join must observe a count that includes at least its own
// addition; the final count must equal the number of joiners.
func TestRegistry_Concurrent_Joins_Never_Report_Stale_Counts(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	roomName := domain.RoomName("lobby")
	joiners := 50

	type observation struct {
		count    int
		snapshot int
	}

	var wg sync.WaitGroup
	observations := make(chan observation, joiners)
	for i := 0; i < joiners; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			count, sinks := registry.Join(roomName, uuid.NewString(), Sink{})
			observations <- observation{count: count, snapshot: len(sinks)}
		}()
	}
	wg.Wait()
	close(observations)

	seen := make(map[int]bool)
	for o := range observations {
		req.GreaterOrEqual(o.count, 1)
		req.Equal(o.count, o.snapshot)
		req.False(seen[o.count], "two joins observed the same count %d", o.count)
		seen[o.count] = true
	}
	req.Equal(joiners, registry.Count(roomName))
}
