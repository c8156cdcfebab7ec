package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"barkroom/domain/event"
)

func Test_Monitoring_Tallies_Pipeline_Events(t *testing.T) {
	req := require.New(t)
	monitor := NewMonitoringManager()
	ctx := context.Background()

	// Given a clean message, a censored one and a presence round trip
	req.NoError(monitor.Consume(ctx, event.SanitizedMessage{
		RoomName: "lobby", Author: "alice", Content: "hello",
	}))
	req.NoError(monitor.Consume(ctx, event.SanitizedMessage{
		RoomName: "lobby", Author: "bob", Content: "you *****",
		CensoredWords: []string{"idiot"},
	}))
	req.NoError(monitor.Consume(ctx, event.UserJoined{RoomName: "lobby", User: "alice", Count: 1}))
	req.NoError(monitor.Consume(ctx, event.UserLeft{RoomName: "lobby", User: "alice", Count: 0}))

	stats := monitor.Stats()
	req.Equal(uint64(2), stats.MessagesPosted)
	req.Equal(uint64(1), stats.MessagesCensored)
	req.Equal(uint64(1), stats.UsersJoined)
	req.Equal(uint64(1), stats.UsersLeft)

	// The live feed keeps the newest row first
	req.Len(stats.RecentTraffic, 2)
	req.Equal("bob", stats.RecentTraffic[0].Author)
	req.Equal("censored", stats.RecentTraffic[0].Status)
	req.Equal("clean", stats.RecentTraffic[1].Status)
}
