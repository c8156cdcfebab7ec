package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"barkroom/contract"
	"barkroom/domain/event"
	"barkroom/mocks"
)

func TestEventFanout_Delivers_To_Room_And_Permanent_Sinks(t *testing.T) {
	log := slog.Default()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockIRegistry(ctrl)
	roomSink := mocks.NewMockEventSink(ctrl)
	permanentSink := mocks.NewMockEventSink(ctrl)

	fanout := NewEventFanout(log, mockRegistry, nil, 10*time.Second).Add(permanentSink)

	evt := event.SanitizedMessage{RoomName: "lobby", Author: "alice", Content: "hello"}

	// Given two live connections in the room
	mockRegistry.EXPECT().
		Members(evt.RoomName).
		Return([]contract.EventSink{roomSink, roomSink}).
		Times(1)

	// Then each connection and the permanent sink consume the event once
	roomSink.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(2)
	permanentSink.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(1)

	// When the event is fanned out, the expectations above are the assertions
	fanout.Fanout(context.Background(), evt)
}

func TestEventFanout_Sink_Timeout_Does_Not_Stall_Delivery(t *testing.T) {
	req := require.New(t)
	log := slog.Default()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockIRegistry(ctrl)
	slowSink := mocks.NewMockEventSink(ctrl)
	fastSink := mocks.NewMockEventSink(ctrl)

	sinkTimeout := 20 * time.Millisecond
	fanout := NewEventFanout(log, mockRegistry, nil, sinkTimeout)

	evt := event.SanitizedMessage{RoomName: "lobby"}

	mockRegistry.EXPECT().
		Members(evt.RoomName).
		Return([]contract.EventSink{slowSink, fastSink}).
		Times(1)

	// Given a sink that blocks until its per-sink context expires
	slowSink.EXPECT().Consume(gomock.Any(), evt).
		DoAndReturn(func(ctx context.Context, e event.DomainEvent) error {
			<-ctx.Done()
			return ctx.Err()
		}).
		Times(1)

	// Then the next sink still gets the event
	fastSink.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(1)

	start := time.Now()
	fanout.Fanout(context.Background(), evt)

	// The slow sink was bounded by the timeout, not by its own good will
	req.Less(time.Since(start), time.Second)
}

func TestEventFanout_Run_Drains_Channel_Until_Context_Cancel(t *testing.T) {
	req := require.New(t)
	log := slog.Default()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockIRegistry(ctrl)
	roomSink := mocks.NewMockEventSink(ctrl)

	events := make(chan event.DomainEvent, 1)
	fanout := NewEventFanout(log, mockRegistry, events, time.Second)

	evt := event.UserJoined{RoomName: "lobby", User: "alice", Count: 1}
	delivered := make(chan struct{})

	mockRegistry.EXPECT().Members(evt.RoomName).Return([]contract.EventSink{roomSink}).Times(1)
	roomSink.EXPECT().Consume(gomock.Any(), evt).
		DoAndReturn(func(ctx context.Context, e event.DomainEvent) error {
			close(delivered)
			return nil
		}).
		Times(1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = fanout.Run(ctx)
		close(done)
	}()

	// When an event lands on the channel
	events <- evt

	select {
	case <-delivered:
	case <-time.After(time.Second):
		req.Fail("Fanout did not deliver the queued event")
	}

	// Then cancellation stops the worker
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		req.Fail("Fanout did not stop on context cancellation")
	}
}
