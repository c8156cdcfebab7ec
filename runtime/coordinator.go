// Package runtime handles presence, event production and propagation. It
// orchestrates the system without containing business logic or domain rules.
package runtime

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"barkroom/contract"
	"barkroom/domain"
	"barkroom/domain/event"
	"barkroom/errors"
	"barkroom/moderation"
	"barkroom/repositories"
	"barkroom/runtime/workers"
)

//go:embed censored/*
var censoredFolder embed.FS

// Coordinator is the per-process rendezvous for rooms: joins, leaves, message
// intake and the worker pipeline behind them. Presence events are broadcast
// synchronously against the registry snapshot so counts stay consistent;
// messages travel the asynchronous pipeline (pool, moderation, fanout).
type Coordinator struct {
	mu              sync.Mutex
	log             *slog.Logger
	numWorkers      int
	supervisor      contract.ISupervisor
	registry        contract.IRegistry
	rooms           repositories.IRoomRepository
	messages        repositories.IMessageRepository
	permanentSinks  []contract.EventSink
	commands        chan domain.Command
	rawEvents       chan event.DomainEvent
	domainEvents    chan event.DomainEvent
	historyPageSize int
	sinkTimeout     time.Duration
	charReplacement rune
}

func NewCoordinator(log *slog.Logger, supervisor contract.ISupervisor,
	registry contract.IRegistry, rooms repositories.IRoomRepository,
	messages repositories.IMessageRepository,
	numWorkers, bufferSize, historyPageSize int,
	sinkTimeout time.Duration, charReplacement rune) *Coordinator {
	return &Coordinator{
		log:             log,
		numWorkers:      numWorkers,
		supervisor:      supervisor,
		registry:        registry,
		rooms:           rooms,
		messages:        messages,
		commands:        make(chan domain.Command, bufferSize),
		rawEvents:       make(chan event.DomainEvent, bufferSize),
		domainEvents:    make(chan event.DomainEvent, bufferSize),
		historyPageSize: historyPageSize,
		sinkTimeout:     sinkTimeout,
		charReplacement: charReplacement,
	}
}

// Add appends permanent sinks that receive every pipeline event.
func (c *Coordinator) Add(sinks ...contract.EventSink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.permanentSinks = append(c.permanentSinks, sinks...)
}

// Join registers a connection with its room group and reports the join to
// every member, the joiner included. The joiner alone also receives the first
// page of room history. Side effects that fail (room record, durable
// membership, history read) degrade to log lines; a join never fails.
func (c *Coordinator) Join(ctx context.Context, roomName domain.RoomName,
	connID, username string, sink contract.EventSink) {
	if _, err := c.rooms.EnsureRoom(roomName); err != nil {
		c.log.Warn("Room record unavailable, joining anyway",
			"room", roomName, "error", err)
	}
	if username != "" {
		if err := c.rooms.ConnectUser(roomName, username); err != nil {
			c.log.Warn("Durable membership write failed",
				"room", roomName, "user", username, "error", err)
		}
	}

	count, members := c.registry.Join(roomName, connID, sink)

	if history, err := c.History(roomName, 1); err != nil {
		c.log.Warn("History unavailable for joiner", "room", roomName, "error", err)
	} else {
		c.deliver(ctx, sink, history)
	}

	c.broadcast(ctx, c.withPermanent(members), event.UserJoined{RoomName: roomName, User: username, Count: count})
}

// Leave removes a connection from its room group and reports the departure to
// the remaining members. Leaving twice is a no-op. Durable side effects never
// block the disconnect.
func (c *Coordinator) Leave(ctx context.Context, roomName domain.RoomName, connID, username string) {
	if username != "" {
		if err := c.rooms.DisconnectUser(roomName, username); err != nil {
			c.log.Warn("Durable membership delete failed",
				"room", roomName, "user", username, "error", err)
		}
	}

	count, members, present := c.registry.Leave(roomName, connID)
	if !present {
		return
	}

	c.broadcast(ctx, c.withPermanent(members), event.UserLeft{RoomName: roomName, User: username, Count: count})
}

// PostMessage validates authorship and hands the message to the pipeline.
// Anonymous connections may listen but never author.
func (c *Coordinator) PostMessage(roomName domain.RoomName, author, content string) error {
	if author == "" {
		return errors.ErrNotAuthenticated
	}
	if strings.TrimSpace(content) == "" {
		return errors.ErrEmptyMessage
	}

	c.dispatch(domain.PostMessageCommand{
		RoomName:  roomName,
		Author:    author,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

func (c *Coordinator) dispatch(cmd domain.Command) {
	select {
	case c.commands <- cmd:
	default:
		c.log.Warn(fmt.Sprintf("Command channel full for room %s, dropping command", cmd.Room()))
	}
}

// History reads one page of room history, newest first. The page number is
// clamped to the valid range so scrolling past either end stays harmless.
func (c *Coordinator) History(roomName domain.RoomName, page int) (event.HistoryLoaded, error) {
	messages, totalPages, err := c.messages.ListMessages(roomName, page, c.historyPageSize)
	if err != nil {
		return event.HistoryLoaded{}, err
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	return event.HistoryLoaded{
		RoomName: roomName,
		Messages: fromDiskMessages(messages),
		PageNum:  page,
	}, nil
}

func fromDiskMessages(messages []repositories.DiskMessage) []domain.Message {
	return lo.Map(messages, func(item repositories.DiskMessage, _ int) domain.Message {
		return domain.Message{
			ID:        item.ID,
			Room:      item.Room,
			Author:    item.Author,
			Content:   item.Content,
			Lang:      item.Lang,
			CreatedAt: item.At,
		}
	})
}

// withPermanent extends a registry snapshot with the permanent sinks so
// presence traffic reaches monitoring and projections, not just the room.
func (c *Coordinator) withPermanent(members []contract.EventSink) []contract.EventSink {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append(append([]contract.EventSink(nil), members...), c.permanentSinks...)
}

func (c *Coordinator) broadcast(ctx context.Context, sinks []contract.EventSink, evt event.DomainEvent) {
	for _, sink := range sinks {
		c.deliver(ctx, sink, evt)
	}
}

func (c *Coordinator) deliver(ctx context.Context, sink contract.EventSink, evt event.DomainEvent) {
	sinkCtx, cancel := context.WithTimeout(ctx, c.sinkTimeout)
	defer cancel()
	if err := sink.Consume(sinkCtx, evt); err != nil {
		c.log.Debug("Sink dropped event", "room", evt.Room(), "error", err)
	}
}

// Start prepares all pipeline components and then runs the supervisor. Heavy
// preparation (loading censored words, building the Aho-Corasick automaton)
// happens before the short critical section that registers workers.
func (c *Coordinator) Start(ctx context.Context) error {
	poolWorkers := c.preparePoolWorkers()

	moderationWorker, err := c.prepareModeration("censored")
	if err != nil {
		return err
	}

	fanoutWorker := c.prepareFanout()

	c.mu.Lock()
	c.supervisor.Add(moderationWorker)
	c.supervisor.Add(fanoutWorker)
	for _, w := range poolWorkers {
		c.supervisor.Add(w)
	}
	c.mu.Unlock()

	c.log.Info("Starting coordinator and all supervised workers")
	c.supervisor.Run(ctx)
	return nil
}

func (c *Coordinator) preparePoolWorkers() []contract.Worker {
	var res []contract.Worker
	for i := 0; i < c.numWorkers; i++ {
		res = append(res, workers.NewPoolUnitWorker(c.commands, c.rawEvents, c.log))
	}
	return res
}

// prepareModeration loads censored words and builds the Aho-Corasick automaton.
func (c *Coordinator) prepareModeration(path string) (contract.Worker, error) {
	loader := NewCensoredLoader(censoredFolder)
	data, err := loader.LoadAll(path)
	if err != nil {
		return nil, err
	}

	c.log.Info(fmt.Sprintf("%d censored files loaded [%s]",
		len(data.Languages), strings.Join(data.Languages, ",")))
	c.log.Info(fmt.Sprintf("%d unique censored words loaded", len(data.Words)))

	moderator, err := moderation.NewModerator(data.Words, c.charReplacement)
	if err != nil {
		return nil, err
	}

	return workers.NewModerationWorker(moderator, c.rawEvents, c.domainEvents, c.log), nil
}

func (c *Coordinator) prepareFanout() contract.Worker {
	c.mu.Lock()
	sinks := append([]contract.EventSink(nil), c.permanentSinks...)
	c.mu.Unlock()
	return workers.NewEventFanout(c.log, c.registry, c.domainEvents, c.sinkTimeout).Add(sinks...)
}

// Stop cancels the supervision context, signaling all workers to wind down.
func (c *Coordinator) Stop() {
	c.log.Info("Requesting coordinator shutdown")
	c.supervisor.Stop()
}
