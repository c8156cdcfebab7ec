package services

import (
	"context"

	"barkroom/contract"
	"barkroom/domain"
	"barkroom/domain/event"
	"barkroom/repositories"
	"barkroom/runtime"
	"barkroom/sink"
)

// IChatService is the single entry point the transports (websocket, HTTP)
// talk to. Live traffic goes through the coordinator; read-side queries go
// straight to the repositories.
type IChatService interface {
	JoinRoom(ctx context.Context, room domain.RoomName, connID, username string, sink contract.EventSink)
	LeaveRoom(ctx context.Context, room domain.RoomName, connID, username string)
	PostMessage(room domain.RoomName, author, content string) error
	History(room domain.RoomName, page int) (event.HistoryLoaded, error)
	Search(ctx context.Context, terms string, room domain.RoomName, offset int) ([]repositories.MessageHit, uint64, error)
	Members(room domain.RoomName) ([]string, int, error)
	Latest(room domain.RoomName) []domain.Message
}

type ChatService struct {
	coordinator *runtime.Coordinator
	registry    contract.IRegistry
	rooms       repositories.IRoomRepository
	search      repositories.ISearchRepository
	timeline    *sink.Timeline
}

func NewChatService(coordinator *runtime.Coordinator, registry contract.IRegistry,
	rooms repositories.IRoomRepository, search repositories.ISearchRepository,
	timeline *sink.Timeline) *ChatService {
	return &ChatService{
		coordinator: coordinator,
		registry:    registry,
		rooms:       rooms,
		search:      search,
		timeline:    timeline,
	}
}

func (s *ChatService) JoinRoom(ctx context.Context, room domain.RoomName, connID, username string, sink contract.EventSink) {
	s.coordinator.Join(ctx, room, connID, username, sink)
}

func (s *ChatService) LeaveRoom(ctx context.Context, room domain.RoomName, connID, username string) {
	s.coordinator.Leave(ctx, room, connID, username)
}

func (s *ChatService) PostMessage(room domain.RoomName, author, content string) error {
	return s.coordinator.PostMessage(room, author, content)
}

func (s *ChatService) History(room domain.RoomName, page int) (event.HistoryLoaded, error) {
	return s.coordinator.History(room, page)
}

func (s *ChatService) Search(ctx context.Context, terms string, room domain.RoomName, offset int) ([]repositories.MessageHit, uint64, error) {
	return s.search.SearchMessages(ctx, terms, room, offset)
}

// Latest returns the room's in-memory recent-activity projection, oldest
// first. Cheap to poll: it never touches disk.
func (s *ChatService) Latest(room domain.RoomName) []domain.Message {
	if s.timeline == nil {
		return nil
	}
	return s.timeline.Latest(room)
}

// Members returns the durable has-ever-joined users of a room together with
// the live connection count.
func (s *ChatService) Members(room domain.RoomName) ([]string, int, error) {
	users, err := s.rooms.ConnectedUsers(room)
	if err != nil {
		return nil, 0, err
	}
	return users, s.registry.Count(room), nil
}
