package ws

import (
	"encoding/json"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"

	"barkroom/domain"
	"barkroom/domain/event"
)

// Outbound envelopes are discriminated by msg_type. The field layout is the
// wire contract the room page's javascript consumes, including the pic and id
// fields on history message objects.

type presenceEnvelope struct {
	MsgType string `json:"msg_type"`
	User    string `json:"user"`
	Count   int    `json:"count"`
}

type messageEnvelope struct {
	MsgType   string `json:"msg_type"`
	Message   string `json:"message"`
	User      string `json:"user"`
	Timestamp string `json:"timestamp"`
}

type historyEnvelope struct {
	MsgType  string          `json:"msg_type"`
	Messages []messageObject `json:"messages"`
	PageNum  int             `json:"pageNum"`
}

type messageObject struct {
	Message   string `json:"message"`
	User      string `json:"user"`
	Timestamp string `json:"timestamp"`
	Pic       string `json:"pic"`
	ID        string `json:"id"`
}

type errorEnvelope struct {
	MsgType string `json:"msg_type"`
	Error   string `json:"error"`
}

// inboundMessage is the only payload clients send over the socket.
type inboundMessage struct {
	Message string `json:"message"`
}

// EncodeEvent maps a domain event to its wire envelope. Events with no wire
// representation (raw MessagePosted never leaves the pipeline) return false.
func EncodeEvent(e event.DomainEvent) ([]byte, bool) {
	switch evt := e.(type) {
	case event.UserJoined:
		return marshal(presenceEnvelope{MsgType: "join", User: evt.User, Count: evt.Count})
	case event.UserLeft:
		return marshal(presenceEnvelope{MsgType: "leave", User: evt.User, Count: evt.Count})
	case event.SanitizedMessage:
		return marshal(messageEnvelope{
			MsgType:   "message",
			Message:   evt.Content,
			User:      evt.Author,
			Timestamp: humanize.Time(evt.At),
		})
	case event.HistoryLoaded:
		return marshal(historyEnvelope{
			MsgType:  "load_messages",
			Messages: toMessageObjects(evt.Messages),
			PageNum:  evt.PageNum,
		})
	case event.ErrorRaised:
		return marshal(errorEnvelope{MsgType: "error", Error: evt.Reason})
	default:
		return nil, false
	}
}

func toMessageObjects(messages []domain.Message) []messageObject {
	return lo.Map(messages, func(m domain.Message, _ int) messageObject {
		return messageObject{
			Message:   m.Content,
			User:      m.Author,
			Timestamp: humanize.Time(m.CreatedAt),
			Pic:       "",
			ID:        m.ID.String(),
		}
	})
}

func marshal(v any) ([]byte, bool) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	return data, true
}
