//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"barkroom/domain"
)

// IMessageRepository is the history gateway consumed by the coordinator:
// message creation plus newest-first paged retrieval.
type IMessageRepository interface {
	StoreMessage(message DiskMessage) error
	ListMessages(room domain.RoomName, page, pageSize int) ([]DiskMessage, int, error)
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

// DiskMessage is the storage-layer representation of a chat message.
type DiskMessage struct {
	ID      uuid.UUID       `json:"id"`
	Room    domain.RoomName `json:"room"`
	Author  string          `json:"author"`
	Content string          `json:"content"`
	Lang    string          `json:"lang,omitempty"`
	At      time.Time       `json:"at"`
}

// StoreMessage persists a message in BadgerDB.
// The key is formatted as "msg:{room}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two messages
//     arrive at the same nanosecond.
func (m MessageRepository) StoreMessage(message DiskMessage) error {
	key := fmt.Sprintf("msg:%s:%019d:%s",
		message.Room,
		message.At.UnixNano(),
		message.ID,
	)
	bytes, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// ListMessages retrieves one page of a room's history, newest-first, along
// with the total page count (minimum 1, even for an empty room). The page
// number is clamped to the valid range so a request can never run past the
// last page. Thanks to the padded timestamp in the key, a reverse prefix
// scan yields messages already sorted by time.
func (m MessageRepository) ListMessages(room domain.RoomName, page, pageSize int) ([]DiskMessage, int, error) {
	if pageSize <= 0 {
		pageSize = 5
	}

	total, err := m.countMessages(room)
	if err != nil {
		return nil, 0, err
	}

	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	offset := (page - 1) * pageSize

	var byteMessages [][]byte
	err = m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("msg:%s:", room))
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the newest possible timestamp, then walk backwards.
		seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		it.Seek(seekKey)

		skipped := 0
		for ; it.ValidForPrefix(prefix); it.Next() {
			if skipped < offset {
				skipped++
				continue
			}
			if len(byteMessages) == pageSize {
				break
			}
			err := it.Item().Value(func(value []byte) error {
				byteMessages = append(byteMessages, append([]byte{}, value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	var diskMessages []DiskMessage
	for _, b := range byteMessages {
		var message DiskMessage
		if err = json.Unmarshal(b, &message); err != nil {
			return nil, 0, err
		}
		diskMessages = append(diskMessages, message)
	}
	return diskMessages, totalPages, nil
}

// countMessages counts a room's messages with a key-only prefix scan.
func (m MessageRepository) countMessages(room domain.RoomName) (int, error) {
	total := 0
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("msg:%s:", room))
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			total++
		}
		return nil
	})
	return total, err
}
