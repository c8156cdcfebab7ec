//go:generate go run go.uber.org/mock/mockgen -source=room.go -destination=../mocks/mock_room_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"barkroom/domain"
	"barkroom/errors"
)

// IRoomRepository owns the durable side of rooms: the room record itself and
// the has-ever-joined user relation. This relation is deliberately distinct
// from the registry's transient socket presence; it survives disconnects.
type IRoomRepository interface {
	EnsureRoom(name domain.RoomName) (domain.Room, error)
	GetRoom(name domain.RoomName) (domain.Room, error)
	ConnectUser(name domain.RoomName, user string) error
	DisconnectUser(name domain.RoomName, user string) error
	ConnectedUsers(name domain.RoomName) ([]string, error)
}

type RoomRepository struct {
	db *badger.DB
}

func NewRoomRepository(db *badger.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

type memberRecord struct {
	At time.Time `json:"at"`
}

// EnsureRoom resolves a room by name, creating it when absent. Creation is
// try-then-create: a lost creation race degrades to a re-lookup instead of
// surfacing the conflict to the caller.
func (r *RoomRepository) EnsureRoom(name domain.RoomName) (domain.Room, error) {
	room, err := r.GetRoom(name)
	if err == nil {
		return room, nil
	}

	room = domain.NewRoom(name)
	data, err := json.Marshal(room)
	if err != nil {
		return domain.Room{}, err
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		key := roomKey(name)
		if _, err := txn.Get(key); err == nil {
			// Someone else created it between our lookup and this txn.
			return nil
		}
		return txn.Set(key, data)
	})
	if err == badger.ErrConflict {
		return r.GetRoom(name)
	}
	if err != nil {
		return domain.Room{}, err
	}
	return r.GetRoom(name)
}

// GetRoom retrieves a room record, returning ErrRoomNotFound when absent.
func (r *RoomRepository) GetRoom(name domain.RoomName) (domain.Room, error) {
	var room domain.Room
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(roomKey(name))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &room)
		})
	})
	if err == badger.ErrKeyNotFound {
		return domain.Room{}, fmt.Errorf("%w: %s", errors.ErrRoomNotFound, name)
	}
	if err != nil {
		return domain.Room{}, err
	}
	return room, nil
}

// ConnectUser records the durable user-to-room membership. Idempotent: a
// second connect from the same user overwrites the same key.
func (r *RoomRepository) ConnectUser(name domain.RoomName, user string) error {
	data, err := json.Marshal(memberRecord{At: time.Now().UTC()})
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(memberKey(name, user), data)
	})
}

// DisconnectUser removes the durable membership; no-op when absent.
func (r *RoomRepository) DisconnectUser(name domain.RoomName, user string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(memberKey(name, user))
	})
}

// ConnectedUsers lists the users currently recorded against the room.
func (r *RoomRepository) ConnectedUsers(name domain.RoomName) ([]string, error) {
	var users []string
	prefix := []byte(fmt.Sprintf("member:%s:", name))
	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			users = append(users, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	return users, err
}

func roomKey(name domain.RoomName) []byte {
	return []byte("room:" + string(name))
}

func memberKey(name domain.RoomName, user string) []byte {
	return []byte(fmt.Sprintf("member:%s:%s", name, user))
}
