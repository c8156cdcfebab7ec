package repositories

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"barkroom/domain"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMessageRepository_Store_And_List_NewestFirst(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewMessageRepository(db, slog.Default())
	room := domain.RoomName("lobby")
	at := time.Now().UTC().Truncate(time.Millisecond)

	// Given three messages stored oldest to newest
	authors := []string{"alice", "bob", "clara"}
	for i, author := range authors {
		err := repository.StoreMessage(DiskMessage{
			ID:      uuid.New(),
			Room:    room,
			Author:  author,
			Content: fmt.Sprintf("message %d", i),
			At:      at.Add(time.Duration(i) * time.Minute),
		})
		req.NoError(err)
	}

	// When fetching the first page
	messages, totalPages, err := repository.ListMessages(room, 1, 5)

	// Then messages come back newest-first in a single page
	req.NoError(err)
	req.Equal(1, totalPages)
	req.Len(messages, 3)
	req.Equal("clara", messages[0].Author)
	req.Equal("bob", messages[1].Author)
	req.Equal("alice", messages[2].Author)
}

func TestMessageRepository_List_Empty_Room(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewMessageRepository(db, slog.Default())

	// When listing a room with no history
	messages, totalPages, err := repository.ListMessages("ghost-town", 1, 5)

	// Then the page is empty but the page count is still 1
	req.NoError(err)
	req.Empty(messages)
	req.Equal(1, totalPages)
}

func TestMessageRepository_Pagination(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewMessageRepository(db, slog.Default())
	room := domain.RoomName("lobby")
	at := time.Now().UTC()

	// Given 12 messages, page size 5 -> 3 pages
	for i := 1; i <= 12; i++ {
		err := repository.StoreMessage(DiskMessage{
			ID:      uuid.New(),
			Room:    room,
			Author:  fmt.Sprintf("user_%d", i),
			Content: "hello",
			At:      at.Add(time.Duration(i) * time.Second),
		})
		req.NoError(err)
	}

	// When fetching page 1
	page1, totalPages, err := repository.ListMessages(room, 1, 5)
	req.NoError(err)
	req.Equal(3, totalPages)
	req.Len(page1, 5)
	req.Equal("user_12", page1[0].Author, "page 1 starts with the newest message")

	// When fetching the last page
	page3, _, err := repository.ListMessages(room, 3, 5)
	req.NoError(err)
	req.Len(page3, 2)
	req.Equal("user_1", page3[1].Author, "last page ends with the oldest message")

	// When requesting a page beyond the last
	beyond, totalPages, err := repository.ListMessages(room, 99, 5)

	// Then the request is clamped to the last page
	req.NoError(err)
	req.Equal(3, totalPages)
	req.Equal(page3, beyond)
}

func TestMessageRepository_Rooms_Do_Not_Leak(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewMessageRepository(db, slog.Default())
	at := time.Now().UTC()

	req.NoError(repository.StoreMessage(DiskMessage{
		ID: uuid.New(), Room: "lobby", Author: "alice", Content: "in lobby", At: at,
	}))
	req.NoError(repository.StoreMessage(DiskMessage{
		ID: uuid.New(), Room: "lobby2", Author: "bob", Content: "elsewhere", At: at,
	}))

	messages, _, err := repository.ListMessages("lobby", 1, 5)
	req.NoError(err)
	req.Len(messages, 1)
	req.Equal("alice", messages[0].Author)
}

// A message stored via StoreMessage must come back first from page 1 when it
// is the most recent one.
func TestMessageRepository_RoundTrip_Newest_Message_Is_First(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewMessageRepository(db, slog.Default())
	room := domain.RoomName("lobby")
	at := time.Now().UTC().Truncate(time.Millisecond)

	req.NoError(repository.StoreMessage(DiskMessage{
		ID: uuid.New(), Room: room, Author: "alice", Content: "older", At: at,
	}))
	newest := DiskMessage{
		ID: uuid.New(), Room: room, Author: "bob", Content: "newest", At: at.Add(time.Second),
	}
	req.NoError(repository.StoreMessage(newest))

	messages, _, err := repository.ListMessages(room, 1, 5)
	req.NoError(err)
	req.Equal(newest, messages[0])
}
