package repositories

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"barkroom/domain"
)

func openTestIndex(t *testing.T) *bluge.Writer {
	t.Helper()
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })
	return writer
}

func TestSearchRepository_Scoped_To_Room(t *testing.T) {
	req := require.New(t)
	repository := NewSearchRepository(openTestIndex(t), slog.Default(), 10)
	at := time.Now().UTC()

	// Given the same keyword in two different rooms
	req.NoError(repository.IndexMessage(DiskMessage{
		ID: uuid.New(), Room: "lobby", Author: "alice", Content: "secret project alpha", At: at,
	}))
	req.NoError(repository.IndexMessage(DiskMessage{
		ID: uuid.New(), Room: "gossip", Author: "bob", Content: "secret project beta", At: at,
	}))

	// When searching in one room
	hits, total, err := repository.SearchMessages(context.Background(), "secret", "lobby", 0)

	// Then only that room's message matches
	req.NoError(err)
	req.Equal(uint64(1), total)
	req.Len(hits, 1)
	req.Equal(domain.RoomName("lobby"), hits[0].Room)
	req.Contains(hits[0].Content, "alpha")
}

func TestSearchRepository_No_Results(t *testing.T) {
	req := require.New(t)
	repository := NewSearchRepository(openTestIndex(t), slog.Default(), 10)

	hits, total, err := repository.SearchMessages(context.Background(), "nonexistent", "lobby", 0)

	req.NoError(err)
	req.Equal(uint64(0), total)
	req.Empty(hits)
}

func TestSearchRepository_Pagination(t *testing.T) {
	req := require.New(t)
	repository := NewSearchRepository(openTestIndex(t), slog.Default(), 3)
	at := time.Now().UTC()

	// Given 7 matching messages and a page size of 3
	for i := 0; i < 7; i++ {
		req.NoError(repository.IndexMessage(DiskMessage{
			ID: uuid.New(), Room: "lobby", Author: "alice", Content: "pagination test content",
			At: at.Add(time.Duration(i) * time.Second),
		}))
	}

	page1, total, err := repository.SearchMessages(context.Background(), "pagination", "lobby", 0)
	req.NoError(err)
	req.Equal(uint64(7), total)
	req.Len(page1, 3)

	page3, total, err := repository.SearchMessages(context.Background(), "pagination", "lobby", 6)
	req.NoError(err)
	req.Equal(uint64(7), total)
	req.Len(page3, 1, "last page carries the remainder")
}

func TestSearchRepository_Reindex_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	repository := NewSearchRepository(openTestIndex(t), slog.Default(), 10)
	message := DiskMessage{
		ID: uuid.New(), Room: "lobby", Author: "alice", Content: "hello twice", At: time.Now().UTC(),
	}

	// When the same message is indexed twice
	req.NoError(repository.IndexMessage(message))
	req.NoError(repository.IndexMessage(message))

	// Then it matches once
	_, total, err := repository.SearchMessages(context.Background(), "twice", "lobby", 0)
	req.NoError(err)
	req.Equal(uint64(1), total)
}
