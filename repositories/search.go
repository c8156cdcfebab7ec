package repositories

import (
	"context"
	"log/slog"
	"time"

	"github.com/blugelabs/bluge"

	"barkroom/domain"
)

// ISearchRepository indexes sanitized messages and serves room-scoped
// full-text search.
type ISearchRepository interface {
	IndexMessage(message DiskMessage) error
	SearchMessages(ctx context.Context, terms string, room domain.RoomName, offset int) ([]MessageHit, uint64, error)
}

type SearchRepository struct {
	writer   *bluge.Writer
	log      *slog.Logger
	pageSize int
}

func NewSearchRepository(writer *bluge.Writer, log *slog.Logger, pageSize int) *SearchRepository {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &SearchRepository{writer: writer, log: log, pageSize: pageSize}
}

// MessageHit is one search result.
type MessageHit struct {
	ID      string
	Room    domain.RoomName
	Author  string
	Content string
	At      time.Time
}

// IndexMessage upserts a message document into the Bluge index. The message
// UUID is the document identity, so re-indexing is idempotent.
func (s *SearchRepository) IndexMessage(message DiskMessage) error {
	doc := bluge.NewDocument(message.ID.String()).
		AddField(bluge.NewKeywordField("room", string(message.Room)).StoreValue()).
		AddField(bluge.NewKeywordField("author", message.Author).StoreValue()).
		AddField(bluge.NewTextField("content", message.Content).StoreValue()).
		AddField(bluge.NewDateTimeField("at", message.At).StoreValue())
	return s.writer.Update(doc.ID(), doc)
}

// SearchMessages runs a room-scoped match query over message bodies and
// returns one page of hits plus the total match count.
func (s *SearchRepository) SearchMessages(ctx context.Context, terms string, room domain.RoomName, offset int) ([]MessageHit, uint64, error) {
	reader, err := s.writer.Reader()
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		if err := reader.Close(); err != nil {
			s.log.Debug("Closing search reader failed", "error", err)
		}
	}()

	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(terms).SetField("content")).
		AddMust(bluge.NewTermQuery(string(room)).SetField("room"))

	if offset < 0 {
		offset = 0
	}
	request := bluge.NewTopNSearch(s.pageSize, query).
		SetFrom(offset).
		WithStandardAggregations()

	iterator, err := reader.Search(ctx, request)
	if err != nil {
		return nil, 0, err
	}

	var hits []MessageHit
	match, err := iterator.Next()
	for err == nil && match != nil {
		var hit MessageHit
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				hit.ID = string(value)
			case "room":
				hit.Room = domain.RoomName(value)
			case "author":
				hit.Author = string(value)
			case "content":
				hit.Content = string(value)
			case "at":
				if at, err := bluge.DecodeDateTime(value); err == nil {
					hit.At = at
				}
			}
			return true
		})
		if visitErr != nil {
			return nil, 0, visitErr
		}
		hits = append(hits, hit)
		match, err = iterator.Next()
	}
	if err != nil {
		return nil, 0, err
	}

	return hits, iterator.Aggregations().Count(), nil
}
