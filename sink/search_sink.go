package sink

import (
	"context"
	"fmt"
	"log/slog"

	"barkroom/domain/event"
	"barkroom/repositories"
)

// SearchSink feeds sanitized messages into the Bluge full-text index so they
// become searchable alongside their durable copy.
type SearchSink struct {
	repository repositories.ISearchRepository
	log        *slog.Logger
}

func NewSearchSink(repository repositories.ISearchRepository, log *slog.Logger) SearchSink {
	return SearchSink{repository: repository, log: log}
}

func (s SearchSink) Consume(_ context.Context, e event.DomainEvent) error {
	evt, ok := e.(event.SanitizedMessage)
	if !ok {
		return nil
	}
	if err := s.repository.IndexMessage(toDiskMessage(evt)); err != nil {
		return fmt.Errorf("indexing message %s: %w", evt.ID, err)
	}
	return nil
}
