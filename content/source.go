package content

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/sitesearch/index"
	"github.com/jonwraymond/sitesearch/search"
)

var _ search.Source = (*Source)(nil)

// Source turns a Loader into a search.Source.
//
// All types are loaded concurrently. Entries are returned grouped by type in
// the order of Types, each group in loader order. Any loader error fails the
// whole load so a partial entry set is never indexed.
type Source struct {
	Loader Loader

	// Types lists the content types to load. Default: index.Types
	Types []index.Type

	// Logger receives per-type load summaries. If nil, logs are discarded.
	Logger *slog.Logger
}

// NewSource returns a Source over every known content type.
func NewSource(loader Loader, logger *slog.Logger) *Source {
	return &Source{Loader: loader, Logger: logger}
}

// Entries implements search.Source.
func (s *Source) Entries(ctx context.Context) ([]index.Entry, error) {
	types := s.Types
	if len(types) == 0 {
		types = index.Types
	}

	batches := make([][]Item, len(types))
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range types {
		g.Go(func() error {
			items, err := s.Loader.ListEntries(gctx, t)
			if err != nil {
				return fmt.Errorf("content: load %s: %w", t, err)
			}
			batches[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger := s.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var entries []index.Entry
	for i, t := range types {
		built := BuildEntries(t, batches[i])
		logger.Debug("content loaded",
			slog.String("type", string(t)),
			slog.Int("items", len(batches[i])),
			slog.Int("entries", len(built)),
		)
		entries = append(entries, built...)
	}
	return entries, nil
}
