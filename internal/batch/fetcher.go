// Package batch pages through the vacancy collection in bounded concurrent batches.
package batch

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/maganghub/internal/maganghub"
	"github.com/spigell/maganghub/internal/metrics"
)

// DefaultBatchSize is the number of pages requested concurrently.
const DefaultBatchSize = 10

// PageFetcher is implemented by *maganghub.Client.
type PageFetcher interface {
	FetchPage(ctx context.Context, page int, filter maganghub.PageFilter) (*maganghub.Page, error)
}

type Fetcher struct {
	source    PageFetcher
	batchSize int
	logger    *zap.Logger
}

// Result holds the records of every fetched page in page order.
type Result struct {
	Vacancies []*maganghub.Vacancy
	// Total and LastPage are what the source reported on the first page.
	Total    int
	LastPage int
	// Pages is the number of pages actually fetched.
	Pages int
}

func New(source PageFetcher, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Fetcher{
		source:    source,
		batchSize: DefaultBatchSize,
		logger:    logger,
	}
}

// WithBatchSize overrides the number of concurrent requests per batch.
func (f *Fetcher) WithBatchSize(size int) *Fetcher {
	if size > 0 {
		f.batchSize = size
	}
	return f
}

// FetchAll fetches page 1, then pages 2..min(lastPage, desiredPages) in
// sequential batches. Each batch waits for all of its requests before the
// next one starts. Any failed page fails the whole call.
func (f *Fetcher) FetchAll(ctx context.Context, desiredPages, pageSize int, filter maganghub.PageFilter) (*Result, error) {
	if pageSize > 0 {
		filter.Limit = pageSize
	}

	first, err := f.source.FetchPage(ctx, 1, filter)
	if err != nil {
		return nil, err
	}
	if first == nil {
		first = &maganghub.Page{}
	}

	lastPage := max(first.Pagination.LastPage, 1)
	total := max(first.Pagination.Total, 0)
	pagesToFetch := min(lastPage, max(desiredPages, 1))

	result := &Result{
		Vacancies: append([]*maganghub.Vacancy(nil), first.Vacancies...),
		Total:     total,
		LastPage:  lastPage,
		Pages:     1,
	}

	f.logger.Debug("first page fetched",
		zap.Int("pages", lastPage),
		zap.Int("total", total),
		zap.Int("pages_to_fetch", pagesToFetch),
	)

	for start := 2; start <= pagesToFetch; start += f.batchSize {
		end := min(start+f.batchSize-1, pagesToFetch)

		pages, err := f.fetchBatch(ctx, start, end, filter)
		if err != nil {
			return nil, err
		}

		for _, page := range pages {
			if page != nil {
				result.Vacancies = append(result.Vacancies, page.Vacancies...)
			}
		}
		result.Pages += len(pages)

		metrics.BatchesFetched.Inc()
		f.logger.Debug("batch fetched",
			zap.Int("from", start),
			zap.Int("to", end),
			zap.Int("records", len(result.Vacancies)),
		)
	}

	return result, nil
}

// fetchBatch requests pages start..end concurrently and returns them in page order.
func (f *Fetcher) fetchBatch(ctx context.Context, start, end int, filter maganghub.PageFilter) ([]*maganghub.Page, error) {
	pages := make([]*maganghub.Page, end-start+1)
	g, gctx := errgroup.WithContext(ctx)

	for page := start; page <= end; page++ {
		g.Go(func() error {
			p, err := f.source.FetchPage(gctx, page, filter)
			if err != nil {
				return err
			}
			pages[page-start] = p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return pages, nil
}
