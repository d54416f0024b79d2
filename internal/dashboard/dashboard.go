// Package dashboard composes the client, fetcher, filters and aggregation into
// the load operations the CLI and the HTTP API present.
package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/maganghub/internal/batch"
	"github.com/spigell/maganghub/internal/filtering"
	"github.com/spigell/maganghub/internal/logger"
	"github.com/spigell/maganghub/internal/maganghub"
	"github.com/spigell/maganghub/internal/metrics"
	"github.com/spigell/maganghub/internal/stats"
)

const (
	// DefaultStatisticsPages is how many pages a statistics load samples.
	DefaultStatisticsPages = 10
	// DefaultStatisticsPageSize is the page size a statistics load requests.
	DefaultStatisticsPageSize = maganghub.DefaultPageSize

	kindListing    = "listing"
	kindStatistics = "statistics"
)

var (
	// ErrLoadFailed is returned by every load on a fetch failure. The cause is wrapped.
	ErrLoadFailed = errors.New("gagal memuat data, silakan coba lagi")
	// ErrInvalidFilter is returned when the requested filter cannot be applied.
	ErrInvalidFilter = errors.New("invalid filter")
)

// Source is implemented by *maganghub.Client.
type Source interface {
	batch.PageFetcher
	Provinces(ctx context.Context) []maganghub.Province
}

type Service struct {
	source    Source
	fetcher   *batch.Fetcher
	logger    *zap.Logger
	companies []string
	newID     func() string
}

// ListingRequest selects one page of the vacancy listing.
type ListingRequest struct {
	Page   int
	Filter maganghub.PageFilter
}

// Listing is one page of vacancies after client-side filtering.
type Listing struct {
	LoadID    string               `json:"loadId"`
	Vacancies []*maganghub.Vacancy `json:"vacancies"`
	// Shown is the number of vacancies left on this page after filtering.
	Shown int `json:"shown"`
	// TotalInSystem is what the source reports for the server-side filter.
	TotalInSystem int                  `json:"totalInSystem"`
	Pagination    maganghub.Pagination `json:"pagination"`
	Steps         []filtering.Step     `json:"-"`
}

// StatisticsRequest selects the sample a statistics load aggregates.
type StatisticsRequest struct {
	Province string `mapstructure:"province"`
	Pages    int    `mapstructure:"pages"`
	PageSize int    `mapstructure:"page-size"`
}

// Report is a statistics load result.
type Report struct {
	LoadID string `json:"loadId"`
	// Pages is the number of pages actually sampled.
	Pages int `json:"pages"`
	*stats.Statistics
}

func New(source Source, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		source:  source,
		fetcher: batch.New(source, log),
		logger:  log,
		newID:   uuid.NewString,
	}
}

// WithExcludedCompanies hides vacancies of the given companies from listings.
func (s *Service) WithExcludedCompanies(companies []string) *Service {
	s.companies = append([]string(nil), companies...)
	return s
}

// WithBatchSize overrides the number of pages a statistics load requests concurrently.
func (s *Service) WithBatchSize(size int) *Service {
	s.fetcher.WithBatchSize(size)
	return s
}

// Listing loads one page and applies the client-side filters to it.
func (s *Service) Listing(ctx context.Context, req ListingRequest) (*Listing, error) {
	loadID := s.newID()
	log := logger.WithLoad(s.logger, loadID, kindListing, req.Filter.Province)

	if err := req.Filter.Validate(); err != nil {
		metrics.Loads.WithLabelValues(kindListing, "invalid").Inc()
		return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}
	if _, err := filtering.ParseRatio(req.Filter.Opportunity); err != nil {
		metrics.Loads.WithLabelValues(kindListing, "invalid").Inc()
		return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}

	page := max(req.Page, 1)
	result, err := s.source.FetchPage(ctx, page, req.Filter)
	if err != nil {
		return nil, s.failed(log, kindListing, err)
	}
	if result == nil {
		result = &maganghub.Page{Pagination: maganghub.Pagination{CurrentPage: page, LastPage: 1}}
	}

	cfg := &filtering.Config{
		Companies:   s.companies,
		Opportunity: req.Filter.Opportunity,
	}
	filtered, steps, err := filtering.Run(ctx, cfg, filtering.Deps{Logger: log}, filtering.Default(), &maganghub.Vacancies{Items: result.Vacancies})
	if err != nil {
		metrics.Loads.WithLabelValues(kindListing, "invalid").Inc()
		return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}

	metrics.Loads.WithLabelValues(kindListing, "ok").Inc()
	log.Info("listing loaded",
		zap.Int("page", page),
		zap.Int("received", len(result.Vacancies)),
		zap.Int("shown", filtered.Len()),
		zap.Int("total", result.Pagination.Total),
	)

	return &Listing{
		LoadID:        loadID,
		Vacancies:     filtered.Items,
		Shown:         filtered.Len(),
		TotalInSystem: result.Pagination.Total,
		Pagination:    result.Pagination,
		Steps:         steps,
	}, nil
}

// Statistics samples up to req.Pages pages and aggregates them.
func (s *Service) Statistics(ctx context.Context, req StatisticsRequest) (*Report, error) {
	loadID := s.newID()
	log := logger.WithLoad(s.logger, loadID, kindStatistics, req.Province)

	pages := req.Pages
	if pages <= 0 {
		pages = DefaultStatisticsPages
	}
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = DefaultStatisticsPageSize
	}

	result, err := s.fetcher.FetchAll(ctx, pages, pageSize, maganghub.PageFilter{Province: req.Province})
	if err != nil {
		return nil, s.failed(log, kindStatistics, err)
	}

	statistics := stats.Aggregate(result.Vacancies, result.Total)

	metrics.AggregatedRecords.Observe(float64(statistics.Sampled))
	metrics.Loads.WithLabelValues(kindStatistics, "ok").Inc()
	log.Info("statistics loaded",
		zap.Int("pages", result.Pages),
		zap.Int("sampled", statistics.Sampled),
		zap.Int("total", statistics.TotalVacancies),
	)

	return &Report{
		LoadID:     loadID,
		Pages:      result.Pages,
		Statistics: statistics,
	}, nil
}

// Provinces returns the province list, empty when it cannot be loaded.
func (s *Service) Provinces(ctx context.Context) []maganghub.Province {
	provinces := s.source.Provinces(ctx)
	if provinces == nil {
		return []maganghub.Province{}
	}
	return provinces
}

func (s *Service) failed(log *zap.Logger, kind string, err error) error {
	metrics.Loads.WithLabelValues(kind, "failed").Inc()
	log.Error("load failed", zap.Error(err))
	return fmt.Errorf("%w: %w", ErrLoadFailed, err)
}
