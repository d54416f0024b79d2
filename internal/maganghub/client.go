package maganghub

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL    = "https://maganghub.kemnaker.go.id/be/v1/api/list"
	userAgent = "maganghub-cli"

	vacanciesPath = "/vacancies-aktif"
	provincesPath = "/provinces"

	// DefaultPageSize is the page size the portal itself uses.
	DefaultPageSize = 20
	defaultTimeout  = 15 * time.Second
)

type Client struct {
	logger     *zap.Logger
	cache      ProvinceCache
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
	// MaxRetries is the number of extra attempts for a failed request.
	// Zero keeps the fail-fast behaviour.
	MaxRetries int
	RetryDelay time.Duration
}

func New(logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger:     logger,
		UserAgent:  userAgent,
		RetryDelay: 500 * time.Millisecond,
	}
}

// WithProvinceCache sets a cache consulted before the province endpoint is called.
func (c *Client) WithProvinceCache(cache ProvinceCache) *Client {
	c.cache = cache
	return c
}

// FetchPage returns a single page of active vacancies matching the filter.
// page is 1-based.
func (c *Client) FetchPage(ctx context.Context, page int, filter PageFilter) (*Page, error) {
	return c.fetchPage(ctx, page, filter)
}

// Provinces returns the province list. It never fails: any error is logged
// and an empty list is returned.
func (c *Client) Provinces(ctx context.Context) []Province {
	return c.provinces(ctx)
}
