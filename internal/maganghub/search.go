package maganghub

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	OrderByQuota      = "jumlah_kuota"
	OrderByRegistered = "jumlah_terdaftar"
	OrderByCreated    = "created_at"

	OrderAsc  = "ASC"
	OrderDesc = "DESC"
)

// PageFilter holds the user-selected query parameters.
// Opportunity is evaluated client-side and never sent to the API.
type PageFilter struct {
	Province       string `mapstructure:"province" json:"kode_provinsi,omitempty"`
	Keyword        string `mapstructure:"keyword" json:"keyword,omitempty"`
	OrderBy        string `mapstructure:"order-by" json:"order_by,omitempty"`
	OrderDirection string `mapstructure:"order-direction" json:"order_direction,omitempty"`
	Limit          int    `mapstructure:"limit" json:"limit,omitempty"`
	Opportunity    string `mapstructure:"opportunity" json:"opportunity,omitempty"`
}

// Page is one decoded page of the vacancy endpoint.
type Page struct {
	Vacancies  []*Vacancy
	Pagination Pagination
}

type Pagination struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	From        int `json:"from"`
	To          int `json:"to"`
}

// Validate checks the server-side part of the filter.
func (f PageFilter) Validate() error {
	switch f.OrderBy {
	case "", OrderByQuota, OrderByRegistered, OrderByCreated:
	default:
		return fmt.Errorf("unsupported order-by %q", f.OrderBy)
	}

	switch strings.ToUpper(f.OrderDirection) {
	case "", OrderAsc, OrderDesc:
	default:
		return fmt.Errorf("unsupported order-direction %q", f.OrderDirection)
	}

	if f.Limit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", f.Limit)
	}

	return nil
}

func (c *Client) fetchPage(ctx context.Context, page int, filter PageFilter) (*Page, error) {
	if page < 1 {
		page = 1
	}

	endpoint := fmt.Sprintf("%s%s", c.APIURL, vacanciesPath)
	q := addPage(buildParams(filter), page)

	response, err := c.GetItems(ctx, endpoint, q, page)
	if err != nil {
		return nil, err
	}

	var vacancies []*Vacancy
	if err := decode(response.Data, &vacancies); err != nil {
		return nil, &FetchError{Page: page, Err: fmt.Errorf("decoding vacancies: %w", err)}
	}
	// null entries in data carry no record
	vacancies = slices.DeleteFunc(vacancies, func(v *Vacancy) bool { return v == nil })

	pagination := Pagination{}
	if response.Meta.Pagination != nil {
		if err := decode(response.Meta.Pagination, &pagination); err != nil {
			return nil, &FetchError{Page: page, Err: fmt.Errorf("decoding pagination: %w", err)}
		}
	}
	pagination = pagination.normalize()

	c.logger.Debug("got response from maganghub",
		zap.Int("page", page),
		zap.Int("pages", pagination.LastPage),
		zap.Int("total", pagination.Total),
		zap.Int("items", len(vacancies)),
	)

	return &Page{
		Vacancies:  vacancies,
		Pagination: pagination,
	}, nil
}

// normalize applies the defaults for a missing or partial pagination block.
func (p Pagination) normalize() Pagination {
	if p.LastPage < 1 {
		p.LastPage = 1
	}
	if p.Total < 0 {
		p.Total = 0
	}

	return p
}

func buildParams(filter PageFilter) url.Values {
	q := url.Values{}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	q.Set("limit", strconv.Itoa(limit))

	if filter.Province != "" {
		q.Set("kode_provinsi", filter.Province)
	}

	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		q.Set("keyword", keyword)
	}

	if filter.OrderBy != "" {
		direction := strings.ToUpper(filter.OrderDirection)
		if direction == "" {
			direction = OrderDesc
		}
		q.Set("order_by", filter.OrderBy)
		q.Set("order_direction", direction)
	}

	return q
}
