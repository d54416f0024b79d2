package maganghub

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/maganghub/internal/metrics"
	"github.com/spigell/maganghub/internal/utils"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"

	maxLoggedBody = 512
)

type Item interface{}

// ItemResponse is the envelope every list endpoint returns.
type ItemResponse struct {
	Data []Item `json:"data"`
	Meta struct {
		Pagination Item `json:"pagination"`
	} `json:"meta"`
}

// GetItems makes GET request to the API and returns the raw envelope of one page.
func (c *Client) GetItems(ctx context.Context, endpoint string, q url.Values, page int) (*ItemResponse, error) {
	var response *ItemResponse

	err := c.withRetry(ctx, page, func() error {
		response = nil
		return c.getJSON(ctx, endpoint, q, page, &response)
	})
	if err != nil {
		return nil, err
	}

	if response == nil {
		response = &ItemResponse{}
	}

	return response, nil
}

func (c *Client) withRetry(ctx context.Context, page int, fn func() error) error {
	delay := c.RetryDelay
	var err error

	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if err = fn(); err == nil {
			return nil
		}

		if attempt == c.MaxRetries || !retryable(err) {
			break
		}

		c.logger.Warn("request failed, retrying",
			zap.Int("page", page),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		if waitErr := utils.WaitFor(ctx, delay); waitErr != nil {
			return &FetchError{Page: page, Err: waitErr}
		}
		delay *= 2
	}

	return err
}

// retryable reports whether a failed request may succeed on another attempt.
func retryable(err error) bool {
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	switch {
	case fetchErr.StatusCode == 0:
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		return !errors.As(err, &syntaxErr) && !errors.As(err, &typeErr)
	case fetchErr.StatusCode == http.StatusTooManyRequests:
		return true
	default:
		return fetchErr.StatusCode >= http.StatusInternalServerError
	}
}

func (c *Client) getJSON(ctx context.Context, endpoint string, q url.Values, page int, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &FetchError{Page: page, Err: err}
	}

	req = c.setHeaders(req)
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.request(req)
	if err != nil {
		return &FetchError{Page: page, Err: err}
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return &FetchError{Page: page, Err: err}
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return &FetchError{Page: page, Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.logger.Debug("bad response",
			zap.Int("page", page),
			zap.Int("status", resp.StatusCode),
			zap.String("body", utils.TruncateForLog(string(data), maxLoggedBody)),
		)
		return &FetchError{Page: page, StatusCode: resp.StatusCode, Err: fmt.Errorf("bad status: %s", resp.Status)}
	}

	if target == nil {
		return nil
	}

	if err := json.Unmarshal(data, target); err != nil {
		return &FetchError{Page: page, Err: fmt.Errorf("decoding response: %w", err)}
	}

	return nil
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	endpoint := req.URL.Path
	c.logger.Debug("make request", zap.String("url", req.URL.String()))

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	metrics.APIRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.APIRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, err
	}

	metrics.APIRequests.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	return resp, nil
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", contentType)
	req.Header.Set("Accept-Encoding", contentEncoding)

	return req
}

// decode converts generic items into typed values, tolerating numbers sent as strings.
func decode(input interface{}, result interface{}) error {
	cfg := &mapstructure.DecoderConfig{
		Metadata:         nil,
		Result:           result,
		TagName:          "json",
		WeaklyTypedInput: true,
	}

	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}

	return decoder.Decode(input)
}

// addPage sets the page parameter on a copy of the query.
func addPage(q url.Values, page int) url.Values {
	out := url.Values{}
	for k, v := range q {
		out[k] = append([]string(nil), v...)
	}
	out.Set("page", strconv.Itoa(page))

	return out
}
