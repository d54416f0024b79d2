package maganghub

import (
	"fmt"
	"net/http"
)

// FetchError is returned when a page or list request fails: transport error,
// non-2xx status or a body that cannot be decoded.
type FetchError struct {
	Page       int
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching page %d: bad status %d %s: %v", e.Page, e.StatusCode, http.StatusText(e.StatusCode), e.Err)
	}
	return fmt.Sprintf("fetching page %d: %v", e.Page, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError reports a record field holding a JSON-encoded list that could not be decoded.
type ParseError struct {
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Field, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
