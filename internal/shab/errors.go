package shab

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors surfaced by the fetch client and the parser.
var (
	// ErrUnexpectedStatusCode indicates an HTTP response with unexpected status.
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	// ErrMalformedXML indicates a document that is not well-formed XML.
	ErrMalformedXML = errors.New("malformed publication XML")
	// ErrMissingField indicates an absent or unusable mandatory field.
	ErrMissingField = errors.New("mandatory field missing")
)

// FetchError is a transport or status failure from the gazette API. It
// carries the identifier and URL of the failed request for per-identifier
// error accounting. StatusCode is zero for network-level failures.
type FetchError struct {
	Identifier string
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: %v: %d", e.URL, ErrUnexpectedStatusCode, e.StatusCode)
	}

	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	if e.StatusCode != 0 {
		return ErrUnexpectedStatusCode
	}

	return e.Err
}

// IsNotFound reports whether err is a fetch failure for a missing resource.
func IsNotFound(err error) bool {
	var fetchErr *FetchError

	return errors.As(err, &fetchErr) && fetchErr.StatusCode == http.StatusNotFound
}

// IsRetryable reports whether err is a transient fetch failure worth
// another attempt under the orchestrator's retry policy.
func IsRetryable(err error) bool {
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		return false
	}

	// Network-level failures have no status code and are worth retrying.
	if fetchErr.StatusCode == 0 {
		return true
	}

	return isRetryableStatus(fetchErr.StatusCode)
}

// isRetryableStatus determines if a retry makes sense for an HTTP status.
func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusServiceUnavailable: // 503
		return true
	case http.StatusGatewayTimeout: // 504
		return true
	case http.StatusTooManyRequests: // 429
		return true
	case http.StatusRequestTimeout: // 408
		return true
	}

	return false
}

// ParseError is a normalization failure for one publication. It wraps
// ErrMalformedXML or ErrMissingField with field detail.
type ParseError struct {
	PublicationID string
	Err           error
}

func (e *ParseError) Error() string {
	if e.PublicationID == "" {
		return fmt.Sprintf("parse publication: %v", e.Err)
	}

	return fmt.Sprintf("parse publication %s: %v", e.PublicationID, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
