package salesforce

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Stable error codes attached to structured tool results and logs.
const (
	CodeUnknownIDFormat = "UNKNOWN_ID_FORMAT"
	CodeNotFound        = "NOT_FOUND"
	CodeHTTPStatus      = "HTTP_STATUS"
	CodeTimeout         = "TIMEOUT"
	CodeNetwork         = "NETWORK"
	CodeUpload          = "UPLOAD"
	CodeUnknown         = "UNKNOWN"
)

// UnknownIDFormatError reports a file identifier whose prefix does not match
// any supported record type.
type UnknownIDFormatError struct {
	ID string
}

func (e *UnknownIDFormatError) Error() string {
	return fmt.Sprintf("unknown file ID format: %s, expected ContentDocument (069), ContentVersion (068), or Attachment (00P)", e.ID)
}

// NotFoundError reports a lookup that matched no records.
type NotFoundError struct {
	Object string // Salesforce object that was queried
	ID     string // identifier the lookup was scoped to
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s found for %s", e.Object, e.ID)
}

// HTTPError reports a non-2xx response from the API.
type HTTPError struct {
	Status int
	Err    error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("salesforce API returned HTTP %d", e.Status)
}

func (e *HTTPError) Unwrap() error { return e.Err }

// TimeoutError reports a request that exceeded the per-call timeout or the
// caller's deadline.
type TimeoutError struct {
	Op  string
	Err error
}

func (e *TimeoutError) Error() string { return e.Op + " timed out" }

func (e *TimeoutError) Unwrap() error { return e.Err }

// NetworkError reports a transport failure before a usable response arrived.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("%s failed: %v", e.Op, e.Err) }

func (e *NetworkError) Unwrap() error { return e.Err }

// UploadError reports a failed ContentVersion create or its follow-up
// document lookup.
type UploadError struct {
	Stage string // "create" or "lookup"
	Err   error
}

func (e *UploadError) Error() string { return fmt.Sprintf("upload %s failed: %v", e.Stage, e.Err) }

func (e *UploadError) Unwrap() error { return e.Err }

func IsUnknownIDFormat(err error) bool {
	var target *UnknownIDFormatError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// HTTPStatus returns the status code carried by an HTTPError in err's chain.
func HTTPStatus(err error) (int, bool) {
	var target *HTTPError
	if errors.As(err, &target) {
		return target.Status, true
	}
	return 0, false
}

func IsTimeout(err error) bool {
	var target *TimeoutError
	return errors.As(err, &target)
}

func IsNetwork(err error) bool {
	var target *NetworkError
	return errors.As(err, &target)
}

func IsUpload(err error) bool {
	var target *UploadError
	return errors.As(err, &target)
}

// ErrorCode maps an error to its stable code for structured results.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var httpErr *HTTPError
	switch {
	case IsUnknownIDFormat(err):
		return CodeUnknownIDFormat
	case IsNotFound(err):
		return CodeNotFound
	case IsUpload(err):
		return CodeUpload
	case IsTimeout(err):
		return CodeTimeout
	case errors.As(err, &httpErr):
		return CodeHTTPStatus
	case IsNetwork(err):
		return CodeNetwork
	default:
		return CodeUnknown
	}
}

// classifyTransport converts an httputil failure into the typed taxonomy.
// Timeouts win over status checks since a timed-out request has no status.
func classifyTransport(op string, status int, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Op: op, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Op: op, Err: err}
	}
	if status < 200 || status >= 300 {
		if status != 0 {
			return &HTTPError{Status: status, Err: err}
		}
	}
	return &NetworkError{Op: op, Err: err}
}
