package services

import (
	"errors"
	"fmt"

	"device-portal-client/httputil"
	"device-portal-client/metrics"
)

// Errors wrapped by RequestError to tell the failure classes apart
var (
	ErrUnauthenticated  = errors.New("no access token was loaded")
	ErrEncodeRequest    = errors.New("could not encode request body")
	ErrInvalidRequest   = errors.New("invalid request")
	ErrTransport        = errors.New("could not make request")
	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrReadResponse     = errors.New("could not read response body")
	ErrDecodeResponse   = errors.New("could not decode response body")
)

// UnauthenticatedError is returned when a call starts without a usable session.
// No request has been sent when it is returned.
type UnauthenticatedError struct {
	Err error
}

func (e *UnauthenticatedError) Error() string {
	if e.Err == nil {
		return ErrUnauthenticated.Error()
	}

	return fmt.Sprintf("%s: %s", ErrUnauthenticated, e.Err)
}

func (e *UnauthenticatedError) Is(target error) bool {
	return target == ErrUnauthenticated
}

func (e *UnauthenticatedError) Unwrap() error {
	return e.Err
}

// RequestError describes a device API call that did not succeed. Status is zero
// when no response was received.
type RequestError struct {
	Method string
	URL    string
	Status int
	Public *httputil.PublicError
	Err    error
}

func (e *RequestError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Err)

	if e.Status != 0 {
		msg = fmt.Sprintf("%s: HTTP_%d", msg, e.Status)
	}

	if e.Public != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Public.Message)
	}

	return msg
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status of the response, if one was received
func (e *RequestError) StatusCode() (int, bool) {
	return e.Status, e.Status != 0
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return metrics.ReasonUnauthenticated
	case errors.Is(err, ErrUnexpectedStatus):
		return metrics.ReasonStatus
	case errors.Is(err, ErrDecodeResponse), errors.Is(err, ErrReadResponse):
		return metrics.ReasonDecode
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrEncodeRequest):
		return metrics.ReasonInvalidRequest
	default:
		return metrics.ReasonTransport
	}
}
