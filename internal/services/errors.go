package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/nicolasrp432/PlaywrongIa/internal/shared"
)

// ErrorKind classifies where a request failed.
type ErrorKind string

const (
	KindRequest ErrorKind = "request"
	KindNetwork ErrorKind = "network"
	KindStatus  ErrorKind = "status"
	KindDecode  ErrorKind = "decode"
)

// APIError describes a failed call to the movie API.
type APIError struct {
	Kind       ErrorKind
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s %s", shared.ErrAPIRequest, e.Kind, e.Endpoint)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *APIError) Unwrap() error { return e.Err }

// Is matches [shared.ErrAPIRequest] for every API error and [shared.ErrMovieNotFound]
// for a 404 on a movie resource.
func (e *APIError) Is(target error) bool {
	switch target {
	case shared.ErrAPIRequest:
		return true
	case shared.ErrMovieNotFound:
		return e.StatusCode == http.StatusNotFound && strings.HasPrefix(e.Endpoint, "/movie/")
	}
	return false
}

// StatusCode extracts the HTTP status from err, or 0 when err is not a status failure.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
