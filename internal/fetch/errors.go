package fetch

import (
	"errors"
	"fmt"
)

// ErrUnsupportedContentType is returned for responses that are neither text nor documents.
var ErrUnsupportedContentType = errors.New("unsupported content type")

// StatusError is a non-2xx response.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}
