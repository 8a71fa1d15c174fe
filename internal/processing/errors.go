package processing

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx answer from the processing service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("processing service: status %d", e.StatusCode)
	}
	return fmt.Sprintf("processing service: status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the processing service.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
