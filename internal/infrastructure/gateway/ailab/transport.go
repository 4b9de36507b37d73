package ailab

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

const errorBodyLimit = 64 << 10

// HTTPStatusError carries the upstream status and error body so pipeline
// failures can forward the AI service's own message to the caller.
type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "ailab status error"
	}
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("ailab %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("ailab %s status: %s: %s", e.Operation, e.Status, strings.TrimSpace(e.Body))
}

func newStatusError(operation string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	return &HTTPStatusError{
		Operation:  operation,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       string(body),
	}
}
