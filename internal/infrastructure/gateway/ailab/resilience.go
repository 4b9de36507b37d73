package ailab

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/lfarias-dev/labreport-pipeline/internal/infrastructure/resilience"
)

// Gateway calls are never re-executed automatically: a failed extraction or
// processing run is resubmitted by the caller. The classifier only decides
// which failures count against the circuit breaker.
func classifyGatewayError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{RecordFailure: false}
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return resilience.ErrorClassification{
			RecordFailure: isServerSideStatus(statusErr.StatusCode),
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{RecordFailure: true}
	}

	return resilience.ErrorClassification{RecordFailure: true}
}

func isServerSideStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
