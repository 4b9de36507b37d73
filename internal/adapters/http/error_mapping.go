package httpadapter

import (
	"net/http"

	"github.com/lfarias-dev/labreport-pipeline/internal/core/domain"
)

// Gateway failures map to 400: the upstream AI error is the caller's to act
// on (resubmit), not a fault of this service.
func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrExtractionFailed):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrProcessingFailed):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrOwnerNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrReportNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrArtifactNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
