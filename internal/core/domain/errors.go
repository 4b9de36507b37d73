package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrOwnerNotFound      = errors.New("owner not found")
	ErrReportNotFound     = errors.New("report not found")
	ErrArtifactNotFound   = errors.New("artifact not found")
	ErrExtractionFailed   = errors.New("extraction failed")
	ErrProcessingFailed   = errors.New("processing failed")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
