package document

import (
	"errors"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// PDFValidator checks that an upload is structurally a readable PDF before
// the pipeline spends a storage write or a gateway call on it.
type PDFValidator struct{}

func NewPDFValidator() *PDFValidator {
	return &PDFValidator{}
}

func (v *PDFValidator) ValidatePDF(r io.ReaderAt, size int64) (err error) {
	// The parser panics on some malformed inputs; a bad upload must come
	// back as a validation error, not take the request down.
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("parse pdf: %v", recovered)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return fmt.Errorf("parse pdf: %w", err)
	}
	if reader.NumPage() < 1 {
		return errors.New("pdf has no pages")
	}
	return nil
}
