package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/lfarias-dev/labreport-pipeline/internal/core/domain"
	"github.com/lfarias-dev/labreport-pipeline/internal/core/ports"
)

type ownerDirFake struct {
	owner *domain.Owner
	err   error
	calls int
}

func (f *ownerDirFake) FindOwner(_ context.Context, ownerKey string) (*domain.Owner, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.owner == nil {
		return nil, domain.WrapError(domain.ErrOwnerNotFound, "find owner",
			errors.New("no owner "+ownerKey))
	}
	return f.owner, nil
}

type repoFake struct {
	record *domain.ReportRecord

	findErr           error
	saveExtractionErr error
	saveProcessingErr error
	listErr           error

	savedExtraction *domain.ReportRecord
	savedCorrected  json.RawMessage
	savedFinalKeys  []string
	summaries       []domain.ReportSummary

	findCalls           int
	saveExtractionCalls int
	saveProcessingCalls int
}

func (f *repoFake) FindByKey(_ context.Context, documentKey, _ string) (*domain.ReportRecord, error) {
	f.findCalls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	if f.record == nil {
		return nil, domain.WrapError(domain.ErrReportNotFound, "find report",
			errors.New("no report "+documentKey))
	}
	copyRecord := *f.record
	return &copyRecord, nil
}

func (f *repoFake) SaveExtraction(_ context.Context, record *domain.ReportRecord) error {
	f.saveExtractionCalls++
	if f.saveExtractionErr != nil {
		return f.saveExtractionErr
	}
	copyRecord := *record
	f.savedExtraction = &copyRecord
	return nil
}

func (f *repoFake) SaveProcessing(_ context.Context, _, _ string, correctedData json.RawMessage, finalArtifactKey string) error {
	f.saveProcessingCalls++
	if f.saveProcessingErr != nil {
		return f.saveProcessingErr
	}
	f.savedCorrected = correctedData
	f.savedFinalKeys = append(f.savedFinalKeys, finalArtifactKey)
	return nil
}

func (f *repoFake) ListSummaries(context.Context) ([]domain.ReportSummary, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.summaries, nil
}

type storageFake struct {
	saveErr error
	openErr error

	openBody string

	savedKeys    []string
	savedBodies  map[string]string
	lastTempName string
	openedKey    string
	saveCalls    int
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader, _ int64, _ string) error {
	f.saveCalls++
	if file, ok := data.(*os.File); ok {
		f.lastTempName = file.Name()
	}
	if f.saveErr != nil {
		return f.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	if f.savedBodies == nil {
		f.savedBodies = make(map[string]string)
	}
	f.savedKeys = append(f.savedKeys, key)
	f.savedBodies[key] = string(raw)
	return nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	f.openedKey = key
	if f.openErr != nil {
		return nil, f.openErr
	}
	return io.NopCloser(strings.NewReader(f.openBody)), nil
}

type extractGatewayFake struct {
	raw   json.RawMessage
	err   error
	calls int
}

func (f *extractGatewayFake) ExtractDocument(_ context.Context, _, _, _ string, file io.Reader) (json.RawMessage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if _, err := io.ReadAll(file); err != nil {
		return nil, err
	}
	return f.raw, nil
}

type processGatewayFake struct {
	body  string
	meta  ports.ProcessingMeta
	err   error
	calls int

	payloads []json.RawMessage
}

func (f *processGatewayFake) ProcessDocument(_ context.Context, _ string, payload json.RawMessage) (io.ReadCloser, ports.ProcessingMeta, error) {
	f.calls++
	f.payloads = append(f.payloads, payload)
	if f.err != nil {
		return nil, ports.ProcessingMeta{}, f.err
	}
	return io.NopCloser(strings.NewReader(f.body)), f.meta, nil
}

type validatorFake struct {
	err          error
	calls        int
	lastTempName string
}

func (f *validatorFake) ValidatePDF(r io.ReaderAt, _ int64) error {
	f.calls++
	if file, ok := r.(*os.File); ok {
		f.lastTempName = file.Name()
	}
	return f.err
}

type eventsFake struct {
	err   error
	calls int

	lastDocumentKey string
	lastOwnerKey    string
}

func (f *eventsFake) PublishReportFinalized(_ context.Context, documentKey, ownerKey string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.lastDocumentKey = documentKey
	f.lastOwnerKey = ownerKey
	return nil
}
