package ailab

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/lfarias-dev/labreport-pipeline/internal/core/domain"
	"github.com/lfarias-dev/labreport-pipeline/internal/core/ports"
	"github.com/lfarias-dev/labreport-pipeline/internal/infrastructure/resilience"
)

// Response headers carrying processing metadata alongside the artifact
// stream.
const (
	headerMessage     = "X-Report-Message"
	headerDocumentKey = "X-Report-Document-Key"
	headerLink        = "X-Report-Link"
)

// DefaultTimeout tolerates slow AI inference on both stages.
const DefaultTimeout = 4 * time.Minute

// Client talks to the external AI service that powers both pipeline stages.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, apiKey string, timeout time.Duration, executor *resilience.Executor) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		executor:   executor,
	}
}

// ExtractDocument sends the raw PDF to the extraction endpoint and returns
// the structured payload verbatim.
func (c *Client) ExtractDocument(ctx context.Context, documentKey, filename, mediaType string, file io.Reader) (json.RawMessage, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	partHeader := textproto.MIMEHeader{}
	partHeader.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="document"; filename=%q`, filename))
	partHeader.Set("Content-Type", mediaType)
	part, err := writer.CreatePart(partHeader)
	if err != nil {
		return nil, fmt.Errorf("create multipart field: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy document into request: %w", err)
	}
	if err := writer.WriteField("nrLpco", documentKey); err != nil {
		return nil, fmt.Errorf("write document key field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	var raw json.RawMessage
	call := func(ctx context.Context) error {
		req, err := c.newRequest(ctx, http.MethodPost, "/v1/extract", bytes.NewReader(body.Bytes()))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", writer.FormDataContentType())

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("extract request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			return newStatusError("extract", resp)
		}

		payload, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read extract response: %w", err)
		}
		if !json.Valid(payload) {
			return errors.New("extract response is not valid json")
		}
		raw = payload
		return nil
	}

	if err := c.execute(ctx, "ailab.extract", call); err != nil {
		return nil, domain.WrapError(domain.ErrExtractionFailed, "extract document", err)
	}
	return raw, nil
}

// ProcessDocument sends corrected data to the processing endpoint. The
// artifact comes back as the response body; metadata rides in headers. The
// caller owns and must close the returned stream.
func (c *Client) ProcessDocument(ctx context.Context, documentKey string, payload json.RawMessage) (io.ReadCloser, ports.ProcessingMeta, error) {
	var (
		stream io.ReadCloser
		meta   ports.ProcessingMeta
	)
	call := func(ctx context.Context) error {
		req, err := c.newRequest(ctx, http.MethodPost, "/v1/process", bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("process request: %w", err)
		}
		if resp.StatusCode >= 300 {
			defer resp.Body.Close()
			return newStatusError("process", resp)
		}

		stream = resp.Body
		meta = ports.ProcessingMeta{
			Message:      resp.Header.Get(headerMessage),
			DocumentKey:  resp.Header.Get(headerDocumentKey),
			ExternalLink: resp.Header.Get(headerLink),
		}
		return nil
	}

	if err := c.execute(ctx, "ailab.process", call); err != nil {
		return nil, ports.ProcessingMeta{}, domain.WrapError(domain.ErrProcessingFailed,
			fmt.Sprintf("process document %s", documentKey), err)
	}
	return stream, meta, nil
}

func (c *Client) execute(ctx context.Context, operation string, call func(context.Context) error) error {
	if c.executor == nil {
		return call(ctx)
	}
	return c.executor.Execute(ctx, operation, call, classifyGatewayError)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", path, err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return req, nil
}
