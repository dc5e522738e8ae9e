// Package ocr is the HTTP client towards the external OCR provider. Documents
// are submitted as multipart uploads and results are fetched by job ID; the
// provider processes asynchronously, so callers poll until the job finishes.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/merkur-erp/erp-api/internal/config"
	"github.com/merkur-erp/erp-api/internal/query"
	"go.uber.org/zap"
)

// JobStatus is the processing state reported by the OCR provider
type JobStatus string

const (
	JobStatusPending JobStatus = "pending"
	JobStatusDone    JobStatus = "done"
	JobStatusFailed  JobStatus = "failed"
)

// JobResult is the provider's answer for one submitted document
type JobResult struct {
	JobID  string    `json:"jobId"`
	Status JobStatus `json:"status"`
	Text   string    `json:"text,omitempty"`
	Error  string    `json:"error,omitempty"`
}

// Client talks to the OCR provider's REST API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates an OCR client. When no base URL is configured the client
// is disabled and submissions return an error.
func NewClient(cfg *config.OcrConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.ApiKey,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeoutDuration(),
		},
		logger: logger,
	}
}

// Enabled reports whether an OCR provider is configured
func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

// SubmitDocument uploads a document for OCR processing and returns the
// provider's job ID. The document kind, when known, is passed along as a
// recognition hint.
func (c *Client) SubmitDocument(ctx context.Context, fileName, contentType, kind string, data io.Reader) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("ocr provider not configured")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return "", fmt.Errorf("failed to create multipart field: %w", err)
	}
	if _, err := io.Copy(part, data); err != nil {
		return "", fmt.Errorf("failed to write document body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	endpoint := c.baseURL + "/v1/jobs"
	if q := query.BuildQuery(map[string]any{"language": "hun", "type": kind}); q != "" {
		endpoint += "?" + q
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ocr submission failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("ocr provider returned status %d", resp.StatusCode)
	}

	var result JobResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode ocr response: %w", err)
	}
	if result.JobID == "" {
		return "", fmt.Errorf("ocr provider returned no job id")
	}

	c.logger.Debug("document submitted for OCR",
		zap.String("fileName", fileName),
		zap.String("jobId", result.JobID),
	)

	return result.JobID, nil
}

// GetJobResult fetches the current state of a submitted OCR job
func (c *Client) GetJobResult(ctx context.Context, jobID string) (*JobResult, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ocr provider not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/jobs/"+jobID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ocr status request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("ocr job %s not found", jobID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ocr provider returned status %d", resp.StatusCode)
	}

	var result JobResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode ocr response: %w", err)
	}

	return &result, nil
}
