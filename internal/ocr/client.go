// Package ocr provides the HTTP client for the external OCR engine. The
// engine is a black box that turns a receipt photo into text lines with
// per-line confidences; everything smarter happens downstream.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gbarzaghi/scontrino/internal/common"
	"github.com/gbarzaghi/scontrino/internal/model"
)

// Client calls a remote OCR service over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// ocrResponse is the wire format returned by the OCR service.
type ocrResponse struct {
	Lines []ocrLine `json:"lines"`
}

type ocrLine struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// NewClient creates an OCR client for the given service URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// ExtractLines uploads the image and returns the recognized lines. A failure
// is receipt-fatal for the caller: no partial lines are ever returned.
func (c *Client) ExtractLines(ctx context.Context, imagePath string) ([]model.RawLine, error) {
	file, err := os.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer func() { _ = file.Close() }()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("image", filepath.Base(imagePath))
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ocr", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrOCRUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", common.ErrOCRFailed, resp.StatusCode, payload)
	}

	var decoded ocrResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: invalid response: %v", common.ErrOCRFailed, err)
	}

	lines := make([]model.RawLine, 0, len(decoded.Lines))
	for _, l := range decoded.Lines {
		lines = append(lines, model.RawLine{
			Text:       l.Text,
			Confidence: l.Confidence,
		})
	}

	return lines, nil
}
