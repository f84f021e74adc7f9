package partition

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"sort"
	"strings"
)

// PartitionPath is the partition endpoint path on the service.
const PartitionPath = "/general/v0/general"

// APIKeyHeader carries the credential when one is stored.
const APIKeyHeader = "unstructured-api-key"

// encodePayload reads the file from the start and multipart-encodes it
// together with the resolved options. The file handle is never closed.
func encodePayload(file io.ReadSeeker, fileName string, params Params) (*bytes.Buffer, string, error) {
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, "", fmt.Errorf("seek to start: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("files", fileName)
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("read file: %w", err)
	}

	// Sorted keys keep the encoded body deterministic.
	values := params.Values()
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range values[k] {
			if err := w.WriteField(k, v); err != nil {
				return nil, "", fmt.Errorf("write field %s: %w", k, err)
			}
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("finalize multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// call POSTs the encoded payload and decodes the element array.
// Transport failures and non-200 statuses both surface as *ServiceError.
func (c *Client) call(ctx context.Context, log *slog.Logger, endpoint, apiKey, contentType string, body io.Reader) ([]Element, error) {
	url := strings.TrimRight(endpoint, "/") + PartitionPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("partition: new request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if apiKey != "" {
		req.Header.Set(APIKeyHeader, apiKey)
	}

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, &ServiceError{Err: fmt.Errorf("POST %s: %w", url, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		svcErr := &ServiceError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
		log.ErrorContext(ctx, "partition service returned unexpected status",
			"status", resp.StatusCode, "url", url)
		return nil, svcErr
	}

	var elements []Element
	if err := json.NewDecoder(io.LimitReader(resp.Body, c.cfg.MaxResponseBytes)).Decode(&elements); err != nil {
		return nil, fmt.Errorf("partition: decode elements: %w", err)
	}
	return elements, nil
}
