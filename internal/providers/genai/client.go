package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"padhai/internal/infra"
)

const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client is a thin REST transport for the Gemini API. It owns authentication,
// request encoding and the Google error envelope; callers own the payloads.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     infra.Logger
}

// APIError is a non-2xx answer from the API or an error object embedded in a
// finished long-running operation.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("gemini status %d (%s): %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("gemini status %d: %s", e.StatusCode, e.Message)
}

// Status is the error object Google APIs return, both as the body of a failed
// call and inside operations.
type Status struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Status  string `json:"status,omitempty"`
}

type errorEnvelope struct {
	Error Status `json:"error"`
}

// grpcToHTTP maps the canonical codes that show up inside operation errors.
var grpcToHTTP = map[int]int{
	3:  http.StatusBadRequest,
	5:  http.StatusNotFound,
	7:  http.StatusForbidden,
	8:  http.StatusTooManyRequests,
	13: http.StatusInternalServerError,
	14: http.StatusServiceUnavailable,
	16: http.StatusUnauthorized,
}

// OperationError converts an operation's embedded error object. Operation
// errors carry canonical RPC codes instead of HTTP statuses.
func OperationError(s Status) *APIError {
	code := s.Code
	if mapped, ok := grpcToHTTP[code]; ok {
		code = mapped
	}
	if s.Status == "RESOURCE_EXHAUSTED" {
		code = http.StatusTooManyRequests
	}
	if code < 100 {
		code = http.StatusInternalServerError
	}
	return &APIError{StatusCode: code, Status: s.Status, Message: s.Message}
}

// NewClient constructs a Gemini client with sane defaults. Callers may provide
// a nil HTTP client; a reusable one with sensible timeouts will be created.
func NewClient(opts Options) (*Client, error) {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("genai: invalid base url: %w", err)
	}

	logger := infra.NopLogger()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		httpClient: client,
		logger:     logger,
	}, nil
}

// HasAPIKey reports whether requests will be authenticated.
func (c *Client) HasAPIKey() bool {
	return c.apiKey != ""
}

// Post sends payload as JSON to path (relative to the base URL) and decodes
// the answer into out.
func (c *Client) Post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPost, c.endpoint(path), bytes.NewReader(body), out)
}

// Get fetches path (relative to the base URL) and decodes the answer into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, c.endpoint(path), nil, out)
}

// Download streams uri into w. Relative URIs resolve against the base URL.
func (c *Client) Download(ctx context.Context, uri string, w io.Writer) (int64, error) {
	target := uri
	if !strings.HasPrefix(uri, "http://") && !strings.HasPrefix(uri, "https://") {
		target = c.endpoint(uri)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, fmt.Errorf("create download request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return 0, decodeError(resp)
	}
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("read file: %w", err)
	}
	c.logger.Debug().Int64("bytes", n).Str("content_type", resp.Header.Get("Content-Type")).Msg("genai: file downloaded")
	return n, nil
}

// DecodeInline writes base64 encoded bytes into w.
func DecodeInline(data string, w io.Writer) (int64, error) {
	dec := base64.NewDecoder(base64.StdEncoding, strings.NewReader(data))
	n, err := io.Copy(w, dec)
	if err != nil {
		return n, fmt.Errorf("decode inline data: %w", err)
	}
	return n, nil
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("x-goog-api-key", c.apiKey)
	}
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke gemini: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("genai: request completed")

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gemini response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var envelope errorEnvelope
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Status = envelope.Error.Status
		apiErr.Message = envelope.Error.Message
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(data))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
