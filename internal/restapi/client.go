// Package restapi is the HTTP client for the exchange's REST API. Every
// response arrives in the {errno, errmsg, result} envelope; a non-zero errno
// or a missing result surfaces as an APIError.
package restapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/opiniontrade/clob-go/pkg/types"
)

const requestTimeout = 30 * time.Second

// Client talks to one exchange host for one chain.
type Client struct {
	baseURL string
	apiKey  string
	chainID int
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a REST client.
func NewClient(baseURL, apiKey string, chainID int, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		chainID: chainID,
		http:    &http.Client{Timeout: requestTimeout},
		logger:  logger,
	}
}

// envelope is the wire-level response wrapper.
type envelope struct {
	Errno  int             `json:"errno"`
	Errmsg string          `json:"errmsg"`
	Result json.RawMessage `json:"result"`
}

// listResult is the result shape for paginated listings.
type listResult struct {
	List  json.RawMessage `json:"list"`
	Total int             `json:"total"`
}

// dataResult is the result shape for single-object responses.
type dataResult struct {
	Data json.RawMessage `json:"data"`
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, endpoint, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}
	return c.do(ctx, http.MethodPost, c.baseURL+path, reqBody, out)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		RequestsTotal.WithLabelValues(method, "transport_error").Inc()
		return fmt.Errorf("request %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		RequestsTotal.WithLabelValues(method, "read_error").Inc()
		return fmt.Errorf("read response body: %w", err)
	}
	RequestDurationSeconds.Observe(time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		RequestsTotal.WithLabelValues(method, "http_error").Inc()
		return &types.APIError{
			Errno:   resp.StatusCode,
			Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, truncate(string(raw), 200)),
		}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		RequestsTotal.WithLabelValues(method, "decode_error").Inc()
		return fmt.Errorf("decode response: %w (body: %s)", err, truncate(string(raw), 200))
	}

	if env.Errno != 0 {
		RequestsTotal.WithLabelValues(method, "api_error").Inc()
		c.logger.Debug("api-error",
			zap.String("request_id", requestID),
			zap.Int("errno", env.Errno),
			zap.String("errmsg", env.Errmsg),
		)
		return &types.APIError{Errno: env.Errno, Message: env.Errmsg}
	}
	if env.Result == nil {
		RequestsTotal.WithLabelValues(method, "api_error").Inc()
		return &types.APIError{Message: "missing result in response"}
	}
	RequestsTotal.WithLabelValues(method, "ok").Inc()

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
