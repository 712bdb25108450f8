package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/generapi/generapi/apitypes"
)

// Config controls low-level transport behavior such as timeouts and retries.
type Config struct {
	Timeout    time.Duration
	RetryCount int
	RetryWait  time.Duration
	UserAgent  string
}

func defaultConfig() Config {
	return Config{
		Timeout:    30 * time.Second,
		RetryCount: 2,
		RetryWait:  200 * time.Millisecond,
		UserAgent:  "generapi-client",
	}
}

// Transport is the HTTP layer under Client. Requests and responses are JSON except for
// generated archives; error statuses carry an RFC 7807 body.
type Transport struct {
	r   *resty.Client
	cfg Config
}

// NewTransport creates a new transport for the server at baseURL (e.g. "http://localhost:3000").
func NewTransport(baseURL string) *Transport { return NewTransportWithConfig(baseURL, nil) }

// NewTransportWithConfig creates a new transport with optional configuration.
func NewTransportWithConfig(baseURL string, cfg *Config) *Transport {
	c := defaultConfig()
	if cfg != nil {
		c = *cfg
	}
	r := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(c.Timeout).
		SetRetryCount(c.RetryCount).
		SetRetryWaitTime(c.RetryWait)
	if c.UserAgent != "" {
		r.SetHeader("User-Agent", c.UserAgent)
	}
	return &Transport{r: r, cfg: c}
}

// Do sends one request. A nil body sends none; anything else is encoded as JSON.
// Error statuses are returned as responses, not errors; see problem.
func (t *Transport) Do(ctx context.Context, method, path string, body any) (*resty.Response, error) {
	req := t.r.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

// problem turns an error response into *apitypes.ApiError, synthesizing one when the
// body is not a problem document (e.g. a proxy error page).
func problem(resp *resty.Response) error {
	var p apitypes.ApiError
	if err := json.Unmarshal(resp.Body(), &p); err == nil && (p.Status != 0 || p.Title != "") {
		return &p
	}
	code := resp.StatusCode()
	return &apitypes.ApiError{Status: code, Title: http.StatusText(code), Detail: strings.TrimSpace(string(resp.Body()))}
}

func decode[T any](resp *resty.Response) (*T, error) {
	if resp.IsError() {
		return nil, problem(resp)
	}
	if len(resp.Body()) == 0 {
		return nil, fmt.Errorf("empty response")
	}
	var out T
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &out, nil
}
