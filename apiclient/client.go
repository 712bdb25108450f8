package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/generapi/generapi/apitypes"
	"github.com/generapi/generapi/internal/version"
)

// ErrRenderFailed is returned together with the response when a render produced errors.
var ErrRenderFailed = errors.New("render failed")

// ErrIncompatible reports a server whose major version differs from the client's.
var ErrIncompatible = errors.New("incompatible server version")

// Client provides a high-level interface to the generapi HTTP API, handling request
// formatting, response parsing, and error handling.
type Client struct{ transport *Transport }

// New constructs a client for the server at baseURL.
func New(baseURL string) *Client { return &Client{transport: NewTransport(baseURL)} }

// NewWithConfig constructs a client with custom transport settings.
func NewWithConfig(baseURL string, cfg *Config) *Client {
	return &Client{transport: NewTransportWithConfig(baseURL, cfg)}
}

// WithTransport constructs a Client using a custom Transport.
func WithTransport(t *Transport) *Client { return &Client{transport: t} }

// Ping returns the version and identity of the server.
func (c *Client) Ping() (*apitypes.PingResponse, error) {
	return c.PingCtx(context.Background())
}

// PingCtx is the context-aware version of Ping.
func (c *Client) PingCtx(ctx context.Context) (*apitypes.PingResponse, error) {
	resp, err := c.transport.Do(ctx, http.MethodGet, "/ping", nil)
	if err != nil {
		return nil, err
	}
	return decode[apitypes.PingResponse](resp)
}

// CheckCompatible pings the server and fails with ErrIncompatible when its major
// version differs from this client's.
func (c *Client) CheckCompatible(ctx context.Context) (*apitypes.PingResponse, error) {
	p, err := c.PingCtx(ctx)
	if err != nil {
		return nil, err
	}
	local, err := version.Get()
	if err != nil {
		return p, err
	}
	serverMajor, _, _ := version.Parse(p.Version)
	localMajor, _, _ := version.Parse(local)
	if serverMajor != localMajor {
		return p, fmt.Errorf("%w: server %s, client %s", ErrIncompatible, p.Version, local)
	}
	return p, nil
}

// Blueprints lists the server's catalog with each placeholder contract.
func (c *Client) Blueprints() (*apitypes.BlueprintListResponse, error) {
	return c.BlueprintsCtx(context.Background())
}

func (c *Client) BlueprintsCtx(ctx context.Context) (*apitypes.BlueprintListResponse, error) {
	resp, err := c.transport.Do(ctx, http.MethodGet, "/blueprints", nil)
	if err != nil {
		return nil, err
	}
	return decode[apitypes.BlueprintListResponse](resp)
}

// Render renders one blueprint remotely. When the render reports errors, the response
// (with partial text and every error record) is returned along with ErrRenderFailed.
func (c *Client) Render(id string, vars map[string]any) (*apitypes.RenderResponse, error) {
	return c.RenderCtx(context.Background(), id, vars)
}

func (c *Client) RenderCtx(ctx context.Context, id string, vars map[string]any) (*apitypes.RenderResponse, error) {
	resp, err := c.transport.Do(ctx, http.MethodPost, "/render", apitypes.RenderRequest{Blueprint: id, Context: vars})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusUnprocessableEntity {
		var out apitypes.RenderResponse
		if err := json.Unmarshal(resp.Body(), &out); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		return &out, fmt.Errorf("%w: %d error(s)", ErrRenderFailed, len(out.Errors))
	}
	return decode[apitypes.RenderResponse](resp)
}

// Archive is a generated scaffold as served by the generate endpoint.
type Archive struct {
	Filename    string
	ContentType string
	ETag        string
	Data        []byte
}

// Generate scaffolds a Quarkus service. A failed generation returns
// *apitypes.GenerateFailedResponse as the error, listing every failed job.
func (c *Client) Generate(data apitypes.GenerateData) (*Archive, error) {
	return c.GenerateCtx(context.Background(), data)
}

func (c *Client) GenerateCtx(ctx context.Context, data apitypes.GenerateData) (*Archive, error) {
	resp, err := c.transport.Do(ctx, http.MethodPost, "/quarkus/generate", apitypes.GenerateRequest{Data: data})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusUnprocessableEntity {
		var failed apitypes.GenerateFailedResponse
		if err := json.Unmarshal(resp.Body(), &failed); err == nil && len(failed.Failures) > 0 {
			return nil, &failed
		}
	}
	if resp.IsError() {
		return nil, problem(resp)
	}
	a := &Archive{
		ContentType: resp.Header().Get("Content-Type"),
		ETag:        resp.Header().Get("ETag"),
		Data:        resp.Body(),
	}
	if _, params, err := mime.ParseMediaType(resp.Header().Get("Content-Disposition")); err == nil {
		a.Filename = params["filename"]
	}
	return a, nil
}

// Metrics returns the server's Prometheus exposition text.
func (c *Client) Metrics() (string, error) {
	return c.MetricsCtx(context.Background())
}

func (c *Client) MetricsCtx(ctx context.Context) (string, error) {
	resp, err := c.transport.Do(ctx, http.MethodGet, "/metrics", nil)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", problem(resp)
	}
	return resp.String(), nil
}
