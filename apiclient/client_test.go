package apiclient_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/generapi/generapi/apiclient"
	"github.com/generapi/generapi/apitypes"
	"github.com/generapi/generapi/internal/scaffold"
	"github.com/generapi/generapi/internal/server/api/handler"
	th "github.com/generapi/generapi/internal/testing"
)

func startServer(t *testing.T) (*apiclient.Client, func()) {
	t.Helper()
	addr, _, done := th.StartAPIServer(t, func(r *gin.Engine, d th.Deps) {
		handler.Register(r, handler.Services{
			Family:    d.Bundle.Family(),
			Catalog:   d.Catalog,
			Generator: d.Generator,
			Metrics:   d.Metrics,
			Generate:  handler.GenerateConfig{Workers: 2, Timeout: 10 * time.Second},
		})
	})
	return apiclient.NewWithConfig(addr, &apiclient.Config{Timeout: 5 * time.Second}), done
}

func TestClientEndpoints(t *testing.T) {
	c, done := startServer(t)
	defer done()

	tests := []struct {
		name       string
		call       func(c *apiclient.Client) (any, error)
		wantErr    string
		assertFunc func(t *testing.T, got any)
	}{
		{
			name: "ping",
			call: func(c *apiclient.Client) (any, error) { return c.Ping() },
			assertFunc: func(t *testing.T, got any) {
				p := got.(*apitypes.PingResponse)
				assert.Equal(t, "generapi", p.Server)
				assert.NotEmpty(t, p.Version)
			},
		},
		{
			name: "compatible",
			call: func(c *apiclient.Client) (any, error) { return c.CheckCompatible(context.Background()) },
			assertFunc: func(t *testing.T, got any) {
				assert.Equal(t, "generapi", got.(*apitypes.PingResponse).Server)
			},
		},
		{
			name: "blueprints",
			call: func(c *apiclient.Client) (any, error) { return c.Blueprints() },
			assertFunc: func(t *testing.T, got any) {
				list := got.(*apitypes.BlueprintListResponse)
				assert.Equal(t, "quarkus", list.Family)
				assert.NotEmpty(t, list.Blueprints)
			},
		},
		{
			name: "render",
			call: func(c *apiclient.Client) (any, error) {
				return c.Render("README.md", map[string]any{
					"appName": "Shop", "apiVersion": "1.0.0", "packagePath": "com/acme",
					"lowerCaseAppName": "shop", "version": "v1",
				})
			},
			assertFunc: func(t *testing.T, got any) {
				assert.Contains(t, got.(*apitypes.RenderResponse).Text, "# Shop")
			},
		},
		{
			name:    "unknown blueprint",
			call:    func(c *apiclient.Client) (any, error) { return c.Render("nope", nil) },
			wantErr: "404 Not Found: unknown blueprint nope",
		},
		{
			name:    "bad generate input",
			call:    func(c *apiclient.Client) (any, error) { return c.Generate(apitypes.GenerateData{Package: "com.acme.shop"}) },
			wantErr: "400 Bad Request: data.swagger is required",
		},
		{
			name: "generate",
			call: func(c *apiclient.Client) (any, error) {
				return c.Generate(apitypes.GenerateData{Swagger: th.ShopSpecBase64(), Package: "com.acme.shop"})
			},
			assertFunc: func(t *testing.T, got any) {
				a := got.(*apiclient.Archive)
				assert.Equal(t, "Shop.zip", a.Filename)
				assert.Equal(t, "application/zip", a.ContentType)
				assert.Equal(t, `"`+scaffold.Digest(a.Data)+`"`, a.ETag)
			},
		},
		{
			name: "metrics",
			call: func(c *apiclient.Client) (any, error) { return c.Metrics() },
			assertFunc: func(t *testing.T, got any) {
				assert.Contains(t, got.(string), "generapi_http_requests_total")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.call(c)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				var ae *apitypes.ApiError
				assert.True(t, errors.As(err, &ae))
				return
			}
			require.NoError(t, err)
			if tt.assertFunc != nil {
				tt.assertFunc(t, got)
			}
		})
	}
}

func TestClientRenderFailure(t *testing.T) {
	c, done := startServer(t)
	defer done()

	res, err := c.Render("README.md", map[string]any{"appName": "Shop"})
	require.ErrorIs(t, err, apiclient.ErrRenderFailed)
	require.NotNil(t, res)
	assert.Contains(t, res.Text, "# Shop")
	assert.NotEmpty(t, res.Errors)
}

func TestClientGenerateFailure(t *testing.T) {
	addr, _, done := th.StartAPIServer(t, func(r *gin.Engine, d th.Deps) {
		g, err := scaffold.New(d.Bundle, th.Discard(), scaffold.WithStructure("resource/method"))
		require.NoError(t, err)
		r.POST("/quarkus/generate", handler.Generate(g, handler.GenerateConfig{}, d.Metrics, nil))
	})
	defer done()

	_, err := apiclient.New(addr).Generate(apitypes.GenerateData{Swagger: th.ShopSpecBase64(), Package: "com.acme.shop"})
	var failed *apitypes.GenerateFailedResponse
	require.True(t, errors.As(err, &failed), "got %v", err)
	require.Len(t, failed.Failures, 1)
	assert.Equal(t, "resource/method", failed.Failures[0].Blueprint)
}

func TestClientNonProblemError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := apiclient.NewWithConfig(ts.URL, &apiclient.Config{Timeout: time.Second}).Ping()
	assert.EqualError(t, err, "502 Bad Gateway: upstream down")
}

func TestClientIncompatibleServer(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"server":"generapi","version":"99.0.0"}`))
	}))
	defer ts.Close()

	_, err := apiclient.New(ts.URL).CheckCompatible(context.Background())
	assert.ErrorIs(t, err, apiclient.ErrIncompatible)
}

func TestClientUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := apiclient.NewWithConfig(url, &apiclient.Config{Timeout: time.Second}).Ping()
	assert.Error(t, err)
	var ae *apitypes.ApiError
	assert.False(t, errors.As(err, &ae))
}
