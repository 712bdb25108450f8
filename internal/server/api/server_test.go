package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/generapi/generapi/internal/metrics"
	"github.com/generapi/generapi/internal/server/api"
	th "github.com/generapi/generapi/internal/testing"
)

func newServer(cfg api.ServerConfig) *api.Server {
	return api.New(cfg, metrics.New(), th.Discard())
}

func serve(s *api.Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestServerStartShutdown(t *testing.T) {
	s := newServer(api.ServerConfig{Addr: "127.0.0.1:0"})
	s.Router().GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	require.NoError(t, s.Start())

	resp, err := http.Get("http://" + s.Addr() + "/ok")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, s.Shutdown(context.Background()))
	select {
	case err := <-s.Done():
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRequestID(t *testing.T) {
	s := newServer(api.ServerConfig{})
	s.Router().GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := serve(s, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Len(t, w.Header().Get(api.RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(api.RequestIDHeader, "abc-123")
	w = serve(s, req)
	assert.Equal(t, "abc-123", w.Header().Get(api.RequestIDHeader))
}

func TestRecovery(t *testing.T) {
	s := newServer(api.ServerConfig{})
	s.Router().GET("/panic", func(c *gin.Context) { panic("boom") })

	w := serve(s, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"status":500,"title":"Internal Server Error","detail":"internal error"}`, w.Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	s := newServer(api.ServerConfig{})
	s.Router().POST("/render", func(c *gin.Context) {})

	w := serve(s, httptest.NewRequest(http.MethodGet, "/render", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		origin  string
		want    string
	}{
		{name: "any origin", origins: []string{"*"}, origin: "https://ui.example", want: "*"},
		{name: "listed origin", origins: []string{"https://ui.example"}, origin: "https://ui.example", want: "https://ui.example"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newServer(api.ServerConfig{AllowOrigins: tt.origins})
			s.Router().POST("/render", func(c *gin.Context) {})

			req := httptest.NewRequest(http.MethodOptions, "/render", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			w := serve(s, req)
			assert.Equal(t, tt.want, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestRateLimit(t *testing.T) {
	s := newServer(api.ServerConfig{})
	s.Router().GET("/limited", api.RateLimit(0.001, 2), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	s.Router().GET("/free", api.RateLimit(0, 0), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, serve(s, httptest.NewRequest(http.MethodGet, "/limited", nil)).Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusNoContent, serve(s, httptest.NewRequest(http.MethodGet, "/free", nil)).Code)
	}
}

func TestClientLimiterDropsIdleClients(t *testing.T) {
	l := api.NewClientLimiter(1, 1, time.Minute)
	start := time.Unix(1_700_000_000, 0)

	assert.True(t, l.AllowAt("a", start))
	assert.False(t, l.AllowAt("a", start))
	assert.True(t, l.AllowAt("b", start.Add(30*time.Second)))
	assert.Equal(t, 2, l.Len())

	// a has been quiet for a full minute, b has not
	assert.True(t, l.AllowAt("c", start.Add(61*time.Second)))
	assert.Equal(t, 2, l.Len())

	assert.True(t, l.AllowAt("b", start.Add(200*time.Second)))
	assert.Equal(t, 1, l.Len())
}

func TestClientLimiterIdleCoversRefill(t *testing.T) {
	// refilling 5 tokens at 1 per 10s takes 50s, longer than the 1s idle period
	l := api.NewClientLimiter(0.1, 5, time.Second)
	start := time.Unix(1_700_000_000, 0)
	for i := 0; i < 5; i++ {
		require.True(t, l.AllowAt("a", start))
	}
	assert.False(t, l.AllowAt("a", start))

	assert.False(t, l.AllowAt("a", start.Add(5*time.Second)))
	assert.Equal(t, 1, l.Len())
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, api.WrapError(nil))
	assert.Equal(t, 404, api.WrapError(api.ErrNotFound("x")).Status)
	assert.Equal(t, 500, api.WrapError(context.Canceled).Status)
	assert.Equal(t, 413, api.WrapError(&http.MaxBytesError{Limit: 1}).Status)
}
