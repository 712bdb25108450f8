package handler_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/zip"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/generapi/generapi/apitypes"
	"github.com/generapi/generapi/internal/log"
	"github.com/generapi/generapi/internal/scaffold"
	"github.com/generapi/generapi/internal/server/api/handler"
	th "github.com/generapi/generapi/internal/testing"
)

func generateBody(d apitypes.GenerateData) apitypes.GenerateRequest {
	return apitypes.GenerateRequest{Data: d}
}

func startGenerate(t *testing.T) (string, th.Deps, func()) {
	return th.StartAPIServer(t, func(r *gin.Engine, d th.Deps) {
		r.POST("/quarkus/generate", handler.Generate(d.Generator, handler.GenerateConfig{Workers: 2, Timeout: 10 * time.Second}, d.Metrics, log.NewRaw(nil)))
	})
}

func TestGenerateZip(t *testing.T) {
	addr, d, done := startGenerate(t)
	defer done()

	resp, body := postJSON(t, addr+"/quarkus/generate", generateBody(apitypes.GenerateData{
		Swagger: th.ShopSpecBase64(),
		Package: "com.acme.shop",
	}))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "application/zip", resp.Header.Get("Content-Type"))
	assert.Equal(t, "attachment; filename=Shop.zip", resp.Header.Get("Content-Disposition"))
	assert.Equal(t, `"`+scaffold.Digest(body)+`"`, resp.Header.Get("ETag"))

	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	require.NoError(t, err)
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Len(t, names, 9)
	assert.Contains(t, names, "Shop/pom.xml")
	assert.Contains(t, names, "Shop/src/main/java/com/acme/shop/shop/application/v2/front/OrderRequest.java")
	assert.Contains(t, names, "Shop/src/main/java/com/acme/shop/shop/application/v2/front/ReceiptResponse.java")
	assert.Equal(t, "Shop/generapi.sum", names[len(names)-1])

	assert.Equal(t, 1.0, testutil.ToFloat64(d.Metrics.ScaffoldsTotal.WithLabelValues("ok")))
	assert.Equal(t, 3.0, testutil.ToFloat64(d.Metrics.RendersTotal.WithLabelValues("model/front", "ok")))
}

func TestGenerateIsStable(t *testing.T) {
	addr, _, done := startGenerate(t)
	defer done()

	req := generateBody(apitypes.GenerateData{Swagger: th.ShopSpecBase64(), Package: "com.acme.shop", Proxies: []string{"apim", "sp"}})
	first, _ := postJSON(t, addr+"/quarkus/generate", req)
	second, _ := postJSON(t, addr+"/quarkus/generate", req)
	require.Equal(t, http.StatusOK, first.StatusCode)
	assert.Equal(t, first.Header.Get("ETag"), second.Header.Get("ETag"))
}

func TestGenerateFormats(t *testing.T) {
	addr, _, done := startGenerate(t)
	defer done()

	tests := []struct {
		format      string
		contentType string
		filename    string
	}{
		{"tar.gz", "application/gzip", "Shop.tar.gz"},
		{"tgz", "application/gzip", "Shop.tar.gz"},
		{"tar.zst", "application/zstd", "Shop.tar.zst"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			resp, body := postJSON(t, addr+"/quarkus/generate", generateBody(apitypes.GenerateData{
				Swagger: th.ShopSpecBase64(),
				Package: "com.acme.shop",
				Format:  tt.format,
			}))
			require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
			assert.Equal(t, tt.contentType, resp.Header.Get("Content-Type"))
			assert.Equal(t, "attachment; filename="+tt.filename, resp.Header.Get("Content-Disposition"))
		})
	}
}

func TestGenerateBadInput(t *testing.T) {
	addr, d, done := startGenerate(t)
	defer done()

	encode := func(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }
	tests := []struct {
		name string
		body any
	}{
		{name: "malformed json", body: `{"data":`},
		{name: "missing swagger", body: generateBody(apitypes.GenerateData{Package: "com.acme.shop"})},
		{name: "bad base64", body: generateBody(apitypes.GenerateData{Swagger: "%%%", Package: "com.acme.shop"})},
		{name: "document without title", body: generateBody(apitypes.GenerateData{Swagger: encode("info: {version: 1.0.0}\n"), Package: "com.acme.shop"})},
		{name: "short package", body: generateBody(apitypes.GenerateData{Swagger: th.ShopSpecBase64(), Package: "com.acme"})},
		{name: "unknown proxy", body: generateBody(apitypes.GenerateData{Swagger: th.ShopSpecBase64(), Package: "com.acme.shop", Proxies: []string{"ftp"}})},
		{name: "unknown resource", body: generateBody(apitypes.GenerateData{Swagger: th.ShopSpecBase64(), Package: "com.acme.shop", Resource: "resource/v9"})},
		{name: "unknown format", body: generateBody(apitypes.GenerateData{Swagger: th.ShopSpecBase64(), Package: "com.acme.shop", Format: "rar"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := postJSON(t, addr+"/quarkus/generate", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))
			assert.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))

			var problem apitypes.ApiError
			require.NoError(t, json.Unmarshal(body, &problem))
			assert.Equal(t, http.StatusBadRequest, problem.Status)
			assert.NotEmpty(t, problem.Detail)
		})
	}
	assert.Equal(t, 0.0, testutil.ToFloat64(d.Metrics.ScaffoldsTotal.WithLabelValues("ok")))
}

func TestGenerateRenderFailures(t *testing.T) {
	addr, _, done := th.StartAPIServer(t, func(r *gin.Engine, d th.Deps) {
		g, err := scaffold.New(d.Bundle, th.Discard(), scaffold.WithStructure("commons/constants", "resource/method"))
		require.NoError(t, err)
		r.POST("/quarkus/generate", handler.Generate(g, handler.GenerateConfig{}, d.Metrics, log.NewRaw(nil)))
	})
	defer done()

	resp, body := postJSON(t, addr+"/quarkus/generate", generateBody(apitypes.GenerateData{
		Swagger: th.ShopSpecBase64(),
		Package: "com.acme.shop",
	}))
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, string(body))

	var failed apitypes.GenerateFailedResponse
	require.NoError(t, json.Unmarshal(body, &failed))
	assert.Equal(t, http.StatusUnprocessableEntity, failed.Status)
	require.Len(t, failed.Failures, 1)
	assert.Equal(t, "resource/method", failed.Failures[0].Blueprint)
	require.NotEmpty(t, failed.Failures[0].Errors)
	assert.Equal(t, "UnboundPlaceholder", failed.Failures[0].Errors[0].Kind)
}

func TestGenerateBodyLimit(t *testing.T) {
	_, d, done := startGenerate(t)
	defer done()

	payload, err := json.Marshal(generateBody(apitypes.GenerateData{
		Swagger: strings.Repeat("a", 2<<20),
		Package: "com.acme.shop",
	}))
	require.NoError(t, err)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/quarkus/generate", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	d.Server.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
