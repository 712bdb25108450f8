package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/generapi/generapi/apitypes"
	"github.com/generapi/generapi/internal/server/api/handler"
	th "github.com/generapi/generapi/internal/testing"
)

var readmeContext = map[string]any{
	"appName":          "Shop",
	"apiVersion":       "1.0.0",
	"packagePath":      "com/acme",
	"lowerCaseAppName": "shop",
	"version":          1,
}

func TestRender(t *testing.T) {
	addr, d, done := th.StartAPIServer(t, func(r *gin.Engine, d th.Deps) {
		r.POST("/render", handler.Render(d.Renderer, d.Metrics))
	})
	defer done()

	tests := []struct {
		name       string
		body       any
		wantStatus int
		check      func(t *testing.T, body []byte)
	}{
		{
			name:       "bound context",
			body:       apitypes.RenderRequest{Blueprint: "README.md", Context: readmeContext},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var res apitypes.RenderResponse
				require.NoError(t, json.Unmarshal(body, &res))
				assert.Equal(t, "README.md", res.Path)
				assert.Contains(t, res.Text, "# Shop\n")
				assert.Contains(t, res.Text, "src/main/java/com/acme/shop/application/1")
				assert.Empty(t, res.Errors)
				assert.Contains(t, string(body), `"errors":[]`)
			},
		},
		{
			name:       "unbound placeholders answer 422 with partial text",
			body:       apitypes.RenderRequest{Blueprint: "README.md", Context: map[string]any{"appName": "Shop"}},
			wantStatus: http.StatusUnprocessableEntity,
			check: func(t *testing.T, body []byte) {
				var res apitypes.RenderResponse
				require.NoError(t, json.Unmarshal(body, &res))
				assert.Contains(t, res.Text, "# Shop\n")
				require.NotEmpty(t, res.Errors)
				for _, e := range res.Errors {
					assert.Equal(t, "UnboundPlaceholder", e.Kind)
					assert.Equal(t, "README.md", e.Blueprint)
				}
			},
		},
		{
			name:       "fragments from the context",
			body:       `{"blueprint":"model/front","context":{"appName":"Shop","importPackage":"com.acme","lowerCaseAppName":"shop","version":"v1","packagePath":"com/acme","modelName":"OrderRequest","parameters":[{"blueprint":"model/field","name":"id","type":"String","required":true,"description":"","example":""}]}}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var res apitypes.RenderResponse
				require.NoError(t, json.Unmarshal(body, &res))
				assert.Contains(t, res.Text, "private String id;")
				assert.Equal(t, "src/main/java/com/acme/shop/application/v1/front/OrderRequest.java", res.Path)
			},
		},
		{
			name:       "unknown blueprint",
			body:       apitypes.RenderRequest{Blueprint: "nope"},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "missing blueprint",
			body:       apitypes.RenderRequest{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed json",
			body:       `{"blueprint":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unsupported context value",
			body:       `{"blueprint":"README.md","context":{"parameters":[{"name":"x"}]}}`,
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := postJSON(t, addr+"/render", tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode, string(body))
			if tt.check != nil {
				tt.check(t, body)
			}
		})
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(d.Metrics.RendersTotal.WithLabelValues("README.md", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(d.Metrics.RendersTotal.WithLabelValues("README.md", "error")))
}
