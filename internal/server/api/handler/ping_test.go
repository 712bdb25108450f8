package handler_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/generapi/generapi/internal/server/api/handler"
	th "github.com/generapi/generapi/internal/testing"
	"github.com/generapi/generapi/internal/version"
)

func TestPing(t *testing.T) {
	addr, _, done := th.StartAPIServer(t, func(r *gin.Engine, d th.Deps) {
		r.GET("/ping", handler.Ping())
	})
	defer done()

	resp, body := get(t, addr+"/ping")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"server":"generapi","version":"`+version.String()+`"}`, string(body))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestUnknownRouteIsProblem(t *testing.T) {
	addr, _, done := th.StartAPIServer(t, nil)
	defer done()

	resp, body := get(t, addr+"/nowhere")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"status":404,"title":"Not Found","detail":"no route for GET /nowhere"}`, string(body))
}
