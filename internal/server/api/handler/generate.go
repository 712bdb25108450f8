package handler

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/generapi/generapi/apitypes"
	"github.com/generapi/generapi/internal/log"
	"github.com/generapi/generapi/internal/metrics"
	"github.com/generapi/generapi/internal/naming"
	"github.com/generapi/generapi/internal/openapi"
	"github.com/generapi/generapi/internal/scaffold"
	"github.com/generapi/generapi/internal/server/api"
)

// GenerateConfig holds the server-side limits of one generation.
type GenerateConfig struct {
	Workers int
	Timeout time.Duration
}

// Generate scaffolds a Quarkus service from a base64 encoded OpenAPI document and
// answers with the archive.
func Generate(g *scaffold.Generator, cfg GenerateConfig, m *metrics.Metrics, raw log.RawLogger) gin.HandlerFunc {
	if raw == nil {
		raw = log.NewRaw(nil)
	}
	return func(c *gin.Context) {
		logger := api.Logger(c)

		var req apitypes.GenerateRequest
		if !api.BindJSON(c, &req) {
			return
		}
		data := req.Data
		if data.Swagger == "" {
			api.Abort(c, api.ErrBadRequest("data.swagger is required"))
			return
		}
		spec, err := decodeBase64(data.Swagger)
		if err != nil {
			api.Abort(c, api.ErrBadRequest("data.swagger is not valid base64: "+err.Error()))
			return
		}
		doc, err := openapi.Parse(spec)
		if err != nil {
			api.Abort(c, api.ErrBadRequest(err.Error()))
			return
		}
		format := scaffold.FormatZip
		if data.Format != "" {
			if format, err = scaffold.ParseFormat(data.Format); err != nil {
				api.Abort(c, api.ErrBadRequest(err.Error()))
				return
			}
		}

		opts := scaffold.Options{
			Package:  data.Package,
			Proxies:  data.Proxies,
			Resource: data.Resource,
			Workers:  cfg.Workers,
			Timeout:  cfg.Timeout,
		}
		files, err := g.Generate(c.Request.Context(), doc, opts)
		m.ObserveScaffold(len(files), err == nil)
		if err != nil {
			abortGenerate(c, err)
			return
		}

		for _, f := range files {
			raw.Log(f.Path, f.Content)
		}
		archive, err := scaffold.Archive(format, files)
		if err != nil {
			api.Abort(c, api.ErrInternal(fmt.Sprintf("build %s archive: %v", format, err)))
			return
		}

		logger.Info("Scaffold served", "app", doc.Title, "files", len(files), "format", format, "bytes", len(archive))
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s%s", naming.Identifier(doc.Title), format.Ext()))
		c.Header("ETag", `"`+scaffold.Digest(archive)+`"`)
		c.Data(http.StatusOK, format.ContentType(), archive)
	}
}

func abortGenerate(c *gin.Context, err error) {
	var failed *scaffold.FailedError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		api.Abort(c, &apitypes.ApiError{Status: http.StatusServiceUnavailable, Title: "Service Unavailable", Detail: "generation deadline exceeded"})
	case errors.Is(err, context.Canceled):
		// the client went away; nobody reads the answer
		c.Abort()
	case errors.As(err, &failed):
		body := apitypes.GenerateFailedResponse{
			ApiError: *api.ErrUnprocessable(fmt.Sprintf("%d job(s) failed", len(failed.Failures))),
			Failures: make([]apitypes.JobFailure, 0, len(failed.Failures)),
		}
		for _, f := range failed.Failures {
			jf := apitypes.JobFailure{Job: f.Job, Blueprint: f.Blueprint, Errors: renderErrors(f.Errors)}
			if f.Err != nil {
				jf.Detail = f.Err.Error()
			}
			body.Failures = append(body.Failures, jf)
		}
		api.AbortWith(c, body.Status, body)
	default:
		api.Abort(c, api.ErrBadRequest(err.Error()))
	}
}

// decodeBase64 accepts padded and unpadded standard encodings, ignoring line breaks.
func decodeBase64(s string) ([]byte, error) {
	s = strings.NewReplacer("\n", "", "\r", "").Replace(strings.TrimSpace(s))
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}
