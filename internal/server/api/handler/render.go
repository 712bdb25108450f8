package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/generapi/generapi/apitypes"
	"github.com/generapi/generapi/blueprint"
	"github.com/generapi/generapi/internal/metrics"
	"github.com/generapi/generapi/internal/server/api"
)

// Render renders one blueprint against the posted context. A render with errors
// answers 422 and still carries the partial text.
func Render(r *blueprint.Renderer, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req apitypes.RenderRequest
		if !api.BindJSON(c, &req) {
			return
		}
		if req.Blueprint == "" {
			api.Abort(c, api.ErrBadRequest("blueprint is required"))
			return
		}
		if !r.Catalog().Has(req.Blueprint) {
			api.Abort(c, api.ErrNotFound("unknown blueprint "+req.Blueprint))
			return
		}
		ctx, err := blueprint.FromMap(req.Context)
		if err != nil {
			api.Abort(c, api.ErrBadRequest("invalid context: "+err.Error()))
			return
		}

		start := time.Now()
		res := r.Render(req.Blueprint, ctx)
		m.ObserveRender(req.Blueprint, time.Since(start), res.OK())

		status := http.StatusOK
		if !res.OK() {
			status = http.StatusUnprocessableEntity
			api.Logger(c).Debug("Render failed", "blueprint", req.Blueprint, "errors", len(res.Errors))
		}
		c.JSON(status, apitypes.RenderResponse{Text: res.Text, Path: res.Path, Errors: renderErrors(res.Errors)})
	}
}

// renderErrors never returns nil so the field always encodes as a list.
func renderErrors(es blueprint.Errors) []apitypes.RenderError {
	out := make([]apitypes.RenderError, 0, len(es))
	for _, e := range es {
		out = append(out, apitypes.RenderError{
			Placeholder: e.Placeholder,
			Blueprint:   e.Blueprint,
			Kind:        string(e.Kind),
			Detail:      e.Detail,
		})
	}
	return out
}
