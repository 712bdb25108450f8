package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/generapi/generapi/blueprint"
	"github.com/generapi/generapi/internal/log"
	"github.com/generapi/generapi/internal/metrics"
	"github.com/generapi/generapi/internal/scaffold"
	"github.com/generapi/generapi/internal/server/api"
)

// Services are what the generapi routes are served from.
type Services struct {
	Family    string
	Catalog   *blueprint.Catalog
	Generator *scaffold.Generator
	Metrics   *metrics.Metrics
	Raw       log.RawLogger
	Generate  GenerateConfig
	// GenerateRate and GenerateBurst limit scaffold generations per client IP.
	GenerateRate  float64
	GenerateBurst int
}

// Register wires every generapi endpoint on r.
func Register(r gin.IRouter, s Services) {
	r.GET("/ping", Ping())
	r.GET("/blueprints", BlueprintList(s.Family, s.Catalog))
	r.POST("/render", Render(blueprint.NewRenderer(s.Catalog), s.Metrics))
	r.POST("/quarkus/generate",
		api.RateLimit(s.GenerateRate, s.GenerateBurst),
		Generate(s.Generator, s.Generate, s.Metrics, s.Raw),
	)
}
