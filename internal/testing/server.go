package testing

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/generapi/generapi/blueprint"
	"github.com/generapi/generapi/internal/bundle"
	"github.com/generapi/generapi/internal/metrics"
	"github.com/generapi/generapi/internal/scaffold"
	"github.com/generapi/generapi/internal/server/api"
)

// Deps are the services backing a test API server, all built from the built-in family.
type Deps struct {
	Bundle    *bundle.Bundle
	Catalog   *blueprint.Catalog
	Renderer  *blueprint.Renderer
	Generator *scaffold.Generator
	Metrics   *metrics.Metrics
	Server    *api.Server
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

// StartAPIServer starts an httptest server around a fresh api.Server. register adds the
// routes under test. The returned done func closes the server.
func StartAPIServer(t *testing.T, register func(r *gin.Engine, d Deps)) (string, Deps, func()) {
	t.Helper()
	b, err := bundle.Builtin()
	require.NoError(t, err)
	cat, err := b.Catalog()
	require.NoError(t, err)

	m := metrics.New()
	gen, err := scaffold.New(b, Discard(), scaffold.WithObserver(m.ObserveRender))
	require.NoError(t, err)

	srv := api.New(api.ServerConfig{MaxBodyBytes: 1 << 20, AllowOrigins: []string{"*"}}, m, Discard())
	d := Deps{
		Bundle:    b,
		Catalog:   cat,
		Renderer:  blueprint.NewRenderer(cat),
		Generator: gen,
		Metrics:   m,
		Server:    srv,
	}
	if register != nil {
		register(srv.Router(), d)
	}
	ts := httptest.NewServer(srv.Handler())
	return ts.URL, d, ts.Close
}

// NewCatalog loads bodies keyed by id into a catalog.
func NewCatalog(t *testing.T, bodies map[string]string) *blueprint.Catalog {
	t.Helper()
	cat, err := blueprint.Load(blueprint.MapSource(bodies))
	require.NoError(t, err)
	return cat
}
