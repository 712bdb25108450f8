// Package api serves the blueprint catalog and the scaffold generator over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/generapi/generapi/internal/metrics"
)

const defaultShutdownTimeout = 10 * time.Second

// Server wraps a gin engine with the generapi middleware chain.
type Server struct {
	engine  *gin.Engine
	http    *http.Server
	ln      net.Listener
	logger  *slog.Logger
	metrics *metrics.Metrics
	config  ServerConfig
	done    chan error
}

// New creates a server whose engine already carries the middleware chain and the
// /metrics route; callers register the remaining handlers on Router.
func New(config ServerConfig, m *metrics.Metrics, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	e := gin.New()
	e.HandleMethodNotAllowed = true
	e.Use(
		Recovery(logger),
		RequestID(),
		AccessLog(logger),
		metrics.Middleware(m),
		CORS(config.AllowOrigins),
	)
	if config.MaxBodyBytes > 0 {
		e.Use(BodyLimit(config.MaxBodyBytes))
	}
	e.NoRoute(func(c *gin.Context) {
		Abort(c, ErrNotFound("no route for "+c.Request.Method+" "+c.Request.URL.Path))
	})
	e.NoMethod(func(c *gin.Context) {
		AbortWith(c, http.StatusMethodNotAllowed, apiError(http.StatusMethodNotAllowed, c.Request.Method+" is not allowed here"))
	})
	e.GET("/metrics", gin.WrapH(m.Handler()))

	return &Server{
		engine:  e,
		logger:  logger,
		metrics: m,
		config:  config,
	}
}

// Router returns the engine so callers can register handlers.
func (a *Server) Router() *gin.Engine { return a.engine }

// Metrics returns the collectors the middleware records into.
func (a *Server) Metrics() *metrics.Metrics { return a.metrics }

// Config returns the server configuration.
func (a *Server) Config() ServerConfig { return a.config }

// Handler returns the engine as an http.Handler.
func (a *Server) Handler() http.Handler { return a.engine }

// Start listens on the configured address and serves in the background.
func (a *Server) Start() error {
	ln, err := net.Listen("tcp", a.config.Addr)
	if err != nil {
		return err
	}
	a.ln = ln
	a.http = &http.Server{
		Handler:           a.engine,
		ReadTimeout:       a.config.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      a.config.WriteTimeout,
		ErrorLog:          slog.NewLogLogger(a.logger.Handler(), slog.LevelWarn),
	}
	a.done = make(chan error, 1)
	a.logger.Info("API listening", "addr", ln.Addr().String())
	go func() {
		err := a.http.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			a.logger.Info("API server stopped")
			err = nil
		}
		a.done <- err
	}()
	return nil
}

// Addr returns the bound listen address, or the configured one before Start.
func (a *Server) Addr() string {
	if a.ln != nil {
		return a.ln.Addr().String()
	}
	return a.config.Addr
}

// Done receives the serve loop's terminal error, nil after a clean shutdown.
func (a *Server) Done() <-chan error { return a.done }

// Shutdown stops accepting connections and waits for in-flight requests.
func (a *Server) Shutdown(ctx context.Context) error {
	if a.http == nil {
		return nil
	}
	timeout := a.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return a.http.Shutdown(ctx)
}

// Close stops the server immediately.
func (a *Server) Close() {
	if a.http != nil {
		_ = a.http.Close()
	}
}
