package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/generapi/generapi/internal/log"
	"github.com/generapi/generapi/internal/metrics"
	"github.com/generapi/generapi/internal/scaffold"
	"github.com/generapi/generapi/internal/server/api"
	"github.com/generapi/generapi/internal/server/api/handler"
	"github.com/generapi/generapi/internal/util"
)

type Serve struct {
	ApiServerConfig api.ServerConfig `embed:"" prefix:"api."`
	Catalog         CatalogFlags     `embed:"" prefix:"catalog."`
	ShutdownTimeout time.Duration    `help:"Grace period for in-flight requests on shutdown" default:"10s" env:"GENERAPI_SHUTDOWN_TIMEOUT"`
}

// Run is called by Kong when the serve command is executed.
func (s *Serve) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.StartServer(ctx, logger, rawLogger)
}

func (s *Serve) StartServer(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger) error {
	s.ApiServerConfig.ShutdownTimeout = s.ShutdownTimeout
	if s.ApiServerConfig.Addr == "" {
		return fmt.Errorf("API server address must be set (default :3000)")
	}

	b, err := s.Catalog.Load()
	if err != nil {
		return err
	}
	cat, err := b.Catalog()
	if err != nil {
		return err
	}
	logger.Info("Blueprint family loaded", "family", b.Family(), "blueprints", cat.Len())

	m := metrics.New()
	gen, err := scaffold.New(b, logger, scaffold.WithObserver(m.ObserveRender))
	if err != nil {
		return err
	}

	apiSrv := api.New(s.ApiServerConfig, m, logger)
	handler.Register(apiSrv.Router(), handler.Services{
		Family:    b.Family(),
		Catalog:   cat,
		Generator: gen,
		Metrics:   m,
		Raw:       rawLogger,
		Generate: handler.GenerateConfig{
			Workers: s.ApiServerConfig.Workers,
			Timeout: s.ApiServerConfig.GenerateTimeout,
		},
		GenerateRate:  s.ApiServerConfig.GenerateRate,
		GenerateBurst: s.ApiServerConfig.GenerateBurst,
	})

	if err := apiSrv.Start(); err != nil {
		logger.Error("failed to start API server", "error", err)
		if util.IsRunFromGUI() {
			fmt.Println("Press any key to exit...")
			b := make([]byte, 1)
			_, _ = os.Stdin.Read(b)
		}
		return err
	}

	if util.IsRunFromGUI() {
		go (func() {
			time.Sleep(250 * time.Millisecond)
			util.HideConsoleWindow()
		})()
	}

	select {
	case <-ctx.Done():
		logger.Info("Shutting down API server")
		if err := apiSrv.Shutdown(context.Background()); err != nil {
			apiSrv.Close()
			return err
		}
		return <-apiSrv.Done()
	case err := <-apiSrv.Done():
		return err
	}
}
