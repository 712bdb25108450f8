package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/generapi/generapi/internal/log"
	"github.com/generapi/generapi/internal/naming"
	"github.com/generapi/generapi/internal/openapi"
	"github.com/generapi/generapi/internal/scaffold"
)

type Generate struct {
	Spec     string        `help:"OpenAPI 3 document (YAML or JSON)" required:"" type:"existingfile" env:"GENERAPI_GENERATE_SPEC"`
	Package  string        `help:"Base Java package, at least three segments (e.g. com.acme.shop)" required:"" env:"GENERAPI_GENERATE_PACKAGE"`
	Out      string        `help:"Output directory" default:"." type:"path" env:"GENERAPI_GENERATE_OUT"`
	Archive  string        `help:"Write one archive instead of a directory tree: zip, tar.gz or tar.zst" enum:",zip,tar.gz,tgz,tar.zst,tzst" default:"" env:"GENERAPI_GENERATE_ARCHIVE"`
	Proxies  []string      `help:"Proxy blueprints injected into the resource" default:"apim" env:"GENERAPI_GENERATE_PROXIES"`
	Resource string        `help:"Resource blueprint" default:"resource/v2" env:"GENERAPI_GENERATE_RESOURCE"`
	Workers  int           `help:"Render workers (0 uses one per CPU)" default:"0" env:"GENERAPI_GENERATE_WORKERS"`
	Timeout  time.Duration `help:"Deadline for the whole generation (0 disables it)" default:"1m" env:"GENERAPI_GENERATE_TIMEOUT"`
	Catalog  CatalogFlags  `embed:"" prefix:"catalog."`
}

// Run is called by Kong when the generate command is executed.
func (g *Generate) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return g.Execute(ctx, logger, rawLogger, os.Stderr)
}

// Execute generates the scaffold. Failures are listed on errOut, one record per line.
func (g *Generate) Execute(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger, errOut io.Writer) error {
	data, err := os.ReadFile(g.Spec)
	if err != nil {
		return fmt.Errorf("read spec: %w", err)
	}
	doc, err := openapi.Parse(data)
	if err != nil {
		return fmt.Errorf("%s: %w", g.Spec, err)
	}

	b, err := g.Catalog.Load()
	if err != nil {
		return err
	}
	gen, err := scaffold.New(b, logger)
	if err != nil {
		return err
	}

	logger.Info("Generating scaffold", "app", doc.Title, "version", doc.Version, "package", g.Package, "resource", g.Resource)
	files, err := gen.Generate(ctx, doc, scaffold.Options{
		Package:  g.Package,
		Proxies:  g.Proxies,
		Resource: g.Resource,
		Workers:  g.Workers,
		Timeout:  g.Timeout,
	})
	if err != nil {
		var failed *scaffold.FailedError
		if errors.As(err, &failed) {
			printFailures(errOut, failed)
		}
		return err
	}
	for _, f := range files {
		rawLogger.Log(f.Path, f.Content)
	}

	if g.Archive == "" {
		st, err := scaffold.WriteDir(g.Out, files)
		if err != nil {
			return err
		}
		logger.Info("Scaffold written", "dir", filepath.Join(g.Out, naming.Identifier(doc.Title)), "written", st.Written, "unchanged", st.Unchanged)
		return nil
	}

	format, err := scaffold.ParseFormat(g.Archive)
	if err != nil {
		return err
	}
	target := g.Out
	if fi, err := os.Stat(target); err == nil && fi.IsDir() {
		target = filepath.Join(target, naming.Identifier(doc.Title)+format.Ext())
	}
	if err := writeArchiveFile(target, format, files); err != nil {
		return err
	}
	logger.Info("Scaffold archive written", "file", target, "format", format, "files", len(files))
	return nil
}

// writeArchiveFile writes to a temporary sibling first so a failed write never
// leaves a truncated archive behind.
func writeArchiveFile(target string, format scaffold.Format, files []scaffold.File) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), ".generapi-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := scaffold.WriteArchive(tmp, format, files); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}

func printFailures(w io.Writer, failed *scaffold.FailedError) {
	for _, f := range failed.Failures {
		if f.Err != nil {
			fmt.Fprintf(w, "%s (%s): %v\n", f.Job, f.Blueprint, f.Err)
		}
		for _, e := range f.Errors {
			fmt.Fprintf(w, "%s: %v\n", f.Job, e)
		}
	}
}
