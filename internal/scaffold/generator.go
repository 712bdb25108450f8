// Package scaffold turns an OpenAPI document into the source tree of a Quarkus service
// by rendering the blueprints of a family.
package scaffold

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/generapi/generapi/blueprint"
	"github.com/generapi/generapi/internal/bundle"
	"github.com/generapi/generapi/internal/naming"
	"github.com/generapi/generapi/internal/openapi"
)

// ErrRenderFailed is matched by the error Generate returns when any job failed.
var ErrRenderFailed = errors.New("scaffold render failed")

// Observer is told about every finished render.
type Observer func(blueprintID string, took time.Duration, ok bool)

type Generator struct {
	renderer  *blueprint.Renderer
	structure []string
	logger    *slog.Logger
	observe   Observer
}

type Option func(*Generator)

// WithObserver reports every render to obs.
func WithObserver(obs Observer) Option {
	return func(g *Generator) { g.observe = obs }
}

// WithStructure replaces the ids rendered once against the application context.
func WithStructure(ids ...string) Option {
	return func(g *Generator) { g.structure = append([]string(nil), ids...) }
}

// New creates a generator for family b. Its structure files are commons/constants and
// every file the family includes by glob.
func New(b *bundle.Bundle, logger *slog.Logger, opts ...Option) (*Generator, error) {
	cat, err := b.Catalog()
	if err != nil {
		return nil, err
	}
	g := &Generator{
		renderer:  blueprint.NewRenderer(cat),
		structure: append([]string{ConstantsBlueprint}, b.Included()...),
		logger:    logger,
	}
	for _, o := range opts {
		o(g)
	}
	for _, id := range g.structure {
		if !cat.Has(id) {
			return nil, fmt.Errorf("structure blueprint %q is not in family %q", id, b.Family())
		}
	}
	return g, nil
}

// Failure is one job that did not produce a file.
type Failure struct {
	Job       string           `json:"job"`
	Blueprint string           `json:"blueprint"`
	Errors    blueprint.Errors `json:"errors,omitempty"`
	// Err is set for failures outside the render itself, such as an expired deadline
	// or an unusable output path.
	Err error `json:"-"`
}

func (f Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s (%s): %v", f.Job, f.Blueprint, f.Err)
	}
	return fmt.Sprintf("%s (%s): %v", f.Job, f.Blueprint, f.Errors.Err())
}

// FailedError lists every failed job of a Generate call.
type FailedError struct {
	Failures []Failure
}

func (e *FailedError) Error() string {
	msgs := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		msgs[i] = f.Error()
	}
	return fmt.Sprintf("%s: %d job(s) failed: %s", ErrRenderFailed, len(e.Failures), strings.Join(msgs, "; "))
}

func (e *FailedError) Unwrap() []error {
	errs := []error{ErrRenderFailed}
	for _, f := range e.Failures {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
		if len(f.Errors) > 0 {
			errs = append(errs, f.Errors.Err())
		}
	}
	return errs
}

type outcome struct {
	res     blueprint.Result
	failure *Failure
}

// Generate renders the whole plan. Files are returned only when every job succeeded;
// otherwise the error is a *FailedError carrying all failures.
func (g *Generator) Generate(ctx context.Context, doc *openapi.Document, opts Options) ([]File, error) {
	jobs, err := g.Plan(doc, opts)
	if err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	outcomes := make([]outcome, len(jobs))
	next := make(chan int, len(jobs))
	for i := range jobs {
		next <- i
	}
	close(next)

	g.logger.Debug("Starting render workers", "jobs", len(jobs), "workers", workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			g.worker(ctx, workerID, jobs, next, outcomes)
		}(w)
	}
	wg.Wait()

	root := naming.Identifier(doc.Title)
	var failures []Failure
	files := make([]File, 0, len(jobs)+1)
	seen := make(map[string]string, len(jobs))
	for i, o := range outcomes {
		if o.failure != nil {
			failures = append(failures, *o.failure)
			continue
		}
		job := jobs[i]
		if !fs.ValidPath(o.res.Path) || o.res.Path == "." {
			failures = append(failures, Failure{Job: job.Name, Blueprint: job.Blueprint, Err: fmt.Errorf("invalid output path %q", o.res.Path)})
			continue
		}
		if prev, dup := seen[o.res.Path]; dup {
			failures = append(failures, Failure{Job: job.Name, Blueprint: job.Blueprint, Err: fmt.Errorf("output path %q already written by %s", o.res.Path, prev)})
			continue
		}
		seen[o.res.Path] = job.Name
		files = append(files, newFile(root+"/"+o.res.Path, []byte(o.res.Text)))
	}
	if len(failures) > 0 {
		g.logger.Error("Scaffold generation failed", "failures", len(failures))
		return nil, &FailedError{Failures: failures}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	files = append(files, sumFile(root, files))
	g.logger.Info("Scaffold generated", "app", doc.Title, "files", len(files))
	return files, nil
}

// worker renders jobs until next is drained. The deadline is checked before each job,
// never during one.
func (g *Generator) worker(ctx context.Context, workerID int, jobs []Job, next <-chan int, out []outcome) {
	logger := g.logger.With("workerID", workerID)
	for i := range next {
		job := jobs[i]
		if err := ctx.Err(); err != nil {
			logger.Warn("Context done, skipping job", "job", job.Name)
			out[i] = outcome{failure: &Failure{Job: job.Name, Blueprint: job.Blueprint, Err: err}}
			continue
		}
		start := time.Now()
		res := g.renderer.Render(job.Blueprint, job.Context)
		took := time.Since(start)
		if g.observe != nil {
			g.observe(job.Blueprint, took, res.OK())
		}
		if !res.OK() {
			logger.Error("Render failed", "job", job.Name, "blueprint", job.Blueprint, "errors", len(res.Errors))
			out[i] = outcome{failure: &Failure{Job: job.Name, Blueprint: job.Blueprint, Errors: res.Errors}}
			continue
		}
		logger.Debug("Rendered", "job", job.Name, "path", res.Path, "took", took)
		out[i] = outcome{res: res}
	}
}
