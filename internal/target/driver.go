// Package target implements the Target Driver (spec.md §4.9, C9): for one
// Model, it ensures the output directory exists, derives a stable,
// sorted-by-name Object order, runs one genbuilder.Builder per Object
// using the Writer package shape selects, then one Builder for the store
// file (package storegen) and finally one for the module-index file —
// written last so the formatter step never sees a file that references
// types the per-Object pass hasn't written yet (spec.md §4.9, "step
// ordering").
//
// Grounded on albertocavalcante-lspls/generator/generator.go's
// Generator-interface "walk a model, run N per-type generators, assemble
// Output" shape, and on codenerd/cmd/nerd's root-command dispatch style
// for the CLI-facing piece (package cmd/mdgen). The optional parallel
// per-Object path uses golang.org/x/sync/errgroup to bound a worker pool
// and go.uber.org/multierr to aggregate the per-file errors spec.md §7's
// propagation policy requires ("the driver ... records them per file and
// continues processing remaining files").
package target

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"mdgen/internal/format"
	"mdgen/internal/genbuilder"
	"mdgen/internal/logging"
	"mdgen/internal/model"
	"mdgen/internal/render"
	"mdgen/internal/shape"
	"mdgen/internal/storegen"
	"mdgen/internal/writer"
)

// FileResult is the outcome of generating one file.
type FileResult struct {
	Path string
	Text string // the merged text that was (or, under DryRun, would be) written
	Err  error
}

// RunResult aggregates every file a Driver run touched, in the order
// spec.md §4.9 processes them: per-Object files (sorted by Object name),
// then the store file, then the module-index file.
type RunResult struct {
	Files []FileResult
}

// HasErrors reports whether any file in the run failed.
func (r *RunResult) HasErrors() bool {
	for _, f := range r.Files {
		if f.Err != nil {
			return true
		}
	}
	return false
}

// Err aggregates every failed file's error via multierr, for callers that
// want a single error from a run. spec.md §7's propagation policy records
// failures per file and keeps processing the rest; Err lets a caller (for
// example cmd/mdgen's generate command) still turn a failed run into one
// diagnostic for a non-zero exit.
func (r *RunResult) Err() error {
	var errs []error
	for _, f := range r.Files {
		if f.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.Path, f.Err))
		}
	}
	return multierr.Combine(errs...)
}

// Driver runs the per-Model generation pipeline spec.md §4.9 describes.
type Driver struct {
	Config    *model.Config
	Formatter format.Formatter
	// Parallel enables the optional per-Object concurrent generation path
	// spec.md §5 permits. Each worker writes its own Object's file as soon
	// as it is generated, so per-Object files are written in completion
	// order; only the recorded results are kept in Object-name order, via a
	// results slice indexed by position.
	Parallel bool
	// MaxConcurrency bounds the errgroup worker pool when Parallel is
	// true. Zero means unbounded (errgroup.SetLimit is not called).
	MaxConcurrency int
	// DryRun runs the full pipeline without writing any file, for
	// cmd/mdgen's fmt-check to detect drift against what is already on
	// disk.
	DryRun bool
}

// Run executes the driver for one Model, writing files under
// cfg.OutputRoot/<model-name>/ per spec.md §6's filesystem layout.
func (d *Driver) Run(m *model.Model) (*RunResult, error) {
	if d.Config == nil {
		return nil, fmt.Errorf("target: missing-input: config")
	}
	if m == nil {
		return nil, fmt.Errorf("target: missing-input: model")
	}

	modelDir := filepath.Join(d.Config.OutputRoot, m.Name)
	if err := os.MkdirAll(filepath.Join(modelDir, "types"), 0o755); err != nil {
		return nil, fmt.Errorf("target: file: %w", err)
	}

	objects := sortedByName(m.Objects)
	log := logging.Get(logging.CategoryDriver)

	results := make([]FileResult, len(objects))
	run := func(i int) error {
		obj := objects[i]
		path := filepath.Join(modelDir, "types", render.AsIdent(obj.Name)+".rs")
		w, err := shape.BuildWriter(obj, d.Config)
		if err != nil {
			results[i] = FileResult{Path: path, Err: err}
			return err
		}
		text, genErr := d.newBuilder(path, m, w).WithObjectID(obj.ID).Generate()
		results[i] = FileResult{Path: path, Text: text, Err: genErr}
		if genErr != nil {
			log.Warnw("object generation failed", "object", obj.Name, "path", path, "error", genErr)
			var ce *genbuilder.CompilerError
			if errors.Is(genErr, genbuilder.ErrMissingInput) || errors.As(genErr, &ce) {
				return genErr // fatal taxonomy entries stop the run
			}
		}
		return nil
	}

	if d.Parallel {
		var eg errgroup.Group
		if d.MaxConcurrency > 0 {
			eg.SetLimit(d.MaxConcurrency)
		}
		for i := range objects {
			i := i
			eg.Go(func() error { return run(i) })
		}
		if err := eg.Wait(); err != nil {
			return &RunResult{Files: results}, err
		}
	} else {
		for i := range objects {
			if err := run(i); err != nil {
				return &RunResult{Files: results[:i+1]}, err
			}
		}
	}

	storePath := filepath.Join(modelDir, "store.rs")
	storeText, storeErr := d.newBuilder(storePath, m, storegen.Writer{}).Generate()
	results = append(results, FileResult{Path: storePath, Text: storeText, Err: storeErr})
	if storeErr != nil {
		log.Warnw("store generation failed", "path", storePath, "error", storeErr)
	}

	indexPath := filepath.Join(modelDir, "types.rs")
	indexText, indexErr := d.newBuilder(indexPath, m, moduleIndexWriter{}).Generate()
	results = append(results, FileResult{Path: indexPath, Text: indexText, Err: indexErr})
	if indexErr != nil {
		log.Warnw("module index generation failed", "path", indexPath, "error", indexErr)
	}

	return &RunResult{Files: results}, nil
}

func (d *Driver) newBuilder(path string, m *model.Model, w writer.Writer) *genbuilder.Builder {
	b := genbuilder.New(path, w).
		WithConfig(d.Config).
		WithModel(m).
		WithModule(d.Config.Module).
		WithPackage(d.Config.Package).
		WithFlavor(d.Config.StorageFlavor).
		WithDryRun(d.DryRun)
	if d.Formatter != nil {
		b = b.WithFormatter(d.Formatter)
	}
	return b
}
