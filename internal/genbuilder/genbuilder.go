// Package genbuilder implements the Generator Builder (spec.md §4.8, C8):
// a builder-style resource assembly that collects the inputs for one
// output file, runs the selected Writer, formats the result, diff-merges
// it against whatever was already on disk, and writes the merged text back
// atomically.
//
// Grounded on albertocavalcante-lspls/internal/codegen/codegen.go's
// Config/Generator builder-with-defaults shape (construct once, validate,
// then Generate()) and on codenerd's write-temp-then-rename pattern used
// by its store migrations, repurposed here for step 5's atomic write.
package genbuilder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"mdgen/internal/buffer"
	"mdgen/internal/diffmerge"
	"mdgen/internal/directive"
	"mdgen/internal/format"
	"mdgen/internal/model"
	"mdgen/internal/writer"
)

// Error taxonomy entries spec.md §7 defines for this component.
var (
	// ErrMissingInput is returned by Generate when a required field is unset.
	// No I/O has happened yet when this is returned.
	ErrMissingInput = errors.New("genbuilder: missing-input")
)

// FileError is the "file" taxonomy entry: opening, reading, or writing
// the target file failed.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string { return fmt.Sprintf("genbuilder: file: %s: %v", e.Path, e.Err) }
func (e *FileError) Unwrap() error { return e.Err }

// CompilerError is the "compiler" taxonomy entry: an internal invariant
// was violated (e.g. the Writer itself failed for a reason other than
// missing input, format, or file I/O).
type CompilerError struct {
	ObjectID string
	Err      error
}

func (e *CompilerError) Error() string {
	return fmt.Sprintf("genbuilder: compiler: object %q: %v", e.ObjectID, e.Err)
}
func (e *CompilerError) Unwrap() error { return e.Err }

// Builder assembles one output file's generation inputs. The zero value is
// not ready to use; construct with New and attach inputs with the With*
// methods before calling Generate.
type Builder struct {
	outputPath string
	w          writer.Writer
	config     *model.Config
	m          *model.Model
	flavor     model.StorageFlavor
	pkg        string
	module     string
	objectID   string
	needsObj   bool
	formatter  format.Formatter
	seed       directive.Kind
	onWarning  func(string)
	dryRun     bool
}

// New constructs a Builder for outputPath using w as the Writer. Further
// required/optional inputs are attached with the With* methods.
func New(outputPath string, w writer.Writer) *Builder {
	return &Builder{
		outputPath: outputPath,
		w:          w,
		seed:       directive.AllowEditing,
	}
}

// WithConfig attaches the resolved Config.
func (b *Builder) WithConfig(cfg *model.Config) *Builder { b.config = cfg; return b }

// WithModel attaches the Model being generated from.
func (b *Builder) WithModel(m *model.Model) *Builder { b.m = m; return b }

// WithFlavor attaches the storage flavor in effect.
func (b *Builder) WithFlavor(f model.StorageFlavor) *Builder { b.flavor = f; return b }

// WithPackage attaches the package identifier used to compose use-style
// statements in emitted files.
func (b *Builder) WithPackage(pkg string) *Builder { b.pkg = pkg; return b }

// WithModule attaches the module identifier.
func (b *Builder) WithModule(module string) *Builder { b.module = module; return b }

// WithObjectID attaches the Object id this Builder generates for and marks
// it as required: Generate fails with ErrMissingInput if id is empty
// (callers for model-wide Writers such as the store or module-index never
// call WithObjectID, so no object id is required for them).
func (b *Builder) WithObjectID(id string) *Builder { b.objectID = id; b.needsObj = true; return b }

// WithFormatter overrides the default format.Passthrough formatter.
func (b *Builder) WithFormatter(f format.Formatter) *Builder { b.formatter = f; return b }

// WithSeedKind overrides the diff engine's seed kind (spec.md §4.8 step 4
// default: allow-editing).
func (b *Builder) WithSeedKind(k directive.Kind) *Builder { b.seed = k; return b }

// WithWarningSink receives diffmerge's popped-kind-mismatch warnings.
func (b *Builder) WithWarningSink(f func(string)) *Builder { b.onWarning = f; return b }

// WithDryRun skips step 5's atomic write when true: Generate still runs the
// writer, formats and diff-merges, and returns the text that would be
// written, but never touches outputPath. Used by cmd/mdgen's fmt-check to
// detect drift without mutating the tree.
func (b *Builder) WithDryRun(dryRun bool) *Builder { b.dryRun = dryRun; return b }

// validate checks the required-input contract spec.md §4.8 describes:
// "Missing required inputs fail with a missing-input error before any
// I/O."
func (b *Builder) validate() error {
	if b.outputPath == "" {
		return fmt.Errorf("%w: output path", ErrMissingInput)
	}
	if b.w == nil {
		return fmt.Errorf("%w: writer", ErrMissingInput)
	}
	if b.config == nil {
		return fmt.Errorf("%w: config", ErrMissingInput)
	}
	if b.m == nil {
		return fmt.Errorf("%w: model", ErrMissingInput)
	}
	if b.module == "" {
		return fmt.Errorf("%w: module", ErrMissingInput)
	}
	if b.needsObj && b.objectID == "" {
		return fmt.Errorf("%w: object id", ErrMissingInput)
	}
	return nil
}

// Generate runs spec.md §4.8's five-step pipeline and returns the merged
// text that was (or would be, see DryRun) written to outputPath.
func (b *Builder) Generate() (string, error) {
	if err := b.validate(); err != nil {
		return "", err
	}

	formatter := b.formatter
	if formatter == nil {
		formatter = format.Passthrough
	}

	obj := b.m.ObjectByID(b.objectID) // nil for model-wide writers, fine

	// Step 1: read + format the original, if present.
	original := ""
	raw, err := os.ReadFile(b.outputPath)
	switch {
	case err == nil:
		original, err = formatter.Format(string(raw))
		if err != nil {
			return "", fmt.Errorf("genbuilder: object %q: %w", b.objectID, err)
		}
	case os.IsNotExist(err):
		original = ""
	default:
		return "", &FileError{Path: b.outputPath, Err: err}
	}

	// Step 2: run the Writer into a fresh Buffer.
	buf := buffer.New()
	ctx := writer.Context{
		Config:  b.config,
		Model:   b.m,
		Flavor:  b.flavor,
		Package: b.pkg,
		Module:  b.module,
		Object:  obj,
	}
	if err := b.w.WriteCode(ctx, buf); err != nil {
		return "", &CompilerError{ObjectID: b.objectID, Err: err}
	}

	// Step 3: format the buffer's final text.
	generated, err := formatter.Format(buf.String())
	if err != nil {
		return "", fmt.Errorf("genbuilder: object %q: %w", b.objectID, err)
	}

	// Step 4: diff-merge against the original.
	merged, err := diffmerge.Merge(original, generated, b.seed, diffmerge.Policy{
		OnWarning: b.onWarning,
	})
	if err != nil {
		return "", err // e.g. *diffmerge.UnbalancedDirectivesError
	}

	// Step 5: write atomically (write-temp-then-rename), unless dry-run.
	if !b.dryRun {
		if err := writeAtomic(b.outputPath, merged); err != nil {
			return "", &FileError{Path: b.outputPath, Err: err}
		}
	}

	return merged, nil
}

// writeAtomic writes contents to a temp file in path's directory, then
// renames it over path, so a crash mid-write never leaves a truncated or
// partially-written target file.
func writeAtomic(path, contents string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".mdgen-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.WriteString(contents); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
