// Package format provides the Generator Builder's formatter collaborator.
// spec.md §1 places "the source-formatter invoked on generated text before
// diff/write" out of scope for the core generator and instead treats it as
// an external collaborator via a §6-style interface; this package is that
// interface plus the two concrete implementations the core actually ships
// with: a no-op pass-through (the default, since the target language this
// generator's test domains emit is not Go) and a real Go-source formatter
// for callers configured to emit Go.
package format

import (
	"bytes"
	"go/format"

	"golang.org/x/tools/imports"
)

// Formatter rejects or rewrites a buffer's text before C8's diff/write
// steps. Format returning a "format" taxonomy error (spec.md §7) is fatal
// for the one file being generated, not the whole run.
type Formatter interface {
	Format(text string) (string, error)
}

// FormatterFunc adapts a plain function to Formatter.
type FormatterFunc func(text string) (string, error)

// Format implements Formatter.
func (f FormatterFunc) Format(text string) (string, error) { return f(text) }

// Passthrough returns text unchanged. It is the default formatter: the
// generator's own test domains emit a target language (the one
// original_source's templates target) this process never parses, so the
// safe default is to not touch the bytes at all.
var Passthrough Formatter = FormatterFunc(func(text string) (string, error) {
	return text, nil
})

// GoFormatter runs go/format.Source followed by
// golang.org/x/tools/imports.Process, for callers whose target language
// is Go. A syntactically invalid buffer is a "format" taxonomy error
// (spec.md §7); the builder reports it with the object id and continues
// with the remaining files (spec.md §7, propagation policy).
type GoFormatter struct {
	// Filename is passed to imports.Process for import-path resolution.
	// It need not exist on disk; "generated.go" is used when empty.
	Filename string
}

// Format implements Formatter.
func (g GoFormatter) Format(text string) (string, error) {
	filename := g.Filename
	if filename == "" {
		filename = "generated.go"
	}
	formatted, err := format.Source([]byte(text))
	if err != nil {
		return "", &Error{Err: err}
	}
	withImports, err := imports.Process(filename, formatted, nil)
	if err != nil {
		return "", &Error{Err: err}
	}
	return string(bytes.TrimSpace(withImports)) + "\n", nil
}

// Error is the "format" taxonomy entry (spec.md §7): the formatter
// rejected a buffer. The object id is attached by the caller (package
// genbuilder), which is the only layer that knows which object is being
// generated.
type Error struct {
	Err error
}

func (e *Error) Error() string { return "format: " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
