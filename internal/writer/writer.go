// Package writer defines the polymorphic contract for "something that
// appends code for one object into a buffer" (spec.md §4.5, C5) and the
// StructBuilder/ImplBuilder composition writers build on top of it.
package writer

import (
	"fmt"

	"mdgen/internal/buffer"
	"mdgen/internal/model"
)

// Context carries everything write_code needs beyond the buffer itself:
// the resolved Config, the Model, the storage flavor in effect, the
// package/module identifiers used to compose import statements, and the
// object being rendered (nil for Writers that emit model-wide code, such
// as the store or the module index).
type Context struct {
	Config  *model.Config
	Model   *model.Model
	Flavor  model.StorageFlavor
	Package string
	Module  string
	Object  *model.Object // nil for model-wide writers
}

// Writer appends generated code for one object into buf. Implementations
// must not retain buf past the call.
type Writer interface {
	WriteCode(ctx Context, buf *buffer.Buffer) error
}

// WriterFunc adapts a plain function to the Writer interface.
type WriterFunc func(ctx Context, buf *buffer.Buffer) error

// WriteCode implements Writer.
func (f WriterFunc) WriteCode(ctx Context, buf *buffer.Buffer) error {
	return f(ctx, buf)
}

// ErrMissingDefinition is returned by StructBuilder.Build and
// ImplBuilder.Build when no definition Writer was supplied, per spec.md
// §4.5's builder contract.
var ErrMissingDefinition = fmt.Errorf("writer: missing-definition: no definition writer supplied")

// StructBuilder wraps a definition Writer plus zero or more implementation
// Writers and runs them in order: definition first, then each
// implementation, all against the same buffer.
type StructBuilder struct {
	definition      Writer
	implementations []Writer
}

// NewStructBuilder constructs a StructBuilder with its required definition
// writer. Additional implementation writers are attached with With.
func NewStructBuilder(definition Writer) *StructBuilder {
	return &StructBuilder{definition: definition}
}

// With attaches an implementation Writer, returning the receiver for
// chaining.
func (b *StructBuilder) With(impl Writer) *StructBuilder {
	b.implementations = append(b.implementations, impl)
	return b
}

// Build validates the builder and returns it as a single Writer.
func (b *StructBuilder) Build() (Writer, error) {
	if b.definition == nil {
		return nil, ErrMissingDefinition
	}
	writers := append([]Writer{b.definition}, b.implementations...)
	return composite(writers), nil
}

// ImplBuilder wraps a sequence of method Writers and runs them in order.
// At least one method Writer is required; the first attached method acts
// as the builder's definition for the missing-definition check, matching
// spec.md §4.5's "build() fails ... if no definition Writer was supplied"
// for both builder kinds.
type ImplBuilder struct {
	methods []Writer
}

// NewImplBuilder constructs an empty ImplBuilder. Add methods with Method.
func NewImplBuilder() *ImplBuilder {
	return &ImplBuilder{}
}

// Method attaches a method Writer, returning the receiver for chaining.
func (b *ImplBuilder) Method(w Writer) *ImplBuilder {
	b.methods = append(b.methods, w)
	return b
}

// Build validates the builder and returns it as a single Writer.
func (b *ImplBuilder) Build() (Writer, error) {
	if len(b.methods) == 0 {
		return nil, ErrMissingDefinition
	}
	return composite(b.methods), nil
}

// composite runs each Writer in order against the same buffer, stopping at
// the first error.
func composite(writers []Writer) Writer {
	return WriterFunc(func(ctx Context, buf *buffer.Buffer) error {
		for _, w := range writers {
			if err := w.WriteCode(ctx, buf); err != nil {
				return err
			}
		}
		return nil
	})
}
