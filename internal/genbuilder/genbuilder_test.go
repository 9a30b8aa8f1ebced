package genbuilder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdgen/internal/buffer"
	"mdgen/internal/directive"
	"mdgen/internal/model"
	"mdgen/internal/writer"
)

func constWriter(text string) writer.WriterFunc {
	return func(ctx writer.Context, buf *buffer.Buffer) error {
		buf.WriteLine(text)
		return nil
	}
}

func baseBuilder(t *testing.T, path string, w writer.Writer) *Builder {
	t.Helper()
	return New(path, w).
		WithConfig(&model.Config{}).
		WithModel(&model.Model{Name: "m"}).
		WithModule("m")
}

func TestGenerateMissingInputsFailBeforeIO(t *testing.T) {
	_, err := New("", nil).Generate()
	assert.ErrorIs(t, err, ErrMissingInput)

	_, err = New("/tmp/whatever.rs", nil).WithConfig(&model.Config{}).WithModel(&model.Model{}).WithModule("m").Generate()
	assert.ErrorIs(t, err, ErrMissingInput)
}

func TestGenerateWritesNewFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.rs")

	b := baseBuilder(t, path, constWriter("hello"))
	out, err := b.Generate()
	require.NoError(t, err)
	assert.Contains(t, out, "hello")

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, out, string(onDisk))
}

func TestGenerateIsIdempotentOnRerun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.rs")

	w := constWriter("hello")
	first, err := baseBuilder(t, path, w).Generate()
	require.NoError(t, err)

	second, err := baseBuilder(t, path, w).Generate()
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGeneratePreservesAllowEditingRegion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.rs")

	userEdited := "// {\"magic\":\"@\",\"directive\":{\"Start\":{\"directive\":\"allow-editing\",\"tag\":\"x\"}}}\nuser code here\n// {\"magic\":\"@\",\"directive\":{\"End\":{\"directive\":\"allow-editing\"}}}\n"
	require.NoError(t, os.WriteFile(path, []byte(userEdited), 0o644))

	b := baseBuilder(t, path, writer.WriterFunc(func(ctx writer.Context, buf *buffer.Buffer) error {
		buf.Block(directive.AllowEditing, "x", func() {})
		return nil
	}))
	out, err := b.Generate()
	require.NoError(t, err)
	assert.Contains(t, out, "user code here")
}

func TestGenerateWriterErrorIsCompilerError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.rs")

	failing := writer.WriterFunc(func(ctx writer.Context, buf *buffer.Buffer) error {
		return assertErr
	})
	_, err := baseBuilder(t, path, failing).WithObjectID("obj-1").Generate()
	var ce *CompilerError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "obj-1", ce.ObjectID)
}

func TestGenerateDryRunDoesNotWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.rs")

	out, err := baseBuilder(t, path, constWriter("hello")).WithDryRun(true).Generate()
	require.NoError(t, err)
	assert.Contains(t, out, "hello")

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

var assertErr = &compilerTestErr{}

type compilerTestErr struct{}

func (e *compilerTestErr) Error() string { return "boom" }
