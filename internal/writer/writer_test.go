package writer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdgen/internal/buffer"
)

func writeText(text string) Writer {
	return WriterFunc(func(ctx Context, buf *buffer.Buffer) error {
		buf.WriteLine(text)
		return nil
	})
}

func TestStructBuilderRequiresDefinition(t *testing.T) {
	b := NewStructBuilder(nil)
	_, err := b.Build()
	require.ErrorIs(t, err, ErrMissingDefinition)
}

func TestStructBuilderRunsDefinitionThenImplementations(t *testing.T) {
	b := NewStructBuilder(writeText("struct Foo {}")).
		With(writeText("impl Foo {}")).
		With(writeText("impl Display for Foo {}"))

	w, err := b.Build()
	require.NoError(t, err)

	buf := buffer.New()
	require.NoError(t, w.WriteCode(Context{}, buf))
	assert.Equal(t, "struct Foo {}\nimpl Foo {}\nimpl Display for Foo {}\n", buf.String())
}

func TestImplBuilderRequiresAtLeastOneMethod(t *testing.T) {
	b := NewImplBuilder()
	_, err := b.Build()
	require.ErrorIs(t, err, ErrMissingDefinition)
}

func TestImplBuilderRunsMethodsInOrder(t *testing.T) {
	b := NewImplBuilder().Method(writeText("fn a()")).Method(writeText("fn b()"))
	w, err := b.Build()
	require.NoError(t, err)

	buf := buffer.New()
	require.NoError(t, w.WriteCode(Context{}, buf))
	assert.Equal(t, "fn a()\nfn b()\n", buf.String())
}

func TestCompositeStopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	failing := WriterFunc(func(ctx Context, buf *buffer.Buffer) error { return boom })

	b := NewStructBuilder(writeText("ok")).With(failing).With(writeText("never"))
	w, err := b.Build()
	require.NoError(t, err)

	buf := buffer.New()
	err = w.WriteCode(Context{}, buf)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, "ok\n", buf.String())
}
