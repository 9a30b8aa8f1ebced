package buffer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdgen/internal/directive"
)

func TestBlockBracketsBody(t *testing.T) {
	buf := New()
	buf.Block(directive.AllowEditing, "body", func() {
		buf.WriteLine("pub struct Foo {}")
	})

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)

	start := directive.Parse(lines[0])
	require.True(t, start.IsDirective)
	require.NotNil(t, start.Directive.Start)
	assert.Equal(t, directive.AllowEditing, start.Directive.Start.Kind)
	assert.Equal(t, "body", start.Directive.Start.Tag)

	assert.Equal(t, "pub struct Foo {}", lines[1])

	end := directive.Parse(lines[2])
	require.True(t, end.IsDirective)
	require.NotNil(t, end.Directive.End)
	assert.Equal(t, directive.AllowEditing, end.Directive.End.Kind)
}

func TestNestedBlocks(t *testing.T) {
	buf := New()
	buf.Block(directive.AllowEditing, "outer", func() {
		buf.WriteLine("before")
		buf.Block(directive.IgnoreOrig, "inner", func() {
			buf.WriteLine("inside")
		})
		buf.WriteLine("after")
	})

	out := buf.String()
	assert.Equal(t, 7, strings.Count(out, "\n"))
	assert.Contains(t, out, "before")
	assert.Contains(t, out, "inside")
	assert.Contains(t, out, "after")

	regions := buf.Regions()
	require.Len(t, regions, 2)
	assert.Equal(t, "outer", regions[0].Tag)
	assert.Equal(t, "inner", regions[1].Tag)
	assert.True(t, regions[0].OpenOffset < regions[1].OpenOffset)
	assert.True(t, regions[1].CloseOffset <= regions[0].CloseOffset)
}

func TestAdjacentBlocksDoNotInterleave(t *testing.T) {
	buf := New()
	buf.Block(directive.AllowEditing, "a", func() { buf.WriteLine("a-body") })
	buf.Block(directive.AllowEditing, "b", func() { buf.WriteLine("b-body") })

	regions := buf.Regions()
	require.Len(t, regions, 2)
	assert.True(t, regions[0].CloseOffset <= regions[1].OpenOffset)
}
