package diffmerge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdgen/internal/directive"
)

func startLine(kind directive.Kind, tag string) string {
	line, err := directive.Serialize(directive.Directive{Magic: directive.StandardMagic, Start: &directive.StartPayload{Kind: kind, Tag: tag}})
	if err != nil {
		panic(err)
	}
	return line
}

func endLine(kind directive.Kind) string {
	line, err := directive.Serialize(directive.Directive{Magic: directive.StandardMagic, End: &directive.EndPayload{Kind: kind}})
	if err != nil {
		panic(err)
	}
	return line
}

func TestEmptyOriginalBehavesLikeNeverExisted(t *testing.T) {
	generated := startLine(directive.AllowEditing, "root") + "\n" +
		"pub struct Foo {}\n" +
		endLine(directive.AllowEditing) + "\n"

	out, err := Merge("", generated, directive.AllowEditing, Policy{})
	require.NoError(t, err)
	assert.Equal(t, generated, out)
}

func TestIgnoreOrigDominance(t *testing.T) {
	original := startLine(directive.IgnoreOrig, "x") + "\n" +
		"pub struct Foo { pub id: Uuid, pub extra_field: u32, }\n" +
		endLine(directive.IgnoreOrig) + "\n"
	generated := startLine(directive.IgnoreOrig, "x") + "\n" +
		"pub struct Foo { pub id: Uuid, }\n" +
		endLine(directive.IgnoreOrig) + "\n"

	out, err := Merge(original, generated, directive.AllowEditing, Policy{})
	require.NoError(t, err)
	assert.NotContains(t, out, "extra_field")
	assert.Contains(t, out, "pub struct Foo { pub id: Uuid, }")
}

func TestIgnoreGenDominance(t *testing.T) {
	original := startLine(directive.IgnoreGen, "x") + "\n" +
		"pub struct Foo { pub id: Uuid, pub extra_field: u32, }\n" +
		endLine(directive.IgnoreGen) + "\n"
	generated := startLine(directive.IgnoreGen, "x") + "\n" +
		"pub struct Foo { pub id: Uuid, }\n" +
		endLine(directive.IgnoreGen) + "\n"

	out, err := Merge(original, generated, directive.AllowEditing, Policy{})
	require.NoError(t, err)
	assert.Contains(t, out, "extra_field")
}

func TestAllowEditingPreservesUserCode(t *testing.T) {
	original := startLine(directive.AllowEditing, "user") + "\n" +
		"func userHelper() { /* hand-written */ }\n" +
		endLine(directive.AllowEditing) + "\n"
	generated := startLine(directive.AllowEditing, "user") + "\n" +
		endLine(directive.AllowEditing) + "\n"

	out, err := Merge(original, generated, directive.AllowEditing, Policy{})
	require.NoError(t, err)
	assert.Contains(t, out, "func userHelper() { /* hand-written */ }")
}

func TestOverrideMagicForcesIgnoreOrig(t *testing.T) {
	overrideStart, _ := directive.Serialize(directive.Directive{Magic: directive.OverrideMagic, Start: &directive.StartPayload{Kind: directive.IgnoreGen, Tag: "x"}})
	overrideEnd, _ := directive.Serialize(directive.Directive{Magic: directive.OverrideMagic, End: &directive.EndPayload{Kind: directive.IgnoreGen}})
	original := overrideStart + "\n" +
		"stale original line\n" +
		overrideEnd + "\n"
	generated := overrideStart + "\n" +
		"fresh generated line\n" +
		overrideEnd + "\n"

	out, err := Merge(original, generated, directive.AllowEditing, Policy{})
	require.NoError(t, err)
	assert.NotContains(t, out, "stale original line")
	assert.Contains(t, out, "fresh generated line")
}

func TestCommentOrigCommentsDivergentOriginalLines(t *testing.T) {
	original := startLine(directive.CommentOrig, "x") + "\n" +
		"old line\n" +
		endLine(directive.CommentOrig) + "\n"
	generated := startLine(directive.CommentOrig, "x") + "\n" +
		"new line\n" +
		endLine(directive.CommentOrig) + "\n"

	out, err := Merge(original, generated, directive.AllowEditing, Policy{})
	require.NoError(t, err)
	assert.Contains(t, out, "// old line")
	assert.Contains(t, out, "new line")
}

func TestCommentGenCommentsDivergentGeneratedLines(t *testing.T) {
	original := startLine(directive.CommentGen, "x") + "\n" +
		"old line\n" +
		endLine(directive.CommentGen) + "\n"
	generated := startLine(directive.CommentGen, "x") + "\n" +
		"new line\n" +
		endLine(directive.CommentGen) + "\n"

	out, err := Merge(original, generated, directive.AllowEditing, Policy{})
	require.NoError(t, err)
	assert.Contains(t, out, "old line")
	assert.Contains(t, out, "// new line")
}

func TestDirectiveBalanceRoundTrip(t *testing.T) {
	original := startLine(directive.AllowEditing, "a") + "\n" +
		startLine(directive.IgnoreOrig, "b") + "\n" +
		"nested\n" +
		endLine(directive.IgnoreOrig) + "\n" +
		endLine(directive.AllowEditing) + "\n"

	out, err := Merge(original, original, directive.AllowEditing, Policy{})
	require.NoError(t, err)
	assert.Equal(t, strings.Count(original, "Start"), strings.Count(out, "Start"))
	assert.Equal(t, strings.Count(original, "End"), strings.Count(out, "End"))
}

func TestUnbalancedDirectivesError(t *testing.T) {
	original := endLine(directive.AllowEditing) + "\n"

	_, err := Merge(original, "", directive.AllowEditing, Policy{})
	require.Error(t, err)
	var unbalanced *UnbalancedDirectivesError
	require.ErrorAs(t, err, &unbalanced)
}

func TestIdempotenceOnUnchangedModel(t *testing.T) {
	generated := startLine(directive.AllowEditing, "root") + "\n" +
		"pub struct Foo {}\n" +
		endLine(directive.AllowEditing) + "\n"

	first, err := Merge("", generated, directive.AllowEditing, Policy{})
	require.NoError(t, err)

	second, err := Merge(first, generated, directive.AllowEditing, Policy{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRightOnlyDirectivesDoNotMutateStackByDefault(t *testing.T) {
	original := startLine(directive.AllowEditing, "a") + "\n" +
		"kept\n" +
		endLine(directive.AllowEditing) + "\n"
	generated := startLine(directive.AllowEditing, "a") + "\n" +
		startLine(directive.IgnoreOrig, "extra") + "\n" +
		"kept\n" +
		endLine(directive.IgnoreOrig) + "\n" +
		endLine(directive.AllowEditing) + "\n"

	out, err := Merge(original, generated, directive.AllowEditing, Policy{})
	require.NoError(t, err)
	assert.Contains(t, out, "kept")
}
