// Package diffmerge implements the three-way merge of a file's prior
// contents with freshly generated text under the region directives
// package directive parses, per spec.md §4.3. The engine is pure: it has
// no I/O and no package-level mutable state (spec.md §4.3, "the diff
// engine is pure").
package diffmerge

import (
	"strconv"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"mdgen/internal/directive"
)

// lineClass is the per-line classification spec.md §4.3 step 1 describes.
type lineClass int

const (
	classBoth lineClass = iota
	classLeftOnly
	classRightOnly
)

type classifiedLine struct {
	class lineClass
	text  string
}

// classify diffs original against generated at line granularity using the
// same DiffLinesToChars/DiffMain/DiffCharsToLines reduction the teacher's
// diff engine uses to avoid newline-boundary artifacts (see
// mdgen/internal's lineage note in DESIGN.md, grounded on
// codenerd/internal/diff/diff.go).
func classify(original, generated string) []classifiedLine {
	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(original, generated)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var out []classifiedLine
	for _, d := range diffs {
		var class lineClass
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			class = classBoth
		case diffmatchpatch.DiffDelete:
			class = classLeftOnly
		case diffmatchpatch.DiffInsert:
			class = classRightOnly
		}
		for _, line := range splitLines(d.Text) {
			out = append(out, classifiedLine{class: class, text: line})
		}
	}
	return out
}

// splitLines splits on "\n" and drops the trailing empty element Split
// leaves behind when text ends with a newline (which DiffLinesToChars'
// line-array representation always does for non-empty chunks).
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Policy configures behavior the spec leaves as an explicit, documented
// hook rather than a single hardcoded answer (spec.md §9, Open Questions).
type Policy struct {
	// RightOnlyDirectivesMutateStack controls whether a generated-side-only
	// Start/End directive manipulates the kind stack. spec.md chooses
	// "do not manipulate" to keep left-authoritative stack management;
	// that is this field's default (false).
	RightOnlyDirectivesMutateStack bool
	// LineCommentMarker is the target language's line-comment syntax used
	// to comment out divergent lines under comment-orig/comment-gen.
	// Defaults to directive.LineCommentMarker ("//") when empty.
	LineCommentMarker string
	// OnWarning, if set, receives a message whenever a popped directive
	// kind disagrees with its matching End's declared kind (spec.md §4.3
	// step 3, End-directive handling).
	OnWarning func(msg string)
}

func (p Policy) marker() string {
	if p.LineCommentMarker != "" {
		return p.LineCommentMarker
	}
	return directive.LineCommentMarker
}

// UnbalancedDirectivesError is the "unbalanced-directives" taxonomy entry
// (spec.md §7): an End came from the original side and popping it would
// leave the kind stack empty mid-file.
type UnbalancedDirectivesError struct {
	Line int
}

func (e *UnbalancedDirectivesError) Error() string {
	return "diffmerge: unbalanced directives at original line " + strconv.Itoa(e.Line)
}

// Merge runs the algorithm in spec.md §4.3 over original and generated,
// seeded with seed (callers pass directive.AllowEditing per §4.8 step 4 for
// a normal generator run; a file that never existed behaves exactly like
// an empty original under that same seed, per spec.md's edge case note).
func Merge(original, generated string, seed directive.Kind, policy Policy) (string, error) {
	lines := classify(original, generated)

	stack := []directive.Kind{seed}
	var out []string
	originalLineNum := 0

	for _, line := range lines {
		if line.class != classRightOnly {
			originalLineNum++
		}

		parsed := directive.Parse(line.text)
		if !parsed.IsDirective {
			effective := stack[len(stack)-1]
			out = appendUnderPolicy(out, effective, line, policy)
			continue
		}

		switch {
		case parsed.Directive.Start != nil:
			mutates := line.class != classRightOnly || policy.RightOnlyDirectivesMutateStack
			if mutates {
				stack = append(stack, parsed.EffectiveKind)
			}
			out = append(out, line.text)

		case parsed.Directive.End != nil:
			mutates := line.class != classRightOnly || policy.RightOnlyDirectivesMutateStack
			if mutates {
				popped := stack[len(stack)-1]
				if popped != parsed.EffectiveKind && policy.OnWarning != nil {
					policy.OnWarning("diffmerge: End directive kind " + string(parsed.EffectiveKind) +
						" does not match popped kind " + string(popped) + " at original line " + strconv.Itoa(originalLineNum))
				}
				stack = stack[:len(stack)-1]
				if len(stack) == 0 {
					if line.class == classLeftOnly {
						return "", &UnbalancedDirectivesError{Line: originalLineNum}
					}
					// A right-only End (mutate enabled) or a both-side End
					// that exhausted the stack due to upstream corruption:
					// restore the seed frame so the remaining file can
					// still be processed under a sane effective kind.
					stack = append(stack, seed)
				}
			}
			out = append(out, line.text)
		}
	}

	if len(out) == 0 {
		return "", nil
	}
	return strings.Join(out, "\n") + "\n", nil
}

func appendUnderPolicy(out []string, effective directive.Kind, line classifiedLine, policy Policy) []string {
	switch line.class {
	case classBoth:
		return append(out, line.text)
	case classLeftOnly:
		switch effective {
		case directive.AllowEditing, directive.IgnoreGen, directive.CommentGen:
			return append(out, line.text)
		case directive.IgnoreOrig:
			return out
		case directive.CommentOrig:
			return append(out, commentLine(line.text, policy.marker()))
		default:
			return append(out, line.text)
		}
	case classRightOnly:
		switch effective {
		case directive.AllowEditing, directive.IgnoreOrig, directive.CommentOrig:
			return append(out, line.text)
		case directive.IgnoreGen:
			return out
		case directive.CommentGen:
			return append(out, commentLine(line.text, policy.marker()))
		default:
			return append(out, line.text)
		}
	default:
		return out
	}
}

// commentLine prefixes text with marker unless it is already a line
// comment, making the operation idempotent across repeated runs.
func commentLine(text, marker string) string {
	trimmed := strings.TrimLeft(text, " \t")
	if strings.HasPrefix(trimmed, marker) {
		return text
	}
	indent := text[:len(text)-len(trimmed)]
	return indent + marker + " " + trimmed
}

