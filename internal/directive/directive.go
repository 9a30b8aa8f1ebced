// Package directive implements the structured region directives carried
// inside comment lines: parsing, serialization, and the override-magic
// handling described in spec.md §4.2 and §6.
package directive

import (
	"encoding/json"
	"strings"
)

// Kind is one of the five directive kinds spec.md §3 enumerates.
type Kind string

const (
	AllowEditing Kind = "allow-editing"
	IgnoreOrig   Kind = "ignore-orig"
	IgnoreGen    Kind = "ignore-gen"
	CommentOrig  Kind = "comment-orig"
	CommentGen   Kind = "comment-gen"
)

func (k Kind) valid() bool {
	switch k {
	case AllowEditing, IgnoreOrig, IgnoreGen, CommentOrig, CommentGen:
		return true
	default:
		return false
	}
}

// Magic characters. StandardMagic is used for ordinary directives;
// OverrideMagic on an ignore-gen directive forces the effective kind to
// ignore-orig (spec.md §4.2, "Override handling").
const (
	StandardMagic = "@"
	OverrideMagic = "!"
)

// LineCommentMarker is the comment syntax directives are embedded in. The
// target language's own comment syntax is out of this generator's scope
// (spec.md §1). Parse and Serialize always use this marker; only the marker
// diffmerge uses to comment out divergent lines can be changed, through
// diffmerge.Policy.LineCommentMarker.
const LineCommentMarker = "//"

// StartPayload is carried by a Start directive.
type StartPayload struct {
	Kind Kind   `json:"directive"`
	Tag  string `json:"tag"`
}

// EndPayload is carried by an End directive.
type EndPayload struct {
	Kind Kind `json:"directive"`
}

// Directive is a parsed or to-be-serialized directive line. Exactly one of
// Start or End is non-nil.
type Directive struct {
	Magic string
	Start *StartPayload
	End   *EndPayload
}

// wireDirective is the JSON shape spec.md §6 specifies:
// {"magic": "<char>", "directive": {"Start": {...}} | {"End": {...}}}
type wireDirective struct {
	Magic     string          `json:"magic"`
	Directive wireDirectiveOp `json:"directive"`
}

type wireDirectiveOp struct {
	Start *StartPayload `json:"Start,omitempty"`
	End   *EndPayload   `json:"End,omitempty"`
}

// Serialize renders a Directive as the single line comment spec.md §6
// defines.
func Serialize(d Directive) (string, error) {
	wire := wireDirective{Magic: d.Magic}
	switch {
	case d.Start != nil && d.End == nil:
		if !d.Start.Kind.valid() {
			return "", errInvalidKind(d.Start.Kind)
		}
		wire.Directive.Start = d.Start
	case d.End != nil && d.Start == nil:
		if !d.End.Kind.valid() {
			return "", errInvalidKind(d.End.Kind)
		}
		wire.Directive.End = d.End
	default:
		return "", errMalformed("exactly one of Start or End must be set")
	}
	payload, err := json.Marshal(wire)
	if err != nil {
		return "", err
	}
	return LineCommentMarker + " " + string(payload), nil
}

// ParseResult is the outcome of parsing one input line.
type ParseResult struct {
	IsDirective bool
	Directive   Directive
	// EffectiveKind is the Directive's kind after override handling: an
	// OverrideMagic ignore-gen Start or End is reported here as
	// ignore-orig, per spec.md §4.2.
	EffectiveKind Kind
}

// Parse inspects a single line. Lines not beginning with the comment
// marker followed by a directive payload return IsDirective=false. Per
// spec.md §7, malformed JSON after a comment prefix is NOT a fatal error —
// it is reported as "not a directive" exactly like any other content line.
func Parse(line string) ParseResult {
	trimmed := strings.TrimLeft(line, " \t")
	rest, ok := cutCommentPrefix(trimmed)
	if !ok {
		return ParseResult{IsDirective: false}
	}

	var wire wireDirective
	if err := json.Unmarshal([]byte(strings.TrimSpace(rest)), &wire); err != nil {
		return ParseResult{IsDirective: false}
	}
	if wire.Magic != StandardMagic && wire.Magic != OverrideMagic {
		return ParseResult{IsDirective: false}
	}

	var d Directive
	d.Magic = wire.Magic
	switch {
	case wire.Directive.Start != nil && wire.Directive.End == nil:
		if !wire.Directive.Start.Kind.valid() {
			return ParseResult{IsDirective: false}
		}
		d.Start = wire.Directive.Start
	case wire.Directive.End != nil && wire.Directive.Start == nil:
		if !wire.Directive.End.Kind.valid() {
			return ParseResult{IsDirective: false}
		}
		d.End = wire.Directive.End
	default:
		return ParseResult{IsDirective: false}
	}

	return ParseResult{
		IsDirective:   true,
		Directive:     d,
		EffectiveKind: effectiveKind(d),
	}
}

// effectiveKind applies the override-magic rule: OverrideMagic on an
// ignore-gen directive (Start or End) delivers ignore-orig to the caller;
// every other combination passes through unchanged.
func effectiveKind(d Directive) Kind {
	var kind Kind
	switch {
	case d.Start != nil:
		kind = d.Start.Kind
	case d.End != nil:
		kind = d.End.Kind
	}
	if d.Magic == OverrideMagic && kind == IgnoreGen {
		return IgnoreOrig
	}
	return kind
}

func cutCommentPrefix(line string) (string, bool) {
	if !strings.HasPrefix(line, LineCommentMarker) {
		return "", false
	}
	rest := strings.TrimPrefix(line, LineCommentMarker)
	rest = strings.TrimLeft(rest, " \t")
	if rest == "" {
		return "", false
	}
	return rest, true
}

type parseError string

func (e parseError) Error() string { return string(e) }

func errInvalidKind(k Kind) error {
	return parseError("directive: invalid kind " + string(k))
}

func errMalformed(msg string) error {
	return parseError("directive: " + msg)
}
