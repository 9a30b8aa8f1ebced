// Package buffer provides the append-only text sink writers append
// generated code into. Its only structural operation beyond plain
// appending is Block, which brackets a span of text with Start/End
// directive markers and records the span as a Region.
package buffer

import (
	"strings"

	"mdgen/internal/directive"
)

// Region records one bracketed span a Block call produced. Regions may
// nest; Buffer does not enforce non-overlap beyond what Block's call
// structure already guarantees (a Block's End always closes the most
// recent open Start).
type Region struct {
	Kind        directive.Kind
	Tag         string
	OpenOffset  int
	CloseOffset int
}

// Buffer is an append-only text sink. No operation may remove or rewrite
// previously appended text; the zero value is ready to use.
type Buffer struct {
	b       strings.Builder
	regions []Region
	open    []int // stack of indexes into regions for Blocks not yet closed
}

// New returns an empty Buffer.
func New() *Buffer {
	return &Buffer{}
}

// WriteString appends text verbatim.
func (buf *Buffer) WriteString(s string) {
	buf.b.WriteString(s)
}

// WriteLine appends text followed by a newline.
func (buf *Buffer) WriteLine(s string) {
	buf.b.WriteString(s)
	buf.b.WriteByte('\n')
}

// Block writes a Start directive for {kind, tag}, runs body (which may
// append text and open further nested Blocks), then writes the matching
// End directive. Nesting is unbounded; sibling Blocks may be adjacent but
// body must not leave a Block it opened unclosed — Block itself always
// closes cleanly even if body panics, by using defer.
func (buf *Buffer) Block(kind directive.Kind, tag string, body func()) {
	start := buf.b.Len()
	buf.writeDirective(directive.Directive{
		Magic: directive.StandardMagic,
		Start: &directive.StartPayload{Kind: kind, Tag: tag},
	})
	region := Region{Kind: kind, Tag: tag, OpenOffset: start}
	buf.regions = append(buf.regions, region)
	idx := len(buf.regions) - 1
	buf.open = append(buf.open, idx)

	defer func() {
		buf.open = buf.open[:len(buf.open)-1]
		buf.regions[idx].CloseOffset = buf.b.Len()
		buf.writeDirective(directive.Directive{
			Magic: directive.StandardMagic,
			End:   &directive.EndPayload{Kind: kind},
		})
	}()

	body()
}

func (buf *Buffer) writeDirective(d directive.Directive) {
	line, err := directive.Serialize(d)
	if err != nil {
		// Serialize only fails for a caller-constructed Directive with an
		// invalid Kind; Block always builds valid directives itself, so
		// this indicates a programming error in this package.
		panic(err)
	}
	buf.b.WriteString(line)
	buf.b.WriteByte('\n')
}

// String returns the buffer's full text so far.
func (buf *Buffer) String() string {
	return buf.b.String()
}

// Regions returns the Regions recorded during writing, in open order.
func (buf *Buffer) Regions() []Region {
	out := make([]Region, len(buf.regions))
	copy(out, buf.regions)
	return out
}

// Len returns the current length of the buffer's text.
func (buf *Buffer) Len() int {
	return buf.b.Len()
}
