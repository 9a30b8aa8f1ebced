// Package render provides the deterministic name-casing and type-rendering
// helpers that turn model identifiers into emitted identifiers. Because an
// existing hand-edited file expects the same mapping on every run
// (spec.md §4.4), these functions are part of the generator's external
// contract and must never change behavior for a name already seen.
package render

import (
	"strings"
	"unicode"

	"mdgen/internal/model"
)

// AsIdent collapses whitespace, lowercases, and replaces non-alphanumeric
// runs with a single underscore — the snake_case identifier form used for
// field and variable names.
func AsIdent(name string) string {
	return snake(name)
}

// AsType renders name in title-cased camel form, the form used for type
// and struct names.
func AsType(name string) string {
	words := splitWords(name)
	var b strings.Builder
	for _, w := range words {
		if w == "" {
			continue
		}
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	return b.String()
}

// AsConst renders name in upper snake form, the form used for constants.
func AsConst(name string) string {
	return strings.ToUpper(snake(name))
}

func snake(name string) string {
	words := splitWords(name)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(nonEmpty(words), "_")
}

// splitWords collapses whitespace and any run of non-alphanumeric
// characters into word boundaries.
func splitWords(name string) []string {
	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			cur.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return words
}

func nonEmpty(words []string) []string {
	out := words[:0]
	for _, w := range words {
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

// TypeName renders a model.Type as the Rust identifier to emit in
// field/return position in the generated source (spec.md's target
// language, matching original_source's types/*.rs shapes). It consults
// cfg to resolve external-entity types to their bound foreign name
// (spec.md §4.4) and lifts referential-attribute types to the id type the
// active storage flavor uses (Uuid or a dense index).
func TypeName(t model.Type, flavor model.StorageFlavor, external map[string]*model.ExternalBinding) string {
	switch t.Kind {
	case model.TypeBoolean:
		return "bool"
	case model.TypeInteger:
		return "i64"
	case model.TypeFloat:
		return "f64"
	case model.TypeString:
		return "String"
	case model.TypeUUID:
		return idType(flavor)
	case model.TypeExternal:
		if t.External != nil {
			if b, ok := external[t.External.ID]; ok {
				return b.TypeName
			}
		}
		return "Box<dyn std::any::Any>"
	case model.TypeReference:
		return idType(flavor)
	default:
		return "Box<dyn std::any::Any>"
	}
}

// idType is the id type a given storage flavor's Objects are keyed by: a
// dense vector index (usize) for vector flavors, a Uuid otherwise.
func idType(flavor model.StorageFlavor) string {
	if flavor.IsVector() {
		return "usize"
	}
	return "Uuid"
}
