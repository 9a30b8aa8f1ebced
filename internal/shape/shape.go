// Package shape implements the Code-Shape Selector (spec.md §4.5, C6): it
// maps each Object in a Model to one of its code shapes and builds the
// Writer (package writer) that realizes it, plus the navigation-method
// emission spec.md §4.6 describes.
//
// Selection is total and deterministic: every Object resolves to exactly
// one Kind, evaluated in the fixed precedence spec.md §4.5 lists items 1-4
// in (supertype, naked/singleton, external, record-default). Item 5
// (reflexive/optional variants) is not a fifth parallel category — it is a
// per-relationship modifier applied while building the Record shape's
// fields and navigators, exactly as spec.md's wording implies ("when a
// relationship endpoint is conditional, the referential attribute's type
// is optional").
package shape

import "mdgen/internal/model"

// Kind is the code shape selected for an Object.
type Kind int

const (
	// KindEnum is a supertype: a tagged union over its subtypes' ids, or a
	// hybrid struct if the supertype also carries attributes.
	KindEnum Kind = iota
	// KindSingleton is a naked object (no attributes beyond id, not a
	// supertype): a zero-sized type plus a fixed uuid-v5 id constant.
	KindSingleton
	// KindExternal is an object bound to a foreign type via Config.
	KindExternal
	// KindRecord is the default: a struct with id, user attributes, and
	// one referential attribute per "from" side of each relationship
	// touching the object.
	KindRecord
)

func (k Kind) String() string {
	switch k {
	case KindEnum:
		return "enum"
	case KindSingleton:
		return "singleton"
	case KindExternal:
		return "external"
	case KindRecord:
		return "record"
	default:
		return "unknown"
	}
}

// IsSupertype reports whether obj is the supertype side of any Isa
// relationship touching it.
func IsSupertype(obj *model.Object) bool {
	for _, r := range obj.Relationships {
		if r.Kind == model.RelationshipIsa && r.Isa != nil && r.Isa.Supertype == obj {
			return true
		}
	}
	return false
}

// isNaked reports whether obj has no user-defined attributes.
func isNaked(obj *model.Object) bool {
	return len(obj.Attributes) == 0
}

// idTypeOf is shorthand for the UUID type tag, used whenever a writer
// needs render.TypeName to lift to the active storage flavor's id type.
func idTypeOf() model.Type {
	return model.Type{Kind: model.TypeUUID}
}

// Select is the Code-Shape Selector: a total function from (Object, Config)
// to exactly one Kind. A per-object override (Config.PerObject[id].IsSingleton)
// forces KindSingleton regardless of the object's attribute count, matching
// spec.md §3's example override ("treat this singleton as a const").
func Select(obj *model.Object, cfg *model.Config) Kind {
	if IsSupertype(obj) {
		return KindEnum
	}
	if cfg != nil {
		if ov, ok := cfg.PerObject[obj.ID]; ok && ov != nil && ov.IsSingleton {
			return KindSingleton
		}
	}
	if isNaked(obj) {
		return KindSingleton
	}
	if cfg != nil && cfg.External(obj.ID) != nil {
		return KindExternal
	}
	return KindRecord
}
