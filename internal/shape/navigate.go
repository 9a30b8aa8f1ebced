package shape

import (
	"fmt"
	"sort"

	"mdgen/internal/buffer"
	"mdgen/internal/model"
	"mdgen/internal/render"
	"mdgen/internal/writer"
)

// NavigationWriter emits the relationship-navigation methods spec.md §4.6
// describes, for every relationship touching an Object regardless of the
// Object's selected Kind. It is invoked directly by RecordWriter; Enum,
// Singleton and External objects participate in navigation too (a
// supertype navigates to its subtypes, and a subtype can itself be naked or
// external), so BuildWriter appends it after those shape-specific writers.
type NavigationWriter struct{}

func (NavigationWriter) WriteCode(ctx writer.Context, buf *buffer.Buffer) error {
	obj := ctx.Object
	rels := sortedRelationships(obj)
	if len(rels) == 0 {
		return nil
	}

	typeName := render.AsType(obj.Name)
	buf.WriteLine("")
	buf.WriteLine(fmt.Sprintf("impl %s {", typeName))
	for _, r := range rels {
		switch r.Kind {
		case model.RelationshipBinary:
			writeBinaryNavigators(buf, obj, r, ctx.Flavor)
		case model.RelationshipIsa:
			writeIsaNavigators(buf, obj, r, ctx.Flavor)
		case model.RelationshipAssociative:
			writeAssociativeNavigators(buf, obj, r, ctx.Flavor)
		}
	}
	buf.WriteLine("}")
	return nil
}

// navReturn, navReturnOption and navReturnVec render a navigator's return
// type for the target's storage flavor: a borrowed reference for owned/
// timestamped flavors (matching storegen's exhume_T -> Option<&T>), or the
// flavor's shared-reference slot type for shared/vector flavors (matching
// exhume_T -> Option<Slot>), mirroring storegen.refWrap. Grounded on
// original_source's one_to_many_vec/types/referent.rs (`Vec<Rc<RefCell<A>>>`
// navigators) versus one_to_many/types/referent.rs (`&'a Referent`).
func navReturn(flavor model.StorageFlavor, otherType string) string {
	if flavor.IsShared() {
		return slotType(flavor, otherType)
	}
	return "&'a " + otherType
}

func navReturnOption(flavor model.StorageFlavor, otherType string) string {
	return "Option<" + navReturn(flavor, otherType) + ">"
}

func navReturnVec(flavor model.StorageFlavor, otherType string) string {
	return "Vec<" + navReturn(flavor, otherType) + ">"
}

// navAccess renders a field access on a value yielded by iter_T/exhume_T:
// direct field access for owned values, or through the flavor's
// shared-reference accessor (`.borrow()` single-thread, `.read().unwrap()`
// multi-thread) otherwise.
func navAccess(flavor model.StorageFlavor, varName, field string) string {
	switch {
	case flavor.IsShared() && flavor.IsMultiThread():
		return fmt.Sprintf("%s.read().unwrap().%s", varName, field)
	case flavor.IsShared():
		return fmt.Sprintf("%s.borrow().%s", varName, field)
	default:
		return fmt.Sprintf("%s.%s", varName, field)
	}
}

// sortedRelationships returns obj's relationships sorted by relationship
// number, per spec.md §4.6's "order Objects/sub-collections before
// iterating" determinism rule.
func sortedRelationships(obj *model.Object) []*model.Relationship {
	out := make([]*model.Relationship, len(obj.Relationships))
	copy(out, obj.Relationships)
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

func navName(num int, conditional bool, otherName string) string {
	marker := ""
	if conditional {
		marker = "c"
	}
	return fmt.Sprintf("r%d%s_%s", num, marker, render.AsIdent(otherName))
}

// writeBinaryNavigators emits the forward navigator when obj is the "from"
// endpoint and the backward navigator when obj is the "to" endpoint. An
// object can be both sides of distinct binary relationships but never both
// sides of the same one, so at most one of the two branches fires.
func writeBinaryNavigators(buf *buffer.Buffer, obj *model.Object, r *model.Relationship, flavor model.StorageFlavor) {
	b := r.Binary
	switch {
	case b.From.Object == obj:
		other := b.To.Object
		conditional := b.To.Conditionality == model.Conditional
		method := navName(r.Number, conditional, other.Name)
		otherType := render.AsType(other.Name)
		if conditional {
			buf.WriteLine(fmt.Sprintf("    pub fn %s<'a>(&self, store: &'a ObjectStore) -> %s {", method, navReturnOption(flavor, otherType)))
			buf.WriteLine(fmt.Sprintf("        self.%s.and_then(|id| store.exhume_%s(&id))", render.AsIdent(b.RefAttr), render.AsIdent(other.Name)))
			buf.WriteLine("    }")
		} else {
			buf.WriteLine(fmt.Sprintf("    pub fn %s<'a>(&self, store: &'a ObjectStore) -> %s {", method, navReturn(flavor, otherType)))
			buf.WriteLine(fmt.Sprintf("        store.exhume_%s(&self.%s).unwrap()", render.AsIdent(other.Name), render.AsIdent(b.RefAttr)))
			buf.WriteLine("    }")
		}

	case b.To.Object == obj:
		other := b.From.Object
		conditional := b.From.Conditionality == model.Conditional
		method := navName(r.Number, conditional, other.Name)
		otherType := render.AsType(other.Name)
		if b.From.Cardinality == model.CardinalityMany {
			buf.WriteLine(fmt.Sprintf("    pub fn %s<'a>(&self, store: &'a ObjectStore) -> %s {", method, navReturnVec(flavor, otherType)))
			buf.WriteLine(fmt.Sprintf("        store.iter_%s().filter(|x| %s == self.id).collect()", render.AsIdent(other.Name), navAccess(flavor, "x", render.AsIdent(b.RefAttr))))
			buf.WriteLine("    }")
		} else {
			buf.WriteLine(fmt.Sprintf("    pub fn %s<'a>(&self, store: &'a ObjectStore) -> %s {", method, navReturnOption(flavor, otherType)))
			buf.WriteLine(fmt.Sprintf("        store.iter_%s().find(|x| %s == self.id)", render.AsIdent(other.Name), navAccess(flavor, "x", render.AsIdent(b.RefAttr))))
			buf.WriteLine("    }")
		}
	}
}

// writeIsaNavigators emits the subtype→supertype navigator (always length
// 1) when obj is a subtype, and one supertype→subtype navigator per
// subtype when obj is the supertype itself.
func writeIsaNavigators(buf *buffer.Buffer, obj *model.Object, r *model.Relationship, flavor model.StorageFlavor) {
	isa := r.Isa
	if isa.Supertype == obj {
		hybrid := len(obj.Attributes) > 0
		supType := render.AsType(obj.Name)
		matchTarget := "self"
		if hybrid {
			matchTarget = "&self.subtype"
		}
		for _, st := range sortIsaSubtypes(isa.Subtypes) {
			method := navName(r.Number, true, st.Name)
			subType := render.AsType(st.Name)
			variant := fmt.Sprintf("%s::%s", supType, render.AsType(st.Name))
			if hybrid {
				variant = fmt.Sprintf("%sSubtype::%s", supType, render.AsType(st.Name))
			}
			buf.WriteLine(fmt.Sprintf("    pub fn %s<'a>(&self, store: &'a ObjectStore) -> %s {", method, navReturnOption(flavor, subType)))
			buf.WriteLine(fmt.Sprintf("        match %s {", matchTarget))
			buf.WriteLine(fmt.Sprintf("            %s(id) => store.exhume_%s(&id),", variant, render.AsIdent(st.Name)))
			buf.WriteLine("            _ => None,")
			buf.WriteLine("        }")
			buf.WriteLine("    }")
		}
		return
	}
	for _, st := range isa.Subtypes {
		if st != obj {
			continue
		}
		method := navName(r.Number, false, isa.Supertype.Name)
		supType := render.AsType(isa.Supertype.Name)
		buf.WriteLine(fmt.Sprintf("    pub fn %s<'a>(&self, store: &'a ObjectStore) -> %s {", method, navReturn(flavor, supType)))
		buf.WriteLine(fmt.Sprintf("        store.exhume_%s(&self.id).unwrap()", render.AsIdent(isa.Supertype.Name)))
		buf.WriteLine("    }")
	}
}

func sortIsaSubtypes(subtypes []*model.Object) []*model.Object {
	out := make([]*model.Object, len(subtypes))
	copy(out, subtypes)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// writeAssociativeNavigators emits, when obj is the associative Object
// itself, the two forward navigators to OtherA and OtherB; when obj is one
// of those endpoints, the single backward navigator to the associative
// Object, whose return cardinality follows the endpoint's declared
// Cardinality (spec.md §8 scenario 2, R20/AcknowledgedEvent).
func writeAssociativeNavigators(buf *buffer.Buffer, obj *model.Object, r *model.Relationship, flavor model.StorageFlavor) {
	a := r.Associative
	assocType := render.AsType(a.From.Name)

	if a.From == obj {
		writeAssociativeForward(buf, r.Number, a.OtherA, a.OtherARef, flavor)
		writeAssociativeForward(buf, r.Number, a.OtherB, a.OtherBRef, flavor)
		return
	}

	var endpoint model.Endpoint
	var refAttr string
	switch obj {
	case a.OtherA.Object:
		endpoint, refAttr = a.OtherA, a.OtherARef
	case a.OtherB.Object:
		endpoint, refAttr = a.OtherB, a.OtherBRef
	default:
		return
	}
	method := navName(r.Number, endpoint.Conditionality == model.Conditional, a.From.Name)
	if endpoint.Cardinality == model.CardinalityMany {
		buf.WriteLine(fmt.Sprintf("    pub fn %s<'a>(&self, store: &'a ObjectStore) -> %s {", method, navReturnVec(flavor, assocType)))
		buf.WriteLine(fmt.Sprintf("        store.iter_%s().filter(|x| %s == self.id).collect()", render.AsIdent(a.From.Name), navAccess(flavor, "x", render.AsIdent(refAttr))))
		buf.WriteLine("    }")
		return
	}
	buf.WriteLine(fmt.Sprintf("    pub fn %s<'a>(&self, store: &'a ObjectStore) -> %s {", method, navReturnOption(flavor, assocType)))
	buf.WriteLine(fmt.Sprintf("        store.iter_%s().find(|x| %s == self.id)", render.AsIdent(a.From.Name), navAccess(flavor, "x", render.AsIdent(refAttr))))
	buf.WriteLine("    }")
}

func writeAssociativeForward(buf *buffer.Buffer, num int, endpoint model.Endpoint, refAttr string, flavor model.StorageFlavor) {
	other := endpoint.Object
	conditional := endpoint.Conditionality == model.Conditional
	method := navName(num, conditional, other.Name)
	otherType := render.AsType(other.Name)
	if conditional {
		buf.WriteLine(fmt.Sprintf("    pub fn %s<'a>(&self, store: &'a ObjectStore) -> %s {", method, navReturnOption(flavor, otherType)))
		buf.WriteLine(fmt.Sprintf("        self.%s.and_then(|id| store.exhume_%s(&id))", render.AsIdent(refAttr), render.AsIdent(other.Name)))
		buf.WriteLine("    }")
		return
	}
	buf.WriteLine(fmt.Sprintf("    pub fn %s<'a>(&self, store: &'a ObjectStore) -> %s {", method, navReturn(flavor, otherType)))
	buf.WriteLine(fmt.Sprintf("        store.exhume_%s(&self.%s).unwrap()", render.AsIdent(other.Name), render.AsIdent(refAttr)))
	buf.WriteLine("    }")
}
