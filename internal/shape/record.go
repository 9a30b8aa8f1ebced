package shape

import (
	"fmt"
	"strings"

	"mdgen/internal/buffer"
	"mdgen/internal/directive"
	"mdgen/internal/model"
	"mdgen/internal/render"
	"mdgen/internal/writer"
)

// RecordWriter is the default shape (spec.md §4.5 item 4): a struct with
// {id, user attributes, referential attributes for each "from" side of a
// relationship touching the object}, a new constructor, and relationship
// navigators (spec.md §4.6).
type RecordWriter struct{}

func (RecordWriter) WriteCode(ctx writer.Context, buf *buffer.Buffer) error {
	obj := ctx.Object
	typeName := render.AsType(obj.Name)
	idType := render.TypeName(idTypeOf(), ctx.Flavor, nil)
	refAttrs := fromSideReferentialAttrs(obj)

	var external map[string]*model.ExternalBinding
	if ctx.Config != nil {
		external = ctx.Config.ExternalBinding
	}

	buf.Block(directive.AllowEditing, "object-"+render.AsIdent(obj.Name), func() {
		buf.WriteLine(fmt.Sprintf("pub struct %s {", typeName))
		buf.WriteLine(fmt.Sprintf("    pub id: %s,", idType))
		for _, attr := range sortedAttributes(obj) {
			buf.WriteLine(fmt.Sprintf("    pub %s: %s,", render.AsIdent(attr.Name), render.TypeName(attr.Type, ctx.Flavor, external)))
		}
		for _, ra := range refAttrs {
			fieldType := idType
			if ra.optional {
				fieldType = "Option<" + idType + ">"
			}
			buf.WriteLine(fmt.Sprintf("    pub %s: %s,", render.AsIdent(ra.fieldName), fieldType))
		}
		buf.WriteLine("}")
		buf.WriteLine("")

		writeConstructor(buf, typeName, obj, refAttrs, ctx)
	})

	if err := (NavigationWriter{}).WriteCode(ctx, buf); err != nil {
		return err
	}
	return nil
}

// referentialAttr is one referential attribute a Record-shaped Object
// carries because it is the "from" side of a relationship.
type referentialAttr struct {
	fieldName string
	rel       *model.Relationship
	target    *model.Object
	optional  bool
}

// fromSideReferentialAttrs returns, sorted by field name, one
// referentialAttr per binary/associative relationship for which obj is the
// "from" side (spec.md §4.5 item 4, §4.6 determinism rule).
func fromSideReferentialAttrs(obj *model.Object) []referentialAttr {
	var out []referentialAttr
	for _, r := range obj.Relationships {
		switch r.Kind {
		case model.RelationshipBinary:
			if r.Binary != nil && r.Binary.From.Object == obj {
				out = append(out, referentialAttr{
					fieldName: r.Binary.RefAttr,
					rel:       r,
					target:    r.Binary.To.Object,
					optional:  r.Binary.To.Conditionality == model.Conditional,
				})
			}
		case model.RelationshipAssociative:
			if r.Associative != nil && r.Associative.From == obj {
				out = append(out, referentialAttr{
					fieldName: r.Associative.OtherARef,
					rel:       r,
					target:    r.Associative.OtherA.Object,
					optional:  r.Associative.OtherA.Conditionality == model.Conditional,
				})
				out = append(out, referentialAttr{
					fieldName: r.Associative.OtherBRef,
					rel:       r,
					target:    r.Associative.OtherB.Object,
					optional:  r.Associative.OtherB.Conditionality == model.Conditional,
				})
			}
		}
	}
	sortReferentialAttrs(out)
	return out
}

func sortReferentialAttrs(attrs []referentialAttr) {
	for i := 1; i < len(attrs); i++ {
		for j := i; j > 0 && attrs[j].fieldName < attrs[j-1].fieldName; j-- {
			attrs[j], attrs[j-1] = attrs[j-1], attrs[j]
		}
	}
}

// writeConstructor emits the `new` constructor. Id computation follows
// spec.md §4.5 item 4: a UUID-v5 over the stringified input tuple for hash
// flavors, or dense-index allocation (left to the store, via inter_T) for
// vector flavors. The vector branch emits the closure form
// storegen.writeVectorMethods's inter_T requires (`Fn(usize) -> Slot`,
// grounded on original_source's
// tests/mdd/src/domain/one_to_many_vec/types/referent.rs `Referent::new`),
// with the closure's usize parameter becoming the record's id.
func writeConstructor(buf *buffer.Buffer, typeName string, obj *model.Object, refAttrs []referentialAttr, ctx writer.Context) {
	var params []string
	for _, attr := range sortedAttributes(obj) {
		var external map[string]*model.ExternalBinding
		if ctx.Config != nil {
			external = ctx.Config.ExternalBinding
		}
		params = append(params, fmt.Sprintf("%s: %s", render.AsIdent(attr.Name), render.TypeName(attr.Type, ctx.Flavor, external)))
	}
	for _, ra := range refAttrs {
		paramType := fmt.Sprintf("&%s", render.AsType(ra.target.Name))
		if ra.optional {
			paramType = fmt.Sprintf("Option<&%s>", render.AsType(ra.target.Name))
		}
		params = append(params, fmt.Sprintf("%s: %s", render.AsIdent(strings.TrimSuffix(ra.fieldName, "_id")), paramType))
	}
	params = append(params, "store: &mut ObjectStore")

	buf.WriteLine(fmt.Sprintf("impl %s {", typeName))
	if ctx.Flavor.IsVector() {
		slot := slotType(ctx.Flavor, typeName)
		buf.WriteLine(fmt.Sprintf("    pub fn new(%s) -> %s {", strings.Join(params, ", "), slot))
		buf.WriteLine(fmt.Sprintf("        store.inter_%s(|id| %s {", render.AsIdent(obj.Name), wrapOpen(ctx.Flavor, typeName)))
		buf.WriteLine("            id,")
		for _, attr := range sortedAttributes(obj) {
			ident := render.AsIdent(attr.Name)
			buf.WriteLine(fmt.Sprintf("            %s: %s.to_owned(),", ident, ident))
		}
		for _, ra := range refAttrs {
			paramName := render.AsIdent(strings.TrimSuffix(ra.fieldName, "_id"))
			if ra.optional {
				buf.WriteLine(fmt.Sprintf("            %s: %s.map(|v| v.id),", render.AsIdent(ra.fieldName), paramName))
			} else {
				buf.WriteLine(fmt.Sprintf("            %s: %s.id,", render.AsIdent(ra.fieldName), paramName))
			}
		}
		buf.WriteLine(fmt.Sprintf("        }%s)", wrapClose(ctx.Flavor)))
		buf.WriteLine("    }")
		buf.WriteLine("}")
		return
	}

	slot := slotType(ctx.Flavor, typeName)
	buf.WriteLine(fmt.Sprintf("    pub fn new(%s) -> %s {", strings.Join(params, ", "), slot))
	tupleArgs := constructorIDTuple(obj, refAttrs)
	buf.WriteLine(fmt.Sprintf("        let id = new_v5(%q, &[%s]);", obj.Name, strings.Join(tupleArgs, ", ")))
	buf.WriteLine(fmt.Sprintf("        let new = %s {", wrapOpen(ctx.Flavor, typeName)))
	buf.WriteLine("            id,")
	for _, attr := range sortedAttributes(obj) {
		buf.WriteLine(fmt.Sprintf("            %s,", render.AsIdent(attr.Name)))
	}
	for _, ra := range refAttrs {
		paramName := render.AsIdent(strings.TrimSuffix(ra.fieldName, "_id"))
		if ra.optional {
			buf.WriteLine(fmt.Sprintf("            %s: %s.map(|v| v.id),", render.AsIdent(ra.fieldName), paramName))
		} else {
			buf.WriteLine(fmt.Sprintf("            %s: %s.id,", render.AsIdent(ra.fieldName), paramName))
		}
	}
	buf.WriteLine(fmt.Sprintf("        }%s;", wrapClose(ctx.Flavor)))
	buf.WriteLine(fmt.Sprintf("        store.inter_%s(new.clone());", render.AsIdent(obj.Name)))
	buf.WriteLine("        new")
	buf.WriteLine("    }")
	buf.WriteLine("}")
}

// constructorIDTuple is the stringified input tuple a hash-flavor
// constructor hashes into a uuid-v5 id (spec.md §4.5 item 4).
func constructorIDTuple(obj *model.Object, refAttrs []referentialAttr) []string {
	var tuple []string
	for _, attr := range sortedAttributes(obj) {
		tuple = append(tuple, render.AsIdent(attr.Name))
	}
	for _, ra := range refAttrs {
		tuple = append(tuple, render.AsIdent(strings.TrimSuffix(ra.fieldName, "_id"))+".id.to_string()")
	}
	return tuple
}
