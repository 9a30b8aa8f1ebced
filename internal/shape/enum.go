package shape

import (
	"fmt"
	"sort"

	"mdgen/internal/buffer"
	"mdgen/internal/directive"
	"mdgen/internal/model"
	"mdgen/internal/render"
	"mdgen/internal/writer"
)

// EnumWriter emits the tagged union for a supertype Object, per spec.md
// §4.5 item 1. If the supertype also carries attributes it emits the
// "hybrid" struct variant: a single discriminating field holding the
// union plus the attribute fields.
type EnumWriter struct{}

func (EnumWriter) WriteCode(ctx writer.Context, buf *buffer.Buffer) error {
	obj := ctx.Object
	subtypes := supertypeSubtypes(obj)
	typeName := render.AsType(obj.Name)
	idType := render.TypeName(model.Type{Kind: model.TypeUUID}, ctx.Flavor, nil)

	buf.Block(directive.AllowEditing, "object-"+render.AsIdent(obj.Name), func() {
		hybrid := len(obj.Attributes) > 0
		if hybrid {
			writeHybridEnum(buf, typeName, idType, obj, subtypes, ctx)
		} else {
			writeBareEnum(buf, typeName, idType, subtypes)
		}

		buf.WriteLine("")
		buf.WriteLine(fmt.Sprintf("impl %s {", typeName))
		buf.WriteLine(fmt.Sprintf("    pub fn id(&self) -> %s {", idType))
		if hybrid {
			buf.WriteLine("        match &self.subtype {")
			for _, st := range subtypes {
				buf.WriteLine(fmt.Sprintf("            %sSubtype::%s(id) => *id,", typeName, render.AsType(st.Name)))
			}
			buf.WriteLine("        }")
		} else {
			buf.WriteLine("        match self {")
			for _, st := range subtypes {
				buf.WriteLine(fmt.Sprintf("            %s::%s(id) => *id,", typeName, render.AsType(st.Name)))
			}
			buf.WriteLine("        }")
		}
		buf.WriteLine("    }")
		buf.WriteLine("}")
	})
	return nil
}

func writeBareEnum(buf *buffer.Buffer, typeName, idType string, subtypes []*model.Object) {
	buf.WriteLine(fmt.Sprintf("pub enum %s {", typeName))
	for _, st := range subtypes {
		buf.WriteLine(fmt.Sprintf("    %s(%s),", render.AsType(st.Name), idType))
	}
	buf.WriteLine("}")
}

func writeHybridEnum(buf *buffer.Buffer, typeName, idType string, obj *model.Object, subtypes []*model.Object, ctx writer.Context) {
	buf.WriteLine(fmt.Sprintf("pub enum %sSubtype {", typeName))
	for _, st := range subtypes {
		buf.WriteLine(fmt.Sprintf("    %s(%s),", render.AsType(st.Name), idType))
	}
	buf.WriteLine("}")
	buf.WriteLine("")
	buf.WriteLine(fmt.Sprintf("pub struct %s {", typeName))
	buf.WriteLine(fmt.Sprintf("    pub subtype: %sSubtype,", typeName))
	for _, attr := range sortedAttributes(obj) {
		var external map[string]*model.ExternalBinding
		if ctx.Config != nil {
			external = ctx.Config.ExternalBinding
		}
		buf.WriteLine(fmt.Sprintf("    pub %s: %s,", render.AsIdent(attr.Name), render.TypeName(attr.Type, ctx.Flavor, external)))
	}
	buf.WriteLine("}")
}

// supertypeSubtypes returns the subtypes of obj's Isa relationship, sorted
// by name per spec.md §4.6's determinism rule (the emitter MUST sort by
// Object name before iterating).
func supertypeSubtypes(obj *model.Object) []*model.Object {
	var subtypes []*model.Object
	for _, r := range obj.Relationships {
		if r.Kind == model.RelationshipIsa && r.Isa != nil && r.Isa.Supertype == obj {
			subtypes = append(subtypes, r.Isa.Subtypes...)
		}
	}
	sort.Slice(subtypes, func(i, j int) bool { return subtypes[i].Name < subtypes[j].Name })
	return subtypes
}

// sortedAttributes returns obj's user-defined attributes sorted by name,
// per spec.md §4.6's determinism rule.
func sortedAttributes(obj *model.Object) []*model.Attribute {
	out := make([]*model.Attribute, len(obj.Attributes))
	copy(out, obj.Attributes)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
