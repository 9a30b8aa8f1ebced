package shape

import (
	"fmt"

	"mdgen/internal/buffer"
	"mdgen/internal/directive"
	"mdgen/internal/render"
	"mdgen/internal/writer"
)

// ExternalWriter emits a wrapper struct {id, value: <foreign-type>} plus a
// constructor that calls the bound constructor name, per spec.md §4.5
// item 3.
type ExternalWriter struct{}

func (ExternalWriter) WriteCode(ctx writer.Context, buf *buffer.Buffer) error {
	obj := ctx.Object
	binding := ctx.Config.External(obj.ID)
	if binding == nil {
		return fmt.Errorf("shape: compiler: object %q selected as external has no ExternalBinding", obj.Name)
	}
	typeName := render.AsType(obj.Name)
	idType := render.TypeName(idTypeOf(), ctx.Flavor, nil)

	buf.Block(directive.AllowEditing, "object-"+render.AsIdent(obj.Name), func() {
		buf.WriteLine(fmt.Sprintf("pub struct %s {", typeName))
		buf.WriteLine(fmt.Sprintf("    pub id: %s,", idType))
		buf.WriteLine(fmt.Sprintf("    pub value: %s,", binding.TypeName))
		buf.WriteLine("}")
		buf.WriteLine("")
		buf.WriteLine(fmt.Sprintf("impl %s {", typeName))

		if ctx.Flavor.IsVector() {
			slot := slotType(ctx.Flavor, typeName)
			buf.WriteLine(fmt.Sprintf("    pub fn new(value: %s, store: &mut ObjectStore) -> %s {", binding.TypeName, slot))
			buf.WriteLine(fmt.Sprintf("        store.inter_%s(|id| %s {", render.AsIdent(obj.Name), wrapOpen(ctx.Flavor, typeName)))
			buf.WriteLine("            id,")
			buf.WriteLine(fmt.Sprintf("            value: %s(value.to_owned()),", binding.CtorName))
			buf.WriteLine(fmt.Sprintf("        }%s)", wrapClose(ctx.Flavor)))
			buf.WriteLine("    }")
		} else {
			slot := slotType(ctx.Flavor, typeName)
			buf.WriteLine(fmt.Sprintf("    pub fn new(value: %s, store: &mut ObjectStore) -> %s {", binding.TypeName, slot))
			buf.WriteLine(fmt.Sprintf("        let new = %s { id: %s::new_v4(), value: %s(value) }%s;", wrapOpen(ctx.Flavor, typeName), idType, binding.CtorName, wrapClose(ctx.Flavor)))
			buf.WriteLine(fmt.Sprintf("        store.inter_%s(new.clone());", render.AsIdent(obj.Name)))
			buf.WriteLine("        new")
			buf.WriteLine("    }")
		}

		buf.WriteLine("}")
	})
	return nil
}
