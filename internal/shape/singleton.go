package shape

import (
	"fmt"

	"mdgen/internal/buffer"
	"mdgen/internal/directive"
	"mdgen/internal/model"
	"mdgen/internal/render"
	"mdgen/internal/writer"
)

// SingletonWriter emits a naked Object as a zero-sized type plus a fixed
// id constant, per spec.md §4.5 item 2: uuid-v5(model-namespace,
// object-name).
type SingletonWriter struct{}

func (SingletonWriter) WriteCode(ctx writer.Context, buf *buffer.Buffer) error {
	obj := ctx.Object
	typeName := render.AsType(obj.Name)
	constName := render.AsConst(obj.Name) + "_ID"
	id := model.ObjectNamespaceID(ctx.Model.Name, obj.Name)

	buf.Block(directive.AllowEditing, "object-"+render.AsIdent(obj.Name), func() {
		buf.WriteLine(fmt.Sprintf("pub struct %s;", typeName))
		buf.WriteLine("")
		buf.WriteLine(fmt.Sprintf("pub const %s: Uuid = uuid!(%q);", constName, id.String()))
	})
	return nil
}
