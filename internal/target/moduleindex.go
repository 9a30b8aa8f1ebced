package target

import (
	"fmt"

	"mdgen/internal/buffer"
	"mdgen/internal/directive"
	"mdgen/internal/model"
	"mdgen/internal/render"
	"mdgen/internal/writer"
)

// moduleIndexWriter emits the per-Model module-index file spec.md §4.9
// describes: "one for a module-index file that re-exports the generated
// types". Grounded on original_source's per-domain mod file (e.g.
// tests/mdd/src/domain/one_to_many_rwlock.rs): `pub mod store; pub mod
// types; pub use store::ObjectStore; pub use types::*;` plus the fixed
// model namespace constant every object id is derived under.
type moduleIndexWriter struct{}

func (moduleIndexWriter) WriteCode(ctx writer.Context, buf *buffer.Buffer) error {
	buf.Block(directive.IgnoreOrig, ctx.Model.Name+"-module-index", func() {
		buf.WriteLine(fmt.Sprintf("//! %s", ctx.Model.Name))
		buf.WriteLine("//!")
		buf.WriteLine("//! Generated module index; re-exports the per-object types and the store.")
		buf.WriteLine("use uuid::{uuid, Uuid};")
		buf.WriteLine("")
		buf.WriteLine("pub mod store;")
		buf.WriteLine("pub mod types;")
		buf.WriteLine("")
		buf.WriteLine("pub use store::ObjectStore;")
		buf.WriteLine("pub use types::*;")
		buf.WriteLine("")
		ns := model.Namespace(ctx.Model.Name)
		buf.WriteLine(fmt.Sprintf("pub const UUID_NS: Uuid = uuid!(%q);", ns.String()))
		buf.WriteLine("")
		buf.WriteLine("// Contents:")
		for _, obj := range sortedByName(ctx.Model.Objects) {
			buf.WriteLine(fmt.Sprintf("// * [`%s`]", render.AsType(obj.Name)))
		}
	})
	return nil
}

func sortedByName(objs []*model.Object) []*model.Object {
	out := make([]*model.Object, len(objs))
	copy(out, objs)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Name < out[j-1].Name; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
