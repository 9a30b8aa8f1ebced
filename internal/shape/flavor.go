package shape

import "mdgen/internal/model"

// slotType mirrors storegen.refWrap: the Rust type a value of typeName is
// actually stored and returned as under flavor. Vector flavors are always
// shared (model.StorageFlavor.IsVector implies IsShared), so this covers
// every flavor record.go's constructor can be asked to emit for.
func slotType(flavor model.StorageFlavor, typeName string) string {
	switch {
	case flavor.IsShared() && flavor.IsMultiThread():
		return "Arc<RwLock<" + typeName + ">>"
	case flavor.IsShared():
		return "Rc<RefCell<" + typeName + ">>"
	default:
		return typeName
	}
}

// wrapOpen and wrapClose bracket a struct literal in flavor's shared-
// reference constructor (`Rc::new(RefCell::new(...))` or
// `Arc::new(RwLock::new(...))`), for callers building the literal line by
// line between the two.
func wrapOpen(flavor model.StorageFlavor, typeName string) string {
	switch {
	case flavor.IsShared() && flavor.IsMultiThread():
		return "Arc::new(RwLock::new(" + typeName
	case flavor.IsShared():
		return "Rc::new(RefCell::new(" + typeName
	default:
		return typeName
	}
}

func wrapClose(flavor model.StorageFlavor) string {
	if flavor.IsShared() {
		return "))"
	}
	return ""
}
