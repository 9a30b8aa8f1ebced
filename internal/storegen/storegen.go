// Package storegen implements the Store Emitter (spec.md §4.7, C7): the
// per-Model storage module, written in the flavor selected by
// model.Config.StorageFlavor. The six flavors share an identical API
// surface (inter/exhume/exorcise/iter, plus a timestamp accessor for the
// timestamped flavor) and differ only in field shape and id type, exactly
// as spec.md §3's enumeration and §4.7's per-flavor contracts describe.
//
// Grounded on original_source's store.rs family (§_INDEX.md):
// tests/mdd/src/domain/one_to_many/store.rs (hash/owned),
// .../one_to_many_rwlock/store.rs (hash/shared/rwlock),
// .../external_ts/store.rs (hash/owned/timestamped), and
// .../external_vec/store.rs + .../external_rwlock_vec/store.rs (the two
// vector flavors, including the free-list duplicate-elision loop). The
// emitted concurrency idiom for the rwlock flavors is additionally
// grounded on codenerd/internal/store/local_core.go's sync.RWMutex-guarded
// map, repurposed here as the template for what the generator itself
// writes out as target-language source.
package storegen

import (
	"fmt"
	"sort"

	"mdgen/internal/buffer"
	"mdgen/internal/directive"
	"mdgen/internal/model"
	"mdgen/internal/render"
	"mdgen/internal/writer"
)

// Writer emits the one-per-Model store file. ctx.Object is unused (nil);
// the store covers every Object in ctx.Model.
type Writer struct{}

func (Writer) WriteCode(ctx writer.Context, buf *buffer.Buffer) error {
	objs := sortedObjects(ctx.Model)
	flavor := ctx.Flavor

	buf.Block(directive.IgnoreOrig, ctx.Model.Name+"-object-store-file", func() {
		buf.WriteLine(fmt.Sprintf("//! %s Object Store", ctx.Model.Name))
		buf.WriteLine("//!")
		buf.WriteLine("//! Generated; instances are interned here rather than owned by")
		buf.WriteLine("//! the values that reference them.")
		buf.WriteLine("")

		buf.Block(directive.IgnoreOrig, ctx.Model.Name+"-object-store-definition", func() {
			writeImports(buf, flavor)
			buf.WriteLine("")
			writeStructDef(buf, objs, flavor)
			buf.WriteLine("")
			writeConstructor(buf, objs, flavor)
		})
		buf.WriteLine("")

		buf.Block(directive.IgnoreOrig, ctx.Model.Name+"-object-store-methods", func() {
			for _, obj := range objs {
				writeObjectMethods(buf, obj, flavor)
			}
		})
		buf.WriteLine("")

		buf.Block(directive.IgnoreOrig, ctx.Model.Name+"-object-store-persistence", func() {
			writePersistence(buf, objs, flavor)
		})
	})
	return nil
}

// sortedObjects returns ctx.Model's Objects sorted by name, per spec.md
// §4.6's determinism rule applied to the store's own field/method order.
func sortedObjects(m *model.Model) []*model.Object {
	out := make([]*model.Object, len(m.Objects))
	copy(out, m.Objects)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func writeImports(buf *buffer.Buffer, flavor model.StorageFlavor) {
	buf.WriteLine("use std::{fs, io::{self, prelude::*}, path::Path};")
	if flavor.IsShared() && flavor.IsMultiThread() {
		buf.WriteLine("use std::sync::{Arc, RwLock, Mutex};")
	} else if flavor.IsShared() {
		buf.WriteLine("use std::cell::RefCell;")
		buf.WriteLine("use std::rc::Rc;")
	}
	if flavor.IsTimestamped() {
		buf.WriteLine("use std::time::SystemTime;")
	}
	buf.WriteLine("use rustc_hash::FxHashMap as HashMap;")
	buf.WriteLine("use serde::{Deserialize, Serialize};")
	buf.WriteLine("use uuid::Uuid;")
}

// fieldName is the store's field name for obj: its snake-case name, with
// its free-list sibling (vector flavors only) suffixed _free_list.
func fieldName(obj *model.Object) string {
	return render.AsIdent(obj.Name)
}

// valueType renders the Rust type the store's field holds one instance
// as, ignoring the Vec/HashMap/free-list wrapper layers (those are added
// by fieldType).
func valueType(obj *model.Object) string {
	return render.AsType(obj.Name)
}

// refWrap wraps inner in this flavor's shared-reference type, or returns
// inner unchanged for owned flavors.
func refWrap(flavor model.StorageFlavor, inner string) string {
	switch {
	case flavor.IsShared() && flavor.IsMultiThread():
		return fmt.Sprintf("Arc<RwLock<%s>>", inner)
	case flavor.IsShared():
		return fmt.Sprintf("Rc<RefCell<%s>>", inner)
	default:
		return inner
	}
}

func fieldType(obj *model.Object, flavor model.StorageFlavor) string {
	t := valueType(obj)
	switch {
	case flavor.IsVector():
		slot := refWrap(flavor, t)
		vec := fmt.Sprintf("Vec<Option<%s>>", slot)
		if flavor.IsMultiThread() {
			return fmt.Sprintf("Arc<RwLock<%s>>", vec)
		}
		return vec
	case flavor.IsTimestamped():
		return fmt.Sprintf("HashMap<Uuid, (%s, SystemTime)>", t)
	case flavor.IsShared():
		m := fmt.Sprintf("HashMap<Uuid, %s>", refWrap(flavor, t))
		if flavor.IsMultiThread() {
			return fmt.Sprintf("Arc<RwLock<%s>>", m)
		}
		return m
	default:
		return fmt.Sprintf("HashMap<Uuid, %s>", t)
	}
}

func freeListType(flavor model.StorageFlavor) string {
	if flavor.IsMultiThread() {
		return "Mutex<Vec<usize>>"
	}
	return "Vec<usize>"
}

func writeStructDef(buf *buffer.Buffer, objs []*model.Object, flavor model.StorageFlavor) {
	buf.WriteLine("#[derive(Debug, Deserialize, Serialize)]")
	buf.WriteLine("pub struct ObjectStore {")
	for _, obj := range objs {
		name := fieldName(obj)
		if flavor.IsVector() {
			buf.WriteLine(fmt.Sprintf("    %s_free_list: %s,", name, freeListType(flavor)))
		}
		buf.WriteLine(fmt.Sprintf("    %s: %s,", name, fieldType(obj, flavor)))
	}
	buf.WriteLine("}")
}

func zeroValue(obj *model.Object, flavor model.StorageFlavor) string {
	switch {
	case flavor.IsVector():
		inner := "Vec::new()"
		if flavor.IsMultiThread() {
			return fmt.Sprintf("Arc::new(RwLock::new(%s))", inner)
		}
		return inner
	case flavor.IsShared() && flavor.IsMultiThread():
		return "Arc::new(RwLock::new(HashMap::default()))"
	default:
		return "HashMap::default()"
	}
}

func writeConstructor(buf *buffer.Buffer, objs []*model.Object, flavor model.StorageFlavor) {
	buf.WriteLine("impl ObjectStore {")
	buf.WriteLine("    pub fn new() -> Self {")
	buf.WriteLine("        let mut store = Self {")
	for _, obj := range objs {
		name := fieldName(obj)
		if flavor.IsVector() {
			freeList := "Vec::new()"
			if flavor.IsMultiThread() {
				freeList = "Mutex::new(Vec::new())"
			}
			buf.WriteLine(fmt.Sprintf("            %s_free_list: %s,", name, freeList))
		}
		buf.WriteLine(fmt.Sprintf("            %s: %s,", name, zeroValue(obj, flavor)))
	}
	buf.WriteLine("        };")
	buf.WriteLine("")
	writeSingletonInterning(buf, objs, flavor)
	buf.WriteLine("        store")
	buf.WriteLine("    }")
	buf.WriteLine("}")
}

func isNaked(obj *model.Object) bool {
	return len(obj.Attributes) == 0
}

// writeSingletonInterning inserts every naked Object directly into the
// store under its fixed namespace constant (the const shape.SingletonWriter
// emits, `<OBJECT>_ID`), so every run starts from the same populated
// state, rather than routing through inter_<name> — that method assumes a
// value's own `.id` field, which a zero-sized singleton type does not
// have.
func writeSingletonInterning(buf *buffer.Buffer, objs []*model.Object, flavor model.StorageFlavor) {
	var naked []*model.Object
	for _, obj := range objs {
		if isNaked(obj) {
			naked = append(naked, obj)
		}
	}
	if len(naked) == 0 {
		return
	}

	buf.WriteLine("        // Singleton objects are interned unconditionally, under their")
	buf.WriteLine("        // fixed namespace id, so every run starts from the same state.")
	for _, obj := range naked {
		name := fieldName(obj)
		typeName := valueType(obj)
		constID := render.AsConst(obj.Name) + "_ID"
		switch {
		case flavor.IsVector():
			buf.WriteLine(fmt.Sprintf("        // %s is a singleton, but this flavor indexes by dense", typeName))
			buf.WriteLine("        // vector position, not a fixed id, so it cannot be auto-interned here.")
		case flavor.IsTimestamped():
			buf.WriteLine(fmt.Sprintf("        store.%s.insert(%s, (%s, SystemTime::now()));", name, constID, typeName))
		case flavor.IsShared() && flavor.IsMultiThread():
			buf.WriteLine(fmt.Sprintf("        store.%s.insert(%s, Arc::new(RwLock::new(%s)));", name, constID, typeName))
		case flavor.IsShared():
			buf.WriteLine(fmt.Sprintf("        store.%s.insert(%s, Rc::new(RefCell::new(%s)));", name, constID, typeName))
		default:
			buf.WriteLine(fmt.Sprintf("        store.%s.insert(%s, %s);", name, constID, typeName))
		}
	}
	buf.WriteLine("")
}

func writeObjectMethods(buf *buffer.Buffer, obj *model.Object, flavor model.StorageFlavor) {
	name := fieldName(obj)
	typeName := valueType(obj)

	switch {
	case flavor.IsVector():
		writeVectorMethods(buf, name, typeName, flavor)
	default:
		writeHashMethods(buf, name, typeName, flavor)
	}
	buf.WriteLine("")
}

func writeHashMethods(buf *buffer.Buffer, name, typeName string, flavor model.StorageFlavor) {
	slot := refWrap(flavor, typeName)

	buf.WriteLine(fmt.Sprintf("    /// Inter (insert) [`%s`] into the store.", typeName))
	if flavor.IsTimestamped() {
		buf.WriteLine(fmt.Sprintf("    pub fn inter_%s(&mut self, %s: %s) {", name, name, typeName))
		buf.WriteLine(fmt.Sprintf("        self.%s.insert(%s.id, (%s, SystemTime::now()));", name, name, name))
		buf.WriteLine("    }")
	} else if flavor.IsShared() && flavor.IsMultiThread() {
		buf.WriteLine(fmt.Sprintf("    pub fn inter_%s(&mut self, %s: %s) -> %s {", name, name, slot, slot))
		buf.WriteLine(fmt.Sprintf("        let id = %s.read().unwrap().id;", name))
		buf.WriteLine(fmt.Sprintf("        self.%s.write().unwrap().insert(id, %s.clone());", name, name))
		buf.WriteLine(fmt.Sprintf("        %s", name))
		buf.WriteLine("    }")
	} else if flavor.IsShared() {
		buf.WriteLine(fmt.Sprintf("    pub fn inter_%s(&mut self, %s: %s) -> %s {", name, name, slot, slot))
		buf.WriteLine(fmt.Sprintf("        self.%s.insert(%s.borrow().id, %s.clone());", name, name, name))
		buf.WriteLine(fmt.Sprintf("        %s", name))
		buf.WriteLine("    }")
	} else {
		buf.WriteLine(fmt.Sprintf("    pub fn inter_%s(&mut self, %s: %s) {", name, name, typeName))
		buf.WriteLine(fmt.Sprintf("        self.%s.insert(%s.id, %s);", name, name, name))
		buf.WriteLine("    }")
	}
	buf.WriteLine("")

	buf.WriteLine(fmt.Sprintf("    /// Exhume (get) [`%s`] from the store.", typeName))
	if flavor.IsTimestamped() {
		buf.WriteLine(fmt.Sprintf("    pub fn exhume_%s(&self, id: &Uuid) -> Option<&%s> {", name, typeName))
		buf.WriteLine(fmt.Sprintf("        self.%s.get(id).map(|%s| &%s.0)", name, name, name))
		buf.WriteLine("    }")
	} else if flavor.IsShared() && flavor.IsMultiThread() {
		buf.WriteLine(fmt.Sprintf("    pub fn exhume_%s(&self, id: &Uuid) -> Option<%s> {", name, slot))
		buf.WriteLine(fmt.Sprintf("        self.%s.read().unwrap().get(id).cloned()", name))
		buf.WriteLine("    }")
	} else if flavor.IsShared() {
		buf.WriteLine(fmt.Sprintf("    pub fn exhume_%s(&self, id: &Uuid) -> Option<%s> {", name, slot))
		buf.WriteLine(fmt.Sprintf("        self.%s.get(id).cloned()", name))
		buf.WriteLine("    }")
	} else {
		buf.WriteLine(fmt.Sprintf("    pub fn exhume_%s(&self, id: &Uuid) -> Option<&%s> {", name, typeName))
		buf.WriteLine(fmt.Sprintf("        self.%s.get(id)", name))
		buf.WriteLine("    }")
	}
	buf.WriteLine("")

	buf.WriteLine(fmt.Sprintf("    /// Exorcise (remove) [`%s`] from the store.", typeName))
	if flavor.IsTimestamped() {
		buf.WriteLine(fmt.Sprintf("    pub fn exorcise_%s(&mut self, id: &Uuid) -> Option<%s> {", name, typeName))
		buf.WriteLine(fmt.Sprintf("        self.%s.remove(id).map(|%s| %s.0)", name, name, name))
		buf.WriteLine("    }")
	} else if flavor.IsShared() && flavor.IsMultiThread() {
		buf.WriteLine(fmt.Sprintf("    pub fn exorcise_%s(&mut self, id: &Uuid) -> Option<%s> {", name, slot))
		buf.WriteLine(fmt.Sprintf("        self.%s.write().unwrap().remove(id)", name))
		buf.WriteLine("    }")
	} else if flavor.IsShared() {
		buf.WriteLine(fmt.Sprintf("    pub fn exorcise_%s(&mut self, id: &Uuid) -> Option<%s> {", name, slot))
		buf.WriteLine(fmt.Sprintf("        self.%s.remove(id)", name))
		buf.WriteLine("    }")
	} else {
		buf.WriteLine(fmt.Sprintf("    pub fn exorcise_%s(&mut self, id: &Uuid) -> Option<%s> {", name, typeName))
		buf.WriteLine(fmt.Sprintf("        self.%s.remove(id)", name))
		buf.WriteLine("    }")
	}
	buf.WriteLine("")

	buf.WriteLine(fmt.Sprintf("    /// Get an iterator over the live [`%s`] instances.", typeName))
	if flavor.IsTimestamped() {
		buf.WriteLine(fmt.Sprintf("    pub fn iter_%s(&self) -> impl Iterator<Item = &%s> + '_ {", name, typeName))
		buf.WriteLine(fmt.Sprintf("        self.%s.values().map(|%s| &%s.0)", name, name, name))
		buf.WriteLine("    }")
	} else if flavor.IsShared() && flavor.IsMultiThread() {
		buf.WriteLine(fmt.Sprintf("    pub fn iter_%s(&self) -> impl Iterator<Item = %s> {", name, slot))
		buf.WriteLine(fmt.Sprintf("        let guard = self.%s.read().unwrap();", name))
		buf.WriteLine("        guard.values().cloned().collect::<Vec<_>>().into_iter()")
		buf.WriteLine("    }")
	} else if flavor.IsShared() {
		buf.WriteLine(fmt.Sprintf("    pub fn iter_%s(&self) -> impl Iterator<Item = %s> + '_ {", name, slot))
		buf.WriteLine(fmt.Sprintf("        self.%s.values().cloned()", name))
		buf.WriteLine("    }")
	} else {
		buf.WriteLine(fmt.Sprintf("    pub fn iter_%s(&self) -> impl Iterator<Item = &%s> {", name, typeName))
		buf.WriteLine(fmt.Sprintf("        self.%s.values()", name))
		buf.WriteLine("    }")
	}

	if flavor.IsTimestamped() {
		buf.WriteLine("")
		buf.WriteLine(fmt.Sprintf("    /// Get the last-modified timestamp for a [`%s`].", typeName))
		buf.WriteLine(fmt.Sprintf("    pub fn %s_timestamp(&self, %s: &%s) -> SystemTime {", name, name, typeName))
		buf.WriteLine(fmt.Sprintf("        self.%s.get(&%s.id).map(|entry| entry.1).unwrap()", name, name))
		buf.WriteLine("    }")
	}
}

// writeVectorMethods emits the free-list-indexed inter/exhume/exorcise/iter
// quartet, including the duplicate-elision loop spec.md §4.7's
// "Vector-flavor contract" and §8's quantified invariant both require.
func writeVectorMethods(buf *buffer.Buffer, name, typeName string, flavor model.StorageFlavor) {
	slot := refWrap(flavor, typeName)
	multiThread := flavor.IsMultiThread()

	buf.WriteLine(fmt.Sprintf("    /// Inter (insert) [`%s`] into the store. The id is the allocated", typeName))
	buf.WriteLine("    /// index; it is passed to the constructor closure so the returned")
	buf.WriteLine("    /// value can embed its own index as its id.")
	buf.WriteLine(fmt.Sprintf("    pub fn inter_%s<F>(&mut self, %s: F) -> %s", name, name, slot))
	buf.WriteLine(fmt.Sprintf("    where F: Fn(usize) -> %s {", slot))
	if multiThread {
		buf.WriteLine(fmt.Sprintf("        let _index = if let Some(_index) = self.%s_free_list.lock().unwrap().pop() {", name))
		buf.WriteLine("            _index")
		buf.WriteLine("        } else {")
		buf.WriteLine(fmt.Sprintf("            let _index = self.%s.read().unwrap().len();", name))
		buf.WriteLine(fmt.Sprintf("            self.%s.write().unwrap().push(None);", name))
		buf.WriteLine("            _index")
		buf.WriteLine("        };")
		buf.WriteLine(fmt.Sprintf("        let %s = %s(_index);", name, name))
		buf.WriteLine(fmt.Sprintf("        let found = self.%s.read().unwrap().iter().find(|stored| {", name))
		buf.WriteLine("            match stored {")
		buf.WriteLine(fmt.Sprintf("                Some(stored) => *stored.read().unwrap() == *%s.read().unwrap(),", name))
		buf.WriteLine("                None => false,")
		buf.WriteLine("            }")
		buf.WriteLine("        }).cloned();")
		buf.WriteLine("        if let Some(found) = found {")
		buf.WriteLine(fmt.Sprintf("            self.%s_free_list.lock().unwrap().push(_index);", name))
		buf.WriteLine("            found")
		buf.WriteLine("        } else {")
		buf.WriteLine(fmt.Sprintf("            self.%s.write().unwrap()[_index] = Some(%s.clone());", name, name))
		buf.WriteLine(fmt.Sprintf("            %s", name))
		buf.WriteLine("        }")
	} else {
		buf.WriteLine(fmt.Sprintf("        let _index = if let Some(_index) = self.%s_free_list.pop() {", name))
		buf.WriteLine("            _index")
		buf.WriteLine("        } else {")
		buf.WriteLine(fmt.Sprintf("            let _index = self.%s.len();", name))
		buf.WriteLine(fmt.Sprintf("            self.%s.push(None);", name))
		buf.WriteLine("            _index")
		buf.WriteLine("        };")
		buf.WriteLine(fmt.Sprintf("        let %s = %s(_index);", name, name))
		buf.WriteLine(fmt.Sprintf("        let found = self.%s.iter().find(|stored| {", name))
		buf.WriteLine("            match stored {")
		buf.WriteLine(fmt.Sprintf("                Some(stored) => *stored.borrow() == *%s.borrow(),", name))
		buf.WriteLine("                None => false,")
		buf.WriteLine("            }")
		buf.WriteLine("        }).cloned();")
		buf.WriteLine("        if let Some(found) = found {")
		buf.WriteLine(fmt.Sprintf("            self.%s_free_list.push(_index);", name))
		buf.WriteLine("            found")
		buf.WriteLine("        } else {")
		buf.WriteLine(fmt.Sprintf("            self.%s[_index] = Some(%s.clone());", name, name))
		buf.WriteLine(fmt.Sprintf("            %s", name))
		buf.WriteLine("        }")
	}
	buf.WriteLine("    }")
	buf.WriteLine("")

	buf.WriteLine(fmt.Sprintf("    /// Exhume (get) [`%s`] from the store.", typeName))
	buf.WriteLine(fmt.Sprintf("    pub fn exhume_%s(&self, id: &usize) -> Option<%s> {", name, slot))
	if multiThread {
		buf.WriteLine(fmt.Sprintf("        self.%s.read().unwrap().get(*id).cloned().flatten()", name))
	} else {
		buf.WriteLine(fmt.Sprintf("        self.%s.get(*id).cloned().flatten()", name))
	}
	buf.WriteLine("    }")
	buf.WriteLine("")

	buf.WriteLine(fmt.Sprintf("    /// Exorcise (remove) [`%s`] from the store.", typeName))
	buf.WriteLine(fmt.Sprintf("    pub fn exorcise_%s(&mut self, id: &usize) -> Option<%s> {", name, slot))
	if multiThread {
		buf.WriteLine(fmt.Sprintf("        let result = self.%s.write().unwrap()[*id].take();", name))
		buf.WriteLine(fmt.Sprintf("        self.%s_free_list.lock().unwrap().push(*id);", name))
	} else {
		buf.WriteLine(fmt.Sprintf("        let result = self.%s[*id].take();", name))
		buf.WriteLine(fmt.Sprintf("        self.%s_free_list.push(*id);", name))
	}
	buf.WriteLine("        result")
	buf.WriteLine("    }")
	buf.WriteLine("")

	buf.WriteLine(fmt.Sprintf("    /// Get an iterator over the live [`%s`] instances.", typeName))
	buf.WriteLine(fmt.Sprintf("    pub fn iter_%s(&self) -> impl Iterator<Item = %s> + '_ {", name, slot))
	if multiThread {
		buf.WriteLine(fmt.Sprintf("        let guard = self.%s.read().unwrap();", name))
		buf.WriteLine("        guard.iter().filter_map(|s| s.clone()).collect::<Vec<_>>().into_iter()")
	} else {
		buf.WriteLine(fmt.Sprintf("        self.%s.iter().filter_map(|s| s.clone())", name))
	}
	buf.WriteLine("    }")
}

// writePersistence emits the bincode and JSON-directory persistence pair
// spec.md §4.7 "Persistence (all flavors)" describes, including the
// timestamped flavor's idempotent-rewrite-and-prune behavior versus the
// non-timestamped flavors' documented always-rewrite-never-delete
// limitation.
func writePersistence(buf *buffer.Buffer, objs []*model.Object, flavor model.StorageFlavor) {
	buf.WriteLine("    /// Persist the store as a single bincode file.")
	buf.WriteLine("    pub fn persist_bincode<P: AsRef<Path>>(&self, path: P) -> io::Result<()> {")
	buf.WriteLine("        let mut bin_file = fs::File::create(path.as_ref())?;")
	buf.WriteLine("        let encoded: Vec<u8> = bincode::serialize(&self).unwrap();")
	buf.WriteLine("        bin_file.write_all(&encoded)?;")
	buf.WriteLine("        Ok(())")
	buf.WriteLine("    }")
	buf.WriteLine("")
	buf.WriteLine("    /// Load the store from a single bincode file.")
	buf.WriteLine("    pub fn load_bincode<P: AsRef<Path>>(path: P) -> io::Result<Self> {")
	buf.WriteLine("        let bin_file = fs::File::open(path.as_ref())?;")
	buf.WriteLine("        Ok(bincode::deserialize_from(bin_file).unwrap())")
	buf.WriteLine("    }")
	buf.WriteLine("")

	buf.WriteLine("    /// Persist the store as a directory of JSON files, one subdirectory")
	buf.WriteLine("    /// per Object type and one file per live instance.")
	buf.WriteLine("    pub fn persist<P: AsRef<Path>>(&self, path: P) -> io::Result<()> {")
	buf.WriteLine("        let path = path.as_ref();")
	buf.WriteLine("        fs::create_dir_all(path)?;")
	for _, obj := range objs {
		name := fieldName(obj)
		buf.WriteLine("")
		buf.WriteLine(fmt.Sprintf("        // Persist %s.", valueType(obj)))
		buf.WriteLine("        {")
		buf.WriteLine(fmt.Sprintf("            let dir = path.join(%q);", name))
		buf.WriteLine("            fs::create_dir_all(&dir)?;")
		if flavor.IsTimestamped() {
			buf.WriteLine("            let mut live = std::collections::HashSet::new();")
			buf.WriteLine(fmt.Sprintf("            for (id, entry) in self.%s.iter() {", name))
			buf.WriteLine("                live.insert(*id);")
			buf.WriteLine("                let file_path = dir.join(format!(\"{}.json\", id));")
			buf.WriteLine("                let rewrite = match fs::File::open(&file_path) {")
			buf.WriteLine("                    Ok(f) => {")
			buf.WriteLine(fmt.Sprintf("                        let on_disk: io::Result<%s> = serde_json::from_reader(io::BufReader::new(f)).map_err(io::Error::from);", valueType(obj)))
			buf.WriteLine("                        on_disk.map(|v| v != entry.0).unwrap_or(true)")
			buf.WriteLine("                    }")
			buf.WriteLine("                    Err(_) => true,")
			buf.WriteLine("                };")
			buf.WriteLine("                if rewrite {")
			buf.WriteLine("                    let file = fs::File::create(&file_path)?;")
			buf.WriteLine("                    serde_json::to_writer_pretty(io::BufWriter::new(file), &entry.0)?;")
			buf.WriteLine("                }")
			buf.WriteLine("            }")
			buf.WriteLine("            for entry in fs::read_dir(&dir)? {")
			buf.WriteLine("                let entry = entry?;")
			buf.WriteLine("                if let Some(stem) = entry.path().file_stem().and_then(|s| s.to_str()) {")
			buf.WriteLine("                    if let Ok(id) = stem.parse::<Uuid>() {")
			buf.WriteLine("                        if !live.contains(&id) {")
			buf.WriteLine("                            let _ = fs::remove_file(entry.path());")
			buf.WriteLine("                        }")
			buf.WriteLine("                    }")
			buf.WriteLine("                }")
			buf.WriteLine("            }")
		} else {
			buf.WriteLine(fmt.Sprintf("            for value in self.iter_%s() {", name))
			writePersistLoopBody(buf, flavor)
			buf.WriteLine("            }")
			buf.WriteLine("            // Non-timestamped flavors always rewrite live instances and do")
			buf.WriteLine("            // not delete stale files (spec'd documented limitation).")
		}
		buf.WriteLine("        }")
	}
	buf.WriteLine("")
	buf.WriteLine("        Ok(())")
	buf.WriteLine("    }")
}

func writePersistLoopBody(buf *buffer.Buffer, flavor model.StorageFlavor) {
	idExpr := "value.id"
	valueExpr := "value"
	if flavor.IsShared() && flavor.IsMultiThread() {
		idExpr = "value.read().unwrap().id"
		valueExpr = "&*value.read().unwrap()"
	} else if flavor.IsShared() {
		idExpr = "value.borrow().id"
		valueExpr = "&*value.borrow()"
	}
	buf.WriteLine(fmt.Sprintf("                let file_path = dir.join(format!(\"{}.json\", %s));", idExpr))
	buf.WriteLine("                let file = fs::File::create(&file_path)?;")
	buf.WriteLine(fmt.Sprintf("                serde_json::to_writer_pretty(io::BufWriter::new(file), %s)?;", valueExpr))
}
