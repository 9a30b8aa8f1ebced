package model

// StorageFlavor selects the storage shape the Store Emitter (package
// storegen) writes for a Model. The six flavors are spec.md §3's
// enumeration; vector flavors additionally select the reference wrapper
// (refcell vs rwlock) via StorageFlavor's own value rather than a separate
// axis, matching the source's flattened enum.
type StorageFlavor int

const (
	// FlavorHashOwned is map{id -> value}, single-owner values.
	FlavorHashOwned StorageFlavor = iota
	// FlavorHashSharedSingleThread is map{id -> shared-ref<value with
	// interior mutability>}, safe only within one goroutine tree.
	FlavorHashSharedSingleThread
	// FlavorHashSharedMultiThread is map{id -> shared-ref<value with
	// read-write-locked interior>}, safe across goroutines.
	FlavorHashSharedMultiThread
	// FlavorHashOwnedTimestamped is FlavorHashOwned plus a last-modified
	// timestamp per slot.
	FlavorHashOwnedTimestamped
	// FlavorVecSingleThread is the indexed-vector variant of
	// FlavorHashSharedSingleThread: a sequence of optional shared-ref
	// slots with a free-list of released indices.
	FlavorVecSingleThread
	// FlavorVecMultiThread is the indexed-vector variant of
	// FlavorHashSharedMultiThread.
	FlavorVecMultiThread
)

// IsVector reports whether ids for this flavor are dense vector indices
// rather than UUIDs.
func (f StorageFlavor) IsVector() bool {
	return f == FlavorVecSingleThread || f == FlavorVecMultiThread
}

// IsShared reports whether this flavor wraps values in a shared reference
// (as opposed to owning them directly).
func (f StorageFlavor) IsShared() bool {
	switch f {
	case FlavorHashSharedSingleThread, FlavorHashSharedMultiThread,
		FlavorVecSingleThread, FlavorVecMultiThread:
		return true
	default:
		return false
	}
}

// IsMultiThread reports whether this flavor's shared reference is
// reader-writer-locked (true) or single-threaded interior mutability
// (false). Meaningless when IsShared is false.
func (f StorageFlavor) IsMultiThread() bool {
	return f == FlavorHashSharedMultiThread || f == FlavorVecMultiThread
}

// IsTimestamped reports whether each slot carries a last-modified instant.
func (f StorageFlavor) IsTimestamped() bool {
	return f == FlavorHashOwnedTimestamped
}

// String renders the flavor using the same names spec.md §3 gives them.
func (f StorageFlavor) String() string {
	switch f {
	case FlavorHashOwned:
		return "hash-owned"
	case FlavorHashSharedSingleThread:
		return "hash-shared-refcell"
	case FlavorHashSharedMultiThread:
		return "hash-shared-rwlock"
	case FlavorHashOwnedTimestamped:
		return "hash-owned-timestamped"
	case FlavorVecSingleThread:
		return "vec-refcell"
	case FlavorVecMultiThread:
		return "vec-rwlock"
	default:
		return "unknown"
	}
}

// ParseStorageFlavor looks up a StorageFlavor by its String() spelling.
// Returns ok=false for an unrecognized name so callers (package config) can
// report a validation error rather than silently defaulting.
func ParseStorageFlavor(s string) (flavor StorageFlavor, ok bool) {
	for _, f := range []StorageFlavor{
		FlavorHashOwned, FlavorHashSharedSingleThread, FlavorHashSharedMultiThread,
		FlavorHashOwnedTimestamped, FlavorVecSingleThread, FlavorVecMultiThread,
	} {
		if f.String() == s {
			return f, true
		}
	}
	return 0, false
}
