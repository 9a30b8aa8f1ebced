package model

import (
	"strings"

	"github.com/google/uuid"
)

// Namespace is the UUID-v5 namespace every model-derived id is computed
// under. Each Model gets its own namespace, derived from the model's name,
// so two models that happen to share an object name never collide.
func Namespace(modelName string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(modelName))
}

// ObjectNamespaceID is the fixed id a singleton Object is given: spec.md
// §4.5 defines it as uuid-v5(model-namespace, object-name).
func ObjectNamespaceID(modelName, objectName string) uuid.UUID {
	ns := Namespace(modelName)
	return uuid.NewSHA1(ns, []byte(objectName))
}

// RecordID computes the deterministic id for a "record with relationships"
// shape's constructor: uuid-v5 over the stringified input tuple. Two calls
// with the same tuple yield the same id, which is the hash-store
// id-determinism property spec.md §8 requires.
func RecordID(modelName, objectName string, tuple ...string) uuid.UUID {
	ns := Namespace(modelName)
	key := objectName + ":" + strings.Join(tuple, ":")
	return uuid.NewSHA1(ns, []byte(key))
}

// AssociativeID computes the id for an associative-object constructor, per
// the R20 AcknowledgedEvent example in spec.md §8: RecordID over (aID, bID),
// i.e. uuid5(Namespace(modelName), "{objectName}:{a}:{b}").
func AssociativeID(modelName, objectName, aID, bID string) uuid.UUID {
	return RecordID(modelName, objectName, aID, bID)
}

// RandomTimestampedID produces a uuid-v4 for flavors that randomize ids
// rather than deriving them (spec.md §4.7, "some timestamped flavors").
func RandomTimestampedID() uuid.UUID {
	return uuid.New()
}
