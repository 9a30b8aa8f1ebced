// Package model defines the data structures that describe a domain model
// handed to the generator: objects, attributes, and relationships, plus the
// handful of structural variants (supertype/subtype, associative
// relationships, external-type imports) the rest of the generator branches
// on.
//
// A Model arrives already parsed and is never mutated once construction
// completes; every package downstream of model treats it as read-only.
package model

import "fmt"

// Model is a named collection of Objects and the Relationships between
// them.
type Model struct {
	Name    string
	Objects []*Object
}

// ObjectByID returns the Object with the given id, or nil if none exists.
func (m *Model) ObjectByID(id string) *Object {
	for _, o := range m.Objects {
		if o.ID == id {
			return o
		}
	}
	return nil
}

// ObjectByName returns the Object with the given name, or nil if none
// exists.
func (m *Model) ObjectByName(name string) *Object {
	for _, o := range m.Objects {
		if o.Name == name {
			return o
		}
	}
	return nil
}

// Object is a named class of values in the model. It becomes a record or
// tagged union in generated output, depending on the shape the selector
// assigns it (see package shape).
type Object struct {
	ID          string // stable identifier, the model's identity for this object
	Name        string
	Description string
	KeyLetters  string

	Attributes    []*Attribute    // user-defined; every Object implicitly also has an id attribute
	Relationships []*Relationship // relationships touching this object, from either side

	External *ExternalBinding // non-nil if this object is bound to a foreign type
}

// Attribute is a named, typed field owned by an Object.
type Attribute struct {
	Owner *Object
	Name  string
	Type  Type
}

// TypeKind tags the union in Type.
type TypeKind int

const (
	TypeBoolean TypeKind = iota
	TypeInteger
	TypeFloat
	TypeString
	TypeUUID
	TypeExternal  // a reference to an ExternalBinding-bound Object
	TypeReference // a referential attribute pointing at another Object
)

// Type is a tagged union over the attribute type kinds spec.md §3
// enumerates: the five primitives, an external-entity reference, or
// another Object (for referential attributes).
type Type struct {
	Kind     TypeKind
	External *Object // set when Kind == TypeExternal
	Target   *Object // set when Kind == TypeReference
}

func (t Type) String() string {
	switch t.Kind {
	case TypeBoolean:
		return "boolean"
	case TypeInteger:
		return "integer"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeUUID:
		return "uuid"
	case TypeExternal:
		if t.External != nil {
			return fmt.Sprintf("external<%s>", t.External.Name)
		}
		return "external"
	case TypeReference:
		if t.Target != nil {
			return fmt.Sprintf("reference<%s>", t.Target.Name)
		}
		return "reference"
	default:
		return "unknown"
	}
}

// Cardinality is one endpoint's multiplicity in a Relationship.
type Cardinality int

const (
	CardinalityOne Cardinality = iota
	CardinalityMany
)

// Conditionality is one endpoint's optionality in a Relationship.
type Conditionality int

const (
	Unconditional Conditionality = iota
	Conditional
)

// RelationshipKind tags the Relationship union.
type RelationshipKind int

const (
	RelationshipBinary RelationshipKind = iota
	RelationshipIsa
	RelationshipAssociative
)

// Relationship is a tagged union of the three relationship variants
// spec.md §3 describes: Binary, Isa, and Associative.
type Relationship struct {
	Number int // the "R<N>" identifier used in navigation method names
	Kind   RelationshipKind

	Binary      *BinaryRelationship
	Isa         *IsaRelationship
	Associative *AssociativeRelationship
}

// BinaryRelationship connects a "from" endpoint (owner of the referential
// attribute) to a "to" endpoint.
type BinaryRelationship struct {
	From   Endpoint
	To     Endpoint
	RefAttr string // name of the referential attribute stored on From.Object
}

// Endpoint is one side of a Binary or Associative relationship.
type Endpoint struct {
	Object         *Object
	Cardinality    Cardinality
	Conditionality Conditionality
}

// IsaRelationship is a supertype/subtype (super/sub) variant.
type IsaRelationship struct {
	Supertype *Object
	Subtypes  []*Object
}

// AssociativeRelationship connects a "from" associative Object to two
// named, cardinality-and-conditionality-bearing "other side" endpoints.
type AssociativeRelationship struct {
	From       *Object
	OtherA     Endpoint
	OtherARef  string // referential attribute name for OtherA
	OtherB     Endpoint
	OtherBRef  string // referential attribute name for OtherB
}

// ExternalBinding configures an Object flagged external: it is wrapped
// around a foreign type rather than emitted as a plain record.
type ExternalBinding struct {
	Path        string // import path of the foreign type
	TypeName    string // foreign type name
	CtorName    string // foreign constructor function name
}
