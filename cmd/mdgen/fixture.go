package main

import "mdgen/internal/model"

// demoModel builds a small, fixed in-memory Model for generate/watch/
// fmt-check to run against when the caller passes no other model source.
// spec.md §1 places "the upstream model loader" out of scope: "the model
// arrives as an already-parsed, in-memory graph". This is that arrival
// point for the CLI — a stand-in for whatever upstream tool would
// otherwise construct the graph, not a reimplementation of the spec'd
// generator core. Shaped after
// original_source/tests/mdd/src/domain/one_to_many/types/referent.rs:
// one Referent related to Point (R1, 1-to-many, unconditional) and
// Subscriber (R2, 1-to-many conditional).
func demoModel() *model.Model {
	m := &model.Model{Name: "one_to_many_demo"}

	referent := &model.Object{
		ID:          model.ObjectNamespaceID(m.Name, "Referent").String(),
		Name:        "Referent",
		Description: "The object of so many relationships.",
	}
	referent.Attributes = []*model.Attribute{
		{Owner: referent, Name: "name", Type: model.Type{Kind: model.TypeString}},
	}

	point := &model.Object{
		ID:          model.ObjectNamespaceID(m.Name, "Point").String(),
		Name:        "Point",
		Description: "A point related to a Referent.",
	}
	point.Attributes = []*model.Attribute{
		{Owner: point, Name: "x", Type: model.Type{Kind: model.TypeFloat}},
		{Owner: point, Name: "y", Type: model.Type{Kind: model.TypeFloat}},
		{Owner: point, Name: "referent", Type: model.Type{Kind: model.TypeReference, Target: referent}},
	}

	subscriber := &model.Object{
		ID:          model.ObjectNamespaceID(m.Name, "Subscriber").String(),
		Name:        "Subscriber",
		Description: "Optionally subscribed to a Referent.",
	}
	subscriber.Attributes = []*model.Attribute{
		{Owner: subscriber, Name: "email", Type: model.Type{Kind: model.TypeString}},
		{Owner: subscriber, Name: "referent", Type: model.Type{Kind: model.TypeReference, Target: referent}},
	}

	r1 := &model.Relationship{
		Number: 1,
		Kind:   model.RelationshipBinary,
		Binary: &model.BinaryRelationship{
			From:    model.Endpoint{Object: point, Cardinality: model.CardinalityMany, Conditionality: model.Unconditional},
			To:      model.Endpoint{Object: referent, Cardinality: model.CardinalityOne, Conditionality: model.Unconditional},
			RefAttr: "referent",
		},
	}
	r2 := &model.Relationship{
		Number: 2,
		Kind:   model.RelationshipBinary,
		Binary: &model.BinaryRelationship{
			From:    model.Endpoint{Object: subscriber, Cardinality: model.CardinalityMany, Conditionality: model.Conditional},
			To:      model.Endpoint{Object: referent, Cardinality: model.CardinalityOne, Conditionality: model.Unconditional},
			RefAttr: "referent",
		},
	}

	referent.Relationships = []*model.Relationship{r1, r2}
	point.Relationships = []*model.Relationship{r1}
	subscriber.Relationships = []*model.Relationship{r2}

	m.Objects = []*model.Object{referent, point, subscriber}
	return m
}
