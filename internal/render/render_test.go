package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mdgen/internal/model"
)

func TestAsIdent(t *testing.T) {
	cases := map[string]string{
		"Acknowledged Event": "acknowledged_event",
		"object-id":          "object_id",
		"already_snake":      "already_snake",
		"  leading space":    "leading_space",
		"CamelCase":          "camelcase",
	}
	for in, want := range cases {
		assert.Equal(t, want, AsIdent(in), "input %q", in)
	}
}

func TestAsType(t *testing.T) {
	cases := map[string]string{
		"acknowledged event": "AcknowledgedEvent",
		"object-id":          "ObjectId",
		"simple subtype a":   "SimpleSubtypeA",
	}
	for in, want := range cases {
		assert.Equal(t, want, AsType(in), "input %q", in)
	}
}

func TestAsConst(t *testing.T) {
	cases := map[string]string{
		"acknowledged event": "ACKNOWLEDGED_EVENT",
		"object-id":          "OBJECT_ID",
	}
	for in, want := range cases {
		assert.Equal(t, want, AsConst(in), "input %q", in)
	}
}

func TestTypeNamePrimitives(t *testing.T) {
	assert.Equal(t, "bool", TypeName(model.Type{Kind: model.TypeBoolean}, model.FlavorHashOwned, nil))
	assert.Equal(t, "i64", TypeName(model.Type{Kind: model.TypeInteger}, model.FlavorHashOwned, nil))
	assert.Equal(t, "f64", TypeName(model.Type{Kind: model.TypeFloat}, model.FlavorHashOwned, nil))
	assert.Equal(t, "String", TypeName(model.Type{Kind: model.TypeString}, model.FlavorHashOwned, nil))
}

func TestTypeNameIDLiftsToFlavor(t *testing.T) {
	assert.Equal(t, "Uuid", TypeName(model.Type{Kind: model.TypeUUID}, model.FlavorHashOwned, nil))
	assert.Equal(t, "usize", TypeName(model.Type{Kind: model.TypeUUID}, model.FlavorVecSingleThread, nil))

	ref := &model.Object{ID: "obj-1", Name: "Referent"}
	assert.Equal(t, "Uuid", TypeName(model.Type{Kind: model.TypeReference, Target: ref}, model.FlavorHashOwned, nil))
	assert.Equal(t, "usize", TypeName(model.Type{Kind: model.TypeReference, Target: ref}, model.FlavorVecMultiThread, nil))
}

func TestTypeNameExternalResolvesBinding(t *testing.T) {
	ext := &model.Object{ID: "ext-1", Name: "Timestamp"}
	bindings := map[string]*model.ExternalBinding{
		"ext-1": {Path: "time", TypeName: "time.Time", CtorName: "time.Now"},
	}
	got := TypeName(model.Type{Kind: model.TypeExternal, External: ext}, model.FlavorHashOwned, bindings)
	assert.Equal(t, "time.Time", got)
}
