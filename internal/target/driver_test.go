package target

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"mdgen/internal/model"
)

func demoModel(name string) *model.Model {
	referent := &model.Object{ID: model.ObjectNamespaceID(name, "Referent").String(), Name: "Referent"}
	referent.Attributes = []*model.Attribute{
		{Owner: referent, Name: "value", Type: model.Type{Kind: model.TypeString}},
	}
	point := &model.Object{ID: model.ObjectNamespaceID(name, "Point").String(), Name: "Point"}
	point.Attributes = []*model.Attribute{
		{Owner: point, Name: "referent", Type: model.Type{Kind: model.TypeReference, Target: referent}},
	}
	r1 := &model.Relationship{
		Number: 1,
		Kind:   model.RelationshipBinary,
		Binary: &model.BinaryRelationship{
			From:    model.Endpoint{Object: point, Cardinality: model.CardinalityOne},
			To:      model.Endpoint{Object: referent, Cardinality: model.CardinalityMany},
			RefAttr: "referent",
		},
	}
	referent.Relationships = []*model.Relationship{r1}
	point.Relationships = []*model.Relationship{r1}
	return &model.Model{Name: name, Objects: []*model.Object{referent, point}}
}

func baseConfig(t *testing.T) *model.Config {
	t.Helper()
	return &model.Config{OutputRoot: t.TempDir(), Package: "demo", Module: "demo"}
}

func TestDriverRunWritesAllFiles(t *testing.T) {
	cfg := baseConfig(t)
	d := &Driver{Config: cfg}
	result, err := d.Run(demoModel("one_to_many_driver_test"))
	require.NoError(t, err)
	require.NoError(t, result.Err())
	assert.False(t, result.HasErrors())
	assert.Len(t, result.Files, 4) // referent.rs, point.rs, store.rs, types.rs

	modelDir := filepath.Join(cfg.OutputRoot, "one_to_many_driver_test")
	for _, name := range []string{"types/referent.rs", "types/point.rs", "store.rs", "types.rs"} {
		_, statErr := os.Stat(filepath.Join(modelDir, name))
		assert.NoError(t, statErr, name)
	}
}

func TestDriverRunIsIdempotent(t *testing.T) {
	cfg := baseConfig(t)
	d := &Driver{Config: cfg}
	m := demoModel("one_to_many_idempotent")

	first, err := d.Run(m)
	require.NoError(t, err)
	second, err := d.Run(m)
	require.NoError(t, err)

	require.Equal(t, len(first.Files), len(second.Files))
	for i := range first.Files {
		assert.Equal(t, first.Files[i].Text, second.Files[i].Text)
	}
}

func TestDriverRunMissingInputs(t *testing.T) {
	d := &Driver{}
	_, err := d.Run(demoModel("x"))
	assert.Error(t, err)

	d2 := &Driver{Config: &model.Config{OutputRoot: t.TempDir()}}
	_, err = d2.Run(nil)
	assert.Error(t, err)
}

func TestDriverDryRunDoesNotWrite(t *testing.T) {
	cfg := baseConfig(t)
	d := &Driver{Config: cfg, DryRun: true}
	result, err := d.Run(demoModel("one_to_many_dryrun"))
	require.NoError(t, err)
	require.NoError(t, result.Err())

	modelDir := filepath.Join(cfg.OutputRoot, "one_to_many_dryrun")
	_, statErr := os.Stat(filepath.Join(modelDir, "store.rs"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestDriverParallelMatchesSequential(t *testing.T) {
	defer goleak.VerifyNone(t)

	seqCfg := baseConfig(t)
	m := demoModel("one_to_many_parallel")
	seq, err := (&Driver{Config: seqCfg}).Run(m)
	require.NoError(t, err)

	parCfg := baseConfig(t)
	par, err := (&Driver{Config: parCfg, Parallel: true, MaxConcurrency: 2}).Run(m)
	require.NoError(t, err)

	require.Equal(t, len(seq.Files), len(par.Files))
	for i := range seq.Files {
		assert.Equal(t, filepath.Base(seq.Files[i].Path), filepath.Base(par.Files[i].Path))
		assert.Equal(t, seq.Files[i].Text, par.Files[i].Text)
	}
}
