package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdgen/internal/model"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, model.FlavorHashOwned.String(), f.StorageFlavor)
	assert.Equal(t, "./generated", f.OutputRoot)
}

func TestLoadParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mdgen.yaml")
	yamlText := "storage_flavor: vec-rwlock\noutput_root: ./out\npackage: sarzak\nmodule: sarzak_gen\nderive_list: [Debug]\n"
	require.NoError(t, os.WriteFile(path, []byte(yamlText), 0o644))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "vec-rwlock", f.StorageFlavor)
	assert.Equal(t, "./out", f.OutputRoot)
	assert.Equal(t, "sarzak", f.Package)
	assert.Equal(t, []string{"Debug"}, f.DeriveList)
}

func TestEnvOverridesOutputRoot(t *testing.T) {
	t.Setenv("MDGEN_OUTPUT_ROOT", "/tmp/env-out")
	f, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env-out", f.OutputRoot)
}

func TestResolveRejectsUnknownFlavor(t *testing.T) {
	f := Default()
	f.StorageFlavor = "not-a-flavor"
	_, err := f.Resolve()
	assert.Error(t, err)
}

func TestResolveBuildsModelConfig(t *testing.T) {
	f := Default()
	f.External = map[string]ExternalBinding{
		"ext-1": {Path: "std::time", TypeName: "SystemTime", CtorName: "from_system_time"},
	}
	f.PerObject = map[string]ObjectOverride{
		"obj-1": {IsSingleton: true},
	}
	cfg, err := f.Resolve()
	require.NoError(t, err)
	assert.Equal(t, model.FlavorHashOwned, cfg.StorageFlavor)
	require.Contains(t, cfg.ExternalBinding, "ext-1")
	assert.Equal(t, "SystemTime", cfg.ExternalBinding["ext-1"].TypeName)
	assert.True(t, cfg.Override("obj-1").IsSingleton)
}

func TestSaveRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "mdgen.yaml")
	f := Default()
	f.Package = "roundtrip"
	f.External = map[string]ExternalBinding{
		"ext-1": {Path: "std::time", TypeName: "SystemTime", CtorName: "from_system_time"},
	}
	f.PerObject = map[string]ObjectOverride{
		"obj-1": {IsSingleton: true},
	}
	require.NoError(t, f.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	if diff := cmp.Diff(f, loaded); diff != "" {
		t.Fatalf("round-tripped File differs (-want +got):\n%s", diff)
	}
}
