// Package config implements the Configuration Resolver (spec.md §4.9/§6,
// C10): it normalizes user-supplied options (YAML file, environment
// overrides) into the internal model.Config that packages shape and
// storegen consult. Grounded on
// codenerd/internal/config/config.go's Load/Save/applyEnvOverrides
// YAML-plus-env-override shape and DefaultConfig() pattern, trimmed down
// to the options spec.md §6 actually enumerates (derive-list,
// storage-flavor, external-bindings, per-object-overrides, output-root,
// package, module) — the teacher's LLM/memory/mangle/shard-profile
// sections have no analogue in a batch code generator and are not carried
// forward.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"mdgen/internal/model"
)

// File is the on-disk YAML shape spec.md §6's "Configuration (enumerated
// recognized options)" describes.
type File struct {
	DeriveList    []string                   `yaml:"derive_list"`
	StorageFlavor string                     `yaml:"storage_flavor"`
	External      map[string]ExternalBinding `yaml:"external_bindings"`
	PerObject     map[string]ObjectOverride  `yaml:"per_object_overrides"`
	OutputRoot    string                     `yaml:"output_root"`
	Package       string                     `yaml:"package"`
	Module        string                     `yaml:"module"`
}

// ExternalBinding mirrors model.ExternalBinding's fields for YAML decode.
type ExternalBinding struct {
	Path     string `yaml:"path"`
	TypeName string `yaml:"type_name"`
	CtorName string `yaml:"ctor_name"`
}

// ObjectOverride mirrors model.ObjectOverride's fields for YAML decode.
type ObjectOverride struct {
	IsSingleton  bool     `yaml:"is_singleton"`
	IsImported   bool     `yaml:"is_imported"`
	DeriveExtras []string `yaml:"derive_extras,omitempty"`
}

// Default returns the generator's default File: hash/owned storage, the
// derives Debug/Clone/PartialEq, no bindings or overrides, module
// "generated" rooted at "./generated".
func Default() *File {
	return &File{
		DeriveList:    []string{"Debug", "Clone", "PartialEq"},
		StorageFlavor: model.FlavorHashOwned.String(),
		OutputRoot:    "./generated",
		Package:       "domain",
		Module:        "generated",
	}
}

// Load reads path as YAML, falling back to Default() if the file does not
// exist — mirroring codenerd's Load, which treats a missing config file as
// "use defaults" rather than an error.
func Load(path string) (*File, error) {
	f := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			f.applyEnvOverrides()
			return f, nil
		}
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	f.applyEnvOverrides()
	return f, nil
}

// Save writes f to path as YAML, creating parent directories as needed.
func (f *File) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("config: failed to create %s: %w", dir, err)
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("config: failed to marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: failed to write %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides lets MDGEN_OUTPUT_ROOT and MDGEN_STORAGE_FLAVOR
// override the file/default value, the same override-environment-first
// shape as codenerd's applyEnvOverrides.
func (f *File) applyEnvOverrides() {
	if root := os.Getenv("MDGEN_OUTPUT_ROOT"); root != "" {
		f.OutputRoot = root
	}
	if flavor := os.Getenv("MDGEN_STORAGE_FLAVOR"); flavor != "" {
		f.StorageFlavor = flavor
	}
	if pkg := os.Getenv("MDGEN_PACKAGE"); pkg != "" {
		f.Package = pkg
	}
}

// Resolve normalizes f into the model.Config that packages shape and
// storegen consult (spec.md §3, "Config"). An unrecognized storage flavor
// name is reported rather than silently defaulted.
func (f *File) Resolve() (*model.Config, error) {
	flavor, ok := model.ParseStorageFlavor(f.StorageFlavor)
	if !ok {
		return nil, fmt.Errorf("config: unrecognized storage_flavor %q", f.StorageFlavor)
	}

	cfg := &model.Config{
		DeriveList:    append([]string(nil), f.DeriveList...),
		StorageFlavor: flavor,
		OutputRoot:    f.OutputRoot,
		Package:       f.Package,
		Module:        f.Module,
	}
	if len(f.External) > 0 {
		cfg.ExternalBinding = make(map[string]*model.ExternalBinding, len(f.External))
		for id, b := range f.External {
			b := b
			cfg.ExternalBinding[id] = &model.ExternalBinding{
				Path: b.Path, TypeName: b.TypeName, CtorName: b.CtorName,
			}
		}
	}
	if len(f.PerObject) > 0 {
		cfg.PerObject = make(map[string]*model.ObjectOverride, len(f.PerObject))
		for id, o := range f.PerObject {
			o := o
			cfg.PerObject[id] = &model.ObjectOverride{
				IsSingleton: o.IsSingleton, IsImported: o.IsImported,
				DeriveExtras: append([]string(nil), o.DeriveExtras...),
			}
		}
	}
	return cfg, nil
}
