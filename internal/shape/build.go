package shape

import (
	"fmt"

	"mdgen/internal/model"
	"mdgen/internal/writer"
)

// BuildWriter selects obj's Kind and returns the Writer that realizes it.
// Enum, Singleton and External shapes additionally carry whatever
// navigation methods obj's relationships call for (spec.md §4.6) via a
// StructBuilder composition, which gives a supertype its navigators to its
// subtypes; Record emits its navigators itself since its constructor needs
// the same referential-attribute bookkeeping.
func BuildWriter(obj *model.Object, cfg *model.Config) (writer.Writer, error) {
	switch Select(obj, cfg) {
	case KindEnum:
		return buildWithNavigation(EnumWriter{})
	case KindSingleton:
		return buildWithNavigation(SingletonWriter{})
	case KindExternal:
		return buildWithNavigation(ExternalWriter{})
	case KindRecord:
		return RecordWriter{}, nil
	default:
		return nil, fmt.Errorf("shape: compiler: object %q resolved to an unknown shape", obj.Name)
	}
}

func buildWithNavigation(definition writer.Writer) (writer.Writer, error) {
	return writer.NewStructBuilder(definition).With(NavigationWriter{}).Build()
}
