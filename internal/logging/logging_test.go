package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestGetWithoutInitDoesNotPanic(t *testing.T) {
	Init(nil)
	assert.NotPanics(t, func() {
		Get(CategoryDriver).Info("no base logger installed")
	})
}

func TestGetTagsCategoryField(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	Init(zap.New(core))
	defer Init(nil)

	Get(CategoryStore).Info("interned object")

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "interned object", entries[0].Message)
	assert.Equal(t, "storegen", entries[0].ContextMap()["category"])
}

func TestGetCachesPerCategory(t *testing.T) {
	Init(zap.NewNop())
	defer Init(nil)

	assert.Same(t, Get(CategoryBuilder), Get(CategoryBuilder))
}
