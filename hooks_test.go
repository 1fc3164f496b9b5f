package gopack

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHooks_StageOrder(t *testing.T) {
	fs := writeTree(t, map[string]string{
		"/proj/index.js": "require('./a');\n",
		"/proj/a.js":     "1;\n",
	})

	var mu sync.Mutex
	var stages []string
	record := func(s string) {
		mu.Lock()
		defer mu.Unlock()
		stages = append(stages, s)
	}

	hooks := &Hooks{}
	hooks.OnBeforeBuild("rec", func(c *Compilation) {
		assert.False(t, c.Sealed())
		record("before_build")
	})
	hooks.OnAfterModule("rec", func(m *Module) { record("after_module") })
	hooks.OnBeforeSeal("rec", func(c *Compilation) {
		assert.Empty(t, c.Chunks())
		record("before_seal")
	})
	hooks.OnAfterSeal("rec", func(c *Compilation) {
		assert.Len(t, c.Chunks(), 1)
		record("after_seal")
	})
	hooks.OnEmit("rec", func(c *Compilation) { record("emit") })
	hooks.OnDone("rec", func(r *Result) {
		assert.Equal(t, 2, r.Summary.Modules)
		record("done")
	})

	b := newTestBundler(t, fs, WithHooks(hooks))
	_, err := b.Run(context.Background(), []Entry{{Context: "/proj", Request: "./index.js", Name: "main"}}, "/out")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"before_build",
		"after_module",
		"after_module",
		"before_seal",
		"after_seal",
		"emit",
		"done",
	}, stages)
}

func TestHooks_TapOrder(t *testing.T) {
	hooks := &Hooks{}
	var calls []string
	hooks.OnBeforeSeal("first", func(*Compilation) { calls = append(calls, "first") })
	hooks.OnBeforeSeal("second", func(*Compilation) { calls = append(calls, "second") })
	hooks.OnBeforeSeal("third", func(*Compilation) { calls = append(calls, "third") })

	hooks.callBeforeSeal(nil)
	assert.Equal(t, []string{"first", "second", "third"}, calls)
	assert.Equal(t, []string{"first", "second", "third"}, hooks.Taps("before_seal"))
	assert.Empty(t, hooks.Taps("after_seal"))
	assert.Nil(t, hooks.Taps("nonexistent"))
}

func TestHooks_NotCalledOnFailure(t *testing.T) {
	fs := writeTree(t, map[string]string{"/proj/index.js": "require('./missing');\n"})

	hooks := &Hooks{}
	var sealed, done bool
	hooks.OnBeforeSeal("s", func(*Compilation) { sealed = true })
	hooks.OnDone("d", func(*Result) { done = true })

	b := newTestBundler(t, fs, WithHooks(hooks))
	_, err := b.Run(context.Background(), []Entry{{Context: "/proj", Request: "./index.js", Name: "main"}}, "/out")
	require.Error(t, err)
	assert.False(t, sealed)
	assert.False(t, done)
}

func TestBundler_HooksAccessor(t *testing.T) {
	b := newTestBundler(t, writeTree(t, nil))
	require.NotNil(t, b.Hooks())
	b.Hooks().OnDone("x", func(*Result) {})
	assert.Equal(t, []string{"x"}, b.Hooks().Taps("done"))
}
