package gopack

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertocavalcante/gopack/label"
)

func moduleIDs(mods []*Module) []string {
	ids := make([]string, len(mods))
	for i, m := range mods {
		ids[i] = m.ID.String()
	}
	return ids
}

// buildCounter counts module builds per id through the AfterModule hook.
type buildCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func countBuilds(h *Hooks) *buildCounter {
	bc := &buildCounter{counts: make(map[string]int)}
	h.OnAfterModule("count", func(m *Module) {
		bc.mu.Lock()
		defer bc.mu.Unlock()
		bc.counts[m.Affinity.String()+" "+m.ID.String()]++
	})
	return bc
}

func TestCompilation_ChunkMembership(t *testing.T) {
	fs := writeTree(t, map[string]string{
		"/proj/index.js": "var title = require('./title');\nconsole.log(title);\n",
		"/proj/title.js": "module.exports = 'hello';\n",
	})

	c := compile(t, fs, []Entry{{Context: "/proj", Request: "./index.js", Name: "main"}})

	chunks := c.Chunks()
	require.Len(t, chunks, 1)
	chunk := chunks[0]
	assert.Equal(t, "main", chunk.Name.String())
	assert.Equal(t, "main.js", chunk.File)
	assert.Equal(t, "./index.js", chunk.EntryID.String())
	assert.Equal(t, []string{"./index.js", "./title.js"}, moduleIDs(chunk.Modules))

	assert.Equal(t, 1, factoryCount(chunk.Source, "./index.js"))
	assert.Equal(t, 1, factoryCount(chunk.Source, "./title.js"))
	assert.Contains(t, chunk.Source, `return __pack_require__("./index.js");`)
	assert.Contains(t, chunk.Source, `var title = __pack_require__("./title.js");`)

	assets := c.Assets()
	assert.Equal(t, map[string]string{"main.js": chunk.Source}, assets)
}

func TestCompilation_DiamondBuildsSharedModuleOnce(t *testing.T) {
	fs := writeTree(t, map[string]string{
		"/proj/index.js": "require('./left');\nrequire('./right');\n",
		"/proj/left.js":  "module.exports = require('./util');\n",
		"/proj/right.js": "module.exports = require('./util');\n",
		"/proj/util.js":  "module.exports = {};\n",
	})

	hooks := &Hooks{}
	counter := countBuilds(hooks)
	c := compile(t, fs, []Entry{{Context: "/proj", Request: "./index.js", Name: "main"}}, WithHooks(hooks))

	for id, n := range counter.counts {
		assert.Equal(t, 1, n, "module %s built %d times", id, n)
	}
	assert.Len(t, counter.counts, 4)

	chunk := c.Chunks()[0]
	assert.Equal(t, []string{"./index.js", "./left.js", "./util.js", "./right.js"}, moduleIDs(chunk.Modules))
	assert.Equal(t, 1, factoryCount(chunk.Source, "./util.js"))

	left, ok := c.Module(label.MustModuleID("./left.js"), label.MustName("main"))
	require.True(t, ok)
	right, ok := c.Module(label.MustModuleID("./right.js"), label.MustName("main"))
	require.True(t, ok)
	assert.Equal(t, left.Dependencies[0].ID, right.Dependencies[0].ID)
}

func TestCompilation_CycleTerminates(t *testing.T) {
	fs := writeTree(t, map[string]string{
		"/proj/a.js": "exports.b = require('./b');\n",
		"/proj/b.js": "exports.a = require('./a');\n",
	})

	hooks := &Hooks{}
	counter := countBuilds(hooks)
	c := compile(t, fs, []Entry{{Context: "/proj", Request: "./a.js", Name: "main"}}, WithHooks(hooks))

	assert.Equal(t, map[string]int{"main ./a.js": 1, "main ./b.js": 1}, counter.counts)

	chunk := c.Chunks()[0]
	assert.Equal(t, []string{"./a.js", "./b.js"}, moduleIDs(chunk.Modules))
	assert.Equal(t, 1, factoryCount(chunk.Source, "./a.js"))
	assert.Equal(t, 1, factoryCount(chunk.Source, "./b.js"))
	// The loader registers a module before running its factory.
	assert.Contains(t, chunk.Source, "var module = installedModules[moduleId] = {")
}

func TestCompilation_SelfReference(t *testing.T) {
	fs := writeTree(t, map[string]string{
		"/proj/self.js": "module.exports = require('./self');\n",
	})

	c := compile(t, fs, []Entry{{Context: "/proj", Request: "./self.js", Name: "main"}})
	assert.Equal(t, []string{"./self.js"}, moduleIDs(c.Chunks()[0].Modules))
}

func TestCompilation_Deterministic(t *testing.T) {
	files := map[string]string{
		"/proj/index.js":   "require('./a');\nrequire('./b');\nrequire('./c');\n",
		"/proj/a.js":       "require('./shared');\nrequire('./d');\n",
		"/proj/b.js":       "require('./shared');\n",
		"/proj/c.js":       "require('./d');\nrequire('./a');\n",
		"/proj/d.js":       "require('./shared');\n",
		"/proj/shared.js":  "module.exports = 1;\n",
		"/proj/admin.js":   "require('./shared');\n",
		"/proj/unused.js":  "module.exports = 2;\n",
		"/proj/other/x.js": "module.exports = 3;\n",
	}
	entries := []Entry{
		{Context: "/proj", Request: "./index.js", Name: "main"},
		{Context: "/proj", Request: "./admin.js", Name: "admin"},
	}

	first := compile(t, writeTree(t, files), entries, WithMaxConcurrency(0))
	for i := 0; i < 5; i++ {
		again := compile(t, writeTree(t, files), entries, WithMaxConcurrency(0))
		assert.Equal(t, first.Assets(), again.Assets())
	}

	chunks := first.Chunks()
	require.Len(t, chunks, 2)
	assert.Equal(t, []string{"./index.js", "./a.js", "./shared.js", "./d.js", "./b.js", "./c.js"}, moduleIDs(chunks[0].Modules))
	assert.Equal(t, []string{"./admin.js", "./shared.js"}, moduleIDs(chunks[1].Modules))
}

func TestCompilation_NoCrossEntrySharing(t *testing.T) {
	fs := writeTree(t, map[string]string{
		"/proj/main.js":   "require('./common');\n",
		"/proj/admin.js":  "require('./common');\n",
		"/proj/common.js": "module.exports = 'shared';\n",
	})

	hooks := &Hooks{}
	counter := countBuilds(hooks)
	c := compile(t, fs, []Entry{
		{Context: "/proj", Request: "./main.js", Name: "main"},
		{Context: "/proj", Request: "./admin.js", Name: "admin"},
	}, WithHooks(hooks))

	assert.Equal(t, 1, counter.counts["main ./common.js"])
	assert.Equal(t, 1, counter.counts["admin ./common.js"])

	mainCommon, ok := c.Module(label.MustModuleID("./common.js"), label.MustName("main"))
	require.True(t, ok)
	adminCommon, ok := c.Module(label.MustModuleID("./common.js"), label.MustName("admin"))
	require.True(t, ok)
	assert.NotSame(t, mainCommon, adminCommon)

	assets := c.Assets()
	require.Len(t, assets, 2)
	assert.Equal(t, 1, factoryCount(assets["main.js"], "./common.js"))
	assert.Equal(t, 1, factoryCount(assets["admin.js"], "./common.js"))
	assert.Len(t, c.Modules(), 4)

	entries := c.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "main", entries[0].Affinity.String())
	assert.Equal(t, "admin", entries[1].Affinity.String())
}

func TestCompilation_EntryOrderFollowsDeclaration(t *testing.T) {
	files := map[string]string{"/proj/common.js": "module.exports = 0;\n"}
	var entries []Entry
	var want []string
	for i := 0; i < 30; i++ {
		name := fmt.Sprintf("e%02d", i)
		files["/proj/"+name+".js"] = "require('./common');\n"
		entries = append(entries, Entry{Context: "/proj", Request: "./" + name + ".js", Name: name})
		want = append(want, name)
	}
	fs := writeTree(t, files)

	for round := 0; round < 20; round++ {
		c := compile(t, fs, entries, WithMaxConcurrency(0))

		var entryNames, chunkNames, chunkFiles []string
		for _, m := range c.Entries() {
			entryNames = append(entryNames, m.Affinity.String())
		}
		for _, ch := range c.Chunks() {
			chunkNames = append(chunkNames, ch.Name.String())
			chunkFiles = append(chunkFiles, ch.File)
		}
		require.Equal(t, want, entryNames, "round %d", round)
		require.Equal(t, want, chunkNames, "round %d", round)
		require.Equal(t, want[0]+".js", chunkFiles[0], "round %d", round)
		require.Equal(t, want[29]+".js", chunkFiles[29], "round %d", round)
	}
}

func TestCompilation_BuildDuplicateNames(t *testing.T) {
	fs := writeTree(t, map[string]string{
		"/proj/a.js": "1;\n",
		"/proj/b.js": "2;\n",
	})

	for i := 0; i < 20; i++ {
		hooks := &Hooks{}
		counter := countBuilds(hooks)
		c := newTestBundler(t, fs, WithHooks(hooks)).NewCompilation()
		err := c.Build(context.Background(), []Entry{
			{Context: "/proj", Request: "./a.js", Name: "main"},
			{Context: "/proj", Request: "./b.js", Name: "main"},
		})
		require.ErrorIs(t, err, ErrDuplicateEntry)
		assert.ErrorContains(t, err, `"main"`)

		// Nothing is built once a declaration is rejected.
		assert.Empty(t, counter.counts)
		assert.ErrorIs(t, c.Seal(context.Background()), ErrBuildFailed)
	}
}

func TestCompilation_EntryContexts(t *testing.T) {
	fs := writeTree(t, map[string]string{
		"/proj/admin/src/index.js": "require('./panel');\n",
		"/proj/admin/src/panel.js": "module.exports = {};\n",
	})

	c := compile(t, fs, []Entry{{Context: "/proj/admin", Request: "src/index", Name: "admin"}})
	assert.Equal(t, []string{"./src/index.js", "./src/panel.js"}, moduleIDs(c.Chunks()[0].Modules))
}

func TestCompilation_MissingDependency(t *testing.T) {
	fs := writeTree(t, map[string]string{
		"/proj/index.js": "require('./present');\nrequire('./missing');\n",
		"/proj/present.js": "module.exports = 1;\n",
	})

	b := newTestBundler(t, fs)
	_, err := b.Run(context.Background(), []Entry{{Context: "/proj", Request: "./index.js", Name: "main"}}, "/proj/dist")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIO))

	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "/proj/missing.js", ioErr.Path)

	exists, statErr := afero.Exists(fs, "/proj/dist/main.js")
	require.NoError(t, statErr)
	assert.False(t, exists, "no chunk may be emitted for a failed build")
}

func TestCompilation_ParseErrorInDependency(t *testing.T) {
	fs := writeTree(t, map[string]string{
		"/proj/index.js":  "require('./broken');\n",
		"/proj/broken.js": "function (",
	})

	_, err := newTestBundler(t, fs).Compile(context.Background(), []Entry{{Context: "/proj", Request: "./index.js", Name: "main"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParse))
}

func TestCompilation_EntryValidation(t *testing.T) {
	fs := writeTree(t, map[string]string{"/proj/index.js": "1;\n"})
	ctx := context.Background()

	tests := []struct {
		name  string
		entry Entry
		want  error
	}{
		{"missing name", Entry{Context: "/proj", Request: "./index.js"}, ErrInvalidEntry},
		{"invalid name", Entry{Context: "/proj", Request: "./index.js", Name: "a/b"}, ErrInvalidEntry},
		{"missing context", Entry{Request: "./index.js", Name: "main"}, ErrInvalidEntry},
		{"missing request", Entry{Context: "/proj", Name: "main"}, ErrInvalidEntry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestBundler(t, fs).NewCompilation()
			_, err := c.AddEntry(ctx, tt.entry)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCompilation_Lifecycle(t *testing.T) {
	fs := writeTree(t, map[string]string{"/proj/index.js": "1;\n"})
	ctx := context.Background()
	entry := Entry{Context: "/proj", Request: "./index.js", Name: "main"}

	t.Run("duplicate entry", func(t *testing.T) {
		c := newTestBundler(t, fs).NewCompilation()
		_, err := c.AddEntry(ctx, entry)
		require.NoError(t, err)
		_, err = c.AddEntry(ctx, entry)
		assert.ErrorIs(t, err, ErrDuplicateEntry)
	})

	t.Run("no entries", func(t *testing.T) {
		c := newTestBundler(t, fs).NewCompilation()
		assert.ErrorIs(t, c.Seal(ctx), ErrNoEntries)
		assert.ErrorIs(t, c.Build(ctx, nil), ErrNoEntries)
	})

	t.Run("sealed", func(t *testing.T) {
		c := newTestBundler(t, fs).NewCompilation()
		_, err := c.AddEntry(ctx, entry)
		require.NoError(t, err)
		require.NoError(t, c.Seal(ctx))
		assert.True(t, c.Sealed())

		_, err = c.AddEntry(ctx, Entry{Context: "/proj", Request: "./index.js", Name: "other"})
		assert.ErrorIs(t, err, ErrSealed)
		assert.ErrorIs(t, c.Seal(ctx), ErrSealed)
	})

	t.Run("failed build", func(t *testing.T) {
		c := newTestBundler(t, fs).NewCompilation()
		_, err := c.AddEntry(ctx, Entry{Context: "/proj", Request: "./nope.js", Name: "main"})
		require.ErrorIs(t, err, ErrIO)

		_, err = c.AddEntry(ctx, Entry{Context: "/proj", Request: "./index.js", Name: "other"})
		assert.ErrorIs(t, err, ErrBuildFailed)

		err = c.Seal(ctx)
		assert.ErrorIs(t, err, ErrBuildFailed)
		assert.ErrorIs(t, err, ErrIO)
	})

	t.Run("emit before seal", func(t *testing.T) {
		c := newTestBundler(t, fs).NewCompilation()
		_, err := c.Emit(ctx, "/out")
		assert.Error(t, err)
	})
}

func TestCompilation_ConcurrencyLimit(t *testing.T) {
	files := map[string]string{}
	index := ""
	for i := 0; i < 20; i++ {
		index += fmt.Sprintf("require('./m%d');\n", i)
		files[fmt.Sprintf("/proj/m%d.js", i)] = fmt.Sprintf("require('./leaf');\nmodule.exports = %d;\n", i)
	}
	files["/proj/index.js"] = index
	files["/proj/leaf.js"] = "module.exports = 0;\n"

	for _, limit := range []int{1, 2, 0} {
		t.Run(fmt.Sprintf("limit=%d", limit), func(t *testing.T) {
			c := compile(t, writeTree(t, files), []Entry{{Context: "/proj", Request: "./index.js", Name: "main"}}, WithMaxConcurrency(limit))
			mods := c.Chunks()[0].Modules
			assert.Len(t, mods, 22)
			assert.Equal(t, "./m0.js", mods[1].ID.String())
			assert.Equal(t, "./leaf.js", mods[2].ID.String())
		})
	}
}

func TestCompilation_Cancelled(t *testing.T) {
	fs := writeTree(t, map[string]string{"/proj/index.js": "1;\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestBundler(t, fs).Compile(ctx, []Entry{{Context: "/proj", Request: "./index.js", Name: "main"}})
	assert.ErrorIs(t, err, context.Canceled)
}
