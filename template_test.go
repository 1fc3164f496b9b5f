package gopack

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertocavalcante/gopack/label"
)

func TestRenderChunk(t *testing.T) {
	chunk := &Chunk{
		Name:    label.MustName("main"),
		EntryID: label.MustModuleID("./index.js"),
		File:    "main.js",
		Modules: []*Module{
			{ID: label.MustModuleID("./index.js"), Source: "var t = __pack_require__(\"./title.js\");\n"},
			{ID: label.MustModuleID("./title.js"), Source: "module.exports = 'hi'; // trailing comment"},
		},
	}

	src, err := renderChunk(chunk, "__pack_require__")
	require.NoError(t, err)

	want := `(function (modules) {
	var installedModules = {};

	function __pack_require__(moduleId) {
		if (Object.prototype.hasOwnProperty.call(installedModules, moduleId)) {
			return installedModules[moduleId].exports;
		}
		if (!Object.prototype.hasOwnProperty.call(modules, moduleId)) {
			throw new Error("Cannot find module '" + moduleId + "'");
		}
		var module = installedModules[moduleId] = {
			id: moduleId,
			loaded: false,
			exports: {}
		};
		modules[moduleId].call(module.exports, module, module.exports, __pack_require__);
		module.loaded = true;
		return module.exports;
	}

	return __pack_require__("./index.js");
})({
"./index.js": function (module, exports, __pack_require__) {
var t = __pack_require__("./title.js");
},
"./title.js": function (module, exports, __pack_require__) {
module.exports = 'hi'; // trailing comment
}
});
`
	assert.Equal(t, want, src)
}

func TestRenderChunk_RuntimeName(t *testing.T) {
	chunk := &Chunk{
		EntryID: label.MustModuleID("./a.js"),
		Modules: []*Module{{ID: label.MustModuleID("./a.js"), Source: "1;"}},
	}

	src, err := renderChunk(chunk, "__load")
	require.NoError(t, err)
	assert.Contains(t, src, "function __load(moduleId) {")
	assert.Contains(t, src, "return __load(\"./a.js\");")
	assert.Contains(t, src, "function (module, exports, __load) {")
	assert.NotContains(t, src, "__pack_require__")
}

func TestRenderChunk_QuotesIDs(t *testing.T) {
	id := label.MustModuleID(`./we"ird.js`)
	chunk := &Chunk{
		EntryID: id,
		Modules: []*Module{{ID: id, Source: "1;"}},
	}

	src, err := renderChunk(chunk, "__pack_require__")
	require.NoError(t, err)
	assert.Contains(t, src, `"./we\"ird.js": function`)
	assert.Equal(t, 2, strings.Count(src, `"./we\"ird.js"`))
}
