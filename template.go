package gopack

import (
	"strings"
	"text/template"

	"github.com/albertocavalcante/gopack/jsast"
)

// runtimeTemplate is the bootstrap every chunk is rendered into: a registry
// of module factories, a loader that executes each factory at most once and
// caches its exports, and a call of the loader on the entry module.
//
// The cache entry is installed before the factory runs, so a module required
// again while it is still executing (a cycle) observes its partial exports
// instead of running twice.
const runtimeTemplate = `(function (modules) {
	var installedModules = {};

	function {{ .Runtime }}(moduleId) {
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
		modules[moduleId].call(module.exports, module, module.exports, {{ .Runtime }});
		module.loaded = true;
		return module.exports;
	}

	return {{ .Runtime }}({{ quote .EntryID }});
})({
{{- range $i, $m := .Modules }}{{ if $i }},{{ end }}
{{ quote $m.ID }}: function (module, exports, {{ $.Runtime }}) {
{{ trimNewline $m.Source }}
}
{{- end }}
});
`

var chunkTemplate = template.Must(template.New("chunk").Funcs(template.FuncMap{
	"quote":       jsast.Quote,
	"trimNewline": func(s string) string { return strings.TrimRight(s, "\n") },
}).Parse(runtimeTemplate))

type chunkData struct {
	Runtime string
	EntryID string
	Modules []chunkModule
}

type chunkModule struct {
	ID     string
	Source string
}

// renderChunk renders the runtime bundle of chunk.
func renderChunk(chunk *Chunk, runtimeName string) (string, error) {
	data := chunkData{
		Runtime: runtimeName,
		EntryID: chunk.EntryID.String(),
		Modules: make([]chunkModule, len(chunk.Modules)),
	}
	for i, m := range chunk.Modules {
		data.Modules[i] = chunkModule{ID: m.ID.String(), Source: m.Source}
	}

	var sb strings.Builder
	if err := chunkTemplate.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

