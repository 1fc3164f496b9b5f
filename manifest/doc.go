// Package manifest parses bundle manifests.
//
// A manifest is a Starlark file, conventionally named BUNDLE.bazel, that
// declares where bundles are written and which entries to build:
//
//	bundle(
//	    output = "dist",
//	    extension = ".js",
//	)
//
//	entry(name = "main", path = "./src/index.js")
//	entry(name = "admin", path = "./admin.js", context = "admin")
//
// Paths are relative to the directory holding the manifest. The optional
// context of an entry selects the directory its module ids are computed
// against and defaults to the manifest directory.
//
// Parsing never executes the file. Unknown calls are reported as warnings
// and malformed declarations as errors, both carrying source positions.
package manifest
