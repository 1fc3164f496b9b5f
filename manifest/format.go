package manifest

import (
	"github.com/bazelbuild/buildtools/build"

	"github.com/albertocavalcante/gopack/internal/buildutil"
)

// Generate renders a manifest declaring bundle and entries, formatted the way
// buildifier formats BUILD files. Empty attributes are omitted.
func Generate(bundle BundleDecl, entries []EntryDecl) []byte {
	f := &build.File{
		Path: DefaultFilename,
		Type: build.TypeBuild,
	}

	var bundleArgs []build.Expr
	for _, kv := range [][2]string{
		{"output", bundle.Output},
		{"extension", bundle.Extension},
		{"runtime_name", bundle.RuntimeName},
	} {
		if kv[1] != "" {
			bundleArgs = append(bundleArgs, buildutil.StringAssign(kv[0], kv[1]))
		}
	}
	f.Stmt = append(f.Stmt, buildutil.Call("bundle", bundleArgs...))

	for _, e := range entries {
		args := []build.Expr{
			buildutil.StringAssign("name", e.Name.String()),
			buildutil.StringAssign("path", e.Path),
		}
		if e.Context != "" {
			args = append(args, buildutil.StringAssign("context", e.Context))
		}
		f.Stmt = append(f.Stmt, buildutil.Call("entry", args...))
	}
	return build.Format(f)
}
