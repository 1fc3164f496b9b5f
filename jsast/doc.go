// Package jsast parses JavaScript modules and rewrites their require calls.
//
// It wraps github.com/smacker/go-tree-sitter with the small surface a bundler
// needs: [Parse] turns source text into a [Tree], an [Extractor] finds
// require("...") call expressions whose sole argument is a string literal and
// redirects them to the runtime loader, [Tree.Rewrite] fills in the resolved
// module id, and [Tree.Print] serializes the edited source.
//
// Printing is edit based: untouched bytes are copied verbatim from the input,
// so formatting and comments survive and the output is byte-for-byte
// deterministic for a given input.
//
// # Usage
//
//	tree, err := jsast.Parse(ctx, "src/index.js", src)
//	if err != nil {
//	    return err
//	}
//	defer tree.Close()
//
//	ex := jsast.NewExtractor()
//	for _, ref := range ex.ExtractAndRewrite(tree) {
//	    tree.Rewrite(ref, resolve(ref.Request))
//	}
//	out := tree.Print()
package jsast
