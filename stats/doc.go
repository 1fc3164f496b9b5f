// Package stats records what a build produced.
//
// A Stats report lists every emitted asset with its size and SHA-256 digest,
// the module ids of every chunk and aggregate counts. Reports serialize to
// deterministic JSON, so two builds of unchanged sources produce identical
// reports apart from the recorded duration, and Diff compares two reports:
//
//	st := stats.FromResult(result)
//	_ = st.WriteFile(fs, "dist/stats.json")
//
//	old, _ := stats.ReadFile(fs, "previous.json")
//	d := stats.Diff(old, st)
//	fmt.Println(d.Summary())
package stats
