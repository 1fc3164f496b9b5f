package stats

import (
	"fmt"
	"sort"
)

// AssetChange represents an added or removed asset.
type AssetChange struct {
	File string `json:"file"`
	Size int    `json:"size"`
}

// AssetUpdate represents an asset whose content changed.
type AssetUpdate struct {
	File    string `json:"file"`
	OldSize int    `json:"old_size"`
	NewSize int    `json:"new_size"`
}

// SizeDelta returns NewSize - OldSize.
func (u AssetUpdate) SizeDelta() int {
	return u.NewSize - u.OldSize
}

// ModuleChange represents a module added to or removed from a chunk.
type ModuleChange struct {
	Chunk string `json:"chunk"`
	ID    string `json:"id"`
}

// BuildDiff describes the differences between two build reports.
//
// This is useful for:
//   - Reviewing how a source change affected the bundles
//   - CI checks that fail on unexpected bundle growth
type BuildDiff struct {
	// Added contains assets present in new but not in old.
	Added []AssetChange `json:"added,omitempty"`

	// Removed contains assets present in old but not in new.
	Removed []AssetChange `json:"removed,omitempty"`

	// Changed contains assets whose digest differs.
	Changed []AssetUpdate `json:"changed,omitempty"`

	// ModulesAdded contains chunk members present only in new.
	ModulesAdded []ModuleChange `json:"modules_added,omitempty"`

	// ModulesRemoved contains chunk members present only in old.
	ModulesRemoved []ModuleChange `json:"modules_removed,omitempty"`
}

// IsEmpty returns true if there are no differences between the reports.
func (d *BuildDiff) IsEmpty() bool {
	return d.TotalChanges() == 0
}

// TotalChanges returns the total number of asset and module changes.
func (d *BuildDiff) TotalChanges() int {
	return len(d.Added) + len(d.Removed) + len(d.Changed) + len(d.ModulesAdded) + len(d.ModulesRemoved)
}

// Summary returns a one-line description of the diff.
func (d *BuildDiff) Summary() string {
	if d.IsEmpty() {
		return "no changes"
	}
	return fmt.Sprintf("%d added, %d removed, %d changed assets; %d modules added, %d removed",
		len(d.Added), len(d.Removed), len(d.Changed), len(d.ModulesAdded), len(d.ModulesRemoved))
}

// Diff computes the difference between two reports. A nil report is treated
// as empty. Assets are compared by digest; durations are ignored. Results are
// sorted by file name, then chunk name and module id.
func Diff(old, new *Stats) *BuildDiff {
	if old == nil {
		old = New()
	}
	if new == nil {
		new = New()
	}
	diff := &BuildDiff{}

	for file, na := range new.Assets {
		oa, existed := old.Assets[file]
		switch {
		case !existed:
			diff.Added = append(diff.Added, AssetChange{File: file, Size: na.Size})
		case oa.SHA256 != na.SHA256 || oa.Size != na.Size:
			diff.Changed = append(diff.Changed, AssetUpdate{File: file, OldSize: oa.Size, NewSize: na.Size})
		}
	}
	for file, oa := range old.Assets {
		if _, exists := new.Assets[file]; !exists {
			diff.Removed = append(diff.Removed, AssetChange{File: file, Size: oa.Size})
		}
	}

	diff.ModulesAdded = moduleDelta(new.Chunks, old.Chunks)
	diff.ModulesRemoved = moduleDelta(old.Chunks, new.Chunks)

	sort.Slice(diff.Added, func(i, j int) bool { return diff.Added[i].File < diff.Added[j].File })
	sort.Slice(diff.Removed, func(i, j int) bool { return diff.Removed[i].File < diff.Removed[j].File })
	sort.Slice(diff.Changed, func(i, j int) bool { return diff.Changed[i].File < diff.Changed[j].File })
	return diff
}

// moduleDelta lists chunk members of a that b lacks.
func moduleDelta(a, b map[string]Chunk) []ModuleChange {
	var out []ModuleChange
	for name, chunk := range a {
		have := make(map[string]bool)
		for _, id := range b[name].Modules {
			have[id] = true
		}
		for _, id := range chunk.Modules {
			if !have[id] {
				out = append(out, ModuleChange{Chunk: name, ID: id})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Chunk != out[j].Chunk {
			return out[i].Chunk < out[j].Chunk
		}
		return out[i].ID < out[j].ID
	})
	return out
}
