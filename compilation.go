package gopack

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/albertocavalcante/gopack/label"
)

// moduleKey identifies a module in the graph. The same resource reached from
// two entries yields two modules, one per affinity.
type moduleKey struct {
	id       label.ModuleID
	affinity label.Name
}

// moduleSlot is claimed in the visited set before its module is built.
// module stays nil until the claimer finishes.
type moduleSlot struct {
	module atomic.Pointer[Module]
}

// Compilation is the state of one build: the declared entries, the module
// graph and, once sealed, the chunks and rendered assets.
//
// Entries may be added concurrently. Seal waits for entries still building,
// then freezes the graph; after that the compilation is read-only.
type Compilation struct {
	cfg      *bundlerConfig
	resolver *Resolver
	builder  *ModuleBuilder
	sem      chan struct{}

	modules sync.Map // moduleKey -> *moduleSlot

	mu       sync.Mutex
	inflight sync.WaitGroup
	entries  []*Module
	names    map[string]struct{}
	sealed   bool
	err      error
	chunks   []*Chunk
	assets   map[string]string
}

func newCompilation(cfg *bundlerConfig, resolver *Resolver, builder *ModuleBuilder) *Compilation {
	c := &Compilation{
		cfg:      cfg,
		resolver: resolver,
		builder:  builder,
		names:    make(map[string]struct{}),
		assets:   make(map[string]string),
	}
	if cfg.maxConcurrency > 0 {
		c.sem = make(chan struct{}, cfg.maxConcurrency)
	}
	return c
}

// Build runs the before-build hooks and adds every entry, building the
// entries concurrently. Entries are reserved in declaration order before any
// build starts, so chunk order follows the order of entries. It returns the
// first failure.
func (c *Compilation) Build(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return ErrNoEntries
	}
	c.cfg.hooks.callBeforeBuild(c)

	pending := make([]pendingEntry, 0, len(entries))
	for _, e := range entries {
		p, err := c.prepareEntry(e)
		if err != nil {
			for range pending {
				c.inflight.Done()
			}
			if errors.Is(err, ErrSealed) {
				return err
			}
			return c.fail(err)
		}
		pending = append(pending, p)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range pending {
		g.Go(func() error {
			_, err := c.buildEntry(gctx, p)
			return err
		})
	}
	return g.Wait()
}

// pendingEntry is an entry whose name and position are reserved.
type pendingEntry struct {
	idx   int
	name  label.Name
	entry Entry
}

// AddEntry resolves and builds the entry module and, transitively, every
// module it reaches, all carrying the entry's name as affinity. It returns
// once the whole closure is built or the first failure occurred. Entries
// added by concurrent calls are ordered by when their names were reserved.
func (c *Compilation) AddEntry(ctx context.Context, e Entry) (*Module, error) {
	p, err := c.prepareEntry(e)
	if err != nil {
		return nil, err
	}
	return c.buildEntry(ctx, p)
}

// prepareEntry validates e and reserves its name and position. A successful
// reservation must be followed by buildEntry or an inflight.Done.
func (c *Compilation) prepareEntry(e Entry) (pendingEntry, error) {
	name, err := label.NewName(e.Name)
	if err != nil {
		return pendingEntry{}, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	if e.Context == "" {
		return pendingEntry{}, fmt.Errorf("%w: entry %q has no context", ErrInvalidEntry, e.Name)
	}
	if e.Request == "" {
		return pendingEntry{}, fmt.Errorf("%w: entry %q has no request", ErrInvalidEntry, e.Name)
	}

	idx, err := c.reserveEntry(name.String())
	if err != nil {
		return pendingEntry{}, err
	}
	return pendingEntry{idx: idx, name: name, entry: e}, nil
}

func (c *Compilation) buildEntry(ctx context.Context, p pendingEntry) (*Module, error) {
	defer c.inflight.Done()
	name, e := p.name, p.entry

	dir := filepath.Clean(e.Context)
	c.cfg.log().Debug("adding entry", "entry", name.String(), "context", dir, "request", e.Request)

	resource, id, err := c.resolver.ResolveEntry(dir, e.Request)
	if err != nil {
		return nil, c.fail(err)
	}
	spec := Dependency{
		Request:  e.Request,
		ID:       id,
		Resource: resource,
		Context:  dir,
		Affinity: name,
	}
	if err := c.buildModule(ctx, spec); err != nil {
		return nil, c.fail(fmt.Errorf("build entry %s: %w", name, err))
	}

	m, ok := c.Module(id, name)
	if !ok {
		return nil, c.fail(fmt.Errorf("build entry %s: module %s missing after build", name, id))
	}

	c.mu.Lock()
	c.entries[p.idx] = m
	c.mu.Unlock()
	return m, nil
}

// reserveEntry claims the entry name and its position in declaration order.
func (c *Compilation) reserveEntry(name string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sealed {
		return 0, ErrSealed
	}
	if c.err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildFailed, c.err)
	}
	if _, dup := c.names[name]; dup {
		return 0, fmt.Errorf("%w: %q", ErrDuplicateEntry, name)
	}
	c.names[name] = struct{}{}
	c.entries = append(c.entries, nil)
	c.inflight.Add(1)
	return len(c.entries) - 1, nil
}

// fail records the first build failure and returns err.
func (c *Compilation) fail(err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		c.err = err
	}
	return err
}

// buildModule builds the module spec names unless another builder already
// claimed it, then fans out over its dependencies and joins them.
//
// Only the claimer builds a module, and a builder that loses the claim
// returns immediately instead of waiting. A module is therefore never built
// twice and cycles cannot deadlock; because every claimer runs inside the
// entry's tree of joins, the entry-level join still covers the whole closure.
func (c *Compilation) buildModule(ctx context.Context, spec Dependency) error {
	slot := &moduleSlot{}
	if _, claimed := c.modules.LoadOrStore(moduleKey{spec.ID, spec.Affinity}, slot); claimed {
		return nil
	}

	m, err := c.buildOne(ctx, spec)
	if err != nil {
		return err
	}
	slot.module.Store(m)
	c.cfg.hooks.callAfterModule(m)

	if len(m.Dependencies) == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, dep := range m.Dependencies {
		g.Go(func() error {
			return c.buildModule(gctx, dep)
		})
	}
	return g.Wait()
}

// buildOne runs the module builder while holding a concurrency slot.
// The slot is released before any join, so nesting cannot exhaust the limit.
func (c *Compilation) buildOne(ctx context.Context, spec Dependency) (*Module, error) {
	if c.sem != nil {
		select {
		case c.sem <- struct{}{}:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		defer func() { <-c.sem }()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ev := ProgressEvent{Entry: spec.Affinity.String(), ModuleID: spec.ID.String()}
	ev.Type = ProgressModuleStart
	c.cfg.progress(ev)

	m, err := c.builder.Build(ctx, spec)
	if err != nil {
		return nil, err
	}

	c.cfg.log().Debug("module built",
		"id", m.ID.String(),
		"affinity", m.Affinity.String(),
		"deps", len(m.Dependencies))
	ev.Type = ProgressModuleDone
	c.cfg.progress(ev)
	return m, nil
}

// Module returns the built module for id under affinity.
func (c *Compilation) Module(id label.ModuleID, affinity label.Name) (*Module, bool) {
	v, ok := c.modules.Load(moduleKey{id, affinity})
	if !ok {
		return nil, false
	}
	m := v.(*moduleSlot).module.Load()
	return m, m != nil
}

// Entries returns the built entry modules in declaration order.
func (c *Compilation) Entries() []*Module {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Module, 0, len(c.entries))
	for _, m := range c.entries {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

// Modules returns every built module, ordered by affinity then id.
func (c *Compilation) Modules() []*Module {
	var out []*Module
	c.modules.Range(func(_, v any) bool {
		if m := v.(*moduleSlot).module.Load(); m != nil {
			out = append(out, m)
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		if a, b := out[i].Affinity.String(), out[j].Affinity.String(); a != b {
			return a < b
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// Closure returns the modules reachable from entry, in first-visit order of
// a depth-first walk: the entry first, then each dependency in extraction
// order. The order does not depend on how the concurrent build was scheduled.
func (c *Compilation) Closure(entry *Module) []*Module {
	seen := make(map[label.ModuleID]bool)
	var out []*Module
	var visit func(m *Module)
	visit = func(m *Module) {
		if seen[m.ID] {
			return
		}
		seen[m.ID] = true
		out = append(out, m)
		for _, dep := range m.Dependencies {
			if dm, ok := c.Module(dep.ID, m.Affinity); ok {
				visit(dm)
			}
		}
	}
	visit(entry)
	return out
}

// Sealed reports whether the compilation no longer accepts entries.
func (c *Compilation) Sealed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sealed
}

// Chunks returns the sealed chunks in entry declaration order.
func (c *Compilation) Chunks() []*Chunk {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Chunk(nil), c.chunks...)
}

// Assets returns the rendered assets keyed by file name.
func (c *Compilation) Assets() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.assets))
	for k, v := range c.assets {
		out[k] = v
	}
	return out
}
