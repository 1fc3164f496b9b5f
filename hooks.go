package gopack

import "sync"

// Hooks holds the lifecycle listeners of a bundler. Each stage keeps an
// ordered list of named taps, invoked in registration order. Listeners
// observe the build; nothing they return is consumed.
//
// Stages, in the order they fire:
//
//	BeforeBuild  once, before any entry is built
//	AfterModule  after each module is built, from builder goroutines
//	BeforeSeal   once, after the graph converged
//	AfterSeal    once, after every chunk was rendered
//	Emit         once, before assets are written
//	Done         once, with the final result
//
// Hooks is safe for concurrent use; taps may be added while a build runs but
// only affect stages that fire afterwards.
type Hooks struct {
	beforeBuild tapList[func(*Compilation)]
	afterModule tapList[func(*Module)]
	beforeSeal  tapList[func(*Compilation)]
	afterSeal   tapList[func(*Compilation)]
	emit        tapList[func(*Compilation)]
	done        tapList[func(*Result)]
}

// Tap is a named listener.
type Tap[F any] struct {
	Name string
	Fn   F
}

type tapList[F any] struct {
	mu   sync.RWMutex
	taps []Tap[F]
}

func (l *tapList[F]) add(name string, fn F) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.taps = append(l.taps, Tap[F]{Name: name, Fn: fn})
}

func (l *tapList[F]) snapshot() []Tap[F] {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Tap[F](nil), l.taps...)
}

func (l *tapList[F]) names() []string {
	taps := l.snapshot()
	names := make([]string, len(taps))
	for i, t := range taps {
		names[i] = t.Name
	}
	return names
}

// OnBeforeBuild registers fn to run before the graph is built.
func (h *Hooks) OnBeforeBuild(name string, fn func(*Compilation)) {
	h.beforeBuild.add(name, fn)
}

// OnAfterModule registers fn to run after each module is built. fn is called
// concurrently and must be safe for that.
func (h *Hooks) OnAfterModule(name string, fn func(*Module)) {
	h.afterModule.add(name, fn)
}

// OnBeforeSeal registers fn to run before chunks are assembled.
func (h *Hooks) OnBeforeSeal(name string, fn func(*Compilation)) {
	h.beforeSeal.add(name, fn)
}

// OnAfterSeal registers fn to run after chunks are rendered.
func (h *Hooks) OnAfterSeal(name string, fn func(*Compilation)) {
	h.afterSeal.add(name, fn)
}

// OnEmit registers fn to run before assets are written.
func (h *Hooks) OnEmit(name string, fn func(*Compilation)) {
	h.emit.add(name, fn)
}

// OnDone registers fn to run after a build finished successfully.
func (h *Hooks) OnDone(name string, fn func(*Result)) {
	h.done.add(name, fn)
}

// Taps returns the tap names registered for stage, in invocation order.
// Unknown stages have no taps.
func (h *Hooks) Taps(stage string) []string {
	switch stage {
	case "before_build":
		return h.beforeBuild.names()
	case "after_module":
		return h.afterModule.names()
	case "before_seal":
		return h.beforeSeal.names()
	case "after_seal":
		return h.afterSeal.names()
	case "emit":
		return h.emit.names()
	case "done":
		return h.done.names()
	}
	return nil
}

func (h *Hooks) callBeforeBuild(c *Compilation) {
	for _, t := range h.beforeBuild.snapshot() {
		t.Fn(c)
	}
}

func (h *Hooks) callAfterModule(m *Module) {
	for _, t := range h.afterModule.snapshot() {
		t.Fn(m)
	}
}

func (h *Hooks) callBeforeSeal(c *Compilation) {
	for _, t := range h.beforeSeal.snapshot() {
		t.Fn(c)
	}
}

func (h *Hooks) callAfterSeal(c *Compilation) {
	for _, t := range h.afterSeal.snapshot() {
		t.Fn(c)
	}
}

func (h *Hooks) callEmit(c *Compilation) {
	for _, t := range h.emit.snapshot() {
		t.Fn(c)
	}
}

func (h *Hooks) callDone(r *Result) {
	for _, t := range h.done.snapshot() {
		t.Fn(r)
	}
}
