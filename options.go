package gopack

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"runtime"
	"strings"

	"github.com/spf13/afero"

	"github.com/albertocavalcante/gopack/jsast"
)

// DefaultExtension is appended to requests without one and to chunk files.
const DefaultExtension = ".js"

// DefaultCacheSize is the capacity used by WithCacheSize(0).
const DefaultCacheSize = 512

// Option configures a Bundler.
type Option func(*bundlerConfig) error

// bundlerConfig holds all bundler configuration.
type bundlerConfig struct {
	fs             afero.Fs
	extension      string
	runtimeName    string
	cache          ModuleCache
	hooks          *Hooks
	maxConcurrency int
	onProgress     func(ProgressEvent)

	// logger is the structured logger for debug/info output.
	// If nil, logging is disabled (silent mode).
	logger *slog.Logger
}

// DefaultOptions returns the options used by the gopack command line.
func DefaultOptions() []Option {
	return []Option{
		WithExtension(DefaultExtension),
		WithRuntimeName(jsast.DefaultRuntimeName),
		WithCacheSize(DefaultCacheSize),
		WithMaxConcurrency(runtime.GOMAXPROCS(0) * 4),
	}
}

// WithFS sets the file system modules are read from and assets written to.
// Defaults to the operating system file system.
func WithFS(fs afero.Fs) Option {
	return func(c *bundlerConfig) error {
		if fs == nil {
			return fmt.Errorf("%w: nil file system", ErrInvalidOption)
		}
		c.fs = fs
		return nil
	}
}

// WithExtension sets the default extension, including the leading dot.
func WithExtension(ext string) Option {
	return func(c *bundlerConfig) error {
		c.extension = ext
		return nil
	}
}

// WithRuntimeName sets the identifier require calls are rewritten to and
// the loader function defined by the runtime template.
func WithRuntimeName(name string) Option {
	return func(c *bundlerConfig) error {
		c.runtimeName = name
		return nil
	}
}

// WithCache sets a cache for built modules. Entries are keyed by a digest of
// the module's source and resolution inputs, so a cache may be shared
// across bundlers and builds.
func WithCache(cache ModuleCache) Option {
	return func(c *bundlerConfig) error {
		c.cache = cache
		return nil
	}
}

// WithCacheSize installs an in-memory LRU module cache holding up to n
// modules. Zero selects DefaultCacheSize.
func WithCacheSize(n int) Option {
	return func(c *bundlerConfig) error {
		if n == 0 {
			n = DefaultCacheSize
		}
		cache, err := NewLRUCache(n)
		if err != nil {
			return err
		}
		c.cache = cache
		return nil
	}
}

// WithHooks sets the lifecycle hooks run by every build.
func WithHooks(h *Hooks) Option {
	return func(c *bundlerConfig) error {
		c.hooks = h
		return nil
	}
}

// WithMaxConcurrency bounds how many modules are read and parsed at once.
// Zero means unbounded.
func WithMaxConcurrency(n int) Option {
	return func(c *bundlerConfig) error {
		c.maxConcurrency = n
		return nil
	}
}

// WithProgress sets a callback for build progress events.
func WithProgress(fn func(ProgressEvent)) Option {
	return func(c *bundlerConfig) error {
		c.onProgress = fn
		return nil
	}
}

// WithLogger sets a structured logger for build diagnostics.
// If not set, logging is disabled (silent mode).
//
// Example:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, nil)).With("component", "gopack")
//	b, err := gopack.New(gopack.WithLogger(logger))
func WithLogger(l *slog.Logger) Option {
	return func(c *bundlerConfig) error {
		c.logger = l
		return nil
	}
}

var identRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// validate checks the configuration for logical consistency.
func (c *bundlerConfig) validate() error {
	if !strings.HasPrefix(c.extension, ".") || len(c.extension) < 2 || strings.ContainsAny(c.extension, `/\`) {
		return fmt.Errorf("%w: extension %q must start with a dot", ErrInvalidOption, c.extension)
	}
	if !identRe.MatchString(c.runtimeName) {
		return fmt.Errorf("%w: runtime name %q is not an identifier", ErrInvalidOption, c.runtimeName)
	}
	if c.runtimeName == jsast.DefaultImportName {
		return fmt.Errorf("%w: runtime name must differ from %q", ErrInvalidOption, jsast.DefaultImportName)
	}
	if c.maxConcurrency < 0 {
		return fmt.Errorf("%w: max concurrency must not be negative", ErrInvalidOption)
	}
	return nil
}

// log returns the configured logger, or a no-op logger if none was set.
func (c *bundlerConfig) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.New(discardHandler{})
}

func (c *bundlerConfig) progress(ev ProgressEvent) {
	if c.onProgress != nil {
		c.onProgress(ev)
	}
}

// discardHandler is a slog.Handler that discards all log records.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// newBundlerConfig creates a configuration by applying the given options
// over the defaults and validating the result.
func newBundlerConfig(opts ...Option) (*bundlerConfig, error) {
	c := &bundlerConfig{
		fs:          afero.NewOsFs(),
		extension:   DefaultExtension,
		runtimeName: jsast.DefaultRuntimeName,
		cache:       NoopCache{},
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.cache == nil {
		c.cache = NoopCache{}
	}
	if c.hooks == nil {
		c.hooks = &Hooks{}
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}
