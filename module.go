package gopack

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/albertocavalcante/gopack/jsast"
)

// ModuleBuilder builds a single module: it loads the resource, extracts and
// rewrites its references and resolves each of them. It knows nothing about
// the rest of the graph.
type ModuleBuilder struct {
	fs        afero.Fs
	resolver  *Resolver
	extractor *jsast.Extractor
	cache     ModuleCache
	logger    *slog.Logger
}

// NewModuleBuilder creates a module builder reading from fs.
// A nil cache disables caching and a nil logger disables logging.
func NewModuleBuilder(fs afero.Fs, resolver *Resolver, extractor *jsast.Extractor, cache ModuleCache, logger *slog.Logger) *ModuleBuilder {
	if cache == nil {
		cache = NoopCache{}
	}
	if logger == nil {
		logger = slog.New(discardHandler{})
	}
	return &ModuleBuilder{
		fs:        fs,
		resolver:  resolver,
		extractor: extractor,
		cache:     cache,
		logger:    logger,
	}
}

// Build builds the module spec describes. It fails with *IOError when the
// resource cannot be read, *ParseError when it is malformed and
// *ResolutionError when one of its references cannot be resolved.
func (b *ModuleBuilder) Build(ctx context.Context, spec Dependency) (*Module, error) {
	src, err := afero.ReadFile(b.fs, spec.Resource)
	if err != nil {
		return nil, &IOError{Op: "read", Path: spec.Resource, Err: err}
	}

	key := b.cacheKey(spec, src)
	if m, ok := b.cachedModule(ctx, key); ok {
		return m, nil
	}

	tree, err := jsast.Parse(ctx, spec.Resource, src)
	if err != nil {
		var synErr *jsast.SyntaxError
		if errors.As(err, &synErr) {
			return nil, &ParseError{
				Path:    spec.Resource,
				Line:    synErr.Line,
				Column:  synErr.Column,
				Message: "syntax error near " + synErr.Snippet,
				Err:     err,
			}
		}
		return nil, err
	}
	defer tree.Close()

	refs := b.extractor.ExtractAndRewrite(tree)
	deps := make([]Dependency, 0, len(refs))
	baseDir := filepath.Dir(spec.Resource)
	for _, ref := range refs {
		resource, id, err := b.resolver.Resolve(baseDir, ref.Request, spec.Context)
		if err != nil {
			return nil, err
		}
		tree.Rewrite(ref, id.String())
		deps = append(deps, Dependency{
			Request:  ref.Request,
			ID:       id,
			Resource: resource,
			Context:  spec.Context,
			Affinity: spec.Affinity,
		})
	}

	m := &Module{
		ID:           spec.ID,
		Affinity:     spec.Affinity,
		Context:      spec.Context,
		Request:      spec.Request,
		Resource:     spec.Resource,
		Original:     string(src),
		Source:       tree.Print(),
		Dependencies: deps,
	}

	if err := b.cache.Put(ctx, key, m); err != nil {
		b.logger.Warn("module cache put failed", "id", spec.ID.String(), "error", err)
	}
	return m, nil
}

// cachedModule consults the cache. Cache failures are logged and treated as
// misses so a broken cache never fails a build.
func (b *ModuleBuilder) cachedModule(ctx context.Context, key string) (*Module, bool) {
	m, ok, err := b.cache.Get(ctx, key)
	if err != nil {
		b.logger.Warn("module cache get failed", "error", err)
		return nil, false
	}
	if ok && m != nil {
		b.logger.Debug("module cache hit", "id", m.ID.String(), "affinity", m.Affinity.String())
		return m, true
	}
	return nil, false
}

// cacheKey digests every input the built module depends on.
func (b *ModuleBuilder) cacheKey(spec Dependency, src []byte) string {
	h := sha256.New()
	for _, s := range []string{
		spec.Context,
		spec.Resource,
		spec.Request,
		spec.ID.String(),
		spec.Affinity.String(),
		b.extractor.RuntimeName(),
		b.resolver.Extension(),
	} {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	h.Write(src)
	return hex.EncodeToString(h.Sum(nil))
}
