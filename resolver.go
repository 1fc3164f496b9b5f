package gopack

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/albertocavalcante/gopack/label"
)

// Resolver maps raw requests onto resource paths and module ids.
//
// Dependency requests follow a single convention: the basename of the
// request, with the default extension appended when it has none, joined onto
// the directory of the referring module. There is no package lookup and no
// directory index resolution. Whether the resource exists is checked when it
// is loaded, not here.
type Resolver struct {
	extension string
}

// NewResolver creates a resolver appending ext to extensionless requests.
func NewResolver(ext string) *Resolver {
	if ext == "" {
		ext = DefaultExtension
	}
	return &Resolver{extension: ext}
}

// Extension returns the default extension.
func (r *Resolver) Extension() string {
	return r.extension
}

// ResolveEntry resolves an entry request. Unlike dependency requests, the
// whole request path is joined onto context.
func (r *Resolver) ResolveEntry(context, request string) (string, label.ModuleID, error) {
	if request == "" {
		return "", label.ModuleID{}, &ResolutionError{Request: request, From: context, Context: context, Err: errors.New("empty request")}
	}
	resource := filepath.FromSlash(request)
	if !filepath.IsAbs(resource) {
		resource = filepath.Join(context, resource)
	}
	resource = r.withExtension(filepath.Clean(resource))
	return r.identify(request, context, context, resource)
}

// Resolve resolves request, found in a module located in baseDir, under the
// resolution context of the module's entry.
func (r *Resolver) Resolve(baseDir, request, context string) (string, label.ModuleID, error) {
	base := filepath.Base(filepath.FromSlash(request))
	switch base {
	case ".", "..", string(filepath.Separator):
		return "", label.ModuleID{}, &ResolutionError{Request: request, From: baseDir, Context: context, Err: errors.New("request does not name a file")}
	}
	resource := filepath.Join(baseDir, r.withExtension(base))
	return r.identify(request, baseDir, context, resource)
}

func (r *Resolver) withExtension(p string) string {
	if filepath.Ext(p) == "" {
		return p + r.extension
	}
	return p
}

func (r *Resolver) identify(request, from, context, resource string) (string, label.ModuleID, error) {
	id, err := label.ModuleIDFromPaths(context, resource)
	if err != nil {
		return "", label.ModuleID{}, &ResolutionError{
			Request: request,
			From:    from,
			Context: context,
			Err:     fmt.Errorf("derive module id: %w", err),
		}
	}
	return resource, id, nil
}
