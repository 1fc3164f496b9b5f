package gopack

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/albertocavalcante/gopack/jsast"
)

// writeTree writes files into a fresh in-memory file system.
func writeTree(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	return fs
}

func newTestBundler(t *testing.T, fs afero.Fs, opts ...Option) *Bundler {
	t.Helper()
	b, err := New(append([]Option{WithFS(fs)}, opts...)...)
	require.NoError(t, err)
	return b
}

func compile(t *testing.T, fs afero.Fs, entries []Entry, opts ...Option) *Compilation {
	t.Helper()
	c, err := newTestBundler(t, fs, opts...).Compile(context.Background(), entries)
	require.NoError(t, err)
	return c
}

// factoryCount counts the registry entries for id in a rendered chunk.
func factoryCount(src, id string) int {
	return strings.Count(src, jsast.Quote(id)+": function (module, exports, ")
}

// failingWriteFs fails every write to a file whose base name is in fail.
type failingWriteFs struct {
	afero.Fs
	fail map[string]bool
}

func (f failingWriteFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	for base := range f.fail {
		if strings.HasSuffix(name, base) && flag&(os.O_WRONLY|os.O_RDWR) != 0 {
			return nil, os.ErrPermission
		}
	}
	return f.Fs.OpenFile(name, flag, perm)
}
