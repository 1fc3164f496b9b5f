package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := NewLoader().Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output: out\nconcurrency: 3\nlog-level: debug\n"), 0o644))

	l := NewLoader()
	cfg, err := l.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.Output)
	assert.Equal(t, 3, cfg.Concurrency)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "BUNDLE.bazel", cfg.Manifest)
	assert.Equal(t, path, l.ConfigFileUsed())
}

func TestLoad_ImplicitConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gopack.json"), []byte(`{"manifest": "app/BUNDLE.bazel"}`), 0o644))
	t.Chdir(dir)

	cfg, err := NewLoader().Load("")
	require.NoError(t, err)
	assert.Equal(t, "app/BUNDLE.bazel", cfg.Manifest)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := NewLoader().Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "read config")
}

func TestLoad_Env(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GOPACK_OUTPUT", "from-env")
	t.Setenv("GOPACK_RUNTIME_NAME", "__r")

	cfg, err := NewLoader().Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Output)
	assert.Equal(t, "__r", cfg.RuntimeName)
}

func TestLoad_FlagsWin(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GOPACK_OUTPUT", "from-env")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String(KeyOutput, "", "")
	fs.Int(KeyConcurrency, 0, "")
	fs.Bool("unrelated", false, "")
	require.NoError(t, fs.Parse([]string{"--output", "from-flag", "--concurrency", "2"}))

	l := NewLoader()
	require.NoError(t, l.BindFlags(fs))
	cfg, err := l.Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.Output)
	assert.Equal(t, 2, cfg.Concurrency)
}

func TestLoad_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())

	tests := []struct {
		name string
		env  string
		val  string
	}{
		{"negative concurrency", "GOPACK_CONCURRENCY", "-1"},
		{"negative cache size", "GOPACK_CACHE_SIZE", "-5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.val)
			_, err := NewLoader().Load("")
			assert.Error(t, err)
		})
	}
}
