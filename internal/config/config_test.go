package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 32, cfg.Preprocessor.MaxIncludeDepth)
	assert.Equal(t, 256, cfg.Preprocessor.MaxCallDepth)
	assert.Equal(t, "info", cfg.Diagnostics.LogLevel)
	assert.Empty(t, cfg.Preprocessor.SystemIncludeDirs)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	src := `
[preprocessor]
system_include_dirs = ["/usr/include/ruc"]
defines = ["DEBUG", "LIMIT=64"]
max_include_depth = 8

[diagnostics]
log_level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"/usr/include/ruc"}, cfg.Preprocessor.SystemIncludeDirs)
	assert.Equal(t, []string{"DEBUG", "LIMIT=64"}, cfg.Preprocessor.Defines)
	assert.Equal(t, 8, cfg.Preprocessor.MaxIncludeDepth)
	assert.Equal(t, 256, cfg.Preprocessor.MaxCallDepth, "unset keys keep their defaults")
	assert.Equal(t, "debug", cfg.Diagnostics.LogLevel)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"zero include depth", "[preprocessor]\nmax_include_depth = 0\n"},
		{"bad log level", "[diagnostics]\nlog_level = \"loud\"\n"},
		{"malformed toml", "[preprocessor\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.src), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	cfg.Preprocessor.Defines = []string{"TRACE"}
	cfg.Codegen.TraceRegisters = true
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
