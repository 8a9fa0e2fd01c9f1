package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(body), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestLoad_DefaultWhenMissing(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	def := DefaultConfig()
	if cfg.StorageBackend != def.StorageBackend {
		t.Fatalf("StorageBackend = %q, want %q", cfg.StorageBackend, def.StorageBackend)
	}
	if cfg.Markdown.PointMaxChars != 50 {
		t.Fatalf("Markdown.PointMaxChars = %d, want 50", cfg.Markdown.PointMaxChars)
	}
	if cfg.PreviewTTL() != 10*time.Minute {
		t.Fatalf("PreviewTTL() = %v, want 10m", cfg.PreviewTTL())
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{"preview_ttl_seconds": 30, "markdown": {"point_max_chars": 80}}`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.PreviewTTLSeconds != 30 {
		t.Fatalf("PreviewTTLSeconds = %d, want 30", cfg.PreviewTTLSeconds)
	}
	if cfg.Markdown.PointMaxChars != 80 {
		t.Fatalf("Markdown.PointMaxChars = %d, want 80", cfg.Markdown.PointMaxChars)
	}
	// untouched keys keep their defaults
	if cfg.Markdown.MaxFallbackPoints != 5 {
		t.Fatalf("Markdown.MaxFallbackPoints = %d, want 5", cfg.Markdown.MaxFallbackPoints)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{"max_artifact_bytes": 320, "log_env": "dev"}`)
	t.Setenv("AUTORD_MAX_ARTIFACT_BYTES", "640")
	t.Setenv("AUTORD_DISABLED_TOOLS", "template_delete, brief_export")

	cfg, err := Load(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, 640, cfg.MaxArtifactBytes)
	assert.Equal(t, "dev", cfg.LogEnv)
	assert.Equal(t, []string{"template_delete", "brief_export"}, cfg.DisabledTools)
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{not json}`)

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoad_InvalidBackend(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{"storage_backend": "firestore"}`)

	_, err := Load(tmpDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLoad_RedisRequiresAddr(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{"storage_backend": "redis"}`)

	_, err := Load(tmpDir)
	require.Error(t, err)

	writeConfig(t, tmpDir, `{"storage_backend": "redis", "redis_addr": "localhost:6379"}`)
	cfg, err := Load(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, BackendRedis, cfg.StorageBackend)
}

func TestValidate_ConclusionBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Markdown.ConclusionMin = 200
	cfg.Markdown.ConclusionMax = 100

	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() expected error for min > max")
	}
}

func TestValidate_ConclusionRepeatLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Markdown.ConclusionMax = 1500

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ConclusionMax")

	cfg.Markdown.ConclusionMax = 1000
	assert.NoError(t, cfg.Validate())
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name    string
		base    *Config
		overlay *Config
		check   func(t *testing.T, got *Config)
	}{
		{
			name:    "overlay scalar wins",
			base:    &Config{RedisDB: 1, LogEnv: "local"},
			overlay: &Config{RedisDB: 3},
			check: func(t *testing.T, got *Config) {
				assert.Equal(t, 3, got.RedisDB)
				assert.Equal(t, "local", got.LogEnv)
			},
		},
		{
			name:    "arrays merged and deduplicated",
			base:    &Config{DisabledTypes: []string{"brief", " slide "}},
			overlay: &Config{DisabledTypes: []string{"slide", "template"}},
			check: func(t *testing.T, got *Config) {
				assert.Equal(t, []string{"brief", "slide", "template"}, got.DisabledTypes)
			},
		},
		{
			name:    "empty arrays stay nil",
			base:    &Config{},
			overlay: &Config{DisabledTools: []string{"  "}},
			check: func(t *testing.T, got *Config) {
				assert.Nil(t, got.DisabledTools)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Merge(tt.base, tt.overlay))
		})
	}
}

func TestThresholds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Markdown.VisualAfter = 120

	th := cfg.Thresholds()
	assert.Equal(t, 120, th.VisualAfter)
	assert.Equal(t, 50, th.VisualBefore)
}
