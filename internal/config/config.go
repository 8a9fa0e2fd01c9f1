package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/hpungsan/autord/internal/slide"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config holds application configuration.
type Config struct {
	// LogEnv selects the log handler: local (text, debug), dev (json, debug), prod (json, info).
	LogEnv string `json:"log_env,omitempty" env:"AUTORD_LOG_ENV" validate:"omitempty,oneof=local dev prod"`

	// StorageBackend selects the durable key-value store for templates.
	StorageBackend string `json:"storage_backend,omitempty" env:"AUTORD_STORAGE_BACKEND" validate:"omitempty,oneof=sqlite redis"`

	RedisAddr     string `json:"redis_addr,omitempty" env:"AUTORD_REDIS_ADDR" validate:"required_if=StorageBackend redis"`
	RedisPassword string `json:"redis_password,omitempty" env:"AUTORD_REDIS_PASSWORD"`
	RedisDB       int    `json:"redis_db,omitempty" env:"AUTORD_REDIS_DB" validate:"min=0"`

	// DBMaxOpenConns limits the maximum number of open SQLite connections.
	// 0 means use sql.DB default.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty" env:"AUTORD_DB_MAX_OPEN_CONNS" validate:"min=0"`

	// DBMaxIdleConns limits the maximum number of idle SQLite connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty" env:"AUTORD_DB_MAX_IDLE_CONNS" validate:"min=0"`

	// PreviewTTLSeconds is how long a preview handle stays downloadable.
	PreviewTTLSeconds int `json:"preview_ttl_seconds,omitempty" env:"AUTORD_PREVIEW_TTL_SECONDS" validate:"min=0"`

	// AllowedPaths lists extra directories presentations may be written to.
	// Paths outside baseDir/exports require being in this list or AllowUnsafePaths=true.
	// Only absolute paths are accepted.
	AllowedPaths []string `json:"allowed_paths,omitempty" env:"AUTORD_ALLOWED_PATHS" env-separator:","`

	// AllowUnsafePaths lifts the directory restriction on written presentations.
	// Symlink checks still apply.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty" env:"AUTORD_ALLOW_UNSAFE_PATHS"`

	// MaxArtifactBytes caps the size of a pptx stored inside a template.
	MaxArtifactBytes int `json:"max_artifact_bytes,omitempty" env:"AUTORD_MAX_ARTIFACT_BYTES" validate:"min=0"`

	// Markdown holds the tuning constants of the markdown-to-brief fallback.
	Markdown MarkdownConfig `json:"markdown,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty" env:"AUTORD_DISABLED_TOOLS" env-separator:","`

	// DisabledTypes is a list of tool type names to disable entirely.
	// Known types: "template", "slide", "brief".
	DisabledTypes []string `json:"disabled_types,omitempty" env:"AUTORD_DISABLED_TYPES" env-separator:","`
}

// MarkdownConfig mirrors slide.Thresholds.
type MarkdownConfig struct {
	PointMaxChars     int `json:"point_max_chars,omitempty" env:"AUTORD_MD_POINT_MAX_CHARS" validate:"min=0"`
	MaxFallbackPoints int `json:"max_fallback_points,omitempty" env:"AUTORD_MD_MAX_FALLBACK_POINTS" validate:"min=0"`
	VisualBefore      int `json:"visual_before,omitempty" env:"AUTORD_MD_VISUAL_BEFORE" validate:"min=0"`
	VisualAfter       int `json:"visual_after,omitempty" env:"AUTORD_MD_VISUAL_AFTER" validate:"min=0"`
	// Conclusion bounds become regexp repeat counts, which Go caps at 1000.
	ConclusionMin     int `json:"conclusion_min,omitempty" env:"AUTORD_MD_CONCLUSION_MIN" validate:"min=0,max=1000"`
	ConclusionMax     int `json:"conclusion_max,omitempty" env:"AUTORD_MD_CONCLUSION_MAX" validate:"min=0,max=1000"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	th := slide.DefaultThresholds()
	return &Config{
		LogEnv:            "local",
		StorageBackend:    BackendSQLite,
		PreviewTTLSeconds: 600,
		MaxArtifactBytes:  10 * 1024 * 1024,
		Markdown: MarkdownConfig{
			PointMaxChars:     th.PointMaxChars,
			MaxFallbackPoints: th.MaxFallbackPoints,
			VisualBefore:      th.VisualBefore,
			VisualAfter:       th.VisualAfter,
			ConclusionMin:     th.ConclusionMin,
			ConclusionMax:     th.ConclusionMax,
		},
	}
}

// Load loads configuration from baseDir/config.json, then applies AUTORD_*
// environment overrides and validates the result.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.autord.
func Load(baseDir string) (*Config, error) {
	file, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}

	env := &Config{}
	if err := cleanenv.ReadEnv(env); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	cfg := Merge(Merge(DefaultConfig(), file), env)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Markdown.ConclusionMax > 0 && c.Markdown.ConclusionMin > c.Markdown.ConclusionMax {
		return fmt.Errorf("invalid config: markdown.conclusion_min (%d) exceeds conclusion_max (%d)",
			c.Markdown.ConclusionMin, c.Markdown.ConclusionMax)
	}
	return nil
}

// PreviewTTL returns the preview handle lifetime.
func (c *Config) PreviewTTL() time.Duration {
	return time.Duration(c.PreviewTTLSeconds) * time.Second
}

// Thresholds converts the markdown settings for the slide package.
func (c *Config) Thresholds() slide.Thresholds {
	return slide.Thresholds{
		PointMaxChars:     c.Markdown.PointMaxChars,
		MaxFallbackPoints: c.Markdown.MaxFallbackPoints,
		VisualBefore:      c.Markdown.VisualBefore,
		VisualAfter:       c.Markdown.VisualAfter,
		ConclusionMin:     c.Markdown.ConclusionMin,
		ConclusionMax:     c.Markdown.ConclusionMax,
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	return &Config{
		LogEnv:            pick(overlay.LogEnv, base.LogEnv),
		StorageBackend:    pick(overlay.StorageBackend, base.StorageBackend),
		RedisAddr:         pick(overlay.RedisAddr, base.RedisAddr),
		RedisPassword:     pick(overlay.RedisPassword, base.RedisPassword),
		RedisDB:           pick(overlay.RedisDB, base.RedisDB),
		DBMaxOpenConns:    pick(overlay.DBMaxOpenConns, base.DBMaxOpenConns),
		DBMaxIdleConns:    pick(overlay.DBMaxIdleConns, base.DBMaxIdleConns),
		PreviewTTLSeconds: pick(overlay.PreviewTTLSeconds, base.PreviewTTLSeconds),
		MaxArtifactBytes:  pick(overlay.MaxArtifactBytes, base.MaxArtifactBytes),
		Markdown: MarkdownConfig{
			PointMaxChars:     pick(overlay.Markdown.PointMaxChars, base.Markdown.PointMaxChars),
			MaxFallbackPoints: pick(overlay.Markdown.MaxFallbackPoints, base.Markdown.MaxFallbackPoints),
			VisualBefore:      pick(overlay.Markdown.VisualBefore, base.Markdown.VisualBefore),
			VisualAfter:       pick(overlay.Markdown.VisualAfter, base.Markdown.VisualAfter),
			ConclusionMin:     pick(overlay.Markdown.ConclusionMin, base.Markdown.ConclusionMin),
			ConclusionMax:     pick(overlay.Markdown.ConclusionMax, base.Markdown.ConclusionMax),
		},
		AllowedPaths:     mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths),
		AllowUnsafePaths: base.AllowUnsafePaths || overlay.AllowUnsafePaths,
		DisabledTools:    mergeStringSlice(base.DisabledTools, overlay.DisabledTools),
		DisabledTypes:    mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes),
	}
}

// pick returns overlay if non-zero, else base.
func pick[T comparable](overlay, base T) T {
	var zero T
	if overlay != zero {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
