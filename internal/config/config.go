package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/allyourbase/demobundle/internal/bundle"
	"github.com/allyourbase/demobundle/internal/demolist"
	"github.com/allyourbase/demobundle/internal/publish"
	"github.com/pelletier/go-toml/v2"
)

// DefaultPath is the settings file read when no --config flag is given.
const DefaultPath = "demobundle.toml"

// Config is the top-level demobundle configuration.
type Config struct {
	Bundle  BundleConfig  `toml:"bundle" json:"bundle"`
	Publish PublishConfig `toml:"publish" json:"publish"`
	Logging LoggingConfig `toml:"logging" json:"logging"`
}

type BundleConfig struct {
	DemoList  string `toml:"demo_list" json:"demo_list"`
	SourceDir string `toml:"source_dir" json:"source_dir"`
	DestDir   string `toml:"dest_dir" json:"dest_dir"`
}

// PublishConfig controls where `demobundle publish` uploads a built bundle.
type PublishConfig struct {
	Backend     string `toml:"backend" json:"backend"` // "local" (default) or "s3"
	Prefix      string `toml:"prefix" json:"prefix"`
	LocalPath   string `toml:"local_path" json:"local_path"`
	S3Endpoint  string `toml:"s3_endpoint" json:"s3_endpoint"`
	S3Bucket    string `toml:"s3_bucket" json:"s3_bucket"`
	S3Region    string `toml:"s3_region" json:"s3_region"`
	S3AccessKey string `toml:"s3_access_key" json:"s3_access_key"`
	S3SecretKey string `toml:"s3_secret_key" json:"-"`
	S3UseSSL    bool   `toml:"s3_use_ssl" json:"s3_use_ssl"`
}

type LoggingConfig struct {
	Level  string `toml:"level" json:"level"`
	Format string `toml:"format" json:"format"`
}

// Requirements are the two caller-supplied manifest lines. They are opaque:
// nothing here parses or validates them beyond presence.
type Requirements struct {
	Primary   string
	Secondary string
}

// Default returns a Config with all defaults applied.
func Default() *Config {
	return &Config{
		Bundle: BundleConfig{
			DemoList:  demolist.DefaultPath,
			SourceDir: "examples",
			DestDir:   "dist/demos",
		},
		Publish: PublishConfig{
			Backend:   "local",
			LocalPath: "./published",
			S3Region:  "us-east-1",
			S3UseSSL:  true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// ResolveRequirements reads the requirement tokens with priority:
// flags → DEMOBUNDLE_* env → INPUT_* env (CI action inputs).
// It touches no files, so a missing token fails before anything is read.
func ResolveRequirements(flags map[string]string) (Requirements, error) {
	req := Requirements{
		Primary:   firstNonEmpty(flags["primary-requirement"], os.Getenv("DEMOBUNDLE_PRIMARY_REQUIREMENT"), os.Getenv("INPUT_PRIMARY_REQUIREMENT")),
		Secondary: firstNonEmpty(flags["secondary-requirement"], os.Getenv("DEMOBUNDLE_SECONDARY_REQUIREMENT"), os.Getenv("INPUT_SECONDARY_REQUIREMENT")),
	}
	var missing []string
	if req.Primary == "" {
		missing = append(missing, "--primary-requirement")
	}
	if req.Secondary == "" {
		missing = append(missing, "--secondary-requirement")
	}
	if len(missing) > 0 {
		return req, fmt.Errorf("%w (missing %s)", bundle.ErrMissingRequirement, strings.Join(missing, ", "))
	}
	return req, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Load reads configuration with priority: defaults → demobundle.toml → env vars → CLI flags.
// A missing settings file is not an error.
func Load(configPath string, flags map[string]string) (*Config, error) {
	cfg := Default()

	if configPath == "" {
		configPath = DefaultPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", configPath, err)
		}
	}

	applyEnv(cfg)
	applyFlags(cfg, flags)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for invalid values. Publish settings are
// checked separately by PublishConfig.Validate since only `publish` needs them.
func (c *Config) Validate() error {
	if c.Bundle.DemoList == "" {
		return fmt.Errorf("bundle.demo_list must not be empty")
	}
	if c.Bundle.SourceDir == "" {
		return fmt.Errorf("bundle.source_dir must not be empty")
	}
	if c.Bundle.DestDir == "" {
		return fmt.Errorf("bundle.dest_dir must not be empty")
	}
	if filepath.Clean(c.Bundle.SourceDir) == filepath.Clean(c.Bundle.DestDir) {
		return fmt.Errorf("bundle.dest_dir must differ from bundle.source_dir (%q)", c.Bundle.SourceDir)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error; got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format)
	}
	return nil
}

// Validate checks the settings the selected publish backend needs.
func (p *PublishConfig) Validate() error {
	switch p.Backend {
	case "local":
		if p.LocalPath == "" {
			return fmt.Errorf("publish.local_path is required when publish backend is \"local\"")
		}
	case "s3":
		if p.S3Endpoint == "" {
			return fmt.Errorf("publish.s3_endpoint is required when publish backend is \"s3\"")
		}
		if p.S3Bucket == "" {
			return fmt.Errorf("publish.s3_bucket is required when publish backend is \"s3\"")
		}
		if p.S3AccessKey == "" {
			return fmt.Errorf("publish.s3_access_key is required when publish backend is \"s3\"")
		}
		if p.S3SecretKey == "" {
			return fmt.Errorf("publish.s3_secret_key is required when publish backend is \"s3\"")
		}
	default:
		return fmt.Errorf("publish.backend must be \"local\" or \"s3\", got %q", p.Backend)
	}
	return nil
}

// S3 returns the S3 connection settings.
func (p *PublishConfig) S3() publish.S3Config {
	return publish.S3Config{
		Endpoint:  p.S3Endpoint,
		Bucket:    p.S3Bucket,
		Region:    p.S3Region,
		AccessKey: p.S3AccessKey,
		SecretKey: p.S3SecretKey,
		UseSSL:    p.S3UseSSL,
	}
}

// PipelineOptions builds the bundle pipeline inputs from the config and requirements.
func (c *Config) PipelineOptions(req Requirements) bundle.Options {
	return bundle.Options{
		DemoListPath: c.Bundle.DemoList,
		SourceDir:    c.Bundle.SourceDir,
		DestDir:      c.Bundle.DestDir,
		Primary:      req.Primary,
		Secondary:    req.Secondary,
	}
}

// GenerateDefault writes a commented default demobundle.toml to the given path.
func GenerateDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(defaultTOML), 0o644)
}

// ToTOML returns the config serialized as TOML.
func (c *Config) ToTOML() (string, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func envBool(v string) bool {
	return v == "true" || v == "1"
}

func applyEnv(cfg *Config) {
	if v := firstNonEmpty(os.Getenv("DEMOBUNDLE_DEMO_LIST"), os.Getenv("INPUT_DEMO_LIST")); v != "" {
		cfg.Bundle.DemoList = v
	}
	if v := os.Getenv("DEMOBUNDLE_SOURCE_DIR"); v != "" {
		cfg.Bundle.SourceDir = v
	}
	if v := os.Getenv("DEMOBUNDLE_DEST_DIR"); v != "" {
		cfg.Bundle.DestDir = v
	}
	if v := os.Getenv("DEMOBUNDLE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("DEMOBUNDLE_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("DEMOBUNDLE_PUBLISH_BACKEND"); v != "" {
		cfg.Publish.Backend = v
	}
	if v := os.Getenv("DEMOBUNDLE_PUBLISH_PREFIX"); v != "" {
		cfg.Publish.Prefix = v
	}
	if v := os.Getenv("DEMOBUNDLE_PUBLISH_LOCAL_PATH"); v != "" {
		cfg.Publish.LocalPath = v
	}
	if v := os.Getenv("DEMOBUNDLE_PUBLISH_S3_ENDPOINT"); v != "" {
		cfg.Publish.S3Endpoint = v
	}
	if v := os.Getenv("DEMOBUNDLE_PUBLISH_S3_BUCKET"); v != "" {
		cfg.Publish.S3Bucket = v
	}
	if v := os.Getenv("DEMOBUNDLE_PUBLISH_S3_REGION"); v != "" {
		cfg.Publish.S3Region = v
	}
	if v := os.Getenv("DEMOBUNDLE_PUBLISH_S3_ACCESS_KEY"); v != "" {
		cfg.Publish.S3AccessKey = v
	}
	if v := os.Getenv("DEMOBUNDLE_PUBLISH_S3_SECRET_KEY"); v != "" {
		cfg.Publish.S3SecretKey = v
	}
	if v := os.Getenv("DEMOBUNDLE_PUBLISH_S3_USE_SSL"); v != "" {
		cfg.Publish.S3UseSSL = envBool(v)
	}
}

func applyFlags(cfg *Config, flags map[string]string) {
	if flags == nil {
		return
	}
	if v := flags["demo-list"]; v != "" {
		cfg.Bundle.DemoList = v
	}
	if v := flags["source"]; v != "" {
		cfg.Bundle.SourceDir = v
	}
	if v := flags["dest"]; v != "" {
		cfg.Bundle.DestDir = v
	}
	if v := flags["log-level"]; v != "" {
		cfg.Logging.Level = v
	}
	if v := flags["log-format"]; v != "" {
		cfg.Logging.Format = v
	}
	if v := flags["backend"]; v != "" {
		cfg.Publish.Backend = v
	}
	if v := flags["prefix"]; v != "" {
		cfg.Publish.Prefix = v
	}
}

// validKeys is the complete set of dot-separated config keys.
var validKeys = map[string]bool{
	"bundle.demo_list": true, "bundle.source_dir": true, "bundle.dest_dir": true,
	"publish.backend": true, "publish.prefix": true, "publish.local_path": true,
	"publish.s3_endpoint": true, "publish.s3_bucket": true, "publish.s3_region": true,
	"publish.s3_access_key": true, "publish.s3_secret_key": true, "publish.s3_use_ssl": true,
	"logging.level": true, "logging.format": true,
}

// IsValidKey returns true if the dotted key is a recognized config key.
func IsValidKey(key string) bool {
	return validKeys[key]
}

// GetValue returns the value for a dotted config key (e.g. "bundle.dest_dir").
func GetValue(cfg *Config, key string) (any, error) {
	switch key {
	case "bundle.demo_list":
		return cfg.Bundle.DemoList, nil
	case "bundle.source_dir":
		return cfg.Bundle.SourceDir, nil
	case "bundle.dest_dir":
		return cfg.Bundle.DestDir, nil
	case "publish.backend":
		return cfg.Publish.Backend, nil
	case "publish.prefix":
		return cfg.Publish.Prefix, nil
	case "publish.local_path":
		return cfg.Publish.LocalPath, nil
	case "publish.s3_endpoint":
		return cfg.Publish.S3Endpoint, nil
	case "publish.s3_bucket":
		return cfg.Publish.S3Bucket, nil
	case "publish.s3_region":
		return cfg.Publish.S3Region, nil
	case "publish.s3_access_key":
		return cfg.Publish.S3AccessKey, nil
	case "publish.s3_secret_key":
		return cfg.Publish.S3SecretKey, nil
	case "publish.s3_use_ssl":
		return cfg.Publish.S3UseSSL, nil
	case "logging.level":
		return cfg.Logging.Level, nil
	case "logging.format":
		return cfg.Logging.Format, nil
	default:
		return nil, fmt.Errorf("unknown configuration key: %s", key)
	}
}

// SetValue reads the existing TOML file, updates a single key, and writes it back.
// Creates the file with just the key if it doesn't exist.
func SetValue(configPath, key, value string) error {
	var data map[string]any
	if raw, err := os.ReadFile(configPath); err == nil {
		if err := toml.Unmarshal(raw, &data); err != nil {
			return fmt.Errorf("parsing %s: %w", configPath, err)
		}
	}
	if data == nil {
		data = make(map[string]any)
	}

	section, field, ok := strings.Cut(key, ".")
	if !ok {
		return fmt.Errorf("invalid key format: %s (expected section.field)", key)
	}
	sectionMap, ok := data[section].(map[string]any)
	if !ok {
		sectionMap = make(map[string]any)
		data[section] = sectionMap
	}
	if key == "publish.s3_use_ssl" {
		sectionMap[field] = envBool(value)
	} else {
		sectionMap[field] = value
	}

	out, err := toml.Marshal(data)
	if err != nil {
		return fmt.Errorf("serializing config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return os.WriteFile(configPath, out, 0o644)
}

const defaultTOML = `# demobundle configuration
# Priority: defaults < this file < DEMOBUNDLE_* env vars < flags.
# The two manifest requirements are never read from this file; pass
# --primary-requirement/--secondary-requirement or set the env vars.

[bundle]
# JSON array of demo directory names to include.
demo_list = ".github/demo-bundle.json"
# Directory holding one subdirectory per demo.
source_dir = "examples"
# Bundle output; requirements.txt is written here.
dest_dir = "dist/demos"

[publish]
# "local" or "s3".
backend = "local"
# Key prefix for uploaded files, e.g. "demos/v1".
prefix = ""
local_path = "./published"
# s3_endpoint = "s3.amazonaws.com"
# s3_bucket = "releases"
s3_region = "us-east-1"
# s3_access_key = ""
# s3_secret_key = ""
s3_use_ssl = true

[logging]
# debug, info, warn, error
level = "info"
# text or json
format = "text"
`
