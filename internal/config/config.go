package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the process-wide configuration, read once at startup.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Logger LoggerConfig `yaml:"logger"`
	Export ExportConfig `yaml:"export"`
	PDF    PDFConfig    `yaml:"pdf"`
	Cache  CacheConfig  `yaml:"cache"`
	Auth   AuthConfig   `yaml:"auth"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type LoggerConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
	Level      string `yaml:"level"`
}

type ExportConfig struct {
	// Dir is the fixed export directory all artifacts are written to.
	Dir             string `yaml:"dir"`
	DefaultBaseName string `yaml:"default_base_name"`
}

// Footer policy variants. Permissive uses caller templates verbatim and only
// shows the header/footer on request; enforced always shows them and appends
// the disclaimer after any caller-supplied footer content.
const (
	FooterPolicyPermissive = "permissive"
	FooterPolicyEnforced   = "enforced"
)

type PDFConfig struct {
	ChromePath      string `yaml:"chrome_path"`
	ChromeNoSandbox bool   `yaml:"chrome_no_sandbox"`
	TimeoutSecs     int    `yaml:"timeout_secs"`
	SettleMS        int    `yaml:"settle_ms"`
	DefaultFormat   string `yaml:"default_format"`
	FooterPolicy    string `yaml:"footer_policy"`
	Disclaimer      string `yaml:"disclaimer"`
}

type CacheConfig struct {
	RedisHost       string   `yaml:"redis_host"`
	PDFCacheEnabled bool     `yaml:"pdf_cache_enabled"`
	PDFCacheDB      int      `yaml:"pdf_cache_db"`
	PDFCacheTTL     Duration `yaml:"pdf_cache_ttl"`
}

// Duration accepts "30s"/"24h" style yaml values.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

type AuthConfig struct {
	Postgres PostgresConfig `yaml:"postgres"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// DefaultDisclaimer is the branding/liability notice appended to every page
// footer under the enforced policy.
const DefaultDisclaimer = `<div style="font-size:7px; text-align:right; width:100%; margin-right:20mm; color:#888;">` +
	`Generated by pdf-export &middot; For informational purposes only &middot; No warranty of completeness or accuracy</div>`

// Default returns a fully-defaulted configuration.
func Default() Config {
	var cfg Config
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = ":8080"
	cfg.Logger.Level = "info"
	cfg.Logger.MaxSizeMB = 10
	cfg.Logger.MaxBackups = 3
	cfg.Logger.MaxAgeDays = 14
	cfg.Export.Dir = "/tmp/pdf-export-file-exports"
	cfg.Export.DefaultBaseName = "output"
	cfg.PDF.TimeoutSecs = 60
	cfg.PDF.SettleMS = 1000
	cfg.PDF.DefaultFormat = "A4"
	cfg.PDF.FooterPolicy = FooterPolicyPermissive
	cfg.PDF.Disclaimer = DefaultDisclaimer
	cfg.Cache.PDFCacheTTL = Duration(24 * time.Hour)
	return cfg
}

// Load reads the configuration from CONFIG_PATH, falling back to
// ./config.yaml. A missing file yields the defaults; an unreadable or
// invalid file is a startup error and panics.
func Load() Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default()
	}
	return LoadFrom(path)
}

// LoadFrom reads and validates the configuration at path. Invalid
// configuration panics: there is no sane way to run with it.
func LoadFrom(path string) Config {
	raw, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("config: read %s: %v", path, err))
	}
	cfg := Default()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		panic(fmt.Sprintf("config: parse %s: %v", path, err))
	}
	validate(&cfg)
	return cfg
}

func validate(cfg *Config) {
	if cfg.Export.Dir == "" {
		panic("config: export.dir must not be empty")
	}
	if cfg.Export.DefaultBaseName == "" {
		cfg.Export.DefaultBaseName = "output"
	}
	if cfg.PDF.TimeoutSecs <= 0 {
		panic("config: pdf.timeout_secs must be positive")
	}
	if cfg.PDF.SettleMS < 0 {
		panic("config: pdf.settle_ms must not be negative")
	}
	switch cfg.PDF.FooterPolicy {
	case FooterPolicyPermissive, FooterPolicyEnforced:
	default:
		panic(fmt.Sprintf("config: pdf.footer_policy must be %q or %q", FooterPolicyPermissive, FooterPolicyEnforced))
	}
	if cfg.Cache.PDFCacheEnabled && cfg.Cache.RedisHost == "" {
		panic("config: cache.redis_host required when pdf_cache_enabled")
	}
	if cfg.Cache.PDFCacheTTL <= 0 {
		cfg.Cache.PDFCacheTTL = Duration(time.Minute)
	}
}
