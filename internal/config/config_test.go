package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoadFrom_Valid(t *testing.T) {
	p := writeConfig(t, `export:
  dir: "/tmp/exports-test"
  default_base_name: "report"
pdf:
  timeout_secs: 30
  settle_ms: 250
  footer_policy: "enforced"
cache:
  pdf_cache_enabled: true
  redis_host: "127.0.0.1:6379"
  pdf_cache_ttl: 1h
`)
	cfg := LoadFrom(p)
	if cfg.Export.Dir != "/tmp/exports-test" {
		t.Fatalf("unexpected export dir: %q", cfg.Export.Dir)
	}
	if cfg.Export.DefaultBaseName != "report" {
		t.Fatalf("unexpected default base name: %q", cfg.Export.DefaultBaseName)
	}
	if cfg.PDF.SettleMS != 250 {
		t.Fatalf("unexpected settle_ms: %d", cfg.PDF.SettleMS)
	}
	if cfg.PDF.FooterPolicy != FooterPolicyEnforced {
		t.Fatalf("unexpected footer policy: %q", cfg.PDF.FooterPolicy)
	}
	if cfg.Cache.PDFCacheTTL != Duration(time.Hour) {
		t.Fatalf("unexpected cache ttl: %v", cfg.Cache.PDFCacheTTL)
	}
}

func TestLoadFrom_KeepsDefaultsForOmittedKeys(t *testing.T) {
	p := writeConfig(t, `logger:
  level: "warn"
`)
	cfg := LoadFrom(p)
	if cfg.PDF.DefaultFormat != "A4" {
		t.Fatalf("expected default format A4, got %q", cfg.PDF.DefaultFormat)
	}
	if cfg.PDF.SettleMS != 1000 {
		t.Fatalf("expected default settle 1000ms, got %d", cfg.PDF.SettleMS)
	}
	if cfg.PDF.FooterPolicy != FooterPolicyPermissive {
		t.Fatalf("expected permissive default, got %q", cfg.PDF.FooterPolicy)
	}
	if cfg.PDF.Disclaimer == "" {
		t.Fatalf("expected default disclaimer text")
	}
}

func TestLoadFrom_PanicsOnInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yml  string
	}{
		{name: "empty export dir", yml: "export:\n  dir: \"\"\n"},
		{name: "zero timeout", yml: "pdf:\n  timeout_secs: -1\n"},
		{name: "negative settle", yml: "pdf:\n  settle_ms: -5\n"},
		{name: "bad footer policy", yml: "pdf:\n  footer_policy: \"sometimes\"\n"},
		{name: "cache without redis", yml: "cache:\n  pdf_cache_enabled: true\n"},
		{name: "not yaml", yml: "{{{"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := writeConfig(t, tc.yml)
			defer func() {
				if recover() == nil {
					t.Fatalf("expected panic")
				}
			}()
			_ = LoadFrom(p)
		})
	}
}

func TestLoad_UsesConfigPathEnv(t *testing.T) {
	p := writeConfig(t, `export:
  dir: "/tmp/from-env"
`)
	t.Setenv("CONFIG_PATH", p)
	cfg := Load()
	if cfg.Export.Dir != "/tmp/from-env" {
		t.Fatalf("expected CONFIG_PATH to be used")
	}
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))
	cfg := Load()
	if cfg.Export.Dir != "/tmp/pdf-export-file-exports" {
		t.Fatalf("expected default export dir, got %q", cfg.Export.Dir)
	}
}
