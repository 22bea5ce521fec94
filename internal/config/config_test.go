package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/d7alp/internal/testutil/testlog"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadServiceConfigDefaults(t *testing.T) {
	testlog.Start(t)
	cfg, err := LoadServiceConfig(writeFile(t, `cors_origins = ["http://a"]`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Name != DefaultName || cfg.Addr != DefaultAddr || cfg.MaxCommandBytes != DefaultMaxCommandBytes {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if len(cfg.CorsOrigins) != 1 || cfg.CorsOrigins[0] != "http://a" {
		t.Fatalf("cors origins: %+v", cfg.CorsOrigins)
	}
}

func TestLoadServiceConfigRejects(t *testing.T) {
	testlog.Start(t)
	cases := map[string]string{
		"negative_limit": `max_command_bytes = -1`,
		"empty_origin":   `cors_origins = [""]`,
		"bad_toml":       `name = `,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadServiceConfig(writeFile(t, body)); err == nil {
				t.Fatalf("expected error for %q", body)
			}
		})
	}
	if _, err := LoadServiceConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected load error for missing file")
	}
}

func TestTemplatesLoad(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "alpd.toml")
	if err := WriteTemplate(path, "alpd", false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if err := WriteTemplate(path, "alpd", false); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected already exists, got %v", err)
	}
	cfg, err := LoadServiceConfig(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	def := DefaultServiceConfig()
	if cfg.Name != def.Name || cfg.Addr != def.Addr || cfg.MaxCommandBytes != def.MaxCommandBytes {
		t.Fatalf("template mismatch: %+v", cfg)
	}
	if len(cfg.CorsOrigins) != 1 || len(cfg.TrustedProxies) != 0 {
		t.Fatalf("template lists: %+v", cfg)
	}
	if _, err := Template("ghost"); err == nil {
		t.Fatalf("expected unknown kind error")
	}
}
