package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.API.BaseURL != nil {
		t.Fatalf("expected empty config")
	}
}

func TestLoadConfigSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[api]
base-url = "https://crm.example.com/api"
timeout = "10s"

[dashboard]
lead-type = "3"
page-size = 50

[permissions]
email_archive_campaign = false

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.API.BaseURL == nil || *cfg.API.BaseURL != "https://crm.example.com/api" {
		t.Fatalf("unexpected base url: %v", cfg.API.BaseURL)
	}
	timeout, err := cfg.API.TimeoutDuration()
	if err != nil || timeout != 10*time.Second {
		t.Fatalf("unexpected timeout %v (%v)", timeout, err)
	}
	if cfg.Dashboard.PageSize == nil || *cfg.Dashboard.PageSize != 50 {
		t.Fatalf("unexpected page size: %v", cfg.Dashboard.PageSize)
	}
	perms := cfg.Permissions.Resolve()
	if perms.ArchiveCampaign {
		t.Fatalf("expected archive permission revoked")
	}
	if !perms.SyncContacts || !perms.ExportCSV {
		t.Fatalf("expected unset permissions granted: %+v", perms)
	}
}

func TestLoadConfigRejectsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[api\nbase-url ="), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestTimeoutDurationInvalid(t *testing.T) {
	bad := "soon"
	if _, err := (APIConfig{Timeout: &bad}).TimeoutDuration(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
	if d, err := (APIConfig{}).TimeoutDuration(); err != nil || d != 0 {
		t.Fatalf("expected zero for unset timeout, got %v (%v)", d, err)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[api]\nbase-url = \"https://file.example.com\"\ntoken = \"file\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("MCDASH_BASE_URL", "https://env.example.com")
	t.Setenv("MCDASH_API_TOKEN", "")
	t.Setenv("MCDASH_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *cfg.API.BaseURL != "https://env.example.com" {
		t.Fatalf("expected env base url, got %q", *cfg.API.BaseURL)
	}
	if *cfg.API.Token != "file" {
		t.Fatalf("expected empty env to keep file token, got %q", *cfg.API.Token)
	}
	if cfg.Log.Level == nil || *cfg.Log.Level != "warn" {
		t.Fatalf("expected env log level")
	}
}

func TestDefaultPathsUseXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "cfg"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))

	if got := DefaultConfigPath(); got != filepath.Join(dir, "cfg", "mcdash", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultDBPath(); got != filepath.Join(dir, "data", "mcdash", "mcdash.db") {
		t.Fatalf("unexpected db path %q", got)
	}
	if got := DefaultLogPath(); got != filepath.Join(dir, "state", "mcdash", "mcdash.log") {
		t.Fatalf("unexpected log path %q", got)
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":      slog.LevelInfo,
		"DEBUG": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLogLevel(in)
		if err != nil || got != want {
			t.Fatalf("level %q: expected %v, got %v (%v)", in, want, got, err)
		}
	}
	if _, err := ParseLogLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
