package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	if got := expandPath("~/logs/pulse.log"); got != filepath.Join(home, "logs/pulse.log") {
		t.Errorf("expandPath(~/logs/pulse.log) = %q", got)
	}
	if got := expandPath("/var/log/pulse.log"); got != "/var/log/pulse.log" {
		t.Errorf("expandPath(/var/log/pulse.log) = %q, want unchanged", got)
	}
	if got := expandPath(""); got != "" {
		t.Errorf("expandPath(\"\") = %q, want empty", got)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.APIURL != "https://api.muzikax.com" {
		t.Errorf("APIURL = %q, want default", cfg.APIURL)
	}
	if !cfg.MPRISEnabled() {
		t.Error("MPRISEnabled() = false, want true by default")
	}
	if !cfg.NotifyEnabled() {
		t.Error("NotifyEnabled() = false, want true by default")
	}
	if cfg.HasLastfmConfig() {
		t.Error("HasLastfmConfig() = true without credentials")
	}
}

func TestLoad_LocalFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	content := `
api_url = "http://localhost:8080"
auth_token = "tok"

[log]
level = "debug"

[lastfm]
api_key = "key"
api_secret = "secret"

[mpris]
enabled = false
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.APIURL != "http://localhost:8080" {
		t.Errorf("APIURL = %q, want localhost", cfg.APIURL)
	}
	if cfg.AuthToken != "tok" {
		t.Errorf("AuthToken = %q, want tok", cfg.AuthToken)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if !cfg.HasLastfmConfig() {
		t.Error("HasLastfmConfig() = false with credentials")
	}
	if cfg.MPRISEnabled() {
		t.Error("MPRISEnabled() = true, want disabled")
	}
}
