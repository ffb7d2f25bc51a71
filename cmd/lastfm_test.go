package cmd

import (
	"strings"
	"testing"
)

func TestLastfmAuthRegistered(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"lastfm", "auth"})
	if err != nil {
		t.Fatalf("Find(lastfm auth) returned error: %v", err)
	}
	if cmd.Name() != "auth" {
		t.Errorf("command = %q, want auth", cmd.Name())
	}
}

func TestLastfmAuth_RequiresCredentials(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	err := runLastfmAuth(lastfmAuthCmd)
	if err == nil || !strings.Contains(err.Error(), "api_key") {
		t.Errorf("runLastfmAuth = %v, want missing-credentials error", err)
	}
}
