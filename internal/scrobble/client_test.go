package scrobble

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestClient_NotAuthenticated(t *testing.T) {
	c := New("key", "secret")

	if c.IsAuthenticated() {
		t.Error("IsAuthenticated() = true without session key")
	}

	track := Track{Artist: "Someone", Title: "Something", Timestamp: time.Now()}
	if err := c.Scrobble(track); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Scrobble without session = %v, want ErrNotAuthenticated", err)
	}
	if err := c.UpdateNowPlaying(track); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("UpdateNowPlaying without session = %v, want ErrNotAuthenticated", err)
	}
}

func TestClient_SessionKey(t *testing.T) {
	c := New("key", "secret")

	c.SetSessionKey("sk-123")
	if !c.IsAuthenticated() {
		t.Error("IsAuthenticated() = false after SetSessionKey")
	}
	if c.SessionKey() != "sk-123" {
		t.Errorf("SessionKey() = %q, want sk-123", c.SessionKey())
	}
}

func TestGetAuthURL(t *testing.T) {
	c := New("mykey", "secret")

	url := c.GetAuthURL("tok-1")
	if !strings.Contains(url, "api_key=mykey") {
		t.Errorf("auth URL missing api key: %q", url)
	}
	if !strings.Contains(url, "token=tok-1") {
		t.Errorf("auth URL missing token: %q", url)
	}
}
