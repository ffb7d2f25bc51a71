package engine

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"
)

func TestMock_PlayWithoutLoad(t *testing.T) {
	m := NewMock()

	if err := m.Play(); !errors.Is(err, ErrNoTrack) {
		t.Errorf("Play() = %v, want ErrNoTrack", err)
	}
}

func TestMock_LoadThenPlay(t *testing.T) {
	m := NewMock()
	var states []bool
	m.SetCallbacks(Callbacks{OnPlayState: func(playing bool) {
		states = append(states, playing)
	}})

	if err := m.Load("https://cdn.example.com/a.mp3"); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if err := m.Play(); err != nil {
		t.Fatalf("Play returned error: %v", err)
	}

	if !m.Playing() {
		t.Error("Playing() = false after Play")
	}
	if len(states) != 1 || !states[0] {
		t.Errorf("states = %v, want [true]", states)
	}

	m.Pause()
	if m.Playing() {
		t.Error("Playing() = true after Pause")
	}
	if len(states) != 2 || states[1] {
		t.Errorf("states = %v, want [true false]", states)
	}
}

func TestMock_SimulateEnded(t *testing.T) {
	m := NewMock()
	ended := false
	m.SetCallbacks(Callbacks{OnEnded: func() { ended = true }})

	_ = m.Load("https://cdn.example.com/a.mp3")
	_ = m.Play()
	m.SimulateEnded()

	if !ended {
		t.Error("OnEnded not invoked")
	}
	if m.Playing() {
		t.Error("Playing() = true after SimulateEnded")
	}
}

func TestMock_LoadResetsPosition(t *testing.T) {
	m := NewMock()
	_ = m.Load("https://cdn.example.com/a.mp3")
	m.Seek(30 * time.Second)

	_ = m.Load("https://cdn.example.com/b.mp3")

	if m.Position() != 0 {
		t.Errorf("Position() = %v after reload, want 0", m.Position())
	}
	if got := m.LoadCalls(); len(got) != 2 {
		t.Errorf("LoadCalls() = %v, want 2 entries", got)
	}
}

func TestSourceExt(t *testing.T) {
	tests := []struct {
		url         string
		contentType string
		want        string
	}{
		{"https://cdn.example.com/track.mp3", "", ".mp3"},
		{"https://cdn.example.com/track.FLAC", "", ".flac"},
		{"https://cdn.example.com/track.ogg?sig=abc", "", ".ogg"},
		{"https://cdn.example.com/stream", "audio/flac", ".flac"},
		{"https://cdn.example.com/stream", "application/ogg", ".ogg"},
		{"https://cdn.example.com/stream", "audio/mpeg", ".mp3"},
		{"https://cdn.example.com/track.wav", "", ".mp3"},
	}
	for _, tt := range tests {
		if got := sourceExt(tt.url, tt.contentType); got != tt.want {
			t.Errorf("sourceExt(%q, %q) = %q, want %q", tt.url, tt.contentType, got, tt.want)
		}
	}
}

func TestSpool(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "audio-bytes")
	}))
	defer srv.Close()

	p := New(nil)
	defer p.Close()

	f, ext, err := p.spool(srv.URL + "/track.mp3")
	if err != nil {
		t.Fatalf("spool returned error: %v", err)
	}
	defer func() {
		name := f.Name()
		f.Close()
		os.Remove(name)
	}()

	if ext != ".mp3" {
		t.Errorf("ext = %q, want .mp3", ext)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("read spool: %v", err)
	}
	if string(data) != "audio-bytes" {
		t.Errorf("spool content = %q, want audio-bytes", data)
	}
	if !strings.HasSuffix(f.Name(), ".mp3") {
		t.Errorf("spool file %q does not carry source extension", f.Name())
	}
}

func TestSpool_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := New(nil)
	defer p.Close()

	if _, _, err := p.spool(srv.URL + "/missing.mp3"); err == nil {
		t.Fatal("spool returned nil error on 404")
	}
}

func TestLoad_ConcurrentCallsSerialized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(20 * time.Millisecond)
		_, _ = io.WriteString(w, "not-audio")
	}))
	defer srv.Close()

	p := New(nil)
	defer p.Close()

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			errs <- p.Load(srv.URL + "/track.mp3")
		}()
	}

	for i := 0; i < 2; i++ {
		if err := <-errs; err == nil {
			t.Error("Load returned nil error on undecodable payload")
		}
	}

	p.mu.Lock()
	streamer, file := p.streamer, p.file
	p.mu.Unlock()
	if streamer != nil {
		t.Error("streamer installed after failed loads")
	}
	if file != nil {
		t.Error("spool file retained after failed loads")
	}
}

func TestLevelToVolume(t *testing.T) {
	tests := []struct {
		level float64
		want  float64
	}{
		{0, -10},
		{-0.5, -10},
		{1, 0},
		{1.5, 0},
		{0.5, -1},
		{0.25, -2},
	}
	for _, tt := range tests {
		if got := levelToVolume(tt.level); got != tt.want {
			t.Errorf("levelToVolume(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}
