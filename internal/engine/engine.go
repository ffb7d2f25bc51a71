// Package engine adapts the audio backend behind a narrow interface the
// session drives. Exactly one handle is live at a time; loading a new
// source tears the previous one down before any of its callbacks can fire.
package engine

import (
	"errors"
	"time"
)

// ErrNoTrack is returned when a playback operation runs without a loaded source.
var ErrNoTrack = errors.New("no track loaded")

// Callbacks are invoked by the engine on its own goroutines. Implementations
// must not call back into the engine while holding locks the callbacks need.
type Callbacks struct {
	OnPlayState func(playing bool)
	OnTime      func(pos, dur time.Duration)
	OnEnded     func()
	OnError     func(err error)
}

// Engine is the playback contract the session depends on.
type Engine interface {
	SetCallbacks(cb Callbacks)
	Load(url string) error
	Play() error
	Pause()
	Stop()
	Seek(pos time.Duration)
	SetVolume(level float64)
	SetRate(rate float64)
	Position() time.Duration
	Duration() time.Duration
	Close()
}

// Verify implementations at compile time.
var (
	_ Engine = (*Player)(nil)
	_ Engine = (*Mock)(nil)
)
