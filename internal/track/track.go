// Package track defines the canonical playable track used throughout the
// playback session, and its resolution from raw backend records.
package track

import (
	"strings"
	"time"
)

// Type classifies a track.
type Type string

const (
	TypeSong Type = "song"
	TypeBeat Type = "beat"
	TypeMix  Type = "mix"
)

// PaymentType marks whether a track is free or a paid beat.
type PaymentType string

const (
	PaymentFree PaymentType = "free"
	PaymentPaid PaymentType = "paid"
)

// Track is the canonical, playback-ready representation of a track.
type Track struct {
	ID              string
	Title           string
	Artist          string // resolved display name, never a raw creator reference
	CoverImage      string // empty when the backend has none; callers render their own fallback
	AudioURL        string
	CreatorID       string
	Type            Type
	PaymentType     PaymentType
	Price           float64 // only meaningful for paid beats
	CreatorWhatsapp string
	Plays           int
	Likes           int
	Duration        time.Duration
}

// Playable reports whether the track carries a usable audio URL.
// Tracks that fail this check must never reach the audio engine.
func (t Track) Playable() bool {
	return strings.TrimSpace(t.AudioURL) != ""
}

// Paid reports whether the track is a paid beat subject to preview limiting.
func (t Track) Paid() bool {
	return t.PaymentType == PaymentPaid
}
