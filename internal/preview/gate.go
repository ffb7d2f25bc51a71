// Package preview enforces the listening limit on paid beats. Paid tracks
// stop after a fixed preview window and surface a purchase prompt pointing
// at the creator's WhatsApp contact.
package preview

import (
	"fmt"
	"net/url"
	"time"

	"github.com/muzikax/pulse/internal/track"
)

// Limit is how much of a paid beat can be heard per playback.
const Limit = 40 * time.Second

// Phase is the gate's per-track state.
type Phase int

const (
	Idle Phase = iota
	Previewing
	Limited
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Previewing:
		return "previewing"
	case Limited:
		return "limited"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Prompt is the purchase prompt raised when the preview window closes.
type Prompt struct {
	TrackID    string
	Title      string
	Message    string
	ContactURL string // empty when the creator has no WhatsApp contact
}

// Gate tracks the preview window for the currently armed track. It is not
// safe for concurrent use; the owning session serializes access.
type Gate struct {
	current track.Track
	phase   Phase
}

// New creates a disarmed gate.
func New() *Gate {
	return &Gate{}
}

// Arm resets the gate for a new playback of the given track. Replaying the
// same track re-arms it; the limit applies per playback, not per track.
func (g *Gate) Arm(t track.Track) {
	g.current = t
	g.phase = Idle
	if t.Paid() {
		g.phase = Previewing
	}
}

// Phase returns the gate's current phase.
func (g *Gate) Phase() Phase {
	return g.phase
}

// Observe feeds a playback position into the gate. It returns a non-nil
// Prompt exactly once per armed playback, the first time a paid track
// crosses the limit. Free tracks never prompt.
func (g *Gate) Observe(pos time.Duration) *Prompt {
	if g.phase != Previewing || pos < Limit {
		return nil
	}
	g.phase = Limited
	return buildPrompt(g.current)
}

func buildPrompt(t track.Track) *Prompt {
	p := &Prompt{
		TrackID: t.ID,
		Title:   t.Title,
		Message: fmt.Sprintf(`You've reached the 40-second preview for "%s". To get the full version, please contact the creator via WhatsApp.`, t.Title),
	}
	if t.CreatorWhatsapp != "" {
		msg := fmt.Sprintf(`Hi, I'm interested in the full version of your beat "%s" that I found on MuzikaX. I've listened to the 40-second preview and would like to purchase the full version.`, t.Title)
		p.ContactURL = fmt.Sprintf("https://wa.me/%s?text=%s", t.CreatorWhatsapp, url.QueryEscape(msg))
	}
	return p
}
