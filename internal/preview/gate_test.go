package preview

import (
	"strings"
	"testing"
	"time"

	"github.com/muzikax/pulse/internal/track"
)

func paidBeat() track.Track {
	return track.Track{
		ID:              "b1",
		Title:           "Night Drive",
		Type:            track.TypeBeat,
		PaymentType:     track.PaymentPaid,
		Price:           5000,
		CreatorWhatsapp: "250790000000",
	}
}

func TestObserve_FiresOnceAtLimit(t *testing.T) {
	g := New()
	g.Arm(paidBeat())

	if p := g.Observe(39 * time.Second); p != nil {
		t.Fatal("Observe fired before the limit")
	}
	p := g.Observe(40 * time.Second)
	if p == nil {
		t.Fatal("Observe did not fire at the limit")
	}
	if g.Phase() != Limited {
		t.Errorf("Phase() = %v, want limited", g.Phase())
	}
	if p := g.Observe(41 * time.Second); p != nil {
		t.Error("Observe fired a second time for the same playback")
	}
}

func TestObserve_FreeTrackNeverFires(t *testing.T) {
	g := New()
	g.Arm(track.Track{ID: "t1", Title: "Free Song"})

	if g.Phase() != Idle {
		t.Errorf("Phase() = %v after arming free track, want idle", g.Phase())
	}
	if p := g.Observe(2 * time.Hour); p != nil {
		t.Error("Observe fired for a free track")
	}
}

func TestArm_ResetsLimitedPhase(t *testing.T) {
	g := New()
	g.Arm(paidBeat())
	g.Observe(40 * time.Second)

	g.Arm(paidBeat())

	if g.Phase() != Previewing {
		t.Errorf("Phase() = %v after re-arm, want previewing", g.Phase())
	}
	if p := g.Observe(40 * time.Second); p == nil {
		t.Error("Observe did not fire again after re-arm")
	}
}

func TestPrompt_Content(t *testing.T) {
	g := New()
	g.Arm(paidBeat())

	p := g.Observe(Limit)
	if p == nil {
		t.Fatal("Observe did not fire")
	}

	if p.TrackID != "b1" || p.Title != "Night Drive" {
		t.Errorf("prompt identity = %q/%q, want b1/Night Drive", p.TrackID, p.Title)
	}
	if !strings.Contains(p.Message, `40-second preview for "Night Drive"`) {
		t.Errorf("Message = %q, missing preview phrase", p.Message)
	}
	if !strings.HasPrefix(p.ContactURL, "https://wa.me/250790000000?text=") {
		t.Errorf("ContactURL = %q, want wa.me link for creator number", p.ContactURL)
	}
	if !strings.Contains(p.ContactURL, "MuzikaX") {
		t.Errorf("ContactURL = %q, encoded message should mention MuzikaX", p.ContactURL)
	}
	if strings.Contains(p.ContactURL, " ") {
		t.Errorf("ContactURL = %q, contains unencoded spaces", p.ContactURL)
	}
}

func TestPrompt_NoContactWithoutWhatsapp(t *testing.T) {
	g := New()
	beat := paidBeat()
	beat.CreatorWhatsapp = ""
	g.Arm(beat)

	p := g.Observe(Limit)
	if p == nil {
		t.Fatal("Observe did not fire")
	}
	if p.ContactURL != "" {
		t.Errorf("ContactURL = %q, want empty without creator contact", p.ContactURL)
	}
}
