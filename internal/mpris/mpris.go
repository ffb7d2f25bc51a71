//go:build linux

// Package mpris exposes the playback session on the desktop media bus.
package mpris

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/muzikax/pulse/internal/session"
)

// Adapter connects a playback session to MPRIS over D-Bus.
type Adapter struct {
	session *session.Session
	server  *server.Server
}

// New creates and starts a new MPRIS adapter.
func New(s *session.Session) (*Adapter, error) {
	a := &Adapter{
		session: s,
	}

	rootAdapter := &rootAdapter{}
	playerAdapter := &playerAdapter{session: s}

	a.server = server.NewServer("pulse", rootAdapter, playerAdapter)

	// Start the server in background
	go func() {
		_ = a.server.Listen()
	}()

	return a, nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	return nil // Not supported - daemon manages its own lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return "MuzikaX Pulse", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"http", "https"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/flac", "audio/ogg"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter and optional interfaces.
type playerAdapter struct {
	session *session.Session
}

func (p *playerAdapter) Next() error {
	p.session.PlayNextTrack()
	return nil
}

func (p *playerAdapter) Previous() error {
	p.session.PlayPreviousTrack()
	return nil
}

func (p *playerAdapter) Pause() error {
	p.session.PauseTrack()
	return nil
}

func (p *playerAdapter) PlayPause() error {
	p.session.TogglePlayPause()
	return nil
}

func (p *playerAdapter) Stop() error {
	p.session.StopTrack()
	return nil
}

func (p *playerAdapter) Play() error {
	p.session.TogglePlayPause()
	return nil
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	snap := p.session.Snapshot()
	p.session.SeekTo(snap.Progress + time.Duration(offset)*time.Microsecond)
	return nil
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	p.session.SeekTo(time.Duration(position) * time.Microsecond)
	return nil
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil // Not supported
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	snap := p.session.Snapshot()
	switch {
	case snap.Current == nil:
		return types.PlaybackStatusStopped, nil
	case snap.Playing:
		return types.PlaybackStatusPlaying, nil
	default:
		return types.PlaybackStatusPaused, nil
	}
}

func (p *playerAdapter) Rate() (float64, error) {
	return p.session.PlaybackRate(), nil
}

func (p *playerAdapter) SetRate(rate float64) error {
	return p.session.SetPlaybackRate(rate)
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	snap := p.session.Snapshot()
	if snap.Current == nil {
		return types.Metadata{}, nil
	}
	t := snap.Current

	meta := types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(t.ID)),
		Length:  types.Microseconds(snap.Duration.Microseconds()),
		Title:   t.Title,
		Artist:  []string{t.Artist},
	}
	if t.CoverImage != "" {
		meta.ArtUrl = t.CoverImage
	}

	return meta, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return p.session.Volume(), nil
}

func (p *playerAdapter) SetVolume(level float64) error {
	p.session.SetVolume(level)
	return nil
}

func (p *playerAdapter) Position() (int64, error) {
	return p.session.Snapshot().Progress.Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 0.5, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 2.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	snap := p.session.Snapshot()
	return len(snap.Tracks) > 0, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.session.Snapshot().Current != nil, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

// LoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) LoopStatus() (types.LoopStatus, error) {
	if p.session.Snapshot().Looping {
		return types.LoopStatusTrack, nil
	}
	return types.LoopStatusNone, nil
}

// SetLoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) SetLoopStatus(status types.LoopStatus) error {
	p.session.SetLooping(status == types.LoopStatusTrack)
	return nil
}

// Shuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) Shuffle() (bool, error) {
	return false, nil // One-shot shuffle, not a persistent mode
}

// SetShuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) SetShuffle(shuffle bool) error {
	if shuffle {
		p.session.ShufflePlaylist()
	}
	return nil
}

func formatTrackID(id string) string {
	h := fnv.New64a()
	h.Write([]byte(id))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
