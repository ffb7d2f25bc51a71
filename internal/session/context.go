package session

import (
	"github.com/muzikax/pulse/internal/track"
)

// ContextType tags what kind of collection playback is flowing through.
type ContextType string

const (
	ContextSingle   ContextType = "single"
	ContextPlaylist ContextType = "playlist"
	ContextAlbum    ContextType = "album"
)

// Context describes the active playback context. AlbumComplete is set once
// an album has been played through; continuation then behaves like a
// playlist of the album plus appended recommendations.
type Context struct {
	Type          ContextType
	AlbumID       string
	AlbumComplete bool
}

// AlbumRef identifies the album a play request belongs to.
type AlbumRef struct {
	ID string
}

// setContextLocked installs the playback context for a play request.
// Album and playlist contexts seed the queue with the tracks after the
// entry point so continuation drains them front-first. Switching to a
// single track stashes the previous list so playback can return to it.
func (s *Session) setContextLocked(t track.Track, opts PlayOptions) {
	if opts.PreserveIndex {
		if i := indexOf(s.list, t.ID); i >= 0 {
			s.index = i
		}
		return
	}

	switch {
	case opts.Album != nil:
		s.ctx = Context{Type: ContextAlbum, AlbumID: opts.Album.ID}
		s.list = cloneTracks(opts.ContextTracks)
		s.index = entryIndex(s.list, t.ID)
		s.seedQueueLocked()
	case len(opts.ContextTracks) > 0:
		s.ctx = Context{Type: ContextPlaylist}
		s.list = cloneTracks(opts.ContextTracks)
		s.index = entryIndex(s.list, t.ID)
		s.seedQueueLocked()
	default:
		s.storeOriginalLocked()
		s.ctx = Context{Type: ContextSingle}
		s.list = []track.Track{t}
		s.index = 0
	}
}

// seedQueueLocked enqueues the context tracks after the current index,
// skipping unplayable records and anything already queued.
func (s *Session) seedQueueLocked() {
	for i := s.index + 1; i < len(s.list); i++ {
		if !s.list[i].Playable() {
			continue
		}
		s.q.Enqueue(s.list[i])
	}
}

// storeOriginalLocked remembers the active list before a single-track
// interruption so continuation can fall back to it.
func (s *Session) storeOriginalLocked() {
	if s.ctx.Type != ContextSingle && len(s.list) > 0 {
		s.original = cloneTracks(s.list)
	}
}

// entryIndex locates the entry track in its context list. A track missing
// from its own list plays as if it were first, so continuation starts from
// the top of the list.
func entryIndex(tracks []track.Track, id string) int {
	if i := indexOf(tracks, id); i >= 0 {
		return i
	}
	return 0
}

func indexOf(tracks []track.Track, id string) int {
	for i, t := range tracks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func cloneTracks(tracks []track.Track) []track.Track {
	if len(tracks) == 0 {
		return nil
	}
	out := make([]track.Track, len(tracks))
	copy(out, tracks)
	return out
}
