package session

import (
	"go.uber.org/zap"

	"github.com/muzikax/pulse/internal/track"
)

// advance resolves what plays next, in fixed order: nothing when stopped,
// the next playlist track, the queue front, album continuation, a
// recommendation for a single track, recommendations for an exhausted
// playlist, then stop. Everything continuation resolves plays as an
// auto-advance, whether the step was triggered by track end or by an
// explicit skip.
func (s *Session) advance() {
	s.mu.Lock()

	if s.current == nil {
		s.mu.Unlock()
		return
	}
	cur := *s.current
	gen := s.gen

	// Next track of a playlist context.
	if s.ctx.Type == ContextPlaylist && s.index+1 < len(s.list) {
		next := s.index + 1
		s.mu.Unlock()
		s.playTrackAtIndex(next, true)
		return
	}

	// Queued tracks play before any context continuation.
	if t, ok := s.q.DequeueFront(); ok {
		s.mu.Unlock()
		s.emitQueueChanged()
		s.playTrack(t, PlayOptions{AutoAdvance: true, PreserveIndex: true}, false)
		return
	}

	switch s.ctx.Type {
	case ContextAlbum:
		s.advanceAlbumLocked(cur, gen)
	case ContextSingle:
		s.advanceSingleLocked(cur, gen)
	case ContextPlaylist:
		s.advancePlaylistLocked(cur, gen)
	default:
		s.mu.Unlock()
		s.StopTrack()
	}
}

// advanceAlbumLocked continues within the album, then marks it complete and
// flows into recommendations as a playlist. Called with the mutex held;
// releases it.
func (s *Session) advanceAlbumLocked(cur track.Track, gen uint64) {
	if s.index+1 < len(s.list) {
		next := s.index + 1
		s.mu.Unlock()
		s.playTrackAtIndex(next, true)
		return
	}

	s.ctx.AlbumComplete = true
	s.log.Debug("album complete", zap.String("album", s.ctx.AlbumID))

	recs, ok := s.fetchRecommendationsLocked(cur.ID, gen)
	if !ok {
		s.mu.Unlock()
		return
	}
	if len(recs) == 0 {
		s.mu.Unlock()
		s.StopTrack()
		return
	}

	next := len(s.list)
	s.list = append(s.list, recs...)
	s.ctx = Context{Type: ContextPlaylist}
	s.mu.Unlock()
	s.playTrackAtIndex(next, true)
}

// advanceSingleLocked continues a single track with a recommendation,
// falling back to the playlist that was active before the interruption.
// Called with the mutex held; releases it.
func (s *Session) advanceSingleLocked(cur track.Track, gen uint64) {
	recs, ok := s.fetchRecommendationsLocked(cur.ID, gen)
	if !ok {
		s.mu.Unlock()
		return
	}

	if len(recs) > 0 {
		s.mu.Unlock()
		s.playTrack(recs[0], PlayOptions{AutoAdvance: true, PreserveIndex: true}, false)
		return
	}

	if len(s.original) > 0 {
		s.list = cloneTracks(s.original)
		s.ctx = Context{Type: ContextPlaylist}
		next := 0
		if i := indexOf(s.list, cur.ID); i >= 0 {
			next = (i + 1) % len(s.list)
		}
		s.mu.Unlock()
		s.playTrackAtIndex(next, true)
		return
	}

	s.mu.Unlock()
	s.StopTrack()
}

// advancePlaylistLocked extends an exhausted playlist with recommendations.
// Called with the mutex held; releases it.
func (s *Session) advancePlaylistLocked(cur track.Track, gen uint64) {
	if len(s.list) == 0 {
		s.mu.Unlock()
		s.StopTrack()
		return
	}

	recs, ok := s.fetchRecommendationsLocked(cur.ID, gen)
	if !ok {
		s.mu.Unlock()
		return
	}
	if len(recs) == 0 {
		s.mu.Unlock()
		s.StopTrack()
		return
	}

	next := len(s.list)
	s.list = append(s.list, recs...)
	s.mu.Unlock()
	s.playTrackAtIndex(next, true)
}

// fetchRecommendationsLocked fetches recommendations seeded by the given
// track. The mutex is released during the fetch and re-acquired before
// returning; ok is false when playback moved on in the meantime and the
// result must be discarded. Fetch errors are logged and yield an empty
// result, which continuation treats as "nothing to play".
func (s *Session) fetchRecommendationsLocked(seedID string, gen uint64) ([]track.Track, bool) {
	s.mu.Unlock()

	ctx, cancel := backendContext()
	raws, err := s.backend.Recommendations(ctx, seedID, recommendationLimit)
	cancel()
	if err != nil {
		s.log.Warn("recommendation fetch failed", zap.String("seed", seedID), zap.Error(err))
		raws = nil
	}

	s.mu.Lock()
	if s.gen != gen || s.current == nil || s.current.ID != seedID {
		return nil, false
	}

	tracks := make([]track.Track, 0, len(raws))
	for _, t := range track.ResolveAll(raws) {
		if t.Playable() {
			tracks = append(tracks, t)
		}
	}
	return tracks, true
}
