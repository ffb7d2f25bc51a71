package session

import (
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/muzikax/pulse/internal/track"
)

// PlayOptions shape a play request.
//
// ContextTracks establishes a playlist context containing the track; Album
// additionally tags it as an album. PreserveIndex keeps the current context,
// list and index untouched and only swaps the playing track; continuation
// within an established context uses it.
type PlayOptions struct {
	ContextTracks []track.Track
	Album         *AlbumRef
	AutoAdvance   bool
	PreserveIndex bool
}

// PlayTrack starts playback of a track, establishing its context.
func (s *Session) PlayTrack(t track.Track, opts PlayOptions) {
	s.playTrack(t, opts, false)
}

// PlayTrackAfterPurchase plays a paid track without raising PaymentRequired.
func (s *Session) PlayTrackAfterPurchase(t track.Track, opts PlayOptions) {
	s.playTrack(t, opts, true)
}

func (s *Session) playTrack(t track.Track, opts PlayOptions, afterPurchase bool) {
	if !t.Playable() {
		s.log.Warn("refusing track without audio url", zap.String("track", t.ID), zap.String("title", t.Title))
		s.emitError(ErrorEvent{Op: "play", TrackID: t.ID, Err: ErrNotPlayable})
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	paymentDue := t.Paid() && t.Price > 0 && !afterPurchase

	// Replaying the current track resumes it instead of reloading.
	if s.current != nil && s.current.ID == t.ID {
		playing := s.isPlaying
		s.mu.Unlock()
		if paymentDue {
			s.forEachSub(func(sub *Subscription) { sub.sendPayment(PaymentRequired{Track: t}) })
		}
		if !playing {
			if err := s.engine.Play(); err != nil {
				s.log.Warn("resume failed", zap.String("track", t.ID), zap.Error(err))
			}
		}
		return
	}

	s.gen++
	gen := s.gen
	s.setContextLocked(t, opts)
	dequeued := s.q.RemoveByID(t.ID)
	s.gate.Arm(t)

	prev := s.current
	tc := t
	s.current = &tc
	s.progress = 0
	s.duration = t.Duration
	s.previewLimited = false
	s.isPlaying = false
	if !opts.AutoAdvance {
		// Explicit plays expand a minimized player; auto-advance keeps it.
		s.minimized = false
	}
	index := s.index
	s.mu.Unlock()

	if dequeued {
		s.emitQueueChanged()
	}
	if paymentDue {
		s.forEachSub(func(sub *Subscription) { sub.sendPayment(PaymentRequired{Track: t}) })
	}
	s.forEachSub(func(sub *Subscription) {
		sub.sendTrack(TrackChange{Previous: prev, Current: &tc, Index: index, AutoAdvance: opts.AutoAdvance})
	})

	go s.recordPlay(t)

	if err := s.engine.Load(t.AudioURL); err != nil {
		s.log.Error("load track", zap.String("track", t.ID), zap.Error(err))
		s.emitError(ErrorEvent{Op: "load", TrackID: t.ID, Err: err})
		go s.reportInvalid(t)
		return
	}

	s.mu.Lock()
	stale := s.gen != gen || s.current == nil || s.current.ID != t.ID
	s.mu.Unlock()
	if stale {
		return
	}

	if err := s.engine.Play(); err != nil {
		// The track stays current but paused; the user can retry.
		s.log.Error("start playback", zap.String("track", t.ID), zap.Error(err))
	}
}

// RestoreTrack reinstates the last track of a previous run, loaded but
// paused. No play is recorded and no payment prompt fires; the user has
// not asked to play anything yet. Ignored once a track is already
// current, playback in progress wins over saved state.
func (s *Session) RestoreTrack(t track.Track) {
	if !t.Playable() {
		return
	}

	s.mu.Lock()
	if s.closed || s.current != nil {
		s.mu.Unlock()
		return
	}
	s.gen++
	gen := s.gen
	s.ctx = Context{Type: ContextSingle}
	s.list = []track.Track{t}
	s.index = 0
	s.gate.Arm(t)
	tc := t
	s.current = &tc
	s.progress = 0
	s.duration = t.Duration
	s.previewLimited = false
	s.isPlaying = false
	s.mu.Unlock()

	s.forEachSub(func(sub *Subscription) {
		sub.sendTrack(TrackChange{Current: &tc, Index: 0})
	})

	if err := s.engine.Load(t.AudioURL); err != nil {
		s.log.Warn("restore load failed", zap.String("track", t.ID), zap.Error(err))
		s.mu.Lock()
		if s.gen == gen && s.current != nil && s.current.ID == t.ID {
			s.current = nil
		}
		s.mu.Unlock()
	}
}

// playTrackAtIndex plays a track of the current context list in place.
func (s *Session) playTrackAtIndex(i int, auto bool) {
	s.mu.Lock()
	if i < 0 || i >= len(s.list) {
		s.mu.Unlock()
		return
	}
	t := s.list[i]
	s.index = i
	s.mu.Unlock()
	s.playTrack(t, PlayOptions{AutoAdvance: auto, PreserveIndex: true}, false)
}

// PlayNextTrack advances playback using the continuation order. The
// resolved track plays as an auto-advance, so skipping does not expand a
// minimized player.
func (s *Session) PlayNextTrack() {
	s.advance()
}

// PlayPreviousTrack steps back through the context list, wrapping to the
// end from the first track.
func (s *Session) PlayPreviousTrack() {
	s.mu.Lock()
	if len(s.list) == 0 {
		s.mu.Unlock()
		return
	}
	prev := s.index - 1
	if prev < 0 {
		prev = len(s.list) - 1
	}
	s.mu.Unlock()
	s.playTrackAtIndex(prev, false)
}

// PauseTrack pauses playback.
func (s *Session) PauseTrack() {
	s.engine.Pause()
}

// TogglePlayPause flips between playing and paused. No-op without a track.
func (s *Session) TogglePlayPause() {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return
	}
	playing := s.isPlaying
	s.mu.Unlock()

	if playing {
		s.engine.Pause()
		return
	}
	if err := s.engine.Play(); err != nil {
		s.log.Warn("resume failed", zap.Error(err))
	}
}

// StopTrack stops playback and clears the current track. The context list
// and index are preserved so Previous/Next still work afterwards.
func (s *Session) StopTrack() {
	s.mu.Lock()
	prev := s.current
	s.current = nil
	s.isPlaying = false
	s.progress = 0
	s.previewLimited = false
	s.gen++
	index := s.index
	s.mu.Unlock()

	s.engine.Stop()

	if prev != nil {
		s.forEachSub(func(sub *Subscription) {
			sub.sendTrack(TrackChange{Previous: prev, Current: nil, Index: index})
		})
	}
}

// SeekTo seeks to an absolute position.
func (s *Session) SeekTo(pos time.Duration) {
	if pos < 0 {
		pos = 0
	}
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return
	}
	s.progress = pos
	dur := s.duration
	s.mu.Unlock()

	s.engine.Seek(pos)
	s.forEachSub(func(sub *Subscription) {
		sub.sendPosition(PositionChange{Position: pos, Duration: dur})
	})
}

// SetVolume sets the volume level, clamped to [0, 1].
func (s *Session) SetVolume(level float64) {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	s.mu.Lock()
	s.volume = level
	s.mu.Unlock()
	s.engine.SetVolume(level)
}

// Volume returns the current volume level.
func (s *Session) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// SetPlaybackRate sets the playback speed. Only the fixed rate set is
// accepted.
func (s *Session) SetPlaybackRate(rate float64) error {
	valid := false
	for _, r := range playbackRates {
		if r == rate {
			valid = true
			break
		}
	}
	if !valid {
		return ErrInvalidRate
	}
	s.mu.Lock()
	s.rate = rate
	s.mu.Unlock()
	s.engine.SetRate(rate)
	return nil
}

// PlaybackRate returns the current playback speed.
func (s *Session) PlaybackRate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rate
}

// SetLooping sets single-track looping.
func (s *Session) SetLooping(looping bool) {
	s.mu.Lock()
	s.looping = looping
	s.mu.Unlock()
}

// ToggleLoop flips single-track looping and returns the new state.
func (s *Session) ToggleLoop() bool {
	s.mu.Lock()
	s.looping = !s.looping
	looping := s.looping
	s.mu.Unlock()
	return looping
}

// ToggleMinimized flips the minimized flag and returns the new state.
func (s *Session) ToggleMinimized() bool {
	s.mu.Lock()
	s.minimized = !s.minimized
	min := s.minimized
	s.mu.Unlock()
	return min
}

// ShuffleResult reports the outcome of a shuffle request.
type ShuffleResult struct {
	Shuffled bool
	Changed  bool
	Length   int
	NewIndex int
}

// ShufflePlaylist shuffles the context list in place, keeping the current
// track's index pointing at it. Lists shorter than two tracks are left
// alone and reported as not shuffled.
func (s *Session) ShufflePlaylist() ShuffleResult {
	s.mu.Lock()
	if len(s.list) < 2 {
		res := ShuffleResult{Length: len(s.list), NewIndex: s.index}
		s.mu.Unlock()
		return res
	}

	before := make([]string, len(s.list))
	for i, t := range s.list {
		before[i] = t.ID
	}

	for i := len(s.list) - 1; i > 0; i-- {
		j := rand.IntN(i + 1)
		s.list[i], s.list[j] = s.list[j], s.list[i]
	}

	changed := false
	for i, t := range s.list {
		if t.ID != before[i] {
			changed = true
			break
		}
	}

	if s.current != nil {
		s.index = indexOf(s.list, s.current.ID)
	}
	res := ShuffleResult{Shuffled: true, Changed: changed, Length: len(s.list), NewIndex: s.index}
	s.mu.Unlock()

	s.emitNotice("Playlist shuffled", NoticeSuccess)
	return res
}

// Engine callbacks. These run on engine goroutines.

func (s *Session) handlePlayState(playing bool) {
	s.mu.Lock()
	s.isPlaying = playing
	// Resuming after a preview pause re-arms the gate, so the limit fires
	// again instead of letting the rest of a paid beat play for free.
	if playing && s.previewLimited && s.current != nil {
		s.gate.Arm(*s.current)
		s.previewLimited = false
	}
	s.mu.Unlock()
	s.forEachSub(func(sub *Subscription) { sub.sendState(StateChange{Playing: playing}) })
}

func (s *Session) handleTime(pos, dur time.Duration) {
	s.mu.Lock()
	s.progress = pos
	if dur > 0 {
		s.duration = dur
	}
	prompt := s.gate.Observe(pos)
	if prompt != nil {
		s.previewLimited = true
	}
	s.mu.Unlock()

	s.forEachSub(func(sub *Subscription) {
		sub.sendPosition(PositionChange{Position: pos, Duration: dur})
	})

	if prompt != nil {
		s.engine.Pause()
		s.log.Info("preview limit reached", zap.String("track", prompt.TrackID))
		s.forEachSub(func(sub *Subscription) { sub.sendPreview(PreviewLimited{Prompt: *prompt}) })
	}
}

func (s *Session) handleEnded() {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return
	}
	looping := s.looping
	s.mu.Unlock()

	if looping {
		s.engine.Seek(0)
		if err := s.engine.Play(); err != nil {
			s.log.Warn("loop restart failed", zap.Error(err))
		}
		return
	}
	s.advance()
}

// handleError surfaces a playback failure and reports the track to the
// backend for validation. Playback does not auto-advance; a decode failure
// mid-track could otherwise cascade through the whole list.
func (s *Session) handleError(err error) {
	s.mu.Lock()
	cur := s.current
	s.isPlaying = false
	s.mu.Unlock()

	var trackID string
	if cur != nil {
		trackID = cur.ID
	}
	s.log.Error("playback error", zap.String("track", trackID), zap.Error(err))
	s.emitError(ErrorEvent{Op: "playback", TrackID: trackID, Err: err})

	if cur != nil {
		go s.reportInvalid(*cur)
	}
}

// recordPlay reports the play to the backend: the play count once per
// session, and the listening history when signed in.
func (s *Session) recordPlay(t track.Track) {
	s.mu.Lock()
	_, seen := s.visited[t.ID]
	if !seen {
		s.visited[t.ID] = struct{}{}
	}
	s.mu.Unlock()

	ctx, cancel := backendContext()
	defer cancel()

	if !seen {
		if err := s.backend.IncrementPlayCount(ctx, t.ID); err != nil {
			s.log.Debug("play count report failed", zap.String("track", t.ID), zap.Error(err))
		}
	}
	if s.backend.HasToken() {
		if err := s.backend.AddRecentlyPlayed(ctx, t.ID); err != nil {
			s.log.Debug("recently played report failed", zap.String("track", t.ID), zap.Error(err))
		}
	}
}

func (s *Session) reportInvalid(t track.Track) {
	ctx, cancel := backendContext()
	defer cancel()

	res, err := s.backend.ReportInvalidTrack(ctx, t.ID)
	if err != nil {
		s.log.Warn("invalid track report failed", zap.String("track", t.ID), zap.Error(err))
		return
	}
	if res.Removed {
		s.log.Info("backend removed invalid track",
			zap.String("track", t.ID), zap.String("title", res.TrackTitle))
	}
}
