package session

import (
	"context"
	"fmt"

	"github.com/muzikax/pulse/internal/track"
)

// AddToQueue appends a track to the queue. Duplicates are ignored.
func (s *Session) AddToQueue(t track.Track) bool {
	s.mu.Lock()
	added := s.q.Enqueue(t)
	s.mu.Unlock()
	if added {
		s.emitQueueChanged()
	}
	return added
}

// RemoveFromQueue removes a track from the queue by id.
func (s *Session) RemoveFromQueue(id string) bool {
	s.mu.Lock()
	removed := s.q.RemoveByID(id)
	s.mu.Unlock()
	if removed {
		s.emitQueueChanged()
	}
	return removed
}

// MoveQueueItem moves a queued track from one position to another.
func (s *Session) MoveQueueItem(from, to int) bool {
	s.mu.Lock()
	moved := s.q.Reorder(from, to)
	s.mu.Unlock()
	if moved {
		s.emitQueueChanged()
	}
	return moved
}

// ClearQueue empties the queue.
func (s *Session) ClearQueue() {
	s.mu.Lock()
	s.q.Clear()
	s.mu.Unlock()
	s.emitQueueChanged()
}

// Queue returns a copy of the queued tracks in order.
func (s *Session) Queue() []track.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.Tracks()
}

// PlayFromQueue pulls a track out of the queue and plays it immediately.
// The active context is kept so continuation resumes it afterwards.
func (s *Session) PlayFromQueue(id string) bool {
	s.mu.Lock()
	t, ok := s.q.TakeByID(id)
	hasContext := len(s.list) > 0
	s.mu.Unlock()
	if !ok {
		return false
	}

	s.emitQueueChanged()

	opts := PlayOptions{}
	if hasContext {
		opts.PreserveIndex = true
	}
	s.playTrack(t, opts, false)
	return true
}

// AddAlbumToQueue bulk-enqueues an album's tracks and announces how many
// were added.
func (s *Session) AddAlbumToQueue(tracks []track.Track) int {
	playable := make([]track.Track, 0, len(tracks))
	for _, t := range tracks {
		if t.Playable() {
			playable = append(playable, t)
		}
	}

	s.mu.Lock()
	added := s.q.EnqueueAll(playable)
	s.mu.Unlock()

	if added > 0 {
		s.emitQueueChanged()
	}
	s.emitNotice(fmt.Sprintf("Added %d tracks to queue", added), NoticeSuccess)
	return added
}

// AddRecommendationsToQueue fetches recommendations seeded by the current
// track and enqueues them, returning how many were added.
func (s *Session) AddRecommendationsToQueue(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = recommendationLimit
	}

	s.mu.Lock()
	var seed string
	if s.current != nil {
		seed = s.current.ID
	}
	s.mu.Unlock()

	raws, err := s.backend.Recommendations(ctx, seed, limit)
	if err != nil {
		return 0, fmt.Errorf("fetch recommendations: %w", err)
	}

	playable := make([]track.Track, 0, len(raws))
	for _, t := range track.ResolveAll(raws) {
		if t.Playable() {
			playable = append(playable, t)
		}
	}

	s.mu.Lock()
	added := s.q.EnqueueAll(playable)
	s.mu.Unlock()

	if added > 0 {
		s.emitQueueChanged()
		s.emitNotice(fmt.Sprintf("Added %d tracks to queue", added), NoticeSuccess)
	}
	return added, nil
}
