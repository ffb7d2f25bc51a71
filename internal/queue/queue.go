// Package queue implements the user-managed play queue. Queued tracks are
// consumed front-first during continuation and are independent of the
// playback context list.
package queue

import "github.com/muzikax/pulse/internal/track"

// Queue is an ordered, duplicate-free play queue. It is not safe for
// concurrent use; the owning session serializes access.
type Queue struct {
	tracks []track.Track
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{}
}

// Enqueue appends a track and reports whether it was added. Tracks already
// queued are skipped.
func (q *Queue) Enqueue(t track.Track) bool {
	if q.Contains(t.ID) {
		return false
	}
	q.tracks = append(q.tracks, t)
	return true
}

// EnqueueAll appends the given tracks, skipping duplicates, and returns the
// number actually added.
func (q *Queue) EnqueueAll(tracks []track.Track) int {
	added := 0
	for _, t := range tracks {
		if q.Enqueue(t) {
			added++
		}
	}
	return added
}

// DequeueFront removes and returns the first track.
func (q *Queue) DequeueFront() (track.Track, bool) {
	if len(q.tracks) == 0 {
		return track.Track{}, false
	}
	t := q.tracks[0]
	q.tracks = q.tracks[1:]
	return t, true
}

// RemoveByID removes the track with the given id, if present.
func (q *Queue) RemoveByID(id string) bool {
	for i, t := range q.tracks {
		if t.ID == id {
			q.tracks = append(q.tracks[:i], q.tracks[i+1:]...)
			return true
		}
	}
	return false
}

// TakeByID removes and returns the track with the given id.
func (q *Queue) TakeByID(id string) (track.Track, bool) {
	for i, t := range q.tracks {
		if t.ID == id {
			q.tracks = append(q.tracks[:i], q.tracks[i+1:]...)
			return t, true
		}
	}
	return track.Track{}, false
}

// Reorder moves the track at index from to index to. Out-of-range indices
// leave the queue unchanged.
func (q *Queue) Reorder(from, to int) bool {
	if from < 0 || from >= len(q.tracks) || to < 0 || to >= len(q.tracks) || from == to {
		return false
	}
	t := q.tracks[from]
	q.tracks = append(q.tracks[:from], q.tracks[from+1:]...)
	q.tracks = append(q.tracks[:to], append([]track.Track{t}, q.tracks[to:]...)...)
	return true
}

// Clear empties the queue.
func (q *Queue) Clear() {
	q.tracks = nil
}

// Contains reports whether a track with the given id is queued.
func (q *Queue) Contains(id string) bool {
	for _, t := range q.tracks {
		if t.ID == id {
			return true
		}
	}
	return false
}

// Tracks returns a copy of the queued tracks in order.
func (q *Queue) Tracks() []track.Track {
	out := make([]track.Track, len(q.tracks))
	copy(out, q.tracks)
	return out
}

// Len returns the number of queued tracks.
func (q *Queue) Len() int {
	return len(q.tracks)
}
