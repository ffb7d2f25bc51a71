package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/muzikax/pulse/internal/track"
)

func tr(id string) track.Track {
	return track.Track{ID: id, Title: "Track " + id}
}

func ids(tracks []track.Track) []string {
	out := make([]string, len(tracks))
	for i, t := range tracks {
		out[i] = t.ID
	}
	return out
}

func TestEnqueue_DeduplicatesByID(t *testing.T) {
	q := New()

	assert.True(t, q.Enqueue(tr("a")))
	assert.False(t, q.Enqueue(tr("a")), "duplicate enqueue should be rejected")
	assert.Equal(t, 1, q.Len())
}

func TestEnqueueAll_ReturnsAddedCount(t *testing.T) {
	q := New()
	q.Enqueue(tr("a"))

	added := q.EnqueueAll([]track.Track{tr("a"), tr("b"), tr("c")})

	assert.Equal(t, 2, added)
	assert.Equal(t, []string{"a", "b", "c"}, ids(q.Tracks()))
}

func TestDequeueFront(t *testing.T) {
	q := New()
	q.Enqueue(tr("a"))
	q.Enqueue(tr("b"))

	got, ok := q.DequeueFront()
	assert.True(t, ok)
	assert.Equal(t, "a", got.ID)
	assert.Equal(t, 1, q.Len())

	q.DequeueFront()
	_, ok = q.DequeueFront()
	assert.False(t, ok, "dequeue on empty queue should fail")
}

func TestRemoveByID(t *testing.T) {
	q := New()
	q.Enqueue(tr("a"))
	q.Enqueue(tr("b"))
	q.Enqueue(tr("c"))

	assert.True(t, q.RemoveByID("b"))
	assert.False(t, q.RemoveByID("missing"))
	assert.Equal(t, []string{"a", "c"}, ids(q.Tracks()))
}

func TestTakeByID(t *testing.T) {
	q := New()
	q.Enqueue(tr("a"))
	q.Enqueue(tr("b"))

	got, ok := q.TakeByID("b")
	assert.True(t, ok)
	assert.Equal(t, "b", got.ID)
	assert.False(t, q.Contains("b"))

	_, ok = q.TakeByID("missing")
	assert.False(t, ok)
}

func TestReorder(t *testing.T) {
	q := New()
	q.Enqueue(tr("a"))
	q.Enqueue(tr("b"))
	q.Enqueue(tr("c"))

	assert.True(t, q.Reorder(0, 2))
	assert.Equal(t, []string{"b", "c", "a"}, ids(q.Tracks()))

	assert.True(t, q.Reorder(2, 0))
	assert.Equal(t, []string{"a", "b", "c"}, ids(q.Tracks()))
}

func TestReorder_OutOfRange(t *testing.T) {
	q := New()
	q.Enqueue(tr("a"))
	q.Enqueue(tr("b"))

	for _, c := range [][2]int{{-1, 0}, {0, 2}, {5, 0}, {1, 1}} {
		assert.False(t, q.Reorder(c[0], c[1]), "Reorder(%d, %d)", c[0], c[1])
	}
	assert.Equal(t, []string{"a", "b"}, ids(q.Tracks()))
}

func TestClear(t *testing.T) {
	q := New()
	q.Enqueue(tr("a"))
	q.Enqueue(tr("b"))

	q.Clear()

	assert.Equal(t, 0, q.Len())
}

func TestTracks_ReturnsCopy(t *testing.T) {
	q := New()
	q.Enqueue(tr("a"))

	got := q.Tracks()
	got[0].ID = "mutated"

	assert.Equal(t, "a", q.Tracks()[0].ID, "mutating Tracks() result must not affect the queue")
}
