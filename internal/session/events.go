package session

import (
	"time"

	"github.com/muzikax/pulse/internal/preview"
	"github.com/muzikax/pulse/internal/track"
)

// TrackChange is emitted when playback moves to a different track, or to
// none at all after a stop. AutoAdvance distinguishes continuation from an
// explicit user action; auto-advanced tracks must not expand a minimized
// player.
type TrackChange struct {
	Previous    *track.Track
	Current     *track.Track
	Index       int
	AutoAdvance bool
}

// StateChange is emitted when playback starts or pauses.
type StateChange struct {
	Playing bool
}

// PositionChange is emitted on every position tick.
type PositionChange struct {
	Position time.Duration
	Duration time.Duration
}

// QueueChange is emitted when the queue contents change.
type QueueChange struct {
	Tracks []track.Track
}

// PreviewLimited is emitted when a paid beat hits its preview limit.
type PreviewLimited struct {
	Prompt preview.Prompt
}

// PaymentRequired is emitted when a paid beat with a price is played
// without a prior purchase. Playback proceeds preview-limited.
type PaymentRequired struct {
	Track track.Track
}

// TrackUpdated is emitted when a track's favorite flag flips.
type TrackUpdated struct {
	TrackID    string
	IsFavorite bool
}

// FavoritesLoaded is emitted once the user's favorites have been fetched.
type FavoritesLoaded struct {
	Count int
}

// NoticeKind classifies a Notice.
type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	NoticeSuccess
	NoticeError
)

// Notice is a short user-facing message, the embedding surface's toast.
type Notice struct {
	Message string
	Kind    NoticeKind
}

// ErrorEvent is emitted when an operation fails in a way worth surfacing.
type ErrorEvent struct {
	Op      string // e.g. "play", "load"
	TrackID string
	Err     error
}
