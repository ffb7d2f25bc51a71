// Package session implements the playback session: one listening surface's
// current track, context, queue, preview gating and user library state. All
// mutable state lives behind the session mutex; engine callbacks re-enter
// the session on engine goroutines, so no engine method is ever called with
// the mutex held.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/muzikax/pulse/internal/api"
	"github.com/muzikax/pulse/internal/engine"
	"github.com/muzikax/pulse/internal/preview"
	"github.com/muzikax/pulse/internal/queue"
	"github.com/muzikax/pulse/internal/track"
)

var (
	// ErrNotPlayable is raised for tracks without a usable audio URL.
	ErrNotPlayable = errors.New("track is not playable")
	// ErrInvalidRate is returned for playback rates outside the fixed set.
	ErrInvalidRate = errors.New("invalid playback rate")
	// ErrNotAuthenticated is returned for library operations without a token.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// playbackRates are the selectable playback speed multipliers.
var playbackRates = []float64{0.5, 0.75, 1, 1.25, 1.5, 2}

const (
	backendTimeout      = 10 * time.Second
	recommendationLimit = 10
)

// Backend is the slice of the MuzikaX API the session depends on.
type Backend interface {
	Recommendations(ctx context.Context, seedTrackID string, limit int) ([]track.RawTrack, error)
	IncrementPlayCount(ctx context.Context, trackID string) error
	AddRecentlyPlayed(ctx context.Context, trackID string) error
	Favorites(ctx context.Context) ([]track.RawTrack, error)
	AddFavorite(ctx context.Context, trackID string) error
	RemoveFavorite(ctx context.Context, trackID string) error
	Playlists(ctx context.Context) ([]api.RawPlaylist, error)
	CreatePlaylist(ctx context.Context, name, description string, isPublic bool, trackIDs []string) (*api.RawPlaylist, error)
	AddTrackToPlaylist(ctx context.Context, playlistID, trackID string) error
	ReportInvalidTrack(ctx context.Context, trackID string) (api.CleanupResult, error)
	HasToken() bool
}

// Verify the API client satisfies Backend at compile time.
var _ Backend = (*api.Client)(nil)

// Session is the playback session manager.
type Session struct {
	mu sync.Mutex

	id  uuid.UUID
	log *zap.Logger

	engine  engine.Engine
	backend Backend
	gate    *preview.Gate
	q       *queue.Queue

	ctx      Context
	list     []track.Track
	original []track.Track
	index    int
	current  *track.Track

	isPlaying      bool
	progress       time.Duration
	duration       time.Duration
	volume         float64
	rate           float64
	looping        bool
	minimized      bool
	previewLimited bool

	// visited holds track ids whose play count was already reported this
	// session; plays count once per session, not per spin.
	visited map[string]struct{}

	// gen increments on every play request and stop; async results carrying
	// a stale gen are discarded.
	gen uint64

	favorites       map[string]struct{}
	favoriteTracks  []track.Track
	userPlaylists   []Playlist
	favoritesLoaded bool

	subs   []*Subscription
	subsMu sync.RWMutex

	closed bool
}

// Snapshot is a point-in-time copy of the session state.
type Snapshot struct {
	Current        *track.Track
	Context        Context
	Tracks         []track.Track
	Index          int
	Queue          []track.Track
	Playing        bool
	Progress       time.Duration
	Duration       time.Duration
	Volume         float64
	Rate           float64
	Looping        bool
	Minimized      bool
	PreviewLimited bool
}

// New creates a session driving the given engine against the given backend.
func New(eng engine.Engine, backend Backend, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.New()
	s := &Session{
		id:        id,
		log:       log.Named("session").With(zap.String("session", id.String()[:8])),
		engine:    eng,
		backend:   backend,
		gate:      preview.New(),
		q:         queue.New(),
		index:     -1,
		volume:    1,
		rate:      1,
		visited:   make(map[string]struct{}),
		favorites: make(map[string]struct{}),
	}
	eng.SetCallbacks(engine.Callbacks{
		OnPlayState: s.handlePlayState,
		OnTime:      s.handleTime,
		OnEnded:     s.handleEnded,
		OnError:     s.handleError,
	})
	return s
}

// ID returns the session id.
func (s *Session) ID() uuid.UUID { return s.id }

// Subscribe creates a new event subscription.
func (s *Session) Subscribe() *Subscription {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	sub := newSubscription()
	s.subs = append(s.subs, sub)
	return sub
}

// Snapshot returns a copy of the current session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cur *track.Track
	if s.current != nil {
		c := *s.current
		cur = &c
	}
	return Snapshot{
		Current:        cur,
		Context:        s.ctx,
		Tracks:         cloneTracks(s.list),
		Index:          s.index,
		Queue:          s.q.Tracks(),
		Playing:        s.isPlaying,
		Progress:       s.progress,
		Duration:       s.duration,
		Volume:         s.volume,
		Rate:           s.rate,
		Looping:        s.looping,
		Minimized:      s.minimized,
		PreviewLimited: s.previewLimited,
	}
}

// Close stops playback and tears down the engine and all subscriptions.
// Idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.current = nil
	s.isPlaying = false
	s.gen++
	s.mu.Unlock()

	s.engine.Close()

	s.subsMu.Lock()
	for _, sub := range s.subs {
		sub.close()
	}
	s.subs = nil
	s.subsMu.Unlock()

	s.log.Info("session closed")
}

// forEachSub applies fn to every live subscription.
func (s *Session) forEachSub(fn func(*Subscription)) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		fn(sub)
	}
}

func (s *Session) emitQueueChanged() {
	s.mu.Lock()
	tracks := s.q.Tracks()
	s.mu.Unlock()
	s.forEachSub(func(sub *Subscription) { sub.sendQueue(QueueChange{Tracks: tracks}) })
}

func (s *Session) emitNotice(message string, kind NoticeKind) {
	s.forEachSub(func(sub *Subscription) { sub.sendNotice(Notice{Message: message, Kind: kind}) })
}

func (s *Session) emitError(e ErrorEvent) {
	s.forEachSub(func(sub *Subscription) { sub.sendError(e) })
}

func backendContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), backendTimeout)
}
