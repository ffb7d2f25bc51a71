package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/muzikax/pulse/internal/api"
	"github.com/muzikax/pulse/internal/track"
)

// Playlist is a user playlist as the session sees it.
type Playlist struct {
	ID          string
	Name        string
	Description string
	Public      bool
	TrackIDs    []string
}

func playlistFromRaw(raw api.RawPlaylist) Playlist {
	return Playlist{
		ID:          raw.ID,
		Name:        raw.Name,
		Description: raw.Description,
		Public:      raw.IsPublic,
		TrackIDs:    append([]string(nil), raw.TrackIDs...),
	}
}

// LoadUserData fetches the user's favorites and playlists. Without an auth
// token it silently does nothing; anonymous sessions have no library.
func (s *Session) LoadUserData(ctx context.Context) {
	if !s.backend.HasToken() {
		return
	}

	raws, err := s.backend.Favorites(ctx)
	if err != nil {
		s.log.Warn("load favorites failed", zap.Error(err))
	} else {
		favs := track.ResolveAll(raws)
		s.mu.Lock()
		s.favorites = make(map[string]struct{}, len(favs))
		for _, t := range favs {
			s.favorites[t.ID] = struct{}{}
		}
		s.favoriteTracks = favs
		s.favoritesLoaded = true
		count := len(favs)
		s.mu.Unlock()

		s.forEachSub(func(sub *Subscription) { sub.sendFavoritesLoaded(FavoritesLoaded{Count: count}) })
	}

	rawPls, err := s.backend.Playlists(ctx)
	if err != nil {
		s.log.Warn("load playlists failed", zap.Error(err))
		return
	}
	pls := make([]Playlist, len(rawPls))
	for i, raw := range rawPls {
		pls[i] = playlistFromRaw(raw)
	}
	s.mu.Lock()
	s.userPlaylists = pls
	s.mu.Unlock()
}

// IsFavorite reports whether the track is in the user's favorites.
func (s *Session) IsFavorite(trackID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.favorites[trackID]
	return ok
}

// Favorites returns a copy of the user's favorite tracks.
func (s *Session) Favorites() []track.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTracks(s.favoriteTracks)
}

// Playlists returns a copy of the user's playlists.
func (s *Session) Playlists() []Playlist {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Playlist, len(s.userPlaylists))
	copy(out, s.userPlaylists)
	return out
}

// AddToFavorites adds a track to the favorites. The local state updates
// immediately; the backend write happens in the background and a failure
// only logs, it does not roll the local state back.
func (s *Session) AddToFavorites(t track.Track) error {
	if !s.backend.HasToken() {
		return ErrNotAuthenticated
	}

	s.mu.Lock()
	if _, ok := s.favorites[t.ID]; ok {
		s.mu.Unlock()
		return nil
	}
	s.favorites[t.ID] = struct{}{}
	s.favoriteTracks = append(s.favoriteTracks, t)
	s.mu.Unlock()

	s.forEachSub(func(sub *Subscription) {
		sub.sendTrackUpdated(TrackUpdated{TrackID: t.ID, IsFavorite: true})
	})

	go func() {
		ctx, cancel := backendContext()
		defer cancel()
		if err := s.backend.AddFavorite(ctx, t.ID); err != nil {
			s.log.Warn("favorite sync failed", zap.String("track", t.ID), zap.Error(err))
		}
	}()
	return nil
}

// RemoveFromFavorites removes a track from the favorites, mirroring
// AddToFavorites.
func (s *Session) RemoveFromFavorites(trackID string) error {
	if !s.backend.HasToken() {
		return ErrNotAuthenticated
	}

	s.mu.Lock()
	if _, ok := s.favorites[trackID]; !ok {
		s.mu.Unlock()
		return nil
	}
	delete(s.favorites, trackID)
	for i, t := range s.favoriteTracks {
		if t.ID == trackID {
			s.favoriteTracks = append(s.favoriteTracks[:i], s.favoriteTracks[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.forEachSub(func(sub *Subscription) {
		sub.sendTrackUpdated(TrackUpdated{TrackID: trackID, IsFavorite: false})
	})

	go func() {
		ctx, cancel := backendContext()
		defer cancel()
		if err := s.backend.RemoveFavorite(ctx, trackID); err != nil {
			s.log.Warn("unfavorite sync failed", zap.String("track", trackID), zap.Error(err))
		}
	}()
	return nil
}

// CreatePlaylist creates a playlist on the backend and mirrors it locally.
func (s *Session) CreatePlaylist(ctx context.Context, name, description string, isPublic bool, trackIDs []string) (*Playlist, error) {
	if !s.backend.HasToken() {
		return nil, ErrNotAuthenticated
	}

	raw, err := s.backend.CreatePlaylist(ctx, name, description, isPublic, trackIDs)
	if err != nil {
		return nil, fmt.Errorf("create playlist: %w", err)
	}

	pl := playlistFromRaw(*raw)
	s.mu.Lock()
	s.userPlaylists = append(s.userPlaylists, pl)
	s.mu.Unlock()

	s.emitNotice(fmt.Sprintf("Playlist %q created", pl.Name), NoticeSuccess)
	return &pl, nil
}

// AddToPlaylist appends a track to one of the user's playlists.
func (s *Session) AddToPlaylist(ctx context.Context, playlistID, trackID string) error {
	if !s.backend.HasToken() {
		return ErrNotAuthenticated
	}

	if err := s.backend.AddTrackToPlaylist(ctx, playlistID, trackID); err != nil {
		return fmt.Errorf("add track to playlist: %w", err)
	}

	s.mu.Lock()
	for i := range s.userPlaylists {
		if s.userPlaylists[i].ID == playlistID {
			s.userPlaylists[i].TrackIDs = append(s.userPlaylists[i].TrackIDs, trackID)
			break
		}
	}
	s.mu.Unlock()

	s.emitNotice("Track added to playlist", NoticeSuccess)
	return nil
}
