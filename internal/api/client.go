// Package api provides the client for the MuzikaX backend REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/muzikax/pulse/internal/track"
)

// ErrUnauthorized is returned when the backend rejects the auth token.
var ErrUnauthorized = errors.New("unauthorized")

const (
	requestTimeout = 10 * time.Second
	userAgent      = "pulse-playback-engine/1.0 (https://github.com/muzikax/pulse)"
)

// Client is a MuzikaX backend API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *zap.Logger
}

// New creates a new backend client. The token may be empty for anonymous
// sessions; token-gated calls are skipped by callers via HasToken.
func New(baseURL, token string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		log: log.Named("api"),
	}
}

// HasToken reports whether the client carries an auth token.
func (c *Client) HasToken() bool {
	return c.token != ""
}

// Track fetches a single track by id.
func (c *Client) Track(ctx context.Context, id string) (track.RawTrack, error) {
	var t track.RawTrack
	if err := c.get(ctx, "/api/tracks/"+url.PathEscape(id), &t); err != nil {
		return track.RawTrack{}, fmt.Errorf("fetch track: %w", err)
	}
	return t, nil
}

// Recommendations fetches recommended tracks seeded by a track id.
// An empty result is valid and must be tolerated by callers.
func (c *Client) Recommendations(ctx context.Context, seedTrackID string, limit int) ([]track.RawTrack, error) {
	params := url.Values{}
	if seedTrackID != "" {
		params.Set("trackId", seedTrackID)
	}
	params.Set("limit", strconv.Itoa(limit))

	var tracks []track.RawTrack
	if err := c.get(ctx, "/api/recommendations?"+params.Encode(), &tracks); err != nil {
		return nil, fmt.Errorf("fetch recommendations: %w", err)
	}
	if len(tracks) == 0 {
		c.log.Debug("no recommendations returned", zap.String("seed", seedTrackID))
	}
	return tracks, nil
}

// IncrementPlayCount records a play against a track. Fire-and-forget for
// callers; at-most-once-per-session is enforced by the session, not here.
func (c *Client) IncrementPlayCount(ctx context.Context, trackID string) error {
	if err := c.post(ctx, "/api/tracks/"+url.PathEscape(trackID)+"/play", nil, nil); err != nil {
		return fmt.Errorf("increment play count: %w", err)
	}
	return nil
}

// AddRecentlyPlayed appends a track to the user's recently-played history.
// Requires an auth token.
func (c *Client) AddRecentlyPlayed(ctx context.Context, trackID string) error {
	body := map[string]string{"trackId": trackID}
	if err := c.post(ctx, "/api/recently-played", body, nil); err != nil {
		return fmt.Errorf("add recently played: %w", err)
	}
	return nil
}

// Favorites fetches the user's favorite tracks.
func (c *Client) Favorites(ctx context.Context) ([]track.RawTrack, error) {
	var tracks []track.RawTrack
	if err := c.get(ctx, "/api/favorites", &tracks); err != nil {
		return nil, fmt.Errorf("fetch favorites: %w", err)
	}
	return tracks, nil
}

// AddFavorite adds a track to the user's favorites.
func (c *Client) AddFavorite(ctx context.Context, trackID string) error {
	body := map[string]string{"trackId": trackID}
	if err := c.post(ctx, "/api/favorites", body, nil); err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

// RemoveFavorite removes a track from the user's favorites.
func (c *Client) RemoveFavorite(ctx context.Context, trackID string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/favorites/"+url.PathEscape(trackID), nil, nil); err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}

// Playlists fetches the user's playlists.
func (c *Client) Playlists(ctx context.Context) ([]RawPlaylist, error) {
	var playlists []RawPlaylist
	if err := c.get(ctx, "/api/playlists", &playlists); err != nil {
		return nil, fmt.Errorf("fetch playlists: %w", err)
	}
	return playlists, nil
}

// CreatePlaylist creates a new playlist and returns the stored record.
func (c *Client) CreatePlaylist(ctx context.Context, name, description string, isPublic bool, trackIDs []string) (*RawPlaylist, error) {
	body := map[string]any{
		"name":        name,
		"description": description,
		"isPublic":    isPublic,
		"trackIds":    trackIDs,
	}
	var created RawPlaylist
	if err := c.post(ctx, "/api/playlists", body, &created); err != nil {
		return nil, fmt.Errorf("create playlist: %w", err)
	}
	return &created, nil
}

// AddTrackToPlaylist appends a track to an existing playlist.
func (c *Client) AddTrackToPlaylist(ctx context.Context, playlistID, trackID string) error {
	body := map[string]string{"playlistId": playlistID, "trackId": trackID}
	if err := c.post(ctx, "/api/playlists/add-track", body, nil); err != nil {
		return fmt.Errorf("add track to playlist: %w", err)
	}
	return nil
}

// ReportInvalidTrack reports a track whose audio failed to play so the
// backend can validate and, if needed, remove it.
func (c *Client) ReportInvalidTrack(ctx context.Context, trackID string) (CleanupResult, error) {
	var result CleanupResult
	if err := c.post(ctx, "/api/tracks/"+url.PathEscape(trackID)+"/invalid", nil, &result); err != nil {
		return CleanupResult{}, fmt.Errorf("report invalid track: %w", err)
	}
	return result, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
