package api

// RawPlaylist mirrors the backend playlist record on the wire.
type RawPlaylist struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	IsPublic    bool     `json:"isPublic"`
	TrackIDs    []string `json:"trackIds"`
}

// CleanupResult is the backend's answer to an invalid-track report.
type CleanupResult struct {
	Removed    bool   `json:"removed"`
	TrackTitle string `json:"trackTitle"`
}
