package track

import (
	"encoding/json"
	"fmt"
)

// unknownArtist is shown when a record carries only a bare creator id.
const unknownArtist = "Unknown Artist"

// CreatorRef is a backend creator reference, which arrives either as a bare
// id string or as an embedded creator object.
type CreatorRef struct {
	ID              string
	Name            string
	WhatsappContact string
	embedded        bool
}

// Embedded reports whether the reference carried a full creator object.
func (r CreatorRef) Embedded() bool { return r.embedded }

// UnmarshalJSON accepts both reference shapes.
func (r *CreatorRef) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*r = CreatorRef{ID: id}
		return nil
	}

	var obj struct {
		ID              string `json:"_id"`
		Name            string `json:"name"`
		WhatsappContact string `json:"whatsappContact"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("decode creator reference: %w", err)
	}
	*r = CreatorRef{
		ID:              obj.ID,
		Name:            obj.Name,
		WhatsappContact: obj.WhatsappContact,
		embedded:        true,
	}
	return nil
}

// RawTrack mirrors the backend track record on the wire.
type RawTrack struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Creator     CreatorRef `json:"creatorId"`
	CoverURL    string     `json:"coverURL"`
	AudioURL    string     `json:"audioURL"`
	Type        string     `json:"type"`
	PaymentType string     `json:"paymentType"`
	Price       float64    `json:"price"`
	Plays       int        `json:"plays"`
	Likes       int        `json:"likes"`
}

// Resolve normalizes a raw backend record into a Track.
//
// Resolution rules:
//   - Artist is the embedded creator's name; bare id references resolve to
//     "Unknown Artist" rather than leaking the raw id.
//   - CoverImage defaults to the empty string, never a placeholder URL.
//   - PaymentType defaults to free for records that predate paid beats.
//   - Duration is left at zero; the engine reports the real value once the
//     audio is decoded.
func Resolve(raw RawTrack) Track {
	t := Track{
		ID:         raw.ID,
		Title:      raw.Title,
		Artist:     unknownArtist,
		CoverImage: raw.CoverURL,
		AudioURL:   raw.AudioURL,
		CreatorID:  raw.Creator.ID,
		Type:       TypeSong,
		Plays:      raw.Plays,
		Likes:      raw.Likes,
	}

	if raw.Creator.Embedded() {
		if raw.Creator.Name != "" {
			t.Artist = raw.Creator.Name
		}
		t.CreatorWhatsapp = raw.Creator.WhatsappContact
	}

	switch Type(raw.Type) {
	case TypeBeat, TypeMix:
		t.Type = Type(raw.Type)
	}

	t.PaymentType = PaymentFree
	if PaymentType(raw.PaymentType) == PaymentPaid {
		t.PaymentType = PaymentPaid
		t.Price = raw.Price
	}

	return t
}

// ResolveAll maps a slice of raw records, dropping nothing.
func ResolveAll(raws []RawTrack) []Track {
	tracks := make([]Track, len(raws))
	for i, r := range raws {
		tracks[i] = Resolve(r)
	}
	return tracks
}
