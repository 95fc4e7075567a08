package models

import (
	"errors"
	"strings"
	"time"
)

// ErrNoIdentity is returned when a raw movie record carries none of the
// recognized identity fields.
var ErrNoIdentity = errors.New("movie record has no resolvable identity")

// MovieRecord is the canonical catalog movie shape used everywhere past the
// ingestion boundary. Records arrive denormalized from multiple endpoints;
// RawMovie.Normalize is the only place that deals with the alternate field
// names.
type MovieRecord struct {
	ID          string    `json:"id"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Poster      string    `json:"poster,omitempty"`
	Backdrop    string    `json:"backdrop,omitempty"`
	Year        int       `json:"year,omitempty"`
	Rating      float64   `json:"rating,omitempty"`
	Duration    int       `json:"duration,omitempty"` // minutes
	Genres      []string  `json:"genre,omitempty"`
	Featured    bool      `json:"featured,omitempty"`
	Active      bool      `json:"isActive"`
	Views       int       `json:"views,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// DisplayImage returns the poster URL, falling back to the backdrop when the
// poster is missing. BackdropImage is the inverse.
func (m MovieRecord) DisplayImage() string {
	if m.Poster != "" {
		return m.Poster
	}
	return m.Backdrop
}

// BackdropImage returns the backdrop URL, falling back to the poster.
func (m MovieRecord) BackdropImage() string {
	if m.Backdrop != "" {
		return m.Backdrop
	}
	return m.Poster
}

// HasGenre reports whether the movie lists the given genre.
func (m MovieRecord) HasGenre(genre string) bool {
	for _, g := range m.Genres {
		if g == genre {
			return true
		}
	}
	return false
}

// RawMovie is the denormalized shape movie records arrive in. Identity may
// live under "_id", "id", or "imdbId" depending on the source endpoint, and
// genres under "genre" or "genres".
type RawMovie struct {
	MongoID     string   `json:"_id,omitempty"`
	ID          string   `json:"id,omitempty"`
	IMDBID      string   `json:"imdbId,omitempty"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Poster      string   `json:"poster,omitempty"`
	Backdrop    string   `json:"backdrop,omitempty"`
	Year        int      `json:"year,omitempty"`
	Rating      float64  `json:"rating,omitempty"`
	Duration    int      `json:"duration,omitempty"`
	Genre       []string `json:"genre,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	Featured    bool     `json:"featured,omitempty"`
	IsActive    *bool    `json:"isActive,omitempty"`
}

// Identity resolves the canonical movie identity: first non-empty of
// "_id", "id", "imdbId", in that order. The order is fixed so that repeated
// fetches of the same underlying record always resolve to the same identity.
func (r RawMovie) Identity() string {
	for _, candidate := range []string{r.MongoID, r.ID, r.IMDBID} {
		if id := strings.TrimSpace(candidate); id != "" {
			return id
		}
	}
	return ""
}

// Normalize converts a raw record into the canonical MovieRecord. It returns
// ErrNoIdentity when no identity field is set.
func (r RawMovie) Normalize() (MovieRecord, error) {
	id := r.Identity()
	if id == "" {
		return MovieRecord{}, ErrNoIdentity
	}

	genres := r.Genre
	if len(genres) == 0 {
		genres = r.Genres
	}

	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}

	return MovieRecord{
		ID:          id,
		Title:       r.Title,
		Description: r.Description,
		Poster:      r.Poster,
		Backdrop:    r.Backdrop,
		Year:        r.Year,
		Rating:      r.Rating,
		Duration:    r.Duration,
		Genres:      genres,
		Featured:    r.Featured,
		Active:      active,
	}, nil
}
