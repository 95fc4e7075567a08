package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestRawMovieIdentity(t *testing.T) {
	tests := []struct {
		name string
		raw  RawMovie
		want string
	}{
		{"mongo id wins", RawMovie{MongoID: "abc123", ID: "tt001", IMDBID: "tt002"}, "abc123"},
		{"plain id when no mongo id", RawMovie{ID: "tt001", IMDBID: "tt002"}, "tt001"},
		{"imdb id as last resort", RawMovie{IMDBID: "tt002"}, "tt002"},
		{"whitespace-only mongo id skipped", RawMovie{MongoID: "   ", ID: "tt001"}, "tt001"},
		{"identity trimmed", RawMovie{MongoID: "  abc123  "}, "abc123"},
		{"no identity", RawMovie{Title: "Orphan"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.raw.Identity(); got != tt.want {
				t.Fatalf("Identity() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRawMovieNormalize(t *testing.T) {
	raw := RawMovie{
		MongoID:     "abc123",
		Title:       "Inception",
		Description: "A thief enters dreams",
		Year:        2010,
		Rating:      8.8,
		Duration:    148,
		Genre:       []string{"Sci-Fi", "Thriller"},
		Genres:      []string{"ShouldBeIgnored"},
	}

	movie, err := raw.Normalize()
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if movie.ID != "abc123" {
		t.Errorf("ID = %q, want abc123", movie.ID)
	}
	if len(movie.Genres) != 2 || movie.Genres[0] != "Sci-Fi" {
		t.Errorf("Genres = %v, want [Sci-Fi Thriller]", movie.Genres)
	}
	if !movie.Active {
		t.Error("Active should default to true when isActive is absent")
	}
}

func TestRawMovieNormalizeGenresFallback(t *testing.T) {
	raw := RawMovie{ID: "tt001", Genres: []string{"Drama"}}

	movie, err := raw.Normalize()
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if len(movie.Genres) != 1 || movie.Genres[0] != "Drama" {
		t.Errorf("Genres = %v, want [Drama]", movie.Genres)
	}
}

func TestRawMovieNormalizeNoIdentity(t *testing.T) {
	_, err := RawMovie{Title: "Orphan"}.Normalize()
	if !errors.Is(err, ErrNoIdentity) {
		t.Fatalf("Normalize() error = %v, want ErrNoIdentity", err)
	}
}

func TestRawMovieNormalizeExplicitInactive(t *testing.T) {
	inactive := false
	movie, err := RawMovie{ID: "tt001", IsActive: &inactive}.Normalize()
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if movie.Active {
		t.Error("Active should honor explicit isActive=false")
	}
}

func TestRawMovieDecodeBothGenreKeys(t *testing.T) {
	var raw RawMovie
	payload := `{"_id":"abc","genre":["Action"],"genres":["Drama"]}`
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	movie, err := raw.Normalize()
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	// "genre" is the primary key; "genres" only fills in when it is empty.
	if len(movie.Genres) != 1 || movie.Genres[0] != "Action" {
		t.Errorf("Genres = %v, want [Action]", movie.Genres)
	}
}

func TestMovieRecordDisplayImage(t *testing.T) {
	m := MovieRecord{Poster: "poster.jpg", Backdrop: "backdrop.jpg"}
	if got := m.DisplayImage(); got != "poster.jpg" {
		t.Errorf("DisplayImage() = %q, want poster.jpg", got)
	}

	m.Poster = ""
	if got := m.DisplayImage(); got != "backdrop.jpg" {
		t.Errorf("DisplayImage() fallback = %q, want backdrop.jpg", got)
	}

	if got := m.BackdropImage(); got != "backdrop.jpg" {
		t.Errorf("BackdropImage() = %q, want backdrop.jpg", got)
	}
}
