package catalog

import (
	"errors"
	"path/filepath"
	"testing"

	"cinevault/internal/database"
	"cinevault/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := database.NewDB(database.Config{
		DatabasePath: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	svc := NewService(db.Movies)
	if err := svc.Seed(); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
	return svc
}

func TestGetMovie(t *testing.T) {
	svc := newTestService(t)

	movie, err := svc.GetMovie("cv-inception")
	if err != nil {
		t.Fatalf("GetMovie() error = %v", err)
	}
	if movie.Title != "Inception" {
		t.Errorf("Title = %q, want Inception", movie.Title)
	}

	if _, err := svc.GetMovie("cv-nope"); !errors.Is(err, ErrMovieNotFound) {
		t.Errorf("unknown movie error = %v, want ErrMovieNotFound", err)
	}
	if _, err := svc.GetMovie("  "); !errors.Is(err, ErrMovieIDRequired) {
		t.Errorf("blank id error = %v, want ErrMovieIDRequired", err)
	}
}

func TestGetMovieHidesInactive(t *testing.T) {
	db, err := database.NewDB(database.Config{
		DatabasePath: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Movies.Upsert(models.MovieRecord{ID: "delisted", Title: "Gone", Active: false}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	svc := NewService(db.Movies)
	if _, err := svc.GetMovie("delisted"); !errors.Is(err, ErrMovieNotFound) {
		t.Errorf("inactive movie error = %v, want ErrMovieNotFound", err)
	}
}

func TestHomepageSections(t *testing.T) {
	svc := newTestService(t)

	sections, err := svc.HomepageSections()
	if err != nil {
		t.Fatalf("HomepageSections() error = %v", err)
	}

	for _, name := range []string{"trending", "topRated", "recent", "suggestions"} {
		if len(sections[name]) == 0 {
			t.Errorf("section %q is empty", name)
		}
		if len(sections[name]) > SectionLimit {
			t.Errorf("section %q exceeds limit: %d", name, len(sections[name]))
		}
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	svc := newTestService(t)

	// A second seed on a populated catalog must not duplicate anything.
	if err := svc.Seed(); err != nil {
		t.Fatalf("second Seed() error = %v", err)
	}

	sections, err := svc.HomepageSections()
	if err != nil {
		t.Fatalf("HomepageSections() error = %v", err)
	}
	seen := make(map[string]int)
	for _, m := range sections["recent"] {
		seen[m.ID]++
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("movie %s appears %d times after reseeding", id, n)
		}
	}
}

func TestGenres(t *testing.T) {
	svc := newTestService(t)

	genres, err := svc.Genres()
	if err != nil {
		t.Fatalf("Genres() error = %v", err)
	}
	if len(genres) == 0 {
		t.Fatal("expected genres from the seeded catalog")
	}
	for i := 1; i < len(genres); i++ {
		if genres[i-1] >= genres[i] {
			t.Fatalf("genres not sorted: %v", genres)
		}
	}
}

func TestSearch(t *testing.T) {
	svc := newTestService(t)

	movies, err := svc.Search("inception")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(movies) != 1 || movies[0].ID != "cv-inception" {
		t.Errorf("Search(inception) = %v", movieIDs(movies))
	}

	// Accent-insensitive: plain ASCII finds the accented title.
	movies, err = svc.Search("amelie")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(movies) != 1 || movies[0].ID != "cv-amelie" {
		t.Errorf("Search(amelie) = %v, want cv-amelie", movieIDs(movies))
	}

	// Genre matching.
	movies, err = svc.Search("sci-fi")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(movies) == 0 {
		t.Error("Search(sci-fi) found nothing")
	}

	if _, err := svc.Search("   "); !errors.Is(err, ErrQueryRequired) {
		t.Errorf("blank query error = %v, want ErrQueryRequired", err)
	}
}

func TestRecordViewBumpsTrending(t *testing.T) {
	svc := newTestService(t)

	for i := 0; i < 5; i++ {
		svc.RecordView("cv-paddington-2")
	}

	movie, err := svc.GetMovie("cv-paddington-2")
	if err != nil {
		t.Fatalf("GetMovie() error = %v", err)
	}
	if movie.Views != 5 {
		t.Errorf("Views = %d, want 5", movie.Views)
	}
}

func movieIDs(movies []models.MovieRecord) []string {
	ids := make([]string, len(movies))
	for i, m := range movies {
		ids[i] = m.ID
	}
	return ids
}
