package catalog

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/mozillazg/go-unidecode"

	"cinevault/internal/database"
	"cinevault/models"
)

var (
	ErrMovieNotFound   = errors.New("movie not found")
	ErrMovieIDRequired = errors.New("movie id is required")
	ErrQueryRequired   = errors.New("search query is required")
)

// SectionLimit caps how many movies each homepage section returns.
const SectionLimit = 15

// Service exposes the movie catalog: lookups, homepage sections, search, and
// demo seeding.
type Service struct {
	movies *database.MovieRepository
}

// NewService creates a catalog service over the movie repository.
func NewService(movies *database.MovieRepository) *Service {
	return &Service{movies: movies}
}

// GetMovie returns the active movie with the given ID. Inactive and unknown
// movies both surface as ErrMovieNotFound so delisted titles disappear from
// the API without a separate state.
func (s *Service) GetMovie(id string) (models.MovieRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.MovieRecord{}, ErrMovieIDRequired
	}

	movie, err := s.movies.Get(id)
	if errors.Is(err, database.ErrMovieNotFound) {
		return models.MovieRecord{}, ErrMovieNotFound
	}
	if err != nil {
		return models.MovieRecord{}, err
	}
	if !movie.Active {
		return models.MovieRecord{}, ErrMovieNotFound
	}
	return movie, nil
}

// RecordView bumps the view counter for a movie. Failures are logged, not
// surfaced; view counts are advisory.
func (s *Service) RecordView(id string) {
	if err := s.movies.IncrementViews(id); err != nil {
		log.Printf("[catalog] failed to record view for %s: %v", id, err)
	}
}

// HomepageSections returns the named homepage rows. The suggestions section
// mirrors trending until a personalized source exists.
func (s *Service) HomepageSections() (map[string][]models.MovieRecord, error) {
	trending, err := s.movies.Trending(SectionLimit)
	if err != nil {
		return nil, fmt.Errorf("trending: %w", err)
	}
	topRated, err := s.movies.TopRated(SectionLimit)
	if err != nil {
		return nil, fmt.Errorf("top rated: %w", err)
	}
	recent, err := s.movies.Recent(SectionLimit)
	if err != nil {
		return nil, fmt.Errorf("recent: %w", err)
	}

	return map[string][]models.MovieRecord{
		"trending":    trending,
		"topRated":    topRated,
		"recent":      recent,
		"suggestions": trending,
	}, nil
}

// Featured returns the featured movies.
func (s *Service) Featured(limit int) ([]models.MovieRecord, error) {
	if limit < 1 {
		limit = 10
	}
	return s.movies.Featured(limit)
}

// Genres returns the distinct genres across active movies, sorted.
func (s *Service) Genres() ([]string, error) {
	movies, err := s.movies.ListActive()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var genres []string
	for _, movie := range movies {
		for _, g := range movie.Genres {
			if g == "" {
				continue
			}
			if _, ok := seen[g]; !ok {
				seen[g] = struct{}{}
				genres = append(genres, g)
			}
		}
	}
	sort.Strings(genres)
	return genres, nil
}

// Search matches the query against titles, descriptions, and genres of
// active movies. Matching is case-insensitive and accent-insensitive, so
// "amelie" finds "Amélie".
func (s *Service) Search(query string) ([]models.MovieRecord, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrQueryRequired
	}

	movies, err := s.movies.ListActive()
	if err != nil {
		return nil, err
	}

	needle := searchFold(query)
	var matches []models.MovieRecord
	for _, movie := range movies {
		if strings.Contains(searchFold(movie.Title), needle) ||
			strings.Contains(searchFold(movie.Description), needle) {
			matches = append(matches, movie)
			continue
		}
		for _, g := range movie.Genres {
			if strings.Contains(searchFold(g), needle) {
				matches = append(matches, movie)
				break
			}
		}
	}
	return matches, nil
}

// searchFold lowercases and strips diacritics for matching.
func searchFold(s string) string {
	return strings.ToLower(unidecode.Unidecode(s))
}
