package mylist

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"cinevault/internal/database"
	"cinevault/models"
)

var (
	ErrUserIDRequired     = errors.New("user id is required")
	ErrMovieIDRequired    = errors.New("movie id is required")
	ErrMovieNotFound      = errors.New("movie not found")
	ErrAlreadyInList      = errors.New("movie already in your list")
	ErrEntryNotFound      = errors.New("movie not found in your list")
	ErrProgressOutOfRange = errors.New("watch progress must be between 0 and 100")
)

const (
	// DefaultPageSize is used when the caller does not specify a limit.
	DefaultPageSize = 20
	// MaxPageSize caps a single page.
	MaxPageSize = 100
)

// movieResolver is the slice of the catalog the list service needs.
type movieResolver interface {
	GetMovie(id string) (models.MovieRecord, error)
}

// Service owns a user's saved-movie list: paginated reads, duplicate-safe
// adds, removals, watch-state updates, and aggregates.
type Service struct {
	catalog movieResolver
	entries *database.ListRepository
}

// NewService creates a list service over the catalog and the entry
// repository.
func NewService(catalog movieResolver, entries *database.ListRepository) *Service {
	return &Service{catalog: catalog, entries: entries}
}

// List returns one page of the user's entries, most recently added first,
// with the cached movie payload populated on each entry.
func (s *Service) List(userID string, page, limit int) (models.ListPage, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.ListPage{}, ErrUserIDRequired
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	entries, total, err := s.entries.List(userID, page, limit)
	if err != nil {
		return models.ListPage{}, err
	}

	pages := total / limit
	if total%limit != 0 {
		pages++
	}

	return models.ListPage{
		Entries: entries,
		Pagination: models.Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: pages,
		},
	}, nil
}

// Add saves a movie to the user's list. The movie must exist and be active;
// adding a movie that is already listed fails with ErrAlreadyInList rather
// than overwriting the existing entry.
func (s *Service) Add(userID, movieID string) (models.ListEntry, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.ListEntry{}, ErrUserIDRequired
	}
	movieID = strings.TrimSpace(movieID)
	if movieID == "" {
		return models.ListEntry{}, ErrMovieIDRequired
	}

	movie, err := s.catalog.GetMovie(movieID)
	if err != nil {
		return models.ListEntry{}, ErrMovieNotFound
	}

	entry := models.ListEntry{
		ID:      uuid.NewString(),
		UserID:  userID,
		MovieID: movie.ID,
		AddedAt: time.Now().UTC(),
	}

	if err := s.entries.Create(entry); err != nil {
		if errors.Is(err, database.ErrDuplicateEntry) {
			return models.ListEntry{}, ErrAlreadyInList
		}
		return models.ListEntry{}, err
	}

	entry.Movie = &movie
	return entry, nil
}

// Remove deletes the user's entry for the movie.
func (s *Service) Remove(userID, movieID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrUserIDRequired
	}
	movieID = strings.TrimSpace(movieID)
	if movieID == "" {
		return ErrMovieIDRequired
	}

	err := s.entries.Delete(userID, movieID)
	if errors.Is(err, database.ErrEntryNotFound) {
		return ErrEntryNotFound
	}
	return err
}

// Check reports whether the movie is in the user's list. Pure read.
func (s *Service) Check(userID, movieID string) (bool, *models.ListEntry, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false, nil, ErrUserIDRequired
	}
	movieID = strings.TrimSpace(movieID)
	if movieID == "" {
		return false, nil, ErrMovieIDRequired
	}

	entry, err := s.entries.Get(userID, movieID)
	if errors.Is(err, database.ErrEntryNotFound) {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, err
	}
	return true, &entry, nil
}

// UpdateProgress applies a partial watch-state update. Progress must be
// within [0,100]; nothing is written when validation fails. An explicit
// watched=true stamps LastWatchedAt even when progress was not supplied.
// Progress reaching 100 on its own does not flip watched.
func (s *Service) UpdateProgress(userID, movieID string, upd models.ProgressUpdate) (models.ListEntry, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.ListEntry{}, ErrUserIDRequired
	}
	movieID = strings.TrimSpace(movieID)
	if movieID == "" {
		return models.ListEntry{}, ErrMovieIDRequired
	}

	if upd.WatchProgress != nil && (*upd.WatchProgress < 0 || *upd.WatchProgress > 100) {
		return models.ListEntry{}, ErrProgressOutOfRange
	}

	var lastWatchedAt *time.Time
	if upd.Watched != nil && *upd.Watched {
		now := time.Now().UTC()
		lastWatchedAt = &now
	}

	entry, err := s.entries.UpdateState(userID, movieID, upd.Watched, upd.WatchProgress, lastWatchedAt)
	if errors.Is(err, database.ErrEntryNotFound) {
		return models.ListEntry{}, ErrEntryNotFound
	}
	if err != nil {
		return models.ListEntry{}, err
	}
	return entry, nil
}

// Recent returns the user's watched entries, most recently watched first.
func (s *Service) Recent(userID string, limit int) ([]models.ListEntry, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	return s.entries.RecentWatched(userID, limit)
}

// Stats aggregates the user's list.
func (s *Service) Stats(userID string) (models.ListStats, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.ListStats{}, ErrUserIDRequired
	}
	return s.entries.Stats(userID)
}
