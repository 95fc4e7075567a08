package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cinevault/models"
)

// ErrMovieNotFound is returned when no movie row matches the requested ID.
var ErrMovieNotFound = errors.New("movie not found")

// MovieRepository persists catalog movies.
type MovieRepository struct {
	conn *sql.DB
}

// NewMovieRepository creates a movie repository over the given connection.
func NewMovieRepository(conn *sql.DB) *MovieRepository {
	return &MovieRepository{conn: conn}
}

const movieColumns = "id, title, description, poster, backdrop, year, rating, duration, genres, featured, is_active, views, created_at"

// Upsert inserts or replaces a catalog movie.
func (r *MovieRepository) Upsert(movie models.MovieRecord) error {
	genres, err := json.Marshal(movie.Genres)
	if err != nil {
		return fmt.Errorf("encode genres: %w", err)
	}

	createdAt := movie.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = r.conn.Exec(`
		INSERT INTO movies (`+movieColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			poster = excluded.poster,
			backdrop = excluded.backdrop,
			year = excluded.year,
			rating = excluded.rating,
			duration = excluded.duration,
			genres = excluded.genres,
			featured = excluded.featured,
			is_active = excluded.is_active`,
		movie.ID, movie.Title, movie.Description, movie.Poster, movie.Backdrop,
		movie.Year, movie.Rating, movie.Duration, string(genres),
		boolToInt(movie.Featured), boolToInt(movie.Active), movie.Views,
		createdAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("upsert movie %s: %w", movie.ID, err)
	}
	return nil
}

// Get returns the movie with the given ID regardless of active state.
func (r *MovieRepository) Get(id string) (models.MovieRecord, error) {
	row := r.conn.QueryRow("SELECT "+movieColumns+" FROM movies WHERE id = ?", id)
	movie, err := scanMovie(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.MovieRecord{}, ErrMovieNotFound
	}
	if err != nil {
		return models.MovieRecord{}, fmt.Errorf("get movie %s: %w", id, err)
	}
	return movie, nil
}

// ListActive returns all active movies ordered by creation time descending.
func (r *MovieRepository) ListActive() ([]models.MovieRecord, error) {
	return r.query("SELECT " + movieColumns + " FROM movies WHERE is_active = 1 ORDER BY created_at DESC")
}

// Trending returns active movies ranked by rating then view count.
func (r *MovieRepository) Trending(limit int) ([]models.MovieRecord, error) {
	return r.query("SELECT "+movieColumns+" FROM movies WHERE is_active = 1 ORDER BY rating DESC, views DESC LIMIT ?", limit)
}

// TopRated returns active movies ranked by rating.
func (r *MovieRepository) TopRated(limit int) ([]models.MovieRecord, error) {
	return r.query("SELECT "+movieColumns+" FROM movies WHERE is_active = 1 ORDER BY rating DESC LIMIT ?", limit)
}

// Recent returns the most recently added active movies.
func (r *MovieRepository) Recent(limit int) ([]models.MovieRecord, error) {
	return r.query("SELECT "+movieColumns+" FROM movies WHERE is_active = 1 ORDER BY created_at DESC LIMIT ?", limit)
}

// Featured returns featured active movies ranked by rating then recency.
func (r *MovieRepository) Featured(limit int) ([]models.MovieRecord, error) {
	return r.query("SELECT "+movieColumns+" FROM movies WHERE featured = 1 AND is_active = 1 ORDER BY rating DESC, created_at DESC LIMIT ?", limit)
}

// IncrementViews bumps the view counter for a movie.
func (r *MovieRepository) IncrementViews(id string) error {
	_, err := r.conn.Exec("UPDATE movies SET views = views + 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("increment views for %s: %w", id, err)
	}
	return nil
}

// Count returns the number of movies in the catalog, active or not.
func (r *MovieRepository) Count() (int, error) {
	var count int
	if err := r.conn.QueryRow("SELECT COUNT(*) FROM movies").Scan(&count); err != nil {
		return 0, fmt.Errorf("count movies: %w", err)
	}
	return count, nil
}

func (r *MovieRepository) query(q string, args ...any) ([]models.MovieRecord, error) {
	rows, err := r.conn.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}
	defer rows.Close()

	var movies []models.MovieRecord
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		movies = append(movies, movie)
	}
	return movies, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovie(row rowScanner) (models.MovieRecord, error) {
	var (
		movie     models.MovieRecord
		genres    string
		featured  int
		active    int
		createdAt string
	)
	err := row.Scan(&movie.ID, &movie.Title, &movie.Description, &movie.Poster,
		&movie.Backdrop, &movie.Year, &movie.Rating, &movie.Duration, &genres,
		&featured, &active, &movie.Views, &createdAt)
	if err != nil {
		return models.MovieRecord{}, err
	}

	if err := json.Unmarshal([]byte(genres), &movie.Genres); err != nil {
		return models.MovieRecord{}, fmt.Errorf("decode genres for %s: %w", movie.ID, err)
	}
	movie.Featured = featured != 0
	movie.Active = active != 0
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		movie.CreatedAt = ts
	}

	return movie, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
