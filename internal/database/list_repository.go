package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"cinevault/models"
)

var (
	// ErrEntryNotFound is returned when no list entry matches (user, movie).
	ErrEntryNotFound = errors.New("list entry not found")
	// ErrDuplicateEntry is returned when the (user, movie) pair already exists.
	ErrDuplicateEntry = errors.New("list entry already exists")
)

// ListRepository persists saved-movie list entries. The UNIQUE(user_id,
// movie_id) constraint is the authoritative duplicate guard; callers that
// pre-check still race, the constraint does not.
type ListRepository struct {
	conn *sql.DB
}

// NewListRepository creates a list repository over the given connection.
func NewListRepository(conn *sql.DB) *ListRepository {
	return &ListRepository{conn: conn}
}

const entryColumns = "e.id, e.user_id, e.movie_id, e.added_at, e.watched, e.watch_progress, e.last_watched_at"

// Create inserts a new entry. Returns ErrDuplicateEntry when the user already
// saved the movie.
func (r *ListRepository) Create(entry models.ListEntry) error {
	var lastWatched any
	if entry.LastWatchedAt != nil {
		lastWatched = entry.LastWatchedAt.UTC().Format(time.RFC3339Nano)
	}

	_, err := r.conn.Exec(`
		INSERT INTO list_entries (id, user_id, movie_id, added_at, watched, watch_progress, last_watched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.MovieID,
		entry.AddedAt.UTC().Format(time.RFC3339Nano),
		boolToInt(entry.Watched), entry.WatchProgress, lastWatched)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return ErrDuplicateEntry
		}
		return fmt.Errorf("create list entry: %w", err)
	}
	return nil
}

// Get returns the entry for (user, movie) with the movie payload populated.
func (r *ListRepository) Get(userID, movieID string) (models.ListEntry, error) {
	row := r.conn.QueryRow(`
		SELECT `+entryColumns+`, `+prefixedMovieColumns()+`
		FROM list_entries e
		JOIN movies m ON m.id = e.movie_id
		WHERE e.user_id = ? AND e.movie_id = ?`, userID, movieID)

	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ListEntry{}, ErrEntryNotFound
	}
	if err != nil {
		return models.ListEntry{}, fmt.Errorf("get list entry: %w", err)
	}
	return entry, nil
}

// List returns one page of a user's entries sorted by added_at descending,
// along with the total entry count.
func (r *ListRepository) List(userID string, page, limit int) ([]models.ListEntry, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	rows, err := r.conn.Query(`
		SELECT `+entryColumns+`, `+prefixedMovieColumns()+`
		FROM list_entries e
		JOIN movies m ON m.id = e.movie_id
		WHERE e.user_id = ?
		ORDER BY e.added_at DESC
		LIMIT ? OFFSET ?`, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []models.ListEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan list entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.conn.QueryRow("SELECT COUNT(*) FROM list_entries WHERE user_id = ?", userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count entries: %w", err)
	}

	return entries, total, nil
}

// Delete removes the entry for (user, movie). Returns ErrEntryNotFound when
// nothing was deleted.
func (r *ListRepository) Delete(userID, movieID string) error {
	res, err := r.conn.Exec("DELETE FROM list_entries WHERE user_id = ? AND movie_id = ?", userID, movieID)
	if err != nil {
		return fmt.Errorf("delete list entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete list entry: %w", err)
	}
	if affected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// UpdateState applies a partial watch-state update and returns the updated
// entry. Nil fields are left untouched.
func (r *ListRepository) UpdateState(userID, movieID string, watched *bool, progress *int, lastWatchedAt *time.Time) (models.ListEntry, error) {
	set := ""
	var args []any
	if watched != nil {
		set += "watched = ?"
		args = append(args, boolToInt(*watched))
	}
	if progress != nil {
		if set != "" {
			set += ", "
		}
		set += "watch_progress = ?"
		args = append(args, *progress)
	}
	if lastWatchedAt != nil {
		if set != "" {
			set += ", "
		}
		set += "last_watched_at = ?"
		args = append(args, lastWatchedAt.UTC().Format(time.RFC3339Nano))
	}
	if set == "" {
		return r.Get(userID, movieID)
	}

	args = append(args, userID, movieID)
	res, err := r.conn.Exec("UPDATE list_entries SET "+set+" WHERE user_id = ? AND movie_id = ?", args...)
	if err != nil {
		return models.ListEntry{}, fmt.Errorf("update list entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.ListEntry{}, fmt.Errorf("update list entry: %w", err)
	}
	if affected == 0 {
		return models.ListEntry{}, ErrEntryNotFound
	}

	return r.Get(userID, movieID)
}

// RecentWatched returns the user's watched entries, most recently watched
// first.
func (r *ListRepository) RecentWatched(userID string, limit int) ([]models.ListEntry, error) {
	if limit < 1 {
		limit = 10
	}

	rows, err := r.conn.Query(`
		SELECT `+entryColumns+`, `+prefixedMovieColumns()+`
		FROM list_entries e
		JOIN movies m ON m.id = e.movie_id
		WHERE e.user_id = ? AND e.watched = 1
		ORDER BY e.last_watched_at DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent watched: %w", err)
	}
	defer rows.Close()

	var entries []models.ListEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan list entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Stats aggregates the user's list: total entries, watched count, and total
// minutes across watched movies.
func (r *ListRepository) Stats(userID string) (models.ListStats, error) {
	var stats models.ListStats
	err := r.conn.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(e.watched), 0),
		       COALESCE(SUM(CASE WHEN e.watched = 1 THEN m.duration ELSE 0 END), 0)
		FROM list_entries e
		JOIN movies m ON m.id = e.movie_id
		WHERE e.user_id = ?`, userID).
		Scan(&stats.TotalInList, &stats.WatchedCount, &stats.TotalWatchTime)
	if err != nil {
		return models.ListStats{}, fmt.Errorf("list stats: %w", err)
	}
	return stats, nil
}

func prefixedMovieColumns() string {
	return "m.id, m.title, m.description, m.poster, m.backdrop, m.year, m.rating, m.duration, m.genres, m.featured, m.is_active, m.views, m.created_at"
}

func scanEntry(row rowScanner) (models.ListEntry, error) {
	var (
		entry       models.ListEntry
		addedAt     string
		watched     int
		lastWatched sql.NullString
		movie       models.MovieRecord
		genres      string
		featured    int
		active      int
		createdAt   string
	)
	err := row.Scan(&entry.ID, &entry.UserID, &entry.MovieID, &addedAt, &watched,
		&entry.WatchProgress, &lastWatched,
		&movie.ID, &movie.Title, &movie.Description, &movie.Poster, &movie.Backdrop,
		&movie.Year, &movie.Rating, &movie.Duration, &genres, &featured, &active,
		&movie.Views, &createdAt)
	if err != nil {
		return models.ListEntry{}, err
	}

	entry.Watched = watched != 0
	if ts, err := time.Parse(time.RFC3339Nano, addedAt); err == nil {
		entry.AddedAt = ts
	}
	if lastWatched.Valid {
		if ts, err := time.Parse(time.RFC3339Nano, lastWatched.String); err == nil {
			entry.LastWatchedAt = &ts
		}
	}

	if err := json.Unmarshal([]byte(genres), &movie.Genres); err != nil {
		return models.ListEntry{}, fmt.Errorf("decode genres for %s: %w", movie.ID, err)
	}
	movie.Featured = featured != 0
	movie.Active = active != 0
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		movie.CreatedAt = ts
	}
	entry.Movie = &movie

	return entry, nil
}
