package models

import "time"

// ListEntry records that a user saved a movie. The embedded Movie payload is
// a read-through cache of the catalog record, refreshed whenever a fetch
// succeeds; MovieID is the authoritative reference.
type ListEntry struct {
	ID            string       `json:"id"`
	UserID        string       `json:"user"`
	MovieID       string       `json:"movieId"`
	Movie         *MovieRecord `json:"movie,omitempty"`
	AddedAt       time.Time    `json:"addedAt"`
	Watched       bool         `json:"watched"`
	WatchProgress int          `json:"watchProgress"` // percent, 0-100
	LastWatchedAt *time.Time   `json:"lastWatchedAt,omitempty"`
}

// ProgressUpdate is a partial update of an entry's watch state. Nil fields
// are left untouched. Setting Watched to true stamps LastWatchedAt as a side
// effect; reaching 100 percent progress does not.
type ProgressUpdate struct {
	WatchProgress *int  `json:"watchProgress,omitempty"`
	Watched       *bool `json:"watched,omitempty"`
}

// Pagination describes a page of list results.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// ListPage is one page of a user's saved movies, most recently added first.
type ListPage struct {
	Entries    []ListEntry `json:"myList"`
	Pagination Pagination  `json:"pagination"`
}

// ListStats summarizes a user's saved list.
type ListStats struct {
	TotalInList    int `json:"totalInList"`
	WatchedCount   int `json:"watchedCount"`
	TotalWatchTime int `json:"totalWatchTime"` // minutes, watched entries only
}
