// Package liststore maintains a local, eventually-consistent mirror of a
// user's remote saved-movie list. Mutations go remote-first: the cache only
// changes after the backend confirms, so a failed call leaves local state
// exactly as it was. The store is constructed explicitly per session and
// closed at logout; it is never ambient shared state.
package liststore

import (
	"context"
	"errors"
	"log"
	"sync"

	"cinevault/models"
)

// Backend is the remote list and catalog surface the store mirrors.
// Implementations return ErrNotFound / ErrDuplicate (possibly wrapped) for
// semantic failures and any other error for transport failures; the store
// wraps the latter in *FetchError.
type Backend interface {
	Movie(ctx context.Context, id string) (models.MovieRecord, error)
	ListEntries(ctx context.Context, page, size int) (models.ListPage, error)
	CreateEntry(ctx context.Context, movieID string) (models.ListEntry, error)
	DeleteEntry(ctx context.Context, movieID string) error
	PatchEntry(ctx context.Context, movieID string, upd models.ProgressUpdate) (models.ListEntry, error)
}

// Store mirrors the remote list locally.
type Store struct {
	backend Backend

	mu         sync.RWMutex
	entries    []models.ListEntry
	pagination models.Pagination
	loaded     bool
	closed     bool

	snapshot *Snapshot
	locks    keyedLocks
}

// Option configures a Store.
type Option func(*Store)

// WithSnapshot makes the store persist its entries after successful remote
// operations and lets callers seed from the last snapshot at startup.
func WithSnapshot(snap *Snapshot) Option {
	return func(s *Store) {
		s.snapshot = snap
	}
}

// New creates a store over the given backend.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		locks:   newKeyedLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close tears the store down at logout. Subsequent operations fail with
// ErrClosed; the snapshot file is left in place for the next session.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.entries = nil
	s.loaded = false
}

// FetchAll retrieves one page of entries, most recently added first, and on
// success replaces the local cache entirely. Optimistic edits made while the
// request was in flight are discarded by the replace; that is the accepted
// contract. On failure the cache is left untouched — never cleared — and the
// error is surfaced as a *FetchError.
func (s *Store) FetchAll(ctx context.Context, page, size int) (models.ListPage, error) {
	if err := s.ensureOpen(); err != nil {
		return models.ListPage{}, err
	}

	listPage, err := s.backend.ListEntries(ctx, page, size)
	if err != nil {
		return models.ListPage{}, wrapFetch(err)
	}

	s.mu.Lock()
	s.entries = listPage.Entries
	s.pagination = listPage.Pagination
	s.loaded = true
	s.mu.Unlock()

	s.persistSnapshot()
	return listPage, nil
}

// Add saves a movie to the list. The movie is resolved through the catalog
// first (ErrNotFound when absent or delisted), then duplicate-checked
// (ErrDuplicate — never a silent overwrite), then created remotely. Only
// after the backend confirms is the entry inserted at the front of the
// cache. Mutations for one movie identity are serialized.
func (s *Store) Add(ctx context.Context, movieID string) (models.ListEntry, error) {
	if err := s.ensureOpen(); err != nil {
		return models.ListEntry{}, err
	}

	unlock := s.locks.lock(movieID)
	defer unlock()

	movie, err := s.backend.Movie(ctx, movieID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.ListEntry{}, ErrNotFound
		}
		return models.ListEntry{}, wrapFetch(err)
	}

	s.mu.RLock()
	dup := s.findLocked(movie.ID) != -1
	s.mu.RUnlock()
	if dup {
		return models.ListEntry{}, ErrDuplicate
	}

	entry, err := s.backend.CreateEntry(ctx, movie.ID)
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			return models.ListEntry{}, ErrDuplicate
		}
		if errors.Is(err, ErrNotFound) {
			return models.ListEntry{}, ErrNotFound
		}
		return models.ListEntry{}, wrapFetch(err)
	}

	if entry.Movie == nil {
		entry.Movie = &movie
	}

	s.mu.Lock()
	// Most-recent-first: new entries go to the front.
	s.entries = append([]models.ListEntry{entry}, s.entries...)
	s.mu.Unlock()

	s.persistSnapshot()
	return entry, nil
}

// Remove deletes the entry for the movie. The remote delete happens first;
// the cache entry is dropped only after confirmation, so a failed delete
// never leaves a local-only-removed state.
func (s *Store) Remove(ctx context.Context, movieID string) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}

	unlock := s.locks.lock(movieID)
	defer unlock()

	if err := s.backend.DeleteEntry(ctx, movieID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return wrapFetch(err)
	}

	s.mu.Lock()
	if idx := s.findLocked(movieID); idx != -1 {
		s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
	}
	s.mu.Unlock()

	s.persistSnapshot()
	return nil
}

// CheckStatus reports whether the movie is in the local cache. Pure read:
// the store is never mutated, and the result applies only to the queried
// identity.
func (s *Store) CheckStatus(movieID string) (bool, *models.ListEntry) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.findLocked(movieID)
	if idx == -1 {
		return false, nil
	}
	entry := s.entries[idx]
	return true, &entry
}

// UpdateProgress applies a partial watch-state update. The range check runs
// before any remote call, so an invalid value never leaves the process. The
// backend's response (which carries the LastWatchedAt side effect when
// watched flipped to true) replaces the cached entry.
func (s *Store) UpdateProgress(ctx context.Context, movieID string, upd models.ProgressUpdate) (models.ListEntry, error) {
	if err := s.ensureOpen(); err != nil {
		return models.ListEntry{}, err
	}

	if upd.WatchProgress != nil && (*upd.WatchProgress < 0 || *upd.WatchProgress > 100) {
		return models.ListEntry{}, ErrProgressOutOfRange
	}

	unlock := s.locks.lock(movieID)
	defer unlock()

	entry, err := s.backend.PatchEntry(ctx, movieID, upd)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.ListEntry{}, ErrNotFound
		}
		return models.ListEntry{}, wrapFetch(err)
	}

	s.mu.Lock()
	if idx := s.findLocked(movieID); idx != -1 {
		s.entries[idx] = entry
	}
	s.mu.Unlock()

	s.persistSnapshot()
	return entry, nil
}

// Entries returns a copy of the cached entries. Callers must treat the
// snapshot as immutable and re-read after mutations.
func (s *Store) Entries() []models.ListEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]models.ListEntry, len(s.entries))
	copy(entries, s.entries)
	return entries
}

// Loaded reports whether a fetch has succeeded since the store was created.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Pagination returns the pagination of the last successful fetch.
func (s *Store) Pagination() models.Pagination {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pagination
}

// findLocked returns the index of the entry for the movie, or -1. Callers
// hold mu.
func (s *Store) findLocked(movieID string) int {
	for i, entry := range s.entries {
		if entry.MovieID == movieID {
			return i
		}
	}
	return -1
}

func (s *Store) ensureOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// persistSnapshot writes the current entries to the snapshot, when one is
// configured. Best effort: a failed write is logged, never surfaced, since
// the snapshot is only a startup seed.
func (s *Store) persistSnapshot() {
	if s.snapshot == nil {
		return
	}
	if err := s.snapshot.Save(s.Entries()); err != nil {
		log.Printf("[liststore] snapshot save failed: %v", err)
	}
}

// wrapFetch converts a backend error into a *FetchError, preserving an
// existing one.
func wrapFetch(err error) error {
	if _, ok := AsFetchError(err); ok {
		return err
	}
	return &FetchError{Err: err}
}

// keyedLocks serializes mutations per movie identity so that, e.g., an add
// immediately followed by a remove of the same movie cannot resolve out of
// order and lose an update.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedLocks() keyedLocks {
	return keyedLocks{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedLocks) lock(key string) (unlock func()) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
