package liststore

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the referenced movie or list entry does not exist
	// (or the movie is delisted).
	ErrNotFound = errors.New("not found")
	// ErrDuplicate means the movie is already in the list; adds fail rather
	// than overwrite.
	ErrDuplicate = errors.New("movie already in list")
	// ErrProgressOutOfRange means watch progress fell outside [0,100].
	ErrProgressOutOfRange = errors.New("watch progress must be between 0 and 100")
	// ErrClosed means the store was closed at logout and can no longer be
	// used.
	ErrClosed = errors.New("list store is closed")
)

// FetchError wraps a transport or remote failure. The local cache is always
// left untouched when one occurs.
type FetchError struct {
	StatusCode int    // zero when the request never got a response
	Message    string // remote error message, when one was decoded
	Err        error  // underlying transport error, when there was one
}

func (e *FetchError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("fetch failed: %v", e.Err)
	case e.Message != "":
		return fmt.Sprintf("fetch failed: %s (status %d)", e.Message, e.StatusCode)
	default:
		return fmt.Sprintf("fetch failed: status %d", e.StatusCode)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// AsFetchError unwraps err into a *FetchError if it is one.
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	ok := errors.As(err, &fe)
	return fe, ok
}
