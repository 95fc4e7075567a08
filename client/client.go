// Package client is a typed HTTP client for the cinevault API. It satisfies
// liststore.Backend, normalizing every movie payload at the ingestion
// boundary so the rest of the program only ever sees canonical records.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"cinevault/liststore"
	"cinevault/models"
)

const defaultTimeout = 15 * time.Second

// Client talks to a cinevault server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	attempts   uint
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sets the bearer token attached to every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithRetryAttempts overrides how many times idempotent GETs are tried.
func WithRetryAttempts(attempts uint) Option {
	return func(c *Client) { c.attempts = attempts }
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		attempts:   3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken updates the bearer token, e.g. after login or refresh.
func (c *Client) SetToken(token string) {
	c.token = token
}

var _ liststore.Backend = (*Client)(nil)

// Movie fetches one catalog movie by ID.
func (c *Client) Movie(ctx context.Context, id string) (models.MovieRecord, error) {
	var resp struct {
		Movie models.RawMovie `json:"movie"`
	}
	if err := c.getJSON(ctx, "/api/movies/"+id, &resp); err != nil {
		return models.MovieRecord{}, err
	}
	movie, err := resp.Movie.Normalize()
	if err != nil {
		return models.MovieRecord{}, fmt.Errorf("normalize movie: %w", err)
	}
	return movie, nil
}

// Sections fetches the homepage section map, normalized and keyed by section
// name.
func (c *Client) Sections(ctx context.Context) (map[string][]models.MovieRecord, error) {
	var raw map[string][]models.RawMovie
	if err := c.getJSON(ctx, "/api/movies/homepage/sections", &raw); err != nil {
		return nil, err
	}

	sections := make(map[string][]models.MovieRecord, len(raw))
	for name, rawMovies := range raw {
		movies := make([]models.MovieRecord, 0, len(rawMovies))
		for _, rm := range rawMovies {
			movie, err := rm.Normalize()
			if err != nil {
				// Records without identity cannot participate in
				// deduplication; skip them rather than poison the pool.
				continue
			}
			movies = append(movies, movie)
		}
		sections[name] = movies
	}
	return sections, nil
}

// ListEntries fetches one page of the saved list.
func (c *Client) ListEntries(ctx context.Context, page, size int) (models.ListPage, error) {
	var wire struct {
		MyList     []wireEntry       `json:"myList"`
		Pagination models.Pagination `json:"pagination"`
	}
	path := fmt.Sprintf("/api/mylist?page=%d&limit=%d", page, size)
	if err := c.getJSON(ctx, path, &wire); err != nil {
		return models.ListPage{}, err
	}

	entries := make([]models.ListEntry, 0, len(wire.MyList))
	for _, we := range wire.MyList {
		entries = append(entries, we.normalize())
	}
	return models.ListPage{Entries: entries, Pagination: wire.Pagination}, nil
}

// CreateEntry adds a movie to the saved list.
func (c *Client) CreateEntry(ctx context.Context, movieID string) (models.ListEntry, error) {
	var resp struct {
		Item wireEntry `json:"item"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/mylist/add/"+movieID, nil, &resp); err != nil {
		return models.ListEntry{}, err
	}
	return resp.Item.normalize(), nil
}

// DeleteEntry removes a movie from the saved list.
func (c *Client) DeleteEntry(ctx context.Context, movieID string) error {
	return c.do(ctx, http.MethodDelete, "/api/mylist/remove/"+movieID, nil, nil)
}

// GetEntry checks whether a movie is in the saved list.
func (c *Client) GetEntry(ctx context.Context, movieID string) (models.ListEntry, bool, error) {
	var resp struct {
		InList bool       `json:"inList"`
		Item   *wireEntry `json:"item"`
	}
	if err := c.getJSON(ctx, "/api/mylist/check/"+movieID, &resp); err != nil {
		return models.ListEntry{}, false, err
	}
	if !resp.InList || resp.Item == nil {
		return models.ListEntry{}, false, nil
	}
	return resp.Item.normalize(), true, nil
}

// PatchEntry applies a partial watch-state update.
func (c *Client) PatchEntry(ctx context.Context, movieID string, upd models.ProgressUpdate) (models.ListEntry, error) {
	var resp struct {
		Item wireEntry `json:"item"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/mylist/progress/"+movieID, upd, &resp); err != nil {
		return models.ListEntry{}, err
	}
	return resp.Item.normalize(), nil
}

// getJSON performs an idempotent GET with retries on transport errors and
// 5xx responses. Mutations never retry; semantic failures never retry.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return retry.Do(
		func() error {
			return c.do(ctx, http.MethodGet, path, nil, out)
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTransient),
	)
}

// do performs one request and maps the response. Non-2xx statuses become
// semantic sentinel errors or a *FetchError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &liststore.FetchError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &liststore.FetchError{Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// statusError maps a non-2xx response to the store's error taxonomy.
func statusError(resp *http.Response) error {
	message := decodeMessage(resp.Body)

	switch resp.StatusCode {
	case http.StatusNotFound:
		if message != "" {
			return fmt.Errorf("%w: %s", liststore.ErrNotFound, message)
		}
		return liststore.ErrNotFound
	case http.StatusConflict:
		return liststore.ErrDuplicate
	default:
		return &liststore.FetchError{StatusCode: resp.StatusCode, Message: message}
	}
}

// decodeMessage pulls the error text out of a JSON error body, accepting
// both the {"error": ...} and legacy {"message": ...} shapes.
func decodeMessage(body io.Reader) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return ""
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Message
}

// isTransient reports whether an error is worth retrying: transport
// failures and 5xx responses, never semantic errors.
func isTransient(err error) bool {
	if errors.Is(err, liststore.ErrNotFound) || errors.Is(err, liststore.ErrDuplicate) {
		return false
	}
	if fe, ok := liststore.AsFetchError(err); ok {
		return fe.StatusCode == 0 || fe.StatusCode >= 500
	}
	return false
}

// wireEntry is the list entry as it appears on the wire, with the movie
// payload still in raw shape.
type wireEntry struct {
	ID            string           `json:"id"`
	UserID        string           `json:"user"`
	MovieID       string           `json:"movieId"`
	Movie         *models.RawMovie `json:"movie"`
	AddedAt       time.Time        `json:"addedAt"`
	Watched       bool             `json:"watched"`
	WatchProgress int              `json:"watchProgress"`
	LastWatchedAt *time.Time       `json:"lastWatchedAt"`
}

func (w wireEntry) normalize() models.ListEntry {
	entry := models.ListEntry{
		ID:            w.ID,
		UserID:        w.UserID,
		MovieID:       w.MovieID,
		AddedAt:       w.AddedAt,
		Watched:       w.Watched,
		WatchProgress: w.WatchProgress,
		LastWatchedAt: w.LastWatchedAt,
	}
	if w.Movie != nil {
		if movie, err := w.Movie.Normalize(); err == nil {
			entry.Movie = &movie
			if entry.MovieID == "" {
				entry.MovieID = movie.ID
			}
		}
	}
	return entry
}
