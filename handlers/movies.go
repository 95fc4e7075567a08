package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"cinevault/internal/auth"
	"cinevault/models"
	"cinevault/recommend"
	"cinevault/services/catalog"
	"cinevault/services/mylist"
)

// MoviesHandler handles catalog endpoints.
type MoviesHandler struct {
	catalog *catalog.Service
	mylist  *mylist.Service
}

// NewMoviesHandler creates a new movies handler.
func NewMoviesHandler(catalogSvc *catalog.Service, mylistSvc *mylist.Service) *MoviesHandler {
	return &MoviesHandler{
		catalog: catalogSvc,
		mylist:  mylistSvc,
	}
}

// HomepageSections returns the named homepage rows in one payload.
func (h *MoviesHandler) HomepageSections(w http.ResponseWriter, r *http.Request) {
	sections, err := h.catalog.HomepageSections()
	if err != nil {
		http.Error(w, `{"error": "failed to load homepage sections"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sections)
}

// Featured returns the featured movies.
func (h *MoviesHandler) Featured(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	movies, err := h.catalog.Featured(limit)
	if err != nil {
		http.Error(w, `{"error": "failed to load featured movies"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]models.MovieRecord{"movies": movies})
}

// Genres returns the distinct genres across the catalog.
func (h *MoviesHandler) Genres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.catalog.Genres()
	if err != nil {
		http.Error(w, `{"error": "failed to load genres"}`, http.StatusInternalServerError)
		return
	}
	if genres == nil {
		genres = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]string{"genres": genres})
}

// Search matches the query against titles, descriptions, and genres.
func (h *MoviesHandler) Search(w http.ResponseWriter, r *http.Request) {
	movies, err := h.catalog.Search(r.URL.Query().Get("q"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, catalog.ErrQueryRequired) {
			status = http.StatusBadRequest
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	if movies == nil {
		movies = []models.MovieRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]models.MovieRecord{"movies": movies})
}

// GetByID returns one movie and records the view.
func (h *MoviesHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	movieID := vars["movieID"]

	movie, err := h.catalog.GetMovie(movieID)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, catalog.ErrMovieNotFound):
			status = http.StatusNotFound
		case errors.Is(err, catalog.ErrMovieIDRequired):
			status = http.StatusBadRequest
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	h.catalog.RecordView(movie.ID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]models.MovieRecord{"movie": movie})
}

// LuckyResponse represents the feeling-lucky pick.
type LuckyResponse struct {
	Found bool                `json:"found"`
	Movie *models.MovieRecord `json:"movie,omitempty"`
}

// Lucky picks a random movie biased toward the genres of the caller's saved
// list. A pick from an empty catalog is a normal empty response, not an
// error.
func (h *MoviesHandler) Lucky(w http.ResponseWriter, r *http.Request) {
	sections, err := h.catalog.HomepageSections()
	if err != nil {
		http.Error(w, `{"error": "failed to load candidate pool"}`, http.StatusInternalServerError)
		return
	}
	pool := recommend.BuildPool(sections)

	var aff recommend.Affinity
	if accountID := auth.GetAccountID(r); accountID != "" {
		page, err := h.mylist.List(accountID, 1, mylist.MaxPageSize)
		if err != nil {
			http.Error(w, `{"error": "failed to load list"}`, http.StatusInternalServerError)
			return
		}
		aff = recommend.BuildAffinity(page.Entries)
	}

	movie, ok := recommend.Select(pool, aff, nil)

	resp := LuckyResponse{Found: ok}
	if ok {
		resp.Movie = &movie
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
