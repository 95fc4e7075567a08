package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"cinevault/internal/auth"
	"cinevault/models"
	"cinevault/services/mylist"
)

// MyListHandler handles saved-list endpoints. Every route runs behind the
// account auth middleware, so the account ID is always in the context.
type MyListHandler struct {
	mylist *mylist.Service
}

// NewMyListHandler creates a new my-list handler.
func NewMyListHandler(mylistSvc *mylist.Service) *MyListHandler {
	return &MyListHandler{mylist: mylistSvc}
}

// List returns one page of the caller's list, most recently added first.
func (h *MyListHandler) List(w http.ResponseWriter, r *http.Request) {
	accountID := auth.GetAccountID(r)

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	listPage, err := h.mylist.List(accountID, page, limit)
	if err != nil {
		http.Error(w, `{"error": "failed to load list"}`, http.StatusInternalServerError)
		return
	}
	if listPage.Entries == nil {
		listPage.Entries = []models.ListEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(listPage)
}

// Add saves a movie to the caller's list.
func (h *MyListHandler) Add(w http.ResponseWriter, r *http.Request) {
	accountID := auth.GetAccountID(r)
	movieID := mux.Vars(r)["movieID"]

	entry, err := h.mylist.Add(accountID, movieID)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, mylist.ErrAlreadyInList):
			status = http.StatusConflict
		case errors.Is(err, mylist.ErrMovieNotFound):
			status = http.StatusNotFound
		case errors.Is(err, mylist.ErrMovieIDRequired):
			status = http.StatusBadRequest
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"message": "movie added to your list",
		"item":    entry,
	})
}

// Remove deletes the caller's entry for the movie.
func (h *MyListHandler) Remove(w http.ResponseWriter, r *http.Request) {
	accountID := auth.GetAccountID(r)
	movieID := mux.Vars(r)["movieID"]

	if err := h.mylist.Remove(accountID, movieID); err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, mylist.ErrEntryNotFound):
			status = http.StatusNotFound
		case errors.Is(err, mylist.ErrMovieIDRequired):
			status = http.StatusBadRequest
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "movie removed from your list"})
}

// Check reports whether the movie is in the caller's list.
func (h *MyListHandler) Check(w http.ResponseWriter, r *http.Request) {
	accountID := auth.GetAccountID(r)
	movieID := mux.Vars(r)["movieID"]

	inList, entry, err := h.mylist.Check(accountID, movieID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, mylist.ErrMovieIDRequired) {
			status = http.StatusBadRequest
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"inList": inList,
		"item":   entry,
	})
}

// UpdateProgress applies a partial watch-state update to an entry.
func (h *MyListHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	accountID := auth.GetAccountID(r)
	movieID := mux.Vars(r)["movieID"]

	var upd models.ProgressUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		http.Error(w, `{"error": "invalid request body"}`, http.StatusBadRequest)
		return
	}

	entry, err := h.mylist.UpdateProgress(accountID, movieID, upd)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, mylist.ErrEntryNotFound):
			status = http.StatusNotFound
		case errors.Is(err, mylist.ErrProgressOutOfRange),
			errors.Is(err, mylist.ErrMovieIDRequired):
			status = http.StatusBadRequest
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"message": "progress updated",
		"item":    entry,
	})
}

// Recent returns the caller's watched entries, most recently watched first.
func (h *MyListHandler) Recent(w http.ResponseWriter, r *http.Request) {
	accountID := auth.GetAccountID(r)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.mylist.Recent(accountID, limit)
	if err != nil {
		http.Error(w, `{"error": "failed to load recently watched"}`, http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []models.ListEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]models.ListEntry{"recentlyWatched": entries})
}

// Stats aggregates the caller's list.
func (h *MyListHandler) Stats(w http.ResponseWriter, r *http.Request) {
	accountID := auth.GetAccountID(r)

	stats, err := h.mylist.Stats(accountID)
	if err != nil {
		http.Error(w, `{"error": "failed to load stats"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
