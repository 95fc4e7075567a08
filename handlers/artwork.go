package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gorilla/mux"
	"github.com/spf13/afero"

	"cinevault/services/catalog"
)

// maxArtworkSize caps uploaded poster/backdrop files at 10 MiB.
const maxArtworkSize = 10 << 20

// allowedArtworkTypes maps accepted content types to file extensions. The
// type is sniffed from the bytes, never trusted from the request.
var allowedArtworkTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ArtworkHandler stores and serves poster and backdrop images for movies.
type ArtworkHandler struct {
	catalog *catalog.Service
	fs      afero.Fs
	dir     string
}

// NewArtworkHandler creates an artwork handler storing files under dir.
func NewArtworkHandler(catalogSvc *catalog.Service, fs afero.Fs, dir string) (*ArtworkHandler, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &ArtworkHandler{catalog: catalogSvc, fs: fs, dir: dir}, nil
}

// Upload accepts a multipart image for a movie. The kind path segment is
// "poster" or "backdrop".
func (h *ArtworkHandler) Upload(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	movieID := vars["movieID"]
	kind := vars["kind"]

	if kind != "poster" && kind != "backdrop" {
		http.Error(w, `{"error": "kind must be poster or backdrop"}`, http.StatusBadRequest)
		return
	}

	if _, err := h.catalog.GetMovie(movieID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, catalog.ErrMovieNotFound) {
			status = http.StatusNotFound
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxArtworkSize)
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, `{"error": "missing file field"}`, http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, `{"error": "failed to read upload"}`, http.StatusBadRequest)
		return
	}

	mtype := mimetype.Detect(data)
	ext, ok := allowedArtworkTypes[mtype.String()]
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnsupportedMediaType)
		json.NewEncoder(w).Encode(map[string]string{"error": "unsupported image type " + mtype.String()})
		return
	}

	name := movieID + "-" + kind + ext
	path := filepath.Join(h.dir, name)
	if err := afero.WriteFile(h.fs, path, data, 0o644); err != nil {
		http.Error(w, `{"error": "failed to store artwork"}`, http.StatusInternalServerError)
		return
	}

	// Stale copies in other formats would otherwise shadow the new upload.
	for _, staleExt := range allowedArtworkTypes {
		if staleExt == ext {
			continue
		}
		_ = h.fs.Remove(filepath.Join(h.dir, movieID+"-"+kind+staleExt))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{
		"url": "/api/movies/" + movieID + "/artwork/" + kind,
	})
}

// Serve streams the stored artwork for a movie.
func (h *ArtworkHandler) Serve(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	movieID := vars["movieID"]
	kind := vars["kind"]

	for mtypeName, ext := range allowedArtworkTypes {
		path := filepath.Join(h.dir, movieID+"-"+kind+ext)
		file, err := h.fs.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			http.Error(w, `{"error": "failed to open artwork"}`, http.StatusInternalServerError)
			return
		}
		defer file.Close()

		info, err := file.Stat()
		if err != nil {
			http.Error(w, `{"error": "failed to stat artwork"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", mtypeName)
		http.ServeContent(w, r, info.Name(), info.ModTime(), file)
		return
	}

	http.Error(w, `{"error": "artwork not found"}`, http.StatusNotFound)
}
