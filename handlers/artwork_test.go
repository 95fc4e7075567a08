package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
	"github.com/spf13/afero"

	"cinevault/internal/database"
	"cinevault/services/catalog"
)

// pngBytes is a minimal valid PNG signature plus IHDR start, enough for
// content sniffing.
var pngBytes = []byte{
	0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 'I', 'H', 'D', 'R',
}

func newArtworkTestRouter(t *testing.T) *mux.Router {
	t.Helper()

	db, err := database.NewDB(database.Config{
		DatabasePath: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	catalogSvc := catalog.NewService(db.Movies)
	if err := catalogSvc.Seed(); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}

	handler, err := NewArtworkHandler(catalogSvc, afero.NewMemMapFs(), "artwork")
	if err != nil {
		t.Fatalf("artwork handler: %v", err)
	}

	router := mux.NewRouter()
	router.HandleFunc("/api/movies/{movieID}/artwork/{kind}", handler.Upload).Methods(http.MethodPost)
	router.HandleFunc("/api/movies/{movieID}/artwork/{kind}", handler.Serve).Methods(http.MethodGet)
	return router
}

func multipartBody(t *testing.T, payload []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "upload.bin")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	writer.Close()
	return &buf, writer.FormDataContentType()
}

func TestArtworkUploadAndServe(t *testing.T) {
	router := newArtworkTestRouter(t)

	body, contentType := multipartBody(t, pngBytes)
	req := httptest.NewRequest(http.MethodPost, "/api/movies/cv-inception/artwork/poster", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload: expected 201, got %d: %s", rec.Code, rec.Body)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/movies/cv-inception/artwork/poster", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("serve: expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", got)
	}
	if !bytes.Equal(rec.Body.Bytes(), pngBytes) {
		t.Error("served bytes differ from the upload")
	}
}

func TestArtworkUploadRejectsNonImage(t *testing.T) {
	router := newArtworkTestRouter(t)

	body, contentType := multipartBody(t, []byte("just some text, not an image"))
	req := httptest.NewRequest(http.MethodPost, "/api/movies/cv-inception/artwork/poster", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rec.Code)
	}
}

func TestArtworkUploadUnknownMovie(t *testing.T) {
	router := newArtworkTestRouter(t)

	body, contentType := multipartBody(t, pngBytes)
	req := httptest.NewRequest(http.MethodPost, "/api/movies/cv-nope/artwork/poster", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestArtworkUploadBadKind(t *testing.T) {
	router := newArtworkTestRouter(t)

	body, contentType := multipartBody(t, pngBytes)
	req := httptest.NewRequest(http.MethodPost, "/api/movies/cv-inception/artwork/banner", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestArtworkServeMissing(t *testing.T) {
	router := newArtworkTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/movies/cv-inception/artwork/backdrop", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
