package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"bandvault/internal/collection"
)

func newTestRouter(t *testing.T) (*gin.Engine, *collection.Collection) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	root := t.TempDir()
	p := filepath.Join(root, "Pink Floyd", "1973 - The Dark Side of the Moon", "01.mp3")
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	col := collection.New(collection.Options{MusicRoot: root})
	t.Cleanup(col.Close)
	if _, err := col.Scan(context.Background()); err != nil {
		t.Fatalf("scan: %v", err)
	}

	router := gin.New()
	New(col).Register(router)
	return router, col
}

func TestGetBand_ReturnsSavedMetadata(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/bands/Pink%20Floyd", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGetBand_UnknownNameReturns404(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/bands/Nobody", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestListBands_ReturnsScannedBand(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/bands", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Pink Floyd") {
		t.Fatalf("expected response to mention Pink Floyd, got %s", rec.Body.String())
	}
}

func TestSaveBandMetadata_InvalidRatingReturns422(t *testing.T) {
	router, _ := newTestRouter(t)

	body := `{"band_name":"Pink Floyd","albums":[{"album_name":"The Dark Side of the Moon","rate":99}]}`
	req := httptest.NewRequest(http.MethodPost, "/bands/Pink%20Floyd/metadata", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}
