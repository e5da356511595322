package vision

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestPDFToImages_Success_ClampsToConfiguredPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pdf-to-images" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("missing file field: %v", err)
		}
		_, _ = w.Write([]byte(`{"success": true, "images": ["p1", "p2", "p3", "p4"]}`))
	}))
	defer srv.Close()

	c := NewConverter(srv.URL, 2, time.Second)
	images := c.PDFToImages(context.Background(), []byte("%PDF-1.4 fake"))
	if len(images) != 2 {
		t.Fatalf("expected clamp to 2 pages, got %d", len(images))
	}
	if images[0] != "p1" || images[1] != "p2" {
		t.Fatalf("unexpected images: %v", images)
	}
}

func TestPDFToImages_DisabledWithoutBaseURL(t *testing.T) {
	c := NewConverter("", 3, time.Second)
	if got := c.PDFToImages(context.Background(), []byte("pdf")); got != nil {
		t.Fatalf("disabled converter must return nil, got %v", got)
	}
}

func TestPDFToImages_Non2xx_ReturnsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewConverter(srv.URL, 3, time.Second)
	if got := c.PDFToImages(context.Background(), []byte("pdf")); got != nil {
		t.Fatalf("expected nil on 5xx, got %v", got)
	}
}

func TestPDFToImages_ServiceReportedFailure_ReturnsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": false, "error": "corrupt pdf"}`))
	}))
	defer srv.Close()

	c := NewConverter(srv.URL, 3, time.Second)
	if got := c.PDFToImages(context.Background(), []byte("pdf")); got != nil {
		t.Fatalf("expected nil on reported failure, got %v", got)
	}
}

func TestPDFToImages_Unreachable_ReturnsNil(t *testing.T) {
	c := NewConverter("http://127.0.0.1:1", 3, 100*time.Millisecond)
	if got := c.PDFToImages(context.Background(), []byte("pdf")); got != nil {
		t.Fatalf("expected nil when service is unreachable, got %v", got)
	}
}

func TestNewConverter_PageClamping(t *testing.T) {
	if c := NewConverter("http://x", 0, time.Second); c.pages != 1 {
		t.Fatalf("pages < 1 must clamp to 1, got %d", c.pages)
	}
	if c := NewConverter("http://x", 10, time.Second); c.pages != maxPages {
		t.Fatalf("pages > cap must clamp to %d, got %d", maxPages, c.pages)
	}
}
