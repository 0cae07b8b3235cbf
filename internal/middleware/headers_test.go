package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAPIHeaders(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := APIHeaders(next)

	tests := []struct {
		name        string
		method      string
		path        string
		wantCache   string
		wantnosniff string
	}{
		{"api get cached", http.MethodGet, "/api/plannings", "public, s-maxage=60, stale-while-revalidate=300", "nosniff"},
		{"api post not cached", http.MethodPost, "/api/plannings", "", "nosniff"},
		{"api delete not cached", http.MethodDelete, "/api/plannings/1", "", "nosniff"},
		{"non-api untouched", http.MethodGet, "/health", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if got := w.Header().Get("Cache-Control"); got != tt.wantCache {
				t.Errorf("Cache-Control = %q, want %q", got, tt.wantCache)
			}
			if got := w.Header().Get("X-Content-Type-Options"); got != tt.wantnosniff {
				t.Errorf("X-Content-Type-Options = %q, want %q", got, tt.wantnosniff)
			}
			if tt.wantnosniff != "" {
				if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
					t.Errorf("X-Frame-Options = %q, want DENY", got)
				}
				if got := w.Header().Get("X-XSS-Protection"); got != "1; mode=block" {
					t.Errorf("X-XSS-Protection = %q, want %q", got, "1; mode=block")
				}
				if got := w.Header().Get("Vary"); got != "Accept-Encoding" {
					t.Errorf("Vary = %q, want Accept-Encoding", got)
				}
			}
		})
	}
}

func TestAPIHeaders_NeverBlocks(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	})
	req := httptest.NewRequest(http.MethodPost, "/api/anything", nil)
	w := httptest.NewRecorder()
	APIHeaders(next).ServeHTTP(w, req)

	if !called {
		t.Error("middleware did not pass the request through")
	}
	if w.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", w.Code, http.StatusTeapot)
	}
}
