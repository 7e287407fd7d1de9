package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHealthMiddleware(t *testing.T) {
	handler := HealthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	t.Run("health", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("GET /health = %d, want %d", rec.Code, http.StatusOK)
		}
	})

	t.Run("passthrough", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/session", nil))

		if rec.Code != http.StatusTeapot {
			t.Errorf("GET /session = %d, want %d", rec.Code, http.StatusTeapot)
		}
	})
}

func TestRequestSizeLimitMiddleware(t *testing.T) {
	handler := RequestSizeLimitMiddleware(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 64)
		_, err := r.Body.Read(buf)
		if err != nil && !strings.Contains(err.Error(), "EOF") {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("small body passes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/allowance", strings.NewReader("tiny")))

		if rec.Code != http.StatusOK {
			t.Errorf("small body = %d, want %d", rec.Code, http.StatusOK)
		}
	})

	t.Run("oversized body rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/allowance", strings.NewReader(strings.Repeat("x", 64))))

		if rec.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("oversized body = %d, want %d", rec.Code, http.StatusRequestEntityTooLarge)
		}
	})
}
