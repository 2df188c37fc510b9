package healthcheck

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestServeHTTP_Returns1(t *testing.T) {
	h := New()

	req := httptest.NewRequest("GET", "/healthcheck", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "1" {
		t.Errorf("body = %q, want %q", rec.Body.String(), "1")
	}
}

func TestRegister_RouteWorks(t *testing.T) {
	h := New()
	mux := http.NewServeMux()
	h.Register(mux)

	req := httptest.NewRequest("GET", "/healthcheck", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "1" {
		t.Errorf("body = %q, want %q", rec.Body.String(), "1")
	}
}
