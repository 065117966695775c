package handlers

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
)

func TestAbsoluteURL(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := absoluteURL(req, "/users/1"); got != "http://example.com/users/1" {
		t.Errorf("Expected http URL, got %s", got)
	}

	req.TLS = &tls.ConnectionState{}
	if got := absoluteURL(req, "/"); got != "https://example.com/" {
		t.Errorf("Expected https URL, got %s", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	if got := absoluteURL(req, "/"); got != "https://example.com/" {
		t.Errorf("Expected https URL behind a proxy, got %s", got)
	}
}

func TestBackPath(t *testing.T) {
	tests := []struct {
		referer string
		want    string
	}{
		{"", "/fallback"},
		{"http://example.com/users/3", "/users/3"},
		{"http://example.com/users?q=bob", "/users?q=bob"},
		{"http://other.test/users/3", "/fallback"},
		{"::not a url", "/fallback"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/users/add_like/1", nil)
		if tt.referer != "" {
			req.Header.Set("Referer", tt.referer)
		}
		if got := backPath(req, "/fallback"); got != tt.want {
			t.Errorf("backPath(%q) = %q, want %q", tt.referer, got, tt.want)
		}
	}
}

func TestPathID(t *testing.T) {
	tests := []struct {
		raw    string
		want   uint
		wantOK bool
	}{
		{"42", 42, true},
		{"0", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": tt.raw})
		got, ok := pathID(req)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("pathID(%q) = %d, %v; want %d, %v", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestValidEmail(t *testing.T) {
	for email, want := range map[string]bool{
		"user@test.com":   true,
		"a.b@sub.test.io": true,
		"user@localhost":  false,
		"@test.com":       false,
		"user@":           false,
		"no-at-sign":      false,
		"us er@test.com":  false,
	} {
		if got := validEmail(email); got != want {
			t.Errorf("validEmail(%q) = %v, want %v", email, got, want)
		}
	}
}

func TestNoCache(t *testing.T) {
	rec := httptest.NewRecorder()
	NoCache(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := rec.Header().Get("Cache-Control"); got != "no-cache, no-store, must-revalidate" {
		t.Errorf("Unexpected Cache-Control %q", got)
	}
}

type pingerFunc func() error

func (f pingerFunc) Ping() error { return f() }

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	NewSystemHandler(pingerFunc(func() error { return nil })).
		Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	NewSystemHandler(pingerFunc(func() error { return http.ErrServerClosed })).
		Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", rec.Code)
	}
}
