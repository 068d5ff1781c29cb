package server

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ligoview/ligoview/internal/backend"
	"github.com/ligoview/ligoview/internal/store"
)

func newBareServer(t *testing.T) *Server {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	srv := New(s, backend.NewClient("http://127.0.0.1:1", 1, time.Second), 8080, "")
	t.Cleanup(srv.Close)
	return srv
}

func TestSession_ReusedByCookie(t *testing.T) {
	srv := newBareServer(t)

	w := httptest.NewRecorder()
	first := srv.session(w, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != sessionCookieName {
		t.Fatalf("expected session cookie, got %v", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookies[0])
	w2 := httptest.NewRecorder()
	second := srv.session(w2, req)

	if first != second {
		t.Error("expected the same session for the same cookie")
	}
	if len(w2.Result().Cookies()) != 0 {
		t.Error("expected no new cookie for an existing session")
	}
}

func TestSession_UnknownCookieStartsFresh(t *testing.T) {
	srv := newBareServer(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "gone"})
	w := httptest.NewRecorder()
	srv.session(w, req)

	if srv.sessions.Count() != 1 {
		t.Errorf("expected 1 session, got %d", srv.sessions.Count())
	}
	if _, ok := srv.sessions.Get("gone"); ok {
		t.Error("unknown session id should not be adopted")
	}
}

func TestExpireSessions(t *testing.T) {
	srv := newBareServer(t)

	for i := 0; i < 3; i++ {
		srv.session(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	}

	if n := srv.expireSessions(time.Now().Add(-time.Hour)); n != 0 {
		t.Errorf("expected no sessions expired, got %d", n)
	}
	if n := srv.expireSessions(time.Now().Add(time.Hour)); n != 3 {
		t.Errorf("expected 3 sessions expired, got %d", n)
	}
	if srv.sessions.Count() != 0 {
		t.Errorf("expected empty registry, got %d", srv.sessions.Count())
	}
}

func TestWithoutToken(t *testing.T) {
	tests := []struct {
		target string
		want   string
	}{
		{"/dashboard?token=abc", "/dashboard"},
		{"/dashboard?token=abc&params=%7B%22mode%22%3A%22table%22%7D", "/dashboard?params=%7B%22mode%22%3A%22table%22%7D"},
		{"/dashboard?params=x&token=abc&action=update", "/dashboard?params=x&action=update"},
	}

	for _, tt := range tests {
		got := withoutToken(httptest.NewRequest(http.MethodGet, tt.target, nil))
		if got != tt.want {
			t.Errorf("withoutToken(%q) = %q, want %q", tt.target, got, tt.want)
		}
	}
}

func TestParseRows(t *testing.T) {
	got := parseRows([]string{"2", "x", "-1", "0"})
	if len(got) != 2 || got[0] != 2 || got[1] != 0 {
		t.Errorf("unexpected rows %v", got)
	}
}
