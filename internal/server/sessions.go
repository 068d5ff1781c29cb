package server

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/ligoview/ligoview/internal/render"
	"github.com/ligoview/ligoview/internal/viewstate"
)

const sessionCookieName = "lv_session"

// session is one browser's dashboard: a controller that lives as long
// as the page session does.
type session struct {
	ctrl     *render.Controller
	lastSeen atomic.Int64
}

func (s *session) touch() {
	s.lastSeen.Store(time.Now().Unix())
}

// session returns the caller's dashboard session, creating one (and its
// cookie) on first visit.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *session {
	loc := pageLocation(r)

	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if sess, ok := s.sessions.Get(cookie.Value); ok {
			sess.ctrl.SetLocation(loc)
			sess.touch()
			return sess
		}
	}

	id := uuid.NewString()
	sess := &session{ctrl: render.NewController(s.backend, s.pool, loc)}
	sess.touch()
	s.sessions.Set(id, sess)

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

// expireSessions drops sessions not seen since cutoff and returns how
// many were removed.
func (s *Server) expireSessions(cutoff time.Time) int {
	var idle []string
	s.sessions.IterCb(func(id string, sess *session) {
		if sess.lastSeen.Load() < cutoff.Unix() {
			idle = append(idle, id)
		}
	})
	for _, id := range idle {
		s.sessions.Remove(id)
	}
	return len(idle)
}

func pageLocation(r *http.Request) viewstate.Location {
	return viewstate.Location{Host: r.Host, Path: "/dashboard"}
}
