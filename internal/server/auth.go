package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"
)

const (
	tokenCookieName = "lv_token"
	tokenCookieTTL  = 24 * time.Hour
)

// authMiddleware admits requests carrying the dashboard token as a query
// parameter, a cookie or a bearer header. A valid ?token= is swapped for
// a cookie and the request is redirected without it, keeping any other
// arguments such as params.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if queryToken := r.URL.Query().Get("token"); queryToken != "" {
			if !s.validToken(queryToken) {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			http.SetCookie(w, &http.Cookie{
				Name:     tokenCookieName,
				Value:    s.token,
				Path:     "/",
				HttpOnly: true,
				MaxAge:   int(tokenCookieTTL / time.Second),
				SameSite: http.SameSiteLaxMode,
			})
			http.Redirect(w, r, withoutToken(r), http.StatusFound)
			return
		}

		if bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok && s.validToken(bearer) {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(tokenCookieName)
		if err != nil || !s.validToken(cookie.Value) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) validToken(candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(s.token)) == 1
}

// withoutToken rebuilds the request URL minus the token argument. The
// raw query is edited in place so params stays encoded exactly once.
func withoutToken(r *http.Request) string {
	var kept []string
	for _, pair := range strings.Split(r.URL.RawQuery, "&") {
		if pair == "" || strings.HasPrefix(pair, "token=") {
			continue
		}
		kept = append(kept, pair)
	}
	target := r.URL.Path
	if len(kept) > 0 {
		target += "?" + strings.Join(kept, "&")
	}
	return target
}

func clearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:   tokenCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}
