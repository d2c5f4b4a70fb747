package httpapi

import (
	"net/http"
	"time"

	"github.com/streamforge/tubeauth"
)

const (
	accessCookieName  = "accessToken"
	refreshCookieName = "refreshToken"
)

// setTokenCookies installs the pair. Both cookies are written in the same
// response; a client never holds one without the other.
func (s *Server) setTokenCookies(w http.ResponseWriter, pair tubeauth.TokenPair) {
	http.SetCookie(w, s.tokenCookie(accessCookieName, pair.AccessToken, s.accessTTL))
	http.SetCookie(w, s.tokenCookie(refreshCookieName, pair.RefreshToken, s.refreshTTL))
}

// clearTokenCookies expires both cookies together.
func (s *Server) clearTokenCookies(w http.ResponseWriter) {
	http.SetCookie(w, s.tokenCookie(accessCookieName, "", -time.Hour))
	http.SetCookie(w, s.tokenCookie(refreshCookieName, "", -time.Hour))
}

func (s *Server) tokenCookie(name, value string, ttl time.Duration) *http.Cookie {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl > 0 {
		cookie.MaxAge = int(ttl.Seconds())
	} else {
		cookie.MaxAge = -1
	}
	return cookie
}

func refreshTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(refreshCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}
