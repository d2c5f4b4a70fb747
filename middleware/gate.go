package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/streamforge/tubeauth"
)

type currentUserContextKey struct{}

// CurrentUser returns the account a gated request was resolved to.
func CurrentUser(ctx context.Context) (tubeauth.UserRecord, bool) {
	user, ok := ctx.Value(currentUserContextKey{}).(tubeauth.UserRecord)
	return user, ok
}

// Gate admits only requests carrying a valid access token. The token is
// read from the accessToken cookie first, then from the Authorization
// header as a Bearer fallback. On success the resolved user is attached to
// the request context for CurrentUser; every failure is a generic 401.
func Gate(engine *tubeauth.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := requestToken(r)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			user, err := engine.ValidateAccess(r.Context(), token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), currentUserContextKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requestToken(r *http.Request) (string, bool) {
	if cookie, err := r.Cookie("accessToken"); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	return bearerToken(r.Header.Get("Authorization"))
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
