package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/streamforge/tubeauth"
	"github.com/streamforge/tubeauth/middleware"
)

// Options tunes the HTTP surface.
type Options struct {
	// AccessTTL and RefreshTTL bound the cookie lifetimes; they should match
	// the engine's token TTLs.
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// SecureCookies marks the token cookies Secure. Disable only for local
	// plain-HTTP development.
	SecureCookies bool

	Logger *slog.Logger
}

// Server exposes the engine's login, refresh, and logout flows over HTTP.
type Server struct {
	engine        *tubeauth.Engine
	accessTTL     time.Duration
	refreshTTL    time.Duration
	secureCookies bool
	log           *slog.Logger
}

// NewServer wires a Server around a built engine.
func NewServer(engine *tubeauth.Engine, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		engine:        engine,
		accessTTL:     opts.AccessTTL,
		refreshTTL:    opts.RefreshTTL,
		secureCookies: opts.SecureCookies,
		log:           log,
	}
}

// Routes returns the mux with all auth endpoints registered. Logout and the
// current-user endpoint sit behind the access-token gate.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	gate := middleware.Gate(s.engine)

	mux.HandleFunc("POST /api/v1/users/login", s.handleLogin)
	mux.HandleFunc("POST /api/v1/users/refresh-token", s.handleRefresh)
	mux.Handle("POST /api/v1/users/logout", gate(http.HandlerFunc(s.handleLogout)))
	mux.Handle("GET /api/v1/users/current-user", gate(http.HandlerFunc(s.handleCurrentUser)))

	return mux
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

func (r loginRequest) identifier() string {
	for _, v := range []string{r.Identifier, r.Username, r.Email} {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

type userPayload struct {
	UserID    string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FullName  string `json:"fullName,omitempty"`
	AvatarURL string `json:"avatar,omitempty"`
}

type sessionPayload struct {
	User         *userPayload `json:"user,omitempty"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

func toUserPayload(user tubeauth.UserRecord) *userPayload {
	return &userPayload{
		UserID:    user.UserID,
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		AvatarURL: user.AvatarURL,
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, nil, "invalid request body")
		return
	}
	if req.identifier() == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, nil, "identifier and password are required")
		return
	}

	ctx := requestContext(r)
	user, pair, err := s.engine.Login(ctx, req.identifier(), req.Password)
	if err != nil {
		s.log.Info("login rejected", "error", err)
		writeError(w, err)
		return
	}

	s.setTokenCookies(w, pair)
	writeJSON(w, http.StatusOK, sessionPayload{
		User:         toUserPayload(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "logged in successfully")
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	refreshToken := refreshTokenFromRequest(r)
	if refreshToken == "" {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			refreshToken = req.RefreshToken
		}
	}
	if refreshToken == "" {
		writeJSON(w, http.StatusUnauthorized, nil, "unauthorized")
		return
	}

	pair, err := s.engine.Refresh(requestContext(r), refreshToken)
	if err != nil {
		s.log.Info("refresh rejected", "error", err)
		// A dead session also severs the browser cookies so they are not
		// replayed on the next request. Throttled or store-down rejections
		// keep the cookies: the same token stays good for a retry.
		if sessionTerminated(err) {
			s.clearTokenCookies(w)
		}
		writeError(w, err)
		return
	}

	s.setTokenCookies(w, pair)
	writeJSON(w, http.StatusOK, sessionPayload{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "token refreshed successfully")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, nil, "unauthorized")
		return
	}

	if err := s.engine.Logout(requestContext(r), user.UserID); err != nil {
		s.log.Error("logout failed", "user_id", user.UserID, "error", err)
		writeError(w, err)
		return
	}

	s.clearTokenCookies(w)
	writeJSON(w, http.StatusOK, nil, "logged out successfully")
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, nil, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, toUserPayload(user), "current user fetched successfully")
}

// requestContext decorates the request context with the caller's network
// identity for throttling and audit.
func requestContext(r *http.Request) context.Context {
	ctx := tubeauth.WithClientIP(r.Context(), clientIP(r))
	return tubeauth.WithUserAgent(ctx, r.UserAgent())
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i > 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host := r.RemoteAddr
	if i := strings.LastIndexByte(host, ':'); i > 0 {
		host = host[:i]
	}
	return strings.Trim(host, "[]")
}
