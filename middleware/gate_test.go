package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/streamforge/tubeauth"
	"github.com/streamforge/tubeauth/password"
)

type singleUser struct {
	user tubeauth.UserRecord
}

func (s *singleUser) GetUserByIdentifier(_ context.Context, identifier string) (tubeauth.UserRecord, error) {
	if identifier == s.user.Username || identifier == s.user.Email {
		return s.user, nil
	}
	return tubeauth.UserRecord{}, tubeauth.ErrUserNotFound
}

func (s *singleUser) GetUserByID(_ context.Context, userID string) (tubeauth.UserRecord, error) {
	if userID == s.user.UserID {
		return s.user, nil
	}
	return tubeauth.UserRecord{}, tubeauth.ErrUserNotFound
}

func (s *singleUser) UpdatePasswordHash(context.Context, string, string) error {
	return nil
}

func newGateEnv(t *testing.T) (*tubeauth.Engine, tubeauth.TokenPair) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := tubeauth.DefaultConfig()
	cfg.Token.AccessKey = []byte("gate-test-access")
	cfg.Token.RefreshKey = []byte("gate-test-refresh")
	cfg.Password = password.Config{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 16}

	hasher, err := password.NewHasher(cfg.Password)
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}
	hash, err := hasher.Hash("correct-horse-battery-staple")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	provider := &singleUser{user: tubeauth.UserRecord{
		UserID:       "u-alice",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: hash,
	}}

	engine, err := tubeauth.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserProvider(provider).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	_, pair, err := engine.Login(context.Background(), "alice", "correct-horse-battery-staple")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	return engine, pair
}

func gatedEcho(t *testing.T, engine *tubeauth.Engine) http.Handler {
	t.Helper()
	return Gate(engine)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := CurrentUser(r.Context())
		if !ok {
			t.Error("CurrentUser missing inside gated handler")
		}
		_, _ = w.Write([]byte(user.Username))
	}))
}

func TestGateBearerToken(t *testing.T) {
	engine, pair := newGateEnv(t)
	handler := gatedEcho(t, engine)

	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "alice" {
		t.Errorf("body = %q, want alice", rec.Body.String())
	}
}

func TestGateCookieToken(t *testing.T) {
	engine, pair := newGateEnv(t)
	handler := gatedEcho(t, engine)

	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: pair.AccessToken})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestGateRejections(t *testing.T) {
	engine, pair := newGateEnv(t)
	handler := Gate(engine)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run for rejected requests")
	}))

	tests := []struct {
		name  string
		setup func(*http.Request)
	}{
		{"no credentials", func(*http.Request) {}},
		{"empty bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer ") }},
		{"wrong scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic abc") }},
		{"garbage token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer garbage") }},
		{"refresh token at the gate", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+pair.RefreshToken)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/secret", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestGateNilEngine(t *testing.T) {
	handler := Gate(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
