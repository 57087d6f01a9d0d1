package auth_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/elvenwooddev-web/designquote/internal/auth"
	"github.com/elvenwooddev-web/designquote/internal/platform/httpx"
)

type stubRepo struct {
	user *auth.User
}

func (s *stubRepo) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, httpx.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) FindByID(_ context.Context, id int64) (*auth.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, httpx.ErrNotFound
	}
	return s.user, nil
}

func testUser(t *testing.T, password string) *auth.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &auth.User{
		ID:           1,
		Email:        "designer@studio.test",
		Name:         "Dana",
		Role:         "designer",
		PasswordHash: string(hashed),
		IsActive:     true,
	}
}

func newAuthService(t *testing.T, repo auth.Repository) *auth.Service {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return auth.NewService(repo, redisClient, "test-secret", time.Hour)
}

func logger() *slog.Logger { return slog.Default() }

func TestLoginIssuesToken(t *testing.T) {
	user := testUser(t, "correct-horse")
	service := newAuthService(t, &stubRepo{user: user})
	handler := auth.NewHandler(logger(), service)

	body := `{"email":"designer@studio.test","password":"correct-horse"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	res := httptest.NewRecorder()
	handler.Login(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	var payload struct {
		Token string `json:"token"`
		User  struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	assert.NotEmpty(t, payload.Token)
	assert.Equal(t, "designer@studio.test", payload.User.Email)

	claims, err := service.VerifyToken(context.Background(), payload.Token)
	require.NoError(t, err)
	assert.Equal(t, "1", claims.Subject)
	assert.Equal(t, "designer", claims.Role)
}

func TestLoginInvalidCredentials(t *testing.T) {
	user := testUser(t, "correct-horse")
	service := newAuthService(t, &stubRepo{user: user})
	handler := auth.NewHandler(logger(), service)

	body := `{"email":"designer@studio.test","password":"wrong-password"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	res := httptest.NewRecorder()
	handler.Login(res, req)

	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestLoginInactiveUser(t *testing.T) {
	user := testUser(t, "correct-horse")
	user.IsActive = false
	service := newAuthService(t, &stubRepo{user: user})
	handler := auth.NewHandler(logger(), service)

	body := `{"email":"designer@studio.test","password":"correct-horse"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	res := httptest.NewRecorder()
	handler.Login(res, req)

	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	user := testUser(t, "correct-horse")
	service := newAuthService(t, &stubRepo{user: user})
	handler := auth.NewHandler(logger(), service)

	token, _, err := service.IssueToken(user, time.Now())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res := httptest.NewRecorder()
	handler.Logout(res, req)
	require.Equal(t, http.StatusOK, res.Code)

	_, err = service.VerifyToken(context.Background(), token)
	assert.ErrorIs(t, err, httpx.ErrUnauthorized)
}

func TestRequireUserRejectsMissingToken(t *testing.T) {
	service := newAuthService(t, &stubRepo{})
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes", nil)
	res := httptest.NewRecorder()
	service.RequireUser(next).ServeHTTP(res, req)

	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestRequireUserLoadsContext(t *testing.T) {
	user := testUser(t, "correct-horse")
	service := newAuthService(t, &stubRepo{user: user})

	token, _, err := service.IssueToken(user, time.Now())
	require.NoError(t, err)

	var seen *auth.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res := httptest.NewRecorder()
	service.RequireUser(next).ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "designer@studio.test", seen.Email)
}

func TestVerifyTokenBadSignature(t *testing.T) {
	user := testUser(t, "correct-horse")
	service := newAuthService(t, &stubRepo{user: user})

	forged := newAuthServiceWithSecret(t, &stubRepo{user: user}, "another-secret")
	token, _, err := forged.IssueToken(user, time.Now())
	require.NoError(t, err)

	_, err = service.VerifyToken(context.Background(), token)
	assert.ErrorIs(t, err, httpx.ErrUnauthorized)
}

func newAuthServiceWithSecret(t *testing.T, repo auth.Repository, secret string) *auth.Service {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return auth.NewService(repo, redisClient, secret, time.Hour)
}
