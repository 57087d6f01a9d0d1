package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/elvenwooddev-web/designquote/internal/platform/httpx"
)

// Claims is the JWT payload issued on login.
type Claims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Service wraps authentication business rules.
type Service struct {
	repo     Repository
	redis    *redis.Client
	secret   []byte
	tokenTTL time.Duration
}

// NewService constructs a new Service.
func NewService(repo Repository, rdb *redis.Client, secret string, tokenTTL time.Duration) *Service {
	return &Service{repo: repo, redis: rdb, secret: []byte(secret), tokenTTL: tokenTTL}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, httpx.ErrUnauthorized
	}
	if !user.IsActive {
		return nil, httpx.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, httpx.ErrUnauthorized
	}
	return user, nil
}

// IssueToken signs a bearer token for the user.
func (s *Service) IssueToken(user *User, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(s.tokenTTL)
	claims := Claims{
		Name: user.Name,
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprintf("%d", user.ID),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// VerifyToken parses and validates a bearer token, rejecting revoked tokens.
func (s *Service) VerifyToken(ctx context.Context, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, httpx.ErrUnauthorized
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, httpx.ErrUnauthorized
	}

	revoked, err := s.redis.Exists(ctx, denylistKey(claims.ID)).Result()
	if err != nil {
		return nil, fmt.Errorf("denylist check: %w", err)
	}
	if revoked > 0 {
		return nil, httpx.ErrUnauthorized
	}
	return claims, nil
}

// RevokeToken places the token on the denylist until it would have expired.
func (s *Service) RevokeToken(ctx context.Context, claims *Claims, now time.Time) error {
	ttl := time.Until(claims.ExpiresAt.Time)
	if now.After(claims.ExpiresAt.Time) {
		return nil
	}
	return s.redis.Set(ctx, denylistKey(claims.ID), "revoked", ttl).Err()
}

// CurrentUser loads the full user record behind a verified token.
func (s *Service) CurrentUser(ctx context.Context, claims *Claims) (*User, error) {
	var id int64
	if _, err := fmt.Sscanf(claims.Subject, "%d", &id); err != nil {
		return nil, httpx.ErrUnauthorized
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, httpx.ErrUnauthorized
	}
	if !user.IsActive {
		return nil, httpx.ErrUnauthorized
	}
	return user, nil
}

func denylistKey(jti string) string {
	return "auth:denylist:" + jti
}
