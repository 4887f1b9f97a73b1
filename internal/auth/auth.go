// Package auth handles registration, login and bearer-token verification.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"moneta/internal/docstore"
)

var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

const (
	fieldUID          = "uid"
	fieldPasswordHash = "passwordHash"

	minPasswordLen = 8
)

type Service struct {
	store    docstore.Store
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

func NewService(store docstore.Store, secret string, tokenTTL time.Duration) *Service {
	return &Service{store: store, secret: []byte(secret), tokenTTL: tokenTTL, now: time.Now}
}

// Register creates a credential record and returns the new uid.
func (s *Service) Register(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return "", ErrInvalidEmail
	}
	if len(password) < minPasswordLen {
		return "", ErrWeakPassword
	}

	if _, err := s.store.Get(ctx, docstore.CredentialsCollection, email); err == nil {
		return "", ErrEmailTaken
	} else if !errors.Is(err, docstore.ErrNotFound) {
		return "", fmt.Errorf("check credentials: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	uid := s.store.NewID()
	var b docstore.Batch
	b.Set(docstore.CredentialsCollection, email, map[string]any{
		fieldUID:          uid,
		fieldPasswordHash: string(hash),
	})
	if err := s.store.Commit(ctx, &b); err != nil {
		return "", fmt.Errorf("store credentials: %w", err)
	}

	slog.InfoContext(ctx, "User registered", "user_id", uid)
	return uid, nil
}

// Login verifies the password and returns a signed token plus the uid.
func (s *Service) Login(ctx context.Context, email, password string) (token, uid string, err error) {
	email = normalizeEmail(email)

	fields, err := s.store.Get(ctx, docstore.CredentialsCollection, email)
	if errors.Is(err, docstore.ErrNotFound) {
		return "", "", ErrInvalidCredentials
	}
	if err != nil {
		return "", "", fmt.Errorf("fetch credentials: %w", err)
	}

	hash := docstore.AsString(fields[fieldPasswordHash])
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return "", "", ErrInvalidCredentials
	}

	uid = docstore.AsString(fields[fieldUID])
	token, err = s.issueToken(uid)
	if err != nil {
		return "", "", err
	}
	return token, uid, nil
}

// DeleteCredentials removes the login record, called as part of account purge.
func (s *Service) DeleteCredentials(ctx context.Context, email string) error {
	var b docstore.Batch
	b.Delete(docstore.CredentialsCollection, normalizeEmail(email))
	if err := s.store.Commit(ctx, &b); err != nil {
		return fmt.Errorf("delete credentials: %w", err)
	}
	return nil
}

func (s *Service) issueToken(uid string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   uid,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken parses a bearer token and returns the uid it was issued for.
func (s *Service) VerifyToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil || !token.Valid {
		return "", ErrUnauthenticated
	}
	if claims.Subject == "" {
		return "", ErrUnauthenticated
	}
	return claims.Subject, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
