package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"moneta/internal/docstore/memory"
)

func newTestService() *Service {
	s := NewService(memory.New(), "test-secret", time.Hour)
	s.now = func() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC) }
	return s
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	uid, err := svc.Register(ctx, "Ada@Example.com", "correct horse")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	// Login is case-insensitive on email.
	token, loginUID, err := svc.Login(ctx, "ada@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if loginUID != uid {
		t.Errorf("login uid = %q, want %q", loginUID, uid)
	}

	got, err := svc.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if got != uid {
		t.Errorf("token uid = %q, want %q", got, uid)
	}
}

func TestRegisterRejects(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "not-an-email", "long enough pw"); err == nil {
		t.Error("expected error for bad email")
	}
	if _, err := svc.Register(ctx, "a@example.com", "short"); err == nil {
		t.Error("expected error for short password")
	}

	if _, err := svc.Register(ctx, "a@example.com", "long enough pw"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register(ctx, "A@EXAMPLE.COM", "another password"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("err = %v, want ErrEmailTaken", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "a@example.com", "correct horse"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, _, err := svc.Login(ctx, "a@example.com", "wrong horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Login(ctx, "ghost@example.com", "whatever pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestVerifyTokenRejectsTampering(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "a@example.com", "correct horse"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	token, _, err := svc.Login(ctx, "a@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if _, err := svc.VerifyToken(token + "x"); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("tampered token: err = %v, want ErrUnauthenticated", err)
	}

	other := NewService(memory.New(), "other-secret", time.Hour)
	if _, err := other.VerifyToken(token); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("cross-secret token: err = %v, want ErrUnauthenticated", err)
	}
}

func TestVerifyTokenExpiry(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "a@example.com", "correct horse"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	token, _, err := svc.Login(ctx, "a@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	svc.now = func() time.Time { return time.Date(2024, 3, 15, 12, 0, 1, 0, time.UTC) }
	if _, err := svc.VerifyToken(token); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expired token: err = %v, want ErrUnauthenticated", err)
	}
}

func TestContextRoundTrip(t *testing.T) {
	ctx := WithUserID(context.Background(), "user-1")
	uid, err := UserID(ctx)
	if err != nil {
		t.Fatalf("UserID: %v", err)
	}
	if uid != "user-1" {
		t.Errorf("uid = %q", uid)
	}

	if _, err := UserID(context.Background()); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("bare context: err = %v, want ErrUnauthenticated", err)
	}
}
