package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/karitsu/gridpager/internal/domain"
	"github.com/karitsu/gridpager/internal/repository/sqlite"
	"github.com/karitsu/gridpager/internal/service"
)

const testJWTSecret = "test-secret-key-for-unit-tests"

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestAuthService(t *testing.T) (*service.AuthService, *sqlite.DB) {
	t.Helper()
	db := newTestDB(t)
	// Use cost 4 for fast tests.
	auth := service.NewAuthService(db.Users(), testJWTSecret, 4)
	return auth, db
}

func TestAuthService_Register_Success(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, "maker", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if user.ID == 0 {
		t.Fatal("expected user ID to be set")
	}
	if user.Username != "maker" {
		t.Fatalf("expected username maker, got %s", user.Username)
	}
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, "dup", "password123"); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err := auth.Register(ctx, "dup", "password456")
	if !errors.Is(err, domain.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestAuthService_Register_WeakPassword(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "weak", "short")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, "login", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	token, err := auth.Login(ctx, "login", "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" {
		t.Fatal("expected a token")
	}

	userID, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if userID != user.ID {
		t.Fatalf("expected user ID %d, got %d", user.ID, userID)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, "wrongpw", "password123"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, err := auth.Login(ctx, "wrongpw", "not-the-password")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	auth, _ := newTestAuthService(t)

	_, err := auth.Login(context.Background(), "nobody", "password123")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthService_ValidateToken_Garbage(t *testing.T) {
	auth, _ := newTestAuthService(t)

	if _, err := auth.ValidateToken("not-a-jwt"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthService_ValidateToken_WrongSecret(t *testing.T) {
	auth, db := newTestAuthService(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, "secret", "password123"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	token, err := auth.Login(ctx, "secret", "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	other := service.NewAuthService(db.Users(), "a-completely-different-secret", 4)
	if _, err := other.ValidateToken(token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
