package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"splitledger/internal/models"
	"splitledger/internal/storage"
)

// memUserStore is an in-memory UserStorage for tests.
type memUserStore struct {
	byEmail map[string]*models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{byEmail: make(map[string]*models.User)}
}

func (s *memUserStore) CreateUser(_ context.Context, user *models.User) error {
	s.byEmail[user.Email] = user
	return nil
}

func (s *memUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := s.byEmail[email]; ok {
		return u, nil
	}
	return nil, storage.ErrNotFound
}

func (s *memUserStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range s.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func TestRegisterAndAuthenticate(t *testing.T) {
	a := NewPasswordAuthenticator(newMemUserStore())
	ctx := context.Background()

	user, err := a.Register(ctx, "alice@example.com", "Alice", "correct-horse")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.ID == "" || user.PasswordHash == "correct-horse" {
		t.Fatalf("Register() returned unhashed or incomplete user: %+v", user)
	}

	got, err := a.Authenticate(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("Authenticate() id = %s, want %s", got.ID, user.ID)
	}

	if _, err := a.Authenticate(ctx, "alice@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Authenticate(wrong password) error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := a.Authenticate(ctx, "nobody@example.com", "correct-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Authenticate(unknown email) error = %v, want ErrInvalidCredentials", err)
	}
}

func TestRegisterRejections(t *testing.T) {
	a := NewPasswordAuthenticator(newMemUserStore())
	ctx := context.Background()

	if _, err := a.Register(ctx, "short@example.com", "Short", "1234567"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("Register(short password) error = %v, want ErrWeakPassword", err)
	}

	if _, err := a.Register(ctx, "dup@example.com", "First", "long-enough"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := a.Register(ctx, "dup@example.com", "Second", "long-enough"); !errors.Is(err, ErrEmailExists) {
		t.Errorf("Register(duplicate email) error = %v, want ErrEmailExists", err)
	}
}

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	user := models.NewUser("alice@example.com", "Alice", "hash")

	token, err := m.Generate(user)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if claims.UserID != user.ID || claims.Email != user.Email {
		t.Errorf("claims = %+v, want user %s", claims, user.ID)
	}
}

func TestJWTRejectsBadTokens(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	user := models.NewUser("alice@example.com", "Alice", "hash")

	t.Run("garbage", func(t *testing.T) {
		if _, err := m.Validate("not-a-token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Validate(garbage) error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTManager("other-secret", time.Hour)
		token, err := other.Generate(user)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Validate(wrong secret) error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		expired := NewJWTManager("test-secret", -time.Minute)
		token, err := expired.Generate(user)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Validate(expired) error = %v, want ErrInvalidToken", err)
		}
	})
}
